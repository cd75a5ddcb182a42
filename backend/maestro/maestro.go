// Package maestro implements backend.ChainContext against the Maestro
// Dapp Platform API via the maestro-org/go-sdk client.
package maestro

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"math/big"

	maestroClient "github.com/maestro-org/go-sdk/client"
	"github.com/maestro-org/go-sdk/models"
	"github.com/maestro-org/go-sdk/utils"

	"github.com/cardano-forge/apollocore/backend"
	"github.com/cardano-forge/apollocore/common"
)

// ChainContext implements backend.ChainContext using the Maestro API.
type ChainContext struct {
	client    *maestroClient.Client
	networkId uint8
}

// New creates a Maestro-backed ChainContext. networkId 1 selects
// mainnet; anything else defaults to preprod.
func New(networkId uint8, projectId string) *ChainContext {
	return &ChainContext{client: maestroClient.NewClient(projectId, networkString(networkId)), networkId: networkId}
}

// NewWithNetwork is like New but takes an explicit Maestro network name
// (e.g. "preview"), for testnet variants network ID alone can't express.
func NewWithNetwork(networkId uint8, projectId, network string) *ChainContext {
	return &ChainContext{client: maestroClient.NewClient(projectId, network), networkId: networkId}
}

func networkString(networkId uint8) string {
	if networkId == 1 {
		return "mainnet"
	}
	return "preprod"
}

func (m *ChainContext) ProtocolParams(ctx context.Context) (common.ProtocolParameters, error) {
	resp, err := m.client.ProtocolParameters()
	if err != nil {
		return common.ProtocolParameters{}, err
	}
	data := resp.Data

	priceMem, err := backend.ParseFraction(data.ScriptExecutionPrices.Memory)
	if err != nil {
		return common.ProtocolParameters{}, fmt.Errorf("maestro: invalid memory price: %w", err)
	}
	priceStep, err := backend.ParseFraction(data.ScriptExecutionPrices.Steps)
	if err != nil {
		return common.ProtocolParameters{}, fmt.Errorf("maestro: invalid step price: %w", err)
	}

	pp := common.ProtocolParameters{
		MinFeeA:                    uint64(data.MinFeeCoefficient),
		MinFeeB:                    uint64(data.MinFeeConstant.LovelaceAmount.Lovelace),
		MaxTxSize:                  uint64(data.MaxTransactionSize.Bytes),
		KeyDeposit:                 uint64(data.StakeCredentialDeposit.LovelaceAmount.Lovelace),
		PoolDeposit:                uint64(data.StakePoolDeposit.LovelaceAmount.Lovelace),
		MaxTxExMem:                 uint64(data.MaxExecutionUnitsPerTransaction.Memory),
		MaxTxExSteps:               uint64(data.MaxExecutionUnitsPerTransaction.Steps),
		MaxValSize:                 uint64(data.MaxValueSize.Bytes),
		CollateralPercent:          uint64(data.CollateralPercentage),
		MaxCollateralInputs:        uint64(data.MaxCollateralInputs),
		CoinsPerUtxoByte:           uint64(data.MinUtxoDepositCoefficient),
		PriceMem:                   priceMem,
		PriceStep:                  priceStep,
	}

	if rawModels, ok := data.PlutusCostModels.(map[string]any); ok {
		pp.CostModels = make(map[string][]int64, len(rawModels))
		for key, val := range rawModels {
			costs, ok := val.([]any)
			if !ok {
				continue
			}
			int64Costs := make([]int64, 0, len(costs))
			for _, c := range costs {
				f, ok := c.(float64)
				if !ok {
					continue
				}
				int64Costs = append(int64Costs, int64(f))
			}
			pp.CostModels[maestroCostModelKey(key)] = int64Costs
		}
	}
	return pp, nil
}

func (m *ChainContext) GenesisParams(ctx context.Context) (common.GenesisParameters, error) {
	return common.GenesisParameters{}, errors.New("maestro: genesis parameters are not exposed by this API")
}

func (m *ChainContext) NetworkId() uint8 { return m.networkId }

func (m *ChainContext) CurrentEpoch(ctx context.Context) (uint64, error) {
	resp, err := m.client.CurrentEpoch()
	if err != nil {
		return 0, err
	}
	if resp.Data.EpochNo < 0 {
		return 0, fmt.Errorf("maestro: invalid epoch value %d", resp.Data.EpochNo)
	}
	return uint64(resp.Data.EpochNo), nil
}

func (m *ChainContext) MaxTxFee(ctx context.Context) (uint64, error) {
	pp, err := m.ProtocolParams(ctx)
	if err != nil {
		return 0, err
	}
	return backend.ComputeMaxTxFee(pp)
}

func (m *ChainContext) Tip(ctx context.Context) (uint64, error) {
	resp, err := m.client.ChainTip()
	if err != nil {
		return 0, err
	}
	if resp.Data.Slot < 0 {
		return 0, fmt.Errorf("maestro: invalid slot value %d", resp.Data.Slot)
	}
	return uint64(resp.Data.Slot), nil
}

func (m *ChainContext) Utxos(ctx context.Context, address common.Address) ([]common.Utxo, error) {
	const maxPages = 1000
	var all []common.Utxo
	params := utils.NewParameters()
	var cursor string

	for page := 0; page < maxPages; page++ {
		resp, err := m.client.UtxosAtAddress(address.String(), params)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Data {
			u, err := maestroUtxoToCommon(raw, address)
			if err != nil {
				return nil, fmt.Errorf("maestro: parsing utxo: %w", err)
			}
			all = append(all, u)
		}
		cursor = resp.NextCursor
		if cursor == "" {
			return all, nil
		}
		params = utils.NewParameters()
		params.Cursor(cursor)
	}
	return nil, fmt.Errorf("maestro: utxo pagination exceeded %d pages", maxPages)
}

func (m *ChainContext) SubmitTx(ctx context.Context, txCbor []byte) (common.Blake2b256, error) {
	resp, err := m.client.SubmitTx(hex.EncodeToString(txCbor))
	if err != nil {
		return common.Blake2b256{}, err
	}
	hashBytes, err := hex.DecodeString(resp.Data)
	if err != nil {
		return common.Blake2b256{}, err
	}
	return common.NewBlake2b256(hashBytes)
}

func (m *ChainContext) EvaluateTx(ctx context.Context, txCbor []byte, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	evalResp, err := m.client.EvaluateTx(hex.EncodeToString(txCbor))
	if err != nil {
		return nil, err
	}
	result := make(map[common.RedeemerKey]common.ExUnits)
	for _, eval := range evalResp {
		if eval.RedeemerIndex < 0 || eval.RedeemerIndex > math.MaxUint32 {
			return nil, fmt.Errorf("maestro: redeemer index %d out of range", eval.RedeemerIndex)
		}
		tag, err := backend.ParseRedeemerTag(eval.RedeemerTag)
		if err != nil {
			return nil, err
		}
		key := common.RedeemerKey{Tag: tag, Index: uint32(eval.RedeemerIndex)}
		result[key] = common.ExUnits{Memory: uint64(eval.ExUnits.Mem), Steps: uint64(eval.ExUnits.Steps)}
	}
	return result, nil
}

func (m *ChainContext) UtxoByRef(ctx context.Context, txHash common.Blake2b256, index uint32) (*common.Utxo, error) {
	resp, err := m.client.TransactionOutputFromReference(hex.EncodeToString(txHash.Bytes()), int(index), nil)
	if err != nil {
		return nil, err
	}
	addr, err := common.NewAddress(resp.Data.Address)
	if err != nil {
		return nil, err
	}
	u, err := maestroUtxoToCommon(resp.Data, addr)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *ChainContext) ScriptCbor(ctx context.Context, scriptHash common.Blake2b224) ([]byte, error) {
	resp, err := m.client.ScriptByHash(hex.EncodeToString(scriptHash.Bytes()))
	if err != nil {
		return nil, err
	}
	if resp.Data.Bytes == "" {
		return nil, errors.New("maestro: no script CBOR available")
	}
	return hex.DecodeString(resp.Data.Bytes)
}

func maestroUtxoToCommon(raw models.Utxo, address common.Address) (common.Utxo, error) {
	txId, err := common.NewBlake2b256(mustHex(raw.TxHash))
	if err != nil {
		return common.Utxo{}, fmt.Errorf("invalid tx hash: %w", err)
	}
	if raw.Index < 0 {
		return common.Utxo{}, fmt.Errorf("negative output index: %d", raw.Index)
	}
	input := common.NewTransactionInput(txId, uint32(raw.Index))

	var lovelace uint64
	assets := common.NewMint()
	for _, asset := range raw.Assets {
		if asset.Unit == "lovelace" {
			if asset.Amount < 0 {
				return common.Utxo{}, fmt.Errorf("negative lovelace amount: %d", asset.Amount)
			}
			lovelace = uint64(asset.Amount)
			continue
		}
		if len(asset.Unit) < 56 {
			continue
		}
		policyId, err := common.NewBlake2b224(mustHex(asset.Unit[:56]))
		if err != nil {
			return common.Utxo{}, err
		}
		assetName, err := common.NewAssetName(mustHex(asset.Unit[56:]))
		if err != nil {
			return common.Utxo{}, err
		}
		assets.Set(policyId, assetName, big.NewInt(asset.Amount))
	}

	var value common.Value
	if assets.Len() > 0 {
		value = common.NewValue(lovelace, &assets)
	} else {
		value = common.NewCoinValue(lovelace)
	}
	output := common.NewTransactionOutput(address, value)

	if datumMap, ok := raw.Datum.(map[string]any); ok {
		if bytesHex, ok := datumMap["bytes"].(string); ok && bytesHex != "" {
			data, err := hex.DecodeString(bytesHex)
			if err != nil {
				return common.Utxo{}, fmt.Errorf("invalid inline datum hex: %w", err)
			}
			var plutusData common.PlutusData
			if err := plutusData.UnmarshalCBOR(data); err != nil {
				return common.Utxo{}, err
			}
			datumOpt, err := common.NewDatumOptionInline(&plutusData)
			if err != nil {
				return common.Utxo{}, err
			}
			output.Datum = datumOpt
		} else if hashHex, ok := datumMap["hash"].(string); ok && hashHex != "" {
			hash, err := common.NewBlake2b256(mustHex(hashHex))
			if err != nil {
				return common.Utxo{}, err
			}
			output.Datum = common.NewDatumOptionHash(hash)
		}
	}

	return common.NewUtxo(input, output), nil
}

func mustHex(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}

// maestroCostModelKey translates Maestro's "plutus:v1"-style cost model
// keys to the canonical "PlutusV1" form the language-views encoder uses.
func maestroCostModelKey(key string) string {
	switch key {
	case "plutus:v1":
		return "PlutusV1"
	case "plutus:v2":
		return "PlutusV2"
	case "plutus:v3":
		return "PlutusV3"
	default:
		return key
	}
}

var _ backend.ChainContext = (*ChainContext)(nil)
