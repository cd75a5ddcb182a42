// Package ogmios implements backend.ChainContext against an Ogmios node
// for chain queries/submission and a Kupo indexer (via kugo) for UTxO
// and script lookups.
package ogmios

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/SundaeSwap-finance/kugo"
	ogmigo "github.com/SundaeSwap-finance/ogmigo/v6"
	"github.com/SundaeSwap-finance/ogmigo/v6/ouroboros/chainsync"
	"github.com/SundaeSwap-finance/ogmigo/v6/ouroboros/shared"

	"github.com/cardano-forge/apollocore/backend"
	"github.com/cardano-forge/apollocore/cbor"
	"github.com/cardano-forge/apollocore/common"
)

// ChainContext implements backend.ChainContext using Ogmios (queries,
// submission, evaluation) plus Kupo (address/script lookup).
type ChainContext struct {
	ogmios    *ogmigo.Client
	kupo      *kugo.Client
	networkId uint8
}

func New(ogmiosClient *ogmigo.Client, kupoClient *kugo.Client, networkId uint8) *ChainContext {
	return &ChainContext{ogmios: ogmiosClient, kupo: kupoClient, networkId: networkId}
}

func (o *ChainContext) ProtocolParams(ctx context.Context) (common.ProtocolParameters, error) {
	raw, err := o.ogmios.CurrentProtocolParameters(ctx)
	if err != nil {
		return common.ProtocolParameters{}, err
	}
	var params ogmiosProtocolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return common.ProtocolParameters{}, fmt.Errorf("ogmios: parsing protocol params: %w", err)
	}
	return params.toProtocolParams()
}

func (o *ChainContext) GenesisParams(ctx context.Context) (common.GenesisParameters, error) {
	raw, err := o.ogmios.GenesisConfig(ctx, "shelley")
	if err != nil {
		return common.GenesisParameters{}, err
	}
	var genesis ogmiosGenesisConfig
	if err := json.Unmarshal(raw, &genesis); err != nil {
		return common.GenesisParameters{}, err
	}
	return genesis.toGenesisParams(), nil
}

func (o *ChainContext) NetworkId() uint8 { return o.networkId }

func (o *ChainContext) CurrentEpoch(ctx context.Context) (uint64, error) {
	return o.ogmios.CurrentEpoch(ctx)
}

func (o *ChainContext) MaxTxFee(ctx context.Context) (uint64, error) {
	pp, err := o.ProtocolParams(ctx)
	if err != nil {
		return 0, err
	}
	return backend.ComputeMaxTxFee(pp)
}

func (o *ChainContext) Tip(ctx context.Context) (uint64, error) {
	point, err := o.ogmios.ChainTip(ctx)
	if err != nil {
		return 0, err
	}
	ps, ok := point.PointStruct()
	if !ok || ps == nil {
		return 0, errors.New("ogmios: chain tip is origin")
	}
	return ps.Slot, nil
}

func (o *ChainContext) Utxos(ctx context.Context, address common.Address) ([]common.Utxo, error) {
	if o.kupo == nil {
		return nil, errors.New("ogmios: a kupo client is required for UTxO lookup")
	}
	matches, err := o.kupo.Matches(ctx, kugo.OnlyUnspent(), kugo.Address(address.String()))
	if err != nil {
		return nil, err
	}
	var utxos []common.Utxo
	for _, match := range matches {
		u, err := matchToUtxo(match, address)
		if err != nil {
			return nil, fmt.Errorf("ogmios: parsing kupo match: %w", err)
		}
		utxos = append(utxos, u)
	}
	return utxos, nil
}

func (o *ChainContext) SubmitTx(ctx context.Context, txCbor []byte) (common.Blake2b256, error) {
	resp, err := o.ogmios.SubmitTx(ctx, hex.EncodeToString(txCbor))
	if err != nil {
		return common.Blake2b256{}, err
	}
	if resp.Error != nil {
		return common.Blake2b256{}, fmt.Errorf("ogmios: submit tx: %s", resp.Error.Message)
	}
	hashBytes, err := hex.DecodeString(resp.ID)
	if err != nil {
		return common.Blake2b256{}, err
	}
	return common.NewBlake2b256(hashBytes)
}

func (o *ChainContext) EvaluateTx(ctx context.Context, txCbor []byte, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	resp, err := o.ogmios.EvaluateTx(ctx, hex.EncodeToString(txCbor))
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, common.NewScriptEvaluationFailureError("ogmios: %s", resp.Error.Message)
	}
	result := make(map[common.RedeemerKey]common.ExUnits)
	for _, eu := range resp.ExUnits {
		tag, err := backend.ParseRedeemerTag(eu.Validator.Purpose)
		if err != nil {
			return nil, err
		}
		if eu.Validator.Index > math.MaxUint32 {
			return nil, fmt.Errorf("ogmios: redeemer index %d exceeds uint32 range", eu.Validator.Index)
		}
		key := common.RedeemerKey{Tag: tag, Index: uint32(eu.Validator.Index)}
		result[key] = common.ExUnits{Memory: uint64(eu.Budget.Memory), Steps: uint64(eu.Budget.Cpu)}
	}
	return result, nil
}

func (o *ChainContext) UtxoByRef(ctx context.Context, txHash common.Blake2b256, index uint32) (*common.Utxo, error) {
	query := chainsync.TxInQuery{Transaction: shared.UtxoTxID{ID: hex.EncodeToString(txHash.Bytes())}, Index: index}
	utxos, err := o.ogmios.UtxosByTxIn(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return nil, errors.New("ogmios: utxo not found")
	}
	raw := utxos[0]
	addr, err := common.NewAddress(raw.Address)
	if err != nil {
		return nil, err
	}
	result, err := ogmiosUtxoToCommon(raw, addr)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (o *ChainContext) ScriptCbor(ctx context.Context, scriptHash common.Blake2b224) ([]byte, error) {
	if o.kupo == nil {
		return nil, errors.New("ogmios: a kupo client is required for script lookup")
	}
	script, err := o.kupo.Script(ctx, hex.EncodeToString(scriptHash.Bytes()))
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(script.Script)
}

var _ backend.ChainContext = (*ChainContext)(nil)

// --- Ogmios response shapes ---

type ogmiosProtocolParams struct {
	MinFeeCoefficient  uint64          `json:"minFeeCoefficient"`
	MinFeeConstant     ogmiosLovelace  `json:"minFeeConstant"`
	MaxTxSize          ogmiosBytes     `json:"maxTransactionSize"`
	StakeKeyDeposit    ogmiosLovelace  `json:"stakeCredentialDeposit"`
	PoolDeposit        ogmiosLovelace  `json:"stakePoolDeposit"`
	CollateralPercent  uint64          `json:"collateralPercentage"`
	MaxCollateral      uint64          `json:"maxCollateralInputs"`
	MaxValSize         ogmiosBytes     `json:"maxValueSize"`
	ScriptPrices       ogmiosPrices    `json:"scriptExecutionPrices"`
	MaxTxExUnits       ogmiosExUnits   `json:"maxExecutionUnitsPerTransaction"`
	MinUtxoDeposit     uint64          `json:"minUtxoDepositCoefficient"`
	MinFeeRefScripts   uint64          `json:"minFeeReferenceScripts"`
	CostModels         json.RawMessage `json:"plutusCostModels"`
}

type ogmiosLovelace struct {
	Lovelace uint64 `json:"lovelace"`
}

type ogmiosBytes struct {
	Bytes uint64 `json:"bytes"`
}

type ogmiosPrices struct {
	Memory string `json:"memory"`
	CPU    string `json:"cpu"`
}

type ogmiosExUnits struct {
	Memory uint64 `json:"memory"`
	CPU    uint64 `json:"cpu"`
}

func (p *ogmiosProtocolParams) toProtocolParams() (common.ProtocolParameters, error) {
	priceMem, err := backend.ParseFraction(p.ScriptPrices.Memory)
	if err != nil {
		return common.ProtocolParameters{}, fmt.Errorf("ogmios: invalid memory price: %w", err)
	}
	priceStep, err := backend.ParseFraction(p.ScriptPrices.CPU)
	if err != nil {
		return common.ProtocolParameters{}, fmt.Errorf("ogmios: invalid cpu price: %w", err)
	}

	pp := common.ProtocolParameters{
		MinFeeA:                    p.MinFeeCoefficient,
		MinFeeB:                    p.MinFeeConstant.Lovelace,
		MaxTxSize:                  p.MaxTxSize.Bytes,
		KeyDeposit:                 p.StakeKeyDeposit.Lovelace,
		PoolDeposit:                p.PoolDeposit.Lovelace,
		PriceMem:                   priceMem,
		PriceStep:                  priceStep,
		MaxTxExMem:                 p.MaxTxExUnits.Memory,
		MaxTxExSteps:               p.MaxTxExUnits.CPU,
		MaxValSize:                 p.MaxValSize.Bytes,
		CollateralPercent:          p.CollateralPercent,
		MaxCollateralInputs:        p.MaxCollateral,
		CoinsPerUtxoByte:           p.MinUtxoDeposit,
		MinFeeRefScriptCostPerByte: p.MinFeeRefScripts,
	}

	if len(p.CostModels) > 0 {
		var rawModels map[string][]int64
		if err := json.Unmarshal(p.CostModels, &rawModels); err != nil {
			return common.ProtocolParameters{}, fmt.Errorf("ogmios: parsing cost models: %w", err)
		}
		pp.CostModels = make(map[string][]int64, len(rawModels))
		for key, costs := range rawModels {
			pp.CostModels[ogmiosCostModelKey(key)] = costs
		}
	}
	return pp, nil
}

func ogmiosCostModelKey(key string) string {
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

type ogmiosGenesisConfig struct {
	NetworkMagic uint32  `json:"networkMagic"`
	EpochLength  uint64  `json:"epochLength"`
	SlotLength   uint64  `json:"slotLength"`
	ActiveSlots  float64 `json:"activeSlotsCoefficient"`
}

func (g *ogmiosGenesisConfig) toGenesisParams() common.GenesisParameters {
	return common.GenesisParameters{
		NetworkMagic:     g.NetworkMagic,
		SlotLength:       g.SlotLength,
		ActiveSlotsCoeff: g.ActiveSlots,
		EpochLength:      g.EpochLength,
	}
}

func matchToUtxo(match kugo.Match, address common.Address) (common.Utxo, error) {
	txId, err := common.NewBlake2b256(mustHex(match.TransactionID))
	if err != nil {
		return common.Utxo{}, fmt.Errorf("invalid tx hash: %w", err)
	}
	if match.OutputIndex < 0 || match.OutputIndex > math.MaxUint32 {
		return common.Utxo{}, fmt.Errorf("output index %d out of range", match.OutputIndex)
	}
	u, err := sharedValueToUtxo(txId, uint32(match.OutputIndex), shared.Value(match.Value), address)
	if err != nil {
		return common.Utxo{}, err
	}

	if match.DatumHash != "" {
		hash, err := common.NewBlake2b256(mustHex(match.DatumHash))
		if err != nil {
			return common.Utxo{}, fmt.Errorf("invalid datum hash: %w", err)
		}
		u.Output.Datum = common.NewDatumOptionHash(hash)
	}
	if match.Script.Script != "" {
		ref, err := kupoScriptToScriptRef(match.Script)
		if err != nil {
			return common.Utxo{}, fmt.Errorf("parsing script ref: %w", err)
		}
		u.Output.ScriptRef = ref
	}
	return u, nil
}

func ogmiosUtxoToCommon(raw shared.Utxo, addr common.Address) (common.Utxo, error) {
	txId, err := common.NewBlake2b256(mustHex(raw.Transaction.ID))
	if err != nil {
		return common.Utxo{}, fmt.Errorf("invalid tx hash: %w", err)
	}
	u, err := sharedValueToUtxo(txId, raw.Index, raw.Value, addr)
	if err != nil {
		return common.Utxo{}, err
	}

	if raw.Datum != "" {
		datumBytes, err := hex.DecodeString(raw.Datum)
		if err != nil {
			return common.Utxo{}, fmt.Errorf("invalid inline datum hex: %w", err)
		}
		var pd common.PlutusData
		if err := pd.UnmarshalCBOR(datumBytes); err != nil {
			return common.Utxo{}, fmt.Errorf("decoding inline datum: %w", err)
		}
		opt, err := common.NewDatumOptionInline(&pd)
		if err != nil {
			return common.Utxo{}, err
		}
		u.Output.Datum = opt
	} else if raw.DatumHash != "" {
		hash, err := common.NewBlake2b256(mustHex(raw.DatumHash))
		if err != nil {
			return common.Utxo{}, fmt.Errorf("invalid datum hash: %w", err)
		}
		u.Output.Datum = common.NewDatumOptionHash(hash)
	}

	if len(raw.Script) > 0 && string(raw.Script) != "null" {
		ref, err := ogmiosScriptToScriptRef(raw.Script)
		if err != nil {
			return common.Utxo{}, fmt.Errorf("parsing script ref: %w", err)
		}
		if ref != nil {
			u.Output.ScriptRef = ref
		}
	}
	return u, nil
}

func sharedValueToUtxo(txId common.Blake2b256, outputIndex uint32, value shared.Value, addr common.Address) (common.Utxo, error) {
	input := common.NewTransactionInput(txId, outputIndex)
	lovelace := value.AdaLovelace().Uint64()
	assets := common.NewMint()

	for policyIdStr, perAsset := range value {
		if policyIdStr == "ada" {
			continue
		}
		policyId, err := common.NewBlake2b224(mustHex(policyIdStr))
		if err != nil {
			return common.Utxo{}, fmt.Errorf("invalid policy id %q: %w", policyIdStr, err)
		}
		for assetNameHex, qty := range perAsset {
			assetName, err := common.NewAssetName(mustHex(assetNameHex))
			if err != nil {
				return common.Utxo{}, fmt.Errorf("invalid asset name %q: %w", assetNameHex, err)
			}
			assets.Set(policyId, assetName, qty.BigInt())
		}
	}

	var value2 common.Value
	if assets.Len() > 0 {
		value2 = common.NewValue(lovelace, &assets)
	} else {
		value2 = common.NewCoinValue(lovelace)
	}

	return common.NewUtxo(input, common.NewTransactionOutput(addr, value2)), nil
}

func kupoScriptToScriptRef(script kugo.Script) (*common.ScriptRef, error) {
	scriptBytes, err := hex.DecodeString(script.Script)
	if err != nil {
		return nil, fmt.Errorf("invalid script hex %q: %w", script.Script, err)
	}
	var s common.Script
	switch script.Language {
	case kugo.ScriptLanguageNative:
		var ns common.NativeScript
		if _, err := cbor.Decode(scriptBytes, &ns); err != nil {
			return nil, fmt.Errorf("decoding native script: %w", err)
		}
		s = ns
	case kugo.ScriptLanguagePlutusV1:
		s = common.PlutusV1Script(scriptBytes)
	case kugo.ScriptLanguagePlutusV2:
		s = common.PlutusV2Script(scriptBytes)
	case kugo.ScriptLanguagePlutusV3:
		s = common.PlutusV3Script(scriptBytes)
	default:
		return nil, fmt.Errorf("unsupported kupo script language: %d", script.Language)
	}
	return common.NewScriptRef(s)
}

// ogmiosScriptToScriptRef converts an Ogmios v6 script object
// ({"language": "plutus:v1"|...|"native", "cbor": "hex"}) to a ScriptRef.
func ogmiosScriptToScriptRef(scriptJSON json.RawMessage) (*common.ScriptRef, error) {
	var raw struct {
		Language string `json:"language"`
		Cbor     string `json:"cbor"`
	}
	if err := json.Unmarshal(scriptJSON, &raw); err != nil {
		return nil, fmt.Errorf("parsing script json: %w", err)
	}
	if raw.Cbor == "" {
		return nil, nil
	}
	scriptBytes, err := hex.DecodeString(raw.Cbor)
	if err != nil {
		return nil, fmt.Errorf("invalid script cbor hex %q: %w", raw.Cbor, err)
	}
	var s common.Script
	switch raw.Language {
	case "native":
		var ns common.NativeScript
		if _, err := cbor.Decode(scriptBytes, &ns); err != nil {
			return nil, fmt.Errorf("decoding native script: %w", err)
		}
		s = ns
	case "plutus:v1":
		s = common.PlutusV1Script(scriptBytes)
	case "plutus:v2":
		s = common.PlutusV2Script(scriptBytes)
	case "plutus:v3":
		s = common.PlutusV3Script(scriptBytes)
	default:
		return nil, fmt.Errorf("unsupported ogmios script language %q", raw.Language)
	}
	return common.NewScriptRef(s)
}

func mustHex(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}
