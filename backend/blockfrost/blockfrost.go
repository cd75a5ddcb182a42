// Package blockfrost implements backend.ChainContext against the
// Blockfrost REST API.
package blockfrost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cardano-forge/apollocore/backend"
	"github.com/cardano-forge/apollocore/common"
)

// ChainContext implements backend.ChainContext using the Blockfrost API.
type ChainContext struct {
	baseUrl   string
	projectId string
	networkId uint8
	client    *http.Client
}

// New creates a Blockfrost-backed ChainContext. baseUrl is normally one
// of the constants.BlockfrostBaseUrl* values.
func New(baseUrl string, networkId uint8, projectId string) *ChainContext {
	baseUrl = strings.TrimRight(baseUrl, "/")
	if !strings.HasSuffix(baseUrl, "/api/v0") && !strings.HasSuffix(baseUrl, "/v0") {
		baseUrl += "/api/v0"
	}
	return &ChainContext{
		baseUrl:   baseUrl,
		projectId: projectId,
		networkId: networkId,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *ChainContext) request(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, b.baseUrl+path, body)
	if err != nil {
		return nil, err
	}
	if b.projectId != "" {
		req.Header.Set("project_id", b.projectId)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("blockfrost: API error %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func (b *ChainContext) ProtocolParams(ctx context.Context) (common.ProtocolParameters, error) {
	data, err := b.request(ctx, "GET", "/epochs/latest/parameters", nil, "")
	if err != nil {
		return common.ProtocolParameters{}, err
	}
	var raw bfProtocolParams
	if err := json.Unmarshal(data, &raw); err != nil {
		return common.ProtocolParameters{}, err
	}
	return raw.toProtocolParams()
}

func (b *ChainContext) GenesisParams(ctx context.Context) (common.GenesisParameters, error) {
	data, err := b.request(ctx, "GET", "/genesis", nil, "")
	if err != nil {
		return common.GenesisParameters{}, err
	}
	var raw bfGenesisParams
	if err := json.Unmarshal(data, &raw); err != nil {
		return common.GenesisParameters{}, err
	}
	return common.GenesisParameters{
		NetworkMagic:     uint32(raw.NetworkMagic),
		SystemStart:      0,
		SlotLength:       uint64(raw.SlotLength),
		ActiveSlotsCoeff: raw.ActiveSlotsCoefficient,
		EpochLength:      uint64(raw.EpochLength),
	}, nil
}

func (b *ChainContext) NetworkId() uint8 { return b.networkId }

func (b *ChainContext) CurrentEpoch(ctx context.Context) (uint64, error) {
	data, err := b.request(ctx, "GET", "/epochs/latest", nil, "")
	if err != nil {
		return 0, err
	}
	var result struct {
		Epoch uint64 `json:"epoch"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, err
	}
	return result.Epoch, nil
}

func (b *ChainContext) MaxTxFee(ctx context.Context) (uint64, error) {
	pp, err := b.ProtocolParams(ctx)
	if err != nil {
		return 0, err
	}
	return backend.ComputeMaxTxFee(pp)
}

func (b *ChainContext) Tip(ctx context.Context) (uint64, error) {
	data, err := b.request(ctx, "GET", "/blocks/latest", nil, "")
	if err != nil {
		return 0, err
	}
	var result struct {
		Slot uint64 `json:"slot"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, err
	}
	return result.Slot, nil
}

func (b *ChainContext) Utxos(ctx context.Context, address common.Address) ([]common.Utxo, error) {
	const maxPages = 1000
	var all []common.Utxo
	for page := 1; page <= maxPages; page++ {
		path := fmt.Sprintf("/addresses/%s/utxos?page=%d", address.String(), page)
		data, err := b.request(ctx, "GET", path, nil, "")
		if err != nil {
			return nil, err
		}
		var raws []bfAddressUTxO
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, err
		}
		if len(raws) == 0 {
			return all, nil
		}
		for _, raw := range raws {
			u, err := raw.toUtxo(address)
			if err != nil {
				return nil, fmt.Errorf("blockfrost: utxo %s#%d: %w", raw.TxHash, raw.OutputIndex, err)
			}
			all = append(all, u)
		}
	}
	return nil, fmt.Errorf("blockfrost: utxo pagination exceeded %d pages", maxPages)
}

func (b *ChainContext) SubmitTx(ctx context.Context, txCbor []byte) (common.Blake2b256, error) {
	data, err := b.request(ctx, "POST", "/tx/submit", bytes.NewReader(txCbor), "application/cbor")
	if err != nil {
		return common.Blake2b256{}, err
	}
	var txHash string
	if err := json.Unmarshal(data, &txHash); err != nil {
		return common.Blake2b256{}, err
	}
	return parseHash32(txHash)
}

func (b *ChainContext) EvaluateTx(ctx context.Context, txCbor []byte, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	data, err := b.request(ctx, "POST", "/utils/txs/evaluate", bytes.NewReader(txCbor), "application/cbor")
	if err != nil {
		return nil, err
	}
	var evalResult bfEvalResult
	if err := json.Unmarshal(data, &evalResult); err != nil {
		return nil, err
	}
	if len(evalResult.Result.EvaluationFailure) > 0 && string(evalResult.Result.EvaluationFailure) != "null" {
		return nil, common.NewScriptEvaluationFailureError("blockfrost: %s", string(evalResult.Result.EvaluationFailure))
	}
	result := make(map[common.RedeemerKey]common.ExUnits)
	for key, budget := range evalResult.Result.EvaluationResult {
		parts := strings.Split(key, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("blockfrost: malformed redeemer key %q", key)
		}
		tag, err := backend.ParseRedeemerTag(parts[0])
		if err != nil {
			return nil, err
		}
		idx, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("blockfrost: invalid redeemer index %q: %w", parts[1], err)
		}
		if budget.Memory > math.MaxInt64 || budget.Steps > math.MaxInt64 {
			return nil, fmt.Errorf("blockfrost: ExUnits overflow in key %q", key)
		}
		result[common.RedeemerKey{Tag: tag, Index: uint32(idx)}] = common.ExUnits{Memory: budget.Memory, Steps: budget.Steps}
	}
	return result, nil
}

func (b *ChainContext) UtxoByRef(ctx context.Context, txHash common.Blake2b256, index uint32) (*common.Utxo, error) {
	path := fmt.Sprintf("/txs/%s/utxos", hex.EncodeToString(txHash.Bytes()))
	data, err := b.request(ctx, "GET", path, nil, "")
	if err != nil {
		return nil, err
	}
	var txUtxos struct {
		Outputs []bfAddressUTxO `json:"outputs"`
	}
	if err := json.Unmarshal(data, &txUtxos); err != nil {
		return nil, err
	}
	for _, raw := range txUtxos.Outputs {
		if uint32(raw.OutputIndex) != index {
			continue
		}
		addr, err := common.NewAddress(raw.Address)
		if err != nil {
			return nil, err
		}
		u, err := raw.toUtxo(addr)
		if err != nil {
			return nil, err
		}
		return &u, nil
	}
	return nil, errors.New("blockfrost: utxo not found")
}

func (b *ChainContext) ScriptCbor(ctx context.Context, scriptHash common.Blake2b224) ([]byte, error) {
	path := fmt.Sprintf("/scripts/%s/cbor", hex.EncodeToString(scriptHash.Bytes()))
	data, err := b.request(ctx, "GET", path, nil, "")
	if err != nil {
		return nil, err
	}
	var result struct {
		Cbor string `json:"cbor"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return hex.DecodeString(result.Cbor)
}

func parseHash32(s string) (common.Blake2b256, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return common.Blake2b256{}, err
	}
	return common.NewBlake2b256(b)
}

var _ backend.ChainContext = (*ChainContext)(nil)

// --- Blockfrost response shapes ---

type bfProtocolParams struct {
	MinFeeA           uint64          `json:"min_fee_a"`
	MinFeeB           uint64          `json:"min_fee_b"`
	MaxTxSize         uint64          `json:"max_tx_size"`
	KeyDeposit        string          `json:"key_deposit"`
	PoolDeposit       string          `json:"pool_deposit"`
	DrepDeposit       string          `json:"drep_deposit"`
	GovActionDeposit  string          `json:"gov_action_deposit"`
	PriceMem          float64         `json:"price_mem"`
	PriceStep         float64         `json:"price_step"`
	MaxTxExMem        string          `json:"max_tx_ex_mem"`
	MaxTxExSteps      string          `json:"max_tx_ex_steps"`
	MaxValSize        string          `json:"max_val_size"`
	CollateralPercent uint64          `json:"collateral_percent"`
	MaxCollateralIn   uint64          `json:"max_collateral_inputs"`
	CoinsPerUtxoSize  string          `json:"coins_per_utxo_size"`
	MinFeeRefScript   uint64          `json:"min_fee_ref_script_cost_per_byte"`
	CostModels        json.RawMessage `json:"cost_models"`
}

func parseUintString(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

func (p *bfProtocolParams) toProtocolParams() (common.ProtocolParameters, error) {
	pp := common.ProtocolParameters{
		MinFeeA:                    p.MinFeeA,
		MinFeeB:                    p.MinFeeB,
		MaxTxSize:                  p.MaxTxSize,
		MaxValSize:                 parseUintString(p.MaxValSize),
		KeyDeposit:                 parseUintString(p.KeyDeposit),
		PoolDeposit:                parseUintString(p.PoolDeposit),
		DrepDeposit:                parseUintString(p.DrepDeposit),
		GovActionDeposit:           parseUintString(p.GovActionDeposit),
		PriceMem:                   p.PriceMem,
		PriceStep:                  p.PriceStep,
		MaxTxExMem:                 parseUintString(p.MaxTxExMem),
		MaxTxExSteps:               parseUintString(p.MaxTxExSteps),
		CoinsPerUtxoByte:           parseUintString(p.CoinsPerUtxoSize),
		CollateralPercent:          p.CollateralPercent,
		MaxCollateralInputs:        p.MaxCollateralIn,
		MinFeeRefScriptCostPerByte: p.MinFeeRefScript,
	}

	// Blockfrost serves cost models either as a flat array per language or
	// as a named-parameter map; either way the canonical form this module
	// needs is the array, ordered by ascending parameter name.
	if len(p.CostModels) > 0 {
		var arrayModels map[string][]int64
		if err := json.Unmarshal(p.CostModels, &arrayModels); err == nil {
			pp.CostModels = arrayModels
		} else {
			var keyedModels map[string]map[string]int64
			if err := json.Unmarshal(p.CostModels, &keyedModels); err != nil {
				return pp, fmt.Errorf("blockfrost: parsing cost models: %w", err)
			}
			pp.CostModels = make(map[string][]int64, len(keyedModels))
			for lang, costs := range keyedModels {
				keys := make([]string, 0, len(costs))
				for k := range costs {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				values := make([]int64, 0, len(costs))
				for _, k := range keys {
					values = append(values, costs[k])
				}
				pp.CostModels[lang] = values
			}
		}
	}
	return pp, nil
}

type bfGenesisParams struct {
	ActiveSlotsCoefficient float64 `json:"active_slots_coefficient"`
	NetworkMagic           int     `json:"network_magic"`
	EpochLength            int     `json:"epoch_length"`
	SlotLength             int     `json:"slot_length"`
}

type bfAddressUTxO struct {
	TxHash              string            `json:"tx_hash"`
	OutputIndex         int               `json:"output_index"`
	Address             string            `json:"address"`
	Amount              []bfAddressAmount `json:"amount"`
	DataHash            string            `json:"data_hash"`
	InlineDatum         string            `json:"inline_datum"`
	ReferenceScriptHash string            `json:"reference_script_hash"`
}

type bfAddressAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

func (raw *bfAddressUTxO) toUtxo(address common.Address) (common.Utxo, error) {
	txId, err := parseHash32(raw.TxHash)
	if err != nil {
		return common.Utxo{}, fmt.Errorf("invalid tx hash: %w", err)
	}
	if raw.OutputIndex < 0 {
		return common.Utxo{}, fmt.Errorf("negative output index: %d", raw.OutputIndex)
	}
	input := common.NewTransactionInput(txId, uint32(raw.OutputIndex))

	var lovelace uint64
	assets := common.NewMint()
	for _, amt := range raw.Amount {
		if amt.Unit == "lovelace" {
			qty, err := strconv.ParseUint(amt.Quantity, 10, 64)
			if err != nil {
				return common.Utxo{}, fmt.Errorf("invalid lovelace quantity %q: %w", amt.Quantity, err)
			}
			lovelace = qty
			continue
		}
		if len(amt.Unit) < 56 {
			return common.Utxo{}, fmt.Errorf("unrecognized unit %q", amt.Unit)
		}
		qty, ok := new(big.Int).SetString(amt.Quantity, 10)
		if !ok {
			return common.Utxo{}, fmt.Errorf("invalid asset quantity %q", amt.Quantity)
		}
		policyBytes, err := hex.DecodeString(amt.Unit[:56])
		if err != nil {
			return common.Utxo{}, err
		}
		policyId, err := common.NewBlake2b224(policyBytes)
		if err != nil {
			return common.Utxo{}, err
		}
		nameBytes, err := hex.DecodeString(amt.Unit[56:])
		if err != nil {
			return common.Utxo{}, err
		}
		assetName, err := common.NewAssetName(nameBytes)
		if err != nil {
			return common.Utxo{}, err
		}
		assets.Set(policyId, assetName, qty)
	}

	var value common.Value
	if assets.Len() > 0 {
		value = common.NewValue(lovelace, &assets)
	} else {
		value = common.NewCoinValue(lovelace)
	}

	output := common.NewTransactionOutput(address, value)

	if raw.DataHash != "" {
		hash, err := parseHash32(raw.DataHash)
		if err != nil {
			return common.Utxo{}, err
		}
		output.Datum = common.NewDatumOptionHash(hash)
	}
	// InlineDatum/ReferenceScriptHash need a JSON Plutus-data decoder and a
	// follow-up ScriptCbor call respectively; callers that need either
	// should resolve them explicitly rather than through Utxos/UtxoByRef.

	return common.NewUtxo(input, output), nil
}

type bfEvalResult struct {
	Result struct {
		EvaluationResult map[string]struct {
			Memory uint64 `json:"memory"`
			Steps  uint64 `json:"steps"`
		} `json:"EvaluationResult"`
		EvaluationFailure json.RawMessage `json:"EvaluationFailure"`
	} `json:"result"`
}
