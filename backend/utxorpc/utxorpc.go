// Package utxorpc implements backend.ChainContext against the UTxO RPC
// protocol (connectrpc.com/connect transport, utxorpc/go-sdk client,
// utxorpc/go-codegen message types).
package utxorpc

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	cardano "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
	query "github.com/utxorpc/go-codegen/utxorpc/v1alpha/query"
	submit "github.com/utxorpc/go-codegen/utxorpc/v1alpha/submit"
	syncpb "github.com/utxorpc/go-codegen/utxorpc/v1alpha/sync"
	sdk "github.com/utxorpc/go-sdk"

	"github.com/cardano-forge/apollocore/backend"
	"github.com/cardano-forge/apollocore/cbor"
	"github.com/cardano-forge/apollocore/common"
)

// ChainContext implements backend.ChainContext using the UTxO RPC
// protocol: ReadParams, ReadTip, SearchUtxos/ReadUtxos, SubmitTx, EvalTx.
type ChainContext struct {
	client    *sdk.UtxorpcClient
	networkId uint8
}

func New(baseUrl string, networkId uint8, headers map[string]string) *ChainContext {
	opts := []sdk.ClientOption{sdk.WithBaseUrl(baseUrl)}
	if len(headers) > 0 {
		opts = append(opts, sdk.WithHeaders(headers))
	}
	return &ChainContext{client: sdk.NewClient(opts...), networkId: networkId}
}

func bigIntUint64(bi *cardano.BigInt) uint64 {
	if bi == nil {
		return 0
	}
	v := bi.GetInt()
	if v < 0 {
		return 0
	}
	return uint64(v)
}

func (u *ChainContext) ProtocolParams(ctx context.Context) (common.ProtocolParameters, error) {
	req := connect.NewRequest(&query.ReadParamsRequest{})
	u.client.AddHeadersToRequest(req)
	resp, err := u.client.ReadParams(req)
	if err != nil {
		return common.ProtocolParameters{}, err
	}

	params := resp.Msg.GetValues().GetCardano()
	if params == nil {
		return common.ProtocolParameters{}, errors.New("utxorpc: no cardano params in response")
	}

	pp := common.ProtocolParameters{
		MinFeeA:                    bigIntUint64(params.GetMinFeeCoefficient()),
		MinFeeB:                    bigIntUint64(params.GetMinFeeConstant()),
		MaxTxSize:                  uint64(params.GetMaxTxSize()),
		CoinsPerUtxoByte:           bigIntUint64(params.GetCoinsPerUtxoByte()),
		MaxValSize:                 params.GetMaxValueSize(),
		CollateralPercent:          uint64(params.GetCollateralPercentage()),
		MaxCollateralInputs:        uint64(params.GetMaxCollateralInputs()),
		KeyDeposit:                 bigIntUint64(params.GetStakeKeyDeposit()),
		PoolDeposit:                bigIntUint64(params.GetPoolDeposit()),
	}

	if txEx := params.GetMaxExecutionUnitsPerTransaction(); txEx != nil {
		pp.MaxTxExMem = txEx.GetMemory()
		pp.MaxTxExSteps = txEx.GetSteps()
	}

	if prices := params.GetPrices(); prices != nil {
		if mem := prices.GetMemory(); mem != nil && mem.GetDenominator() != 0 {
			pp.PriceMem = float64(mem.GetNumerator()) / float64(mem.GetDenominator())
		}
		if steps := prices.GetSteps(); steps != nil && steps.GetDenominator() != 0 {
			pp.PriceStep = float64(steps.GetNumerator()) / float64(steps.GetDenominator())
		}
	}

	if cm := params.GetCostModels(); cm != nil {
		pp.CostModels = make(map[string][]int64)
		if v1 := cm.GetPlutusV1(); v1 != nil {
			pp.CostModels["PlutusV1"] = append([]int64(nil), v1.GetValues()...)
		}
		if v2 := cm.GetPlutusV2(); v2 != nil {
			pp.CostModels["PlutusV2"] = append([]int64(nil), v2.GetValues()...)
		}
		if v3 := cm.GetPlutusV3(); v3 != nil {
			pp.CostModels["PlutusV3"] = append([]int64(nil), v3.GetValues()...)
		}
	}
	return pp, nil
}

func (u *ChainContext) GenesisParams(ctx context.Context) (common.GenesisParameters, error) {
	return common.GenesisParameters{}, errors.New("utxorpc: genesis parameters are not exposed by this protocol")
}

func (u *ChainContext) NetworkId() uint8 { return u.networkId }

func (u *ChainContext) CurrentEpoch(ctx context.Context) (uint64, error) {
	return 0, errors.New("utxorpc: epoch query not available")
}

func (u *ChainContext) MaxTxFee(ctx context.Context) (uint64, error) {
	pp, err := u.ProtocolParams(ctx)
	if err != nil {
		return 0, err
	}
	return backend.ComputeMaxTxFee(pp)
}

func (u *ChainContext) Tip(ctx context.Context) (uint64, error) {
	req := connect.NewRequest(&syncpb.ReadTipRequest{})
	u.client.AddHeadersToRequest(req)
	resp, err := u.client.ReadTip(req)
	if err != nil {
		return 0, err
	}
	tip := resp.Msg.GetTip()
	if tip == nil {
		return 0, errors.New("utxorpc: no tip in response")
	}
	return tip.GetSlot(), nil
}

func (u *ChainContext) Utxos(ctx context.Context, address common.Address) ([]common.Utxo, error) {
	req := connect.NewRequest(&query.SearchUtxosRequest{
		Predicate: &query.UtxoPredicate{
			Match: &query.AnyUtxoPattern{
				UtxoPattern: &query.AnyUtxoPattern_Cardano{
					Cardano: &cardano.TxOutputPattern{
						Address: &cardano.AddressPattern{ExactAddress: address.Bytes()},
					},
				},
			},
		},
	})
	u.client.AddHeadersToRequest(req)
	resp, err := u.client.SearchUtxos(req)
	if err != nil {
		return nil, err
	}
	var utxos []common.Utxo
	for _, item := range resp.Msg.GetItems() {
		utxo, err := utxoFromRpc(item)
		if err != nil {
			return nil, fmt.Errorf("utxorpc: parsing utxo: %w", err)
		}
		utxos = append(utxos, utxo)
	}
	return utxos, nil
}

func (u *ChainContext) SubmitTx(ctx context.Context, txCbor []byte) (common.Blake2b256, error) {
	req := connect.NewRequest(&submit.SubmitTxRequest{
		Tx: &submit.AnyChainTx{Type: &submit.AnyChainTx_Raw{Raw: txCbor}},
	})
	u.client.AddHeadersToRequest(req)
	resp, err := u.client.SubmitTx(req)
	if err != nil {
		return common.Blake2b256{}, err
	}
	ref := resp.Msg.GetRef()
	if len(ref) == 0 {
		return common.Blake2b256{}, errors.New("utxorpc: no tx ref in submit response")
	}
	return common.NewBlake2b256(ref)
}

func (u *ChainContext) EvaluateTx(ctx context.Context, txCbor []byte, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	req := connect.NewRequest(&submit.EvalTxRequest{
		Tx: &submit.AnyChainTx{Type: &submit.AnyChainTx_Raw{Raw: txCbor}},
	})
	u.client.AddHeadersToRequest(req)
	resp, err := u.client.EvalTx(req)
	if err != nil {
		return nil, err
	}

	result := make(map[common.RedeemerKey]common.ExUnits)
	report := resp.Msg.GetReport()
	if report == nil {
		return result, nil
	}
	cardanoReport := report.GetCardano()
	if cardanoReport == nil {
		return result, nil
	}
	for _, redeemer := range cardanoReport.GetRedeemers() {
		tag, err := utxorpcPurposeToRedeemerTag(redeemer.GetPurpose())
		if err != nil {
			return nil, fmt.Errorf("utxorpc: mapping redeemer purpose: %w", err)
		}
		key := common.RedeemerKey{Tag: tag, Index: redeemer.GetIndex()}
		if eu := redeemer.GetExUnits(); eu != nil {
			result[key] = common.ExUnits{Memory: eu.GetMemory(), Steps: eu.GetSteps()}
		}
	}
	return result, nil
}

func (u *ChainContext) UtxoByRef(ctx context.Context, txHash common.Blake2b256, index uint32) (*common.Utxo, error) {
	req := connect.NewRequest(&query.ReadUtxosRequest{
		Keys: []*query.TxoRef{{Hash: txHash.Bytes(), Index: index}},
	})
	u.client.AddHeadersToRequest(req)
	resp, err := u.client.ReadUtxos(req)
	if err != nil {
		return nil, err
	}
	items := resp.Msg.GetItems()
	if len(items) == 0 {
		return nil, errors.New("utxorpc: utxo not found")
	}
	utxo, err := utxoFromRpc(items[0])
	if err != nil {
		return nil, err
	}
	return &utxo, nil
}

func (u *ChainContext) ScriptCbor(ctx context.Context, scriptHash common.Blake2b224) ([]byte, error) {
	return nil, errors.New("utxorpc: script lookup not available via this protocol")
}

var _ backend.ChainContext = (*ChainContext)(nil)

func utxoFromRpc(item *query.AnyUtxoData) (common.Utxo, error) {
	nativeBytes := item.GetNativeBytes()
	ref := item.GetTxoRef()
	if len(nativeBytes) == 0 {
		return common.Utxo{}, fmt.Errorf("no native bytes for utxo %x#%d", ref.GetHash(), ref.GetIndex())
	}

	var output common.TransactionOutput
	if _, err := cbor.Decode(nativeBytes, &output); err != nil {
		return common.Utxo{}, fmt.Errorf("decoding utxo cbor: %w", err)
	}

	txId, err := common.NewBlake2b256(ref.GetHash())
	if err != nil {
		return common.Utxo{}, fmt.Errorf("invalid tx hash: %w", err)
	}
	input := common.NewTransactionInput(txId, ref.GetIndex())
	return common.NewUtxo(input, output), nil
}

// utxorpcPurposeToRedeemerTag maps UTxO RPC's redeemer purpose enum to
// the canonical RedeemerTag.
func utxorpcPurposeToRedeemerTag(purpose cardano.RedeemerPurpose) (common.RedeemerTag, error) {
	switch purpose {
	case cardano.RedeemerPurpose_REDEEMER_PURPOSE_SPEND:
		return common.RedeemerTagSpend, nil
	case cardano.RedeemerPurpose_REDEEMER_PURPOSE_MINT:
		return common.RedeemerTagMint, nil
	case cardano.RedeemerPurpose_REDEEMER_PURPOSE_CERT:
		return common.RedeemerTagCert, nil
	case cardano.RedeemerPurpose_REDEEMER_PURPOSE_REWARD:
		return common.RedeemerTagReward, nil
	default:
		return 0, fmt.Errorf("unsupported redeemer purpose: %d", purpose)
	}
}
