package apollocore

import (
	"context"
	"fmt"

	"github.com/cardano-forge/apollocore/backend"
	"github.com/cardano-forge/apollocore/balancer"
	"github.com/cardano-forge/apollocore/common"
)

// chainProvider adapts a backend.ChainContext (raw-CBOR submit/evaluate,
// split ProtocolParams/GenesisParams queries) to the balancer.Provider
// contract the balancing loop depends on (typed Transaction
// submit/evaluate, a single ProtocolParameters/GenesisParameters pair).
type chainProvider struct {
	cc backend.ChainContext
}

// newChainProvider wraps a ChainContext for use by the balancer.
func newChainProvider(cc backend.ChainContext) *chainProvider {
	return &chainProvider{cc: cc}
}

func (p *chainProvider) Utxos(ctx context.Context, addr common.Address) ([]common.Utxo, error) {
	return p.cc.Utxos(ctx, addr)
}

func (p *chainProvider) ProtocolParameters(ctx context.Context) (common.ProtocolParameters, error) {
	return p.cc.ProtocolParams(ctx)
}

func (p *chainProvider) GenesisParameters(ctx context.Context) (common.GenesisParameters, error) {
	return p.cc.GenesisParams(ctx)
}

func (p *chainProvider) SubmitTx(ctx context.Context, tx common.Transaction) (common.Blake2b256, error) {
	txCbor, err := tx.Bytes()
	if err != nil {
		return common.Blake2b256{}, fmt.Errorf("apollocore: encoding transaction for submission: %w", err)
	}
	return p.cc.SubmitTx(ctx, txCbor)
}

func (p *chainProvider) EvaluateTx(ctx context.Context, tx common.Transaction, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	txCbor, err := tx.Bytes()
	if err != nil {
		return nil, fmt.Errorf("apollocore: encoding transaction for evaluation: %w", err)
	}
	return p.cc.EvaluateTx(ctx, txCbor, resolved)
}

// Evaluate satisfies balancer.Evaluator by delegating to EvaluateTx, so a
// chainProvider can drive both the Provider and Evaluator roles the
// balancer depends on.
func (p *chainProvider) Evaluate(ctx context.Context, tx common.Transaction, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	return p.EvaluateTx(ctx, tx, resolved)
}

var _ balancer.Provider = (*chainProvider)(nil)
var _ balancer.Evaluator = (*chainProvider)(nil)

// depositsFromParams maps the current protocol parameters to the
// per-certificate-kind deposit amounts the balancer's implicit-coin
// accounting needs. Governance-action deposits are not yet exposed by
// every backend's ProtocolParams mapping; when absent, proposal
// procedures simply won't have their deposit accounted for by this
// helper and callers must size ForcedFee/Available accordingly.
func depositsFromParams(pp common.ProtocolParameters) balancer.DepositAmounts {
	return balancer.DepositAmounts{
		StakeKeyDeposit:  pp.KeyDeposit,
		PoolDeposit:      pp.PoolDeposit,
		DrepDeposit:      pp.DrepDeposit,
		GovActionDeposit: pp.GovActionDeposit,
	}
}

// langVersionFromCostModelKey maps the canonical "PlutusVn" cost-model
// key used across every backend's ProtocolParams mapping to the small
// integer language-version tag EncodeLangViews expects.
func langVersionFromCostModelKey(key string) (uint, bool) {
	switch key {
	case "PlutusV1":
		return 0, true
	case "PlutusV2":
		return 1, true
	case "PlutusV3":
		return 2, true
	default:
		return 0, false
	}
}
