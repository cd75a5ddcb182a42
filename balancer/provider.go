package balancer

import (
	"context"

	"github.com/cardano-forge/apollocore/common"
)

// Provider is the chain-data collaborator the balancer depends on:
// UTxO lookups, current protocol/genesis parameters and transaction
// submission. Concrete implementations live in package backend
// (Blockfrost, Maestro, Ogmios, UTxO RPC, or a fixed/offline fixture).
type Provider interface {
	Utxos(ctx context.Context, addr common.Address) ([]common.Utxo, error)
	ProtocolParameters(ctx context.Context) (common.ProtocolParameters, error)
	GenesisParameters(ctx context.Context) (common.GenesisParameters, error)
	SubmitTx(ctx context.Context, tx common.Transaction) (common.Blake2b256, error)
	EvaluateTx(ctx context.Context, tx common.Transaction, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error)
}

// CoinSelector picks a subset of available UTxOs covering a requested
// Value, returning the selected inputs and the leftover change Value.
// The builder's default selector is a simple greedy-largest-first
// strategy; callers may substitute a different algorithm (e.g.
// branch-and-bound) by implementing this interface.
type CoinSelector interface {
	SelectCoins(available []common.Utxo, requested common.Value) (selected []common.Utxo, change common.Value, err error)
}

// Evaluator runs Plutus script evaluation over a draft transaction and
// returns the execution units each redeemer actually consumed. It is
// the same shape as Provider.EvaluateTx, split out as its own interface
// so the balancer can be driven by a local evaluator (for testing) as
// well as by a network provider.
type Evaluator interface {
	Evaluate(ctx context.Context, tx common.Transaction, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error)
}
