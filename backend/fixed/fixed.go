// Package fixed provides an in-memory ChainContext fixture for tests and
// offline transaction construction: preset protocol/genesis parameters
// and a caller-populated UTxO set, no network calls.
package fixed

import (
	"context"
	"errors"
	"sync"

	"github.com/cardano-forge/apollocore/backend"
	"github.com/cardano-forge/apollocore/common"
)

// FixedChainContext is a backend.ChainContext with preset parameters and
// UTxOs, useful for testing and simulation without a live chain.
type FixedChainContext struct {
	protocolParams common.ProtocolParameters
	genesisParams  common.GenesisParameters
	networkId      uint8

	mu    sync.RWMutex
	utxos map[string][]common.Utxo // keyed by address bytes
}

func NewFixedChainContext(pp common.ProtocolParameters, gp common.GenesisParameters, networkId uint8) *FixedChainContext {
	return &FixedChainContext{
		protocolParams: pp,
		genesisParams:  gp,
		networkId:      networkId,
		utxos:          make(map[string][]common.Utxo),
	}
}

// NewEmptyFixedChainContext returns a FixedChainContext preloaded with
// representative preprod-era parameters, for tests that only care about
// fee/balance arithmetic rather than exact network values.
func NewEmptyFixedChainContext() *FixedChainContext {
	pp := common.ProtocolParameters{
		MinFeeA:             44,
		MinFeeB:             155381,
		MaxTxSize:           16384,
		MaxValSize:          5000,
		CoinsPerUtxoByte:    4310,
		CollateralPercent:   150,
		MaxCollateralInputs: 3,
		PriceMem:            0.0577,
		PriceStep:           0.0000721,
		MaxTxExMem:          14000000,
		MaxTxExSteps:        10000000000,
		KeyDeposit:          2000000,
		PoolDeposit:         500000000,
		DrepDeposit:         500000000,
		GovActionDeposit:    100000000000,
	}
	gp := common.GenesisParameters{NetworkMagic: 1}
	return NewFixedChainContext(pp, gp, 0)
}

// AddUtxo registers a UTxO as spendable from the given address.
func (f *FixedChainContext) AddUtxo(addr common.Address, utxo common.Utxo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := string(addr.Bytes())
	f.utxos[key] = append(f.utxos[key], utxo)
}

func (f *FixedChainContext) ProtocolParams(ctx context.Context) (common.ProtocolParameters, error) {
	pp := f.protocolParams
	if pp.CostModels != nil {
		cm := make(map[string][]int64, len(pp.CostModels))
		for k, v := range pp.CostModels {
			cm[k] = append([]int64(nil), v...)
		}
		pp.CostModels = cm
	}
	return pp, nil
}

func (f *FixedChainContext) GenesisParams(ctx context.Context) (common.GenesisParameters, error) {
	return f.genesisParams, nil
}

func (f *FixedChainContext) NetworkId() uint8 { return f.networkId }

func (f *FixedChainContext) CurrentEpoch(ctx context.Context) (uint64, error) { return 0, nil }

func (f *FixedChainContext) MaxTxFee(ctx context.Context) (uint64, error) {
	pp, err := f.ProtocolParams(ctx)
	if err != nil {
		return 0, err
	}
	return backend.ComputeMaxTxFee(pp)
}

func (f *FixedChainContext) Tip(ctx context.Context) (uint64, error) { return 0, nil }

func (f *FixedChainContext) Utxos(ctx context.Context, address common.Address) ([]common.Utxo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	src := f.utxos[string(address.Bytes())]
	out := make([]common.Utxo, len(src))
	copy(out, src)
	return out, nil
}

func (f *FixedChainContext) SubmitTx(ctx context.Context, txCbor []byte) (common.Blake2b256, error) {
	return common.Blake2b256{}, errors.New("fixed: cannot submit tx with a fixed chain context")
}

func (f *FixedChainContext) EvaluateTx(ctx context.Context, txCbor []byte, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	return nil, errors.New("fixed: cannot evaluate tx with a fixed chain context")
}

func (f *FixedChainContext) UtxoByRef(ctx context.Context, txHash common.Blake2b256, index uint32) (*common.Utxo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, list := range f.utxos {
		for _, u := range list {
			if u.Input.TransactionId == txHash && u.Input.Index == index {
				cp := u
				return &cp, nil
			}
		}
	}
	return nil, errors.New("fixed: utxo not found")
}

func (f *FixedChainContext) ScriptCbor(ctx context.Context, scriptHash common.Blake2b224) ([]byte, error) {
	return nil, errors.New("fixed: script lookup not implemented in fixed chain context")
}

var _ backend.ChainContext = (*FixedChainContext)(nil)
