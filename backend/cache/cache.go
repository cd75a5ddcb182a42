// Package cache wraps a backend.ChainContext with short-TTL caching for
// the parameter queries that rarely change within a single builder run.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cardano-forge/apollocore/backend"
	"github.com/cardano-forge/apollocore/common"
)

// CachedChainContext wraps another ChainContext, memoizing
// ProtocolParams/GenesisParams for ttl so a builder that calls them
// repeatedly during coin selection doesn't round-trip the network every
// time.
type CachedChainContext struct {
	inner backend.ChainContext
	ttl   time.Duration

	mu             sync.Mutex
	cachedParams   *common.ProtocolParameters
	cachedGenesis  *common.GenesisParameters
	paramsCacheAt  time.Time
	genesisCacheAt time.Time
}

func NewCachedChainContext(inner backend.ChainContext, ttl time.Duration) *CachedChainContext {
	return &CachedChainContext{inner: inner, ttl: ttl}
}

func (c *CachedChainContext) ProtocolParams(ctx context.Context) (common.ProtocolParameters, error) {
	c.mu.Lock()
	if c.cachedParams != nil && time.Since(c.paramsCacheAt) < c.ttl {
		pp := *c.cachedParams
		c.mu.Unlock()
		return cloneCostModels(pp), nil
	}
	c.mu.Unlock()

	pp, err := c.inner.ProtocolParams(ctx)
	if err != nil {
		return pp, err
	}

	cached := cloneCostModels(pp)
	c.mu.Lock()
	c.cachedParams = &cached
	c.paramsCacheAt = time.Now()
	c.mu.Unlock()

	return pp, nil
}

func cloneCostModels(pp common.ProtocolParameters) common.ProtocolParameters {
	if pp.CostModels == nil {
		return pp
	}
	cm := make(map[string][]int64, len(pp.CostModels))
	for k, v := range pp.CostModels {
		cm[k] = append([]int64(nil), v...)
	}
	pp.CostModels = cm
	return pp
}

func (c *CachedChainContext) GenesisParams(ctx context.Context) (common.GenesisParameters, error) {
	c.mu.Lock()
	if c.cachedGenesis != nil && time.Since(c.genesisCacheAt) < c.ttl {
		gp := *c.cachedGenesis
		c.mu.Unlock()
		return gp, nil
	}
	c.mu.Unlock()

	gp, err := c.inner.GenesisParams(ctx)
	if err != nil {
		return gp, err
	}

	c.mu.Lock()
	c.cachedGenesis = &gp
	c.genesisCacheAt = time.Now()
	c.mu.Unlock()

	return gp, nil
}

func (c *CachedChainContext) NetworkId() uint8 { return c.inner.NetworkId() }

func (c *CachedChainContext) CurrentEpoch(ctx context.Context) (uint64, error) {
	return c.inner.CurrentEpoch(ctx)
}

func (c *CachedChainContext) MaxTxFee(ctx context.Context) (uint64, error) {
	return c.inner.MaxTxFee(ctx)
}

func (c *CachedChainContext) Tip(ctx context.Context) (uint64, error) { return c.inner.Tip(ctx) }

func (c *CachedChainContext) Utxos(ctx context.Context, address common.Address) ([]common.Utxo, error) {
	return c.inner.Utxos(ctx, address)
}

func (c *CachedChainContext) SubmitTx(ctx context.Context, txCbor []byte) (common.Blake2b256, error) {
	return c.inner.SubmitTx(ctx, txCbor)
}

func (c *CachedChainContext) EvaluateTx(ctx context.Context, txCbor []byte, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	return c.inner.EvaluateTx(ctx, txCbor, resolved)
}

func (c *CachedChainContext) UtxoByRef(ctx context.Context, txHash common.Blake2b256, index uint32) (*common.Utxo, error) {
	return c.inner.UtxoByRef(ctx, txHash, index)
}

func (c *CachedChainContext) ScriptCbor(ctx context.Context, scriptHash common.Blake2b224) ([]byte, error) {
	return c.inner.ScriptCbor(ctx, scriptHash)
}

var _ backend.ChainContext = (*CachedChainContext)(nil)
