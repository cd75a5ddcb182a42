package balancer

import (
	"math/big"
	"sort"

	"github.com/cardano-forge/apollocore/common"
)

// GreedySelector is the default CoinSelector: it walks candidates
// largest-lovelace-first, greedily consuming whatever's left of the
// requested Value until nothing remains, using saturating subtraction so
// a UTxO carrying extra unrequested assets never trips an underflow.
type GreedySelector struct{}

func (GreedySelector) SelectCoins(available []common.Utxo, requested common.Value) ([]common.Utxo, common.Value, error) {
	sorted := append([]common.Utxo(nil), available...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Output.Amount.Coin > sorted[j].Output.Amount.Coin })

	remaining := requested.Clone()
	var selected []common.Utxo
	var accumulated common.Value

	for _, u := range sorted {
		if remaining.Coin == 0 && !remaining.HasAssets() {
			break
		}
		selected = append(selected, u)
		var err error
		accumulated, err = accumulated.Add(u.Output.Amount)
		if err != nil {
			return nil, common.Value{}, err
		}
		remaining = saturatingSub(remaining, u.Output.Amount)
	}

	if remaining.Coin > 0 || remaining.HasAssets() {
		return nil, common.Value{}, common.NewBalanceInsufficientError(
			"GreedySelector: insufficient UTxOs to cover requested value (%d lovelace short plus any asset shortfall)", remaining.Coin)
	}
	change, err := accumulated.Sub(requested)
	if err != nil {
		return nil, common.Value{}, err
	}
	return selected, change, nil
}

// saturatingSub returns max(0, v-amt) component-wise: it never errors,
// clamping any component that would go negative to zero, since
// "remaining need" only ever shrinks.
func saturatingSub(v common.Value, amt common.Value) common.Value {
	out := common.Value{}
	if amt.Coin >= v.Coin {
		out.Coin = 0
	} else {
		out.Coin = v.Coin - amt.Coin
	}
	if v.Assets == nil {
		return out
	}
	out.Assets = common.CloneBigIntAssets(v.Assets)
	if amt.Assets == nil {
		return out
	}
	for _, policy := range amt.Assets.Policies() {
		for _, name := range amt.Assets.Assets(policy) {
			have := out.Assets.Asset(policy, name)
			take := amt.Assets.Asset(policy, name)
			if have == nil || take == nil {
				continue
			}
			if take.Cmp(have) >= 0 {
				out.Assets.Set(policy, name, big.NewInt(0))
			} else {
				out.Assets.Set(policy, name, new(big.Int).Sub(have, take))
			}
		}
	}
	return out
}
