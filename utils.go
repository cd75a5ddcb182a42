package apollocore

import (
	"encoding/hex"
	"sort"

	"github.com/cardano-forge/apollocore/common"
)

// SortUtxos orders UTxOs with ADA-only entries first (by descending
// lovelace), then multi-asset entries, matching the coin selector's
// preferred consumption order.
func SortUtxos(utxos []common.Utxo) []common.Utxo {
	res := make([]common.Utxo, len(utxos))
	copy(res, utxos)
	sort.SliceStable(res, func(i, j int) bool {
		iHasAssets := res[i].Output.Amount.Assets != nil && res[i].Output.Amount.Assets.Len() > 0
		jHasAssets := res[j].Output.Amount.Assets != nil && res[j].Output.Amount.Assets.Len() > 0
		if iHasAssets != jHasAssets {
			return !iHasAssets
		}
		return res[i].Output.Amount.Coin > res[j].Output.Amount.Coin
	})
	return res
}

// SortInputs orders UTxOs by transaction id then index, the canonical
// order transaction body inputs must appear in.
func SortInputs(inputs []common.Utxo) []common.Utxo {
	sorted := make([]common.Utxo, len(inputs))
	copy(sorted, inputs)
	sort.Slice(sorted, func(i, j int) bool {
		iId := hex.EncodeToString(sorted[i].Input.TransactionId.Bytes())
		jId := hex.EncodeToString(sorted[j].Input.TransactionId.Bytes())
		if iId != jId {
			return iId < jId
		}
		return sorted[i].Input.Index < sorted[j].Input.Index
	})
	return sorted
}
