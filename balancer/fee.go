package balancer

import (
	"math"

	"github.com/cardano-forge/apollocore/common"
)

// MinFee computes `txSizeFee + scriptExecutionFee` for a fully-built
// (placeholder-witnessed) transaction: `minFeeA*size + minFeeB`, plus
// `priceMem*totalMem + priceStep*totalSteps` for every redeemer's
// execution budget, rounded up to the nearest lovelace.
func MinFee(txBytes []byte, pp common.ProtocolParameters, redeemers map[common.RedeemerKey]common.RedeemerValue) uint64 {
	fee := pp.MinFeeA*uint64(len(txBytes)) + pp.MinFeeB

	if len(redeemers) > 0 {
		var totalMem, totalSteps uint64
		for _, rv := range redeemers {
			totalMem += rv.ExUnits.Memory
			totalSteps += rv.ExUnits.Steps
		}
		prices := pp.ExUnitPrices()
		exFee := math.Ceil(prices.Memory*float64(totalMem) + prices.Steps*float64(totalSteps))
		fee += uint64(exFee)
	}
	return fee
}

// PlaceholderWitnessCount returns how many fake 32-byte-vkey/64-byte-sig
// VkeyWitness entries a size-estimation dummy transaction should carry:
// one per unique signer discovered by UniqueSigners, plus any explicit
// padding the caller has requested for signers that can't be discovered
// structurally (e.g. a native-script multisig quorum).
func PlaceholderWitnessCount(signers []common.Blake2b224, extraPadding int) int {
	n := len(signers) + extraPadding
	if n < 1 {
		n = 1
	}
	return n
}

// PlaceholderWitnesses builds n dummy VkeyWitness entries (zeroed key
// and signature) sized correctly for a fee-estimation dummy transaction.
func PlaceholderWitnesses(n int) []common.VkeyWitness {
	out := make([]common.VkeyWitness, n)
	for i := range out {
		out[i] = common.VkeyWitness{Vkey: make([]byte, 32), Signature: make([]byte, 64)}
	}
	return out
}
