package balancer

import "github.com/cardano-forge/apollocore/common"

// MinCollateral returns the lovelace amount a transaction's collateral
// inputs must cover: `ceil(fee * collateralPercent / 100)`.
func MinCollateral(fee uint64, pp common.ProtocolParameters) uint64 {
	if pp.CollateralPercent == 0 {
		return 0
	}
	return (fee*pp.CollateralPercent + 99) / 100
}

// SelectCollateral walks candidates in the order given, taking pure-ADA
// (no native assets), non script-locked UTxOs until their combined
// lovelace covers minCollateral or maxInputs UTxOs have been taken (0
// means no limit). It returns an error if the UTxOs taken do not cover
// the requirement; it does not try other combinations of candidates.
func SelectCollateral(candidates []common.Utxo, minCollateral uint64, maxInputs uint64) ([]common.Utxo, error) {
	var picked []common.Utxo
	var total uint64
	for _, u := range candidates {
		if u.Output.Amount.HasAssets() {
			continue
		}
		if cred := u.Output.Address.PaymentCredential(); cred == nil || cred.IsScript() {
			continue
		}
		picked = append(picked, u)
		total += u.Output.Amount.Coin
		if total >= minCollateral {
			break
		}
		if maxInputs > 0 && uint64(len(picked)) >= maxInputs {
			break
		}
	}
	if total < minCollateral {
		return nil, common.NewBalanceInsufficientError("SelectCollateral: could not cover %d lovelace collateral from %d pure-ADA UTxOs", minCollateral, len(candidates))
	}
	return picked, nil
}

// CollateralReturn computes the change output returning (totalCollateral
// - requiredCollateral) back to changeAddr, or nil if there is nothing
// to return.
func CollateralReturn(picked []common.Utxo, requiredCollateral uint64, changeAddr common.Address) *common.TransactionOutput {
	var total uint64
	for _, u := range picked {
		total += u.Output.Amount.Coin
	}
	if total <= requiredCollateral {
		return nil
	}
	out := common.NewTransactionOutput(changeAddr, common.NewCoinValue(total-requiredCollateral))
	return &out
}
