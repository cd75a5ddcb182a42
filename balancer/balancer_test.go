package balancer

import (
	"context"
	"math/big"
	"testing"

	"github.com/cardano-forge/apollocore/common"
	"github.com/cardano-forge/apollocore/constants"
)

func testParams() common.ProtocolParameters {
	return common.ProtocolParameters{
		MinFeeA:              44,
		MinFeeB:              155_381,
		CollateralPercent:    150,
		MaxCollateralInputs:  3,
	}
}

// fakeEvaluator returns a fixed ExUnits budget for every redeemer it
// is asked to evaluate, regardless of the draft transaction's contents.
type fakeEvaluator struct {
	exUnits common.ExUnits
}

func (f fakeEvaluator) Evaluate(ctx context.Context, tx common.Transaction, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error) {
	out := map[common.RedeemerKey]common.ExUnits{}
	for k := range tx.WitnessSet.Redeemers {
		out[k] = f.exUnits
	}
	return out, nil
}

func TestBalanceSelectsCollateralAndInvokesEvaluator(t *testing.T) {
	owner := testAddr(0x21)
	scriptAddr := common.NewEnterpriseAddress(constants.Mainnet, common.NewScriptCredential(common.Blake2b224{0x99}))

	var scriptTxId common.Blake2b256
	scriptTxId[0] = 0x10
	scriptInput := common.NewTransactionInput(scriptTxId, 0)
	scriptOutput := common.NewTransactionOutput(scriptAddr, common.NewCoinValue(3_000_000))
	scriptUtxo := common.NewUtxo(scriptInput, scriptOutput)

	available := []common.Utxo{
		testUtxo(1, 20_000_000),
		testUtxo(2, 20_000_000),
	}

	redeemerKey := common.RedeemerKey{Tag: common.RedeemerTagSpend, Index: 0}
	req := Request{
		Inputs:        []common.Utxo{scriptUtxo},
		Available:     available,
		Outputs:       []common.TransactionOutput{common.NewTransactionOutput(owner, common.NewCoinValue(1_000_000))},
		ChangeAddress: owner,
		Redeemers: map[common.RedeemerKey]common.RedeemerValue{
			redeemerKey: {Data: common.NewPlutusInt(0), ExUnits: common.ExUnits{Memory: 1, Steps: 1}},
		},
	}

	bal := New(testParams(), DepositAmounts{}).WithEvaluator(fakeEvaluator{exUnits: common.ExUnits{Memory: 500_000, Steps: 200_000_000}})
	result, err := bal.Balance(context.Background(), req)
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}

	if len(result.CollateralInputs) == 0 {
		t.Fatal("expected the balancer to auto-select collateral when redeemers are present")
	}
	var collateralTotal uint64
	for _, u := range result.CollateralInputs {
		collateralTotal += u.Output.Amount.Coin
	}
	minCollateral := MinCollateral(result.Fee, testParams())
	if collateralTotal < minCollateral {
		t.Fatalf("collateral total %d is below the required %d", collateralTotal, minCollateral)
	}
	if result.Body.Collateral == nil || result.Body.Collateral.Len() == 0 {
		t.Fatal("expected body.Collateral to be populated")
	}

	rv, ok := result.Redeemers[redeemerKey]
	if !ok {
		t.Fatal("expected the spend redeemer to survive into the result")
	}
	if rv.ExUnits.Memory != 500_000 || rv.ExUnits.Steps != 200_000_000 {
		t.Fatalf("ExUnits = %+v, want the evaluator's measured budget", rv.ExUnits)
	}
}

func TestBalanceNetsMintOutOfRequiredInputValue(t *testing.T) {
	owner := testAddr(0x31)
	var policy common.PolicyId
	policy[0] = 0x77
	assetName := common.AssetName("coin")

	mint := common.NewMint()
	mint.Set(policy, assetName, big.NewInt(1))

	mintedOut := common.NewMint()
	mintedOut.Set(policy, assetName, big.NewInt(1))
	payAmount := common.NewValue(1_000_000, &mintedOut)

	available := []common.Utxo{testUtxo(1, 10_000_000)}

	req := Request{
		Available:     available,
		Outputs:       []common.TransactionOutput{common.NewTransactionOutput(owner, payAmount)},
		ChangeAddress: owner,
		Mint:          &mint,
	}

	bal := New(testParams(), DepositAmounts{})
	result, err := bal.Balance(context.Background(), req)
	if err != nil {
		t.Fatalf("Balance: %v, want success since the minted asset should not be required from Available", err)
	}
	if result.Body.Mint == nil || result.Body.Mint.Asset(policy, assetName).Sign() != 1 {
		t.Fatal("expected body.Mint to record the minted asset")
	}
}
