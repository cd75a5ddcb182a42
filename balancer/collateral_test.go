package balancer

import (
	"testing"

	"github.com/cardano-forge/apollocore/common"
	"github.com/cardano-forge/apollocore/constants"
)

func testAddr(keyByte byte) common.Address {
	var h common.Blake2b224
	h[0] = keyByte
	return common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(h))
}

func testUtxo(txByte byte, lovelace uint64) common.Utxo {
	var txId common.Blake2b256
	txId[0] = txByte
	input := common.NewTransactionInput(txId, 0)
	output := common.NewTransactionOutput(testAddr(0x01), common.NewCoinValue(lovelace))
	return common.NewUtxo(input, output)
}

func TestMinCollateral(t *testing.T) {
	pp := common.ProtocolParameters{CollateralPercent: 150}
	got := MinCollateral(1_000_000, pp)
	if got != 1_500_000 {
		t.Fatalf("MinCollateral = %d, want 1500000", got)
	}
}

func TestMinCollateralZeroPercent(t *testing.T) {
	pp := common.ProtocolParameters{CollateralPercent: 0}
	if got := MinCollateral(1_000_000, pp); got != 0 {
		t.Fatalf("MinCollateral = %d, want 0", got)
	}
}

func TestSelectCollateralCoversRequirement(t *testing.T) {
	candidates := []common.Utxo{
		testUtxo(1, 1_000_000),
		testUtxo(2, 2_000_000),
	}
	picked, err := SelectCollateral(candidates, 1_500_000, 3)
	if err != nil {
		t.Fatalf("SelectCollateral: %v", err)
	}
	var total uint64
	for _, u := range picked {
		total += u.Output.Amount.Coin
	}
	if total < 1_500_000 {
		t.Fatalf("picked collateral totals %d, want >= 1500000", total)
	}
}

func TestSelectCollateralInsufficientFunds(t *testing.T) {
	candidates := []common.Utxo{testUtxo(1, 100_000)}
	if _, err := SelectCollateral(candidates, 1_500_000, 3); err == nil {
		t.Fatal("expected SelectCollateral to fail when funds are insufficient")
	}
}

func TestCollateralReturnNilWhenExact(t *testing.T) {
	picked := []common.Utxo{testUtxo(1, 1_500_000)}
	out := CollateralReturn(picked, 1_500_000, testAddr(0x02))
	if out != nil {
		t.Fatalf("expected nil collateral return, got %+v", out)
	}
}

func TestCollateralReturnComputesChange(t *testing.T) {
	picked := []common.Utxo{testUtxo(1, 2_000_000)}
	out := CollateralReturn(picked, 1_500_000, testAddr(0x02))
	if out == nil {
		t.Fatal("expected a non-nil collateral return output")
	}
	if out.Amount.Coin != 500_000 {
		t.Fatalf("collateral return = %d, want 500000", out.Amount.Coin)
	}
}
