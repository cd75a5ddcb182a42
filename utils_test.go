package apollocore

import (
	"math/big"
	"testing"

	"github.com/cardano-forge/apollocore/common"
	"github.com/cardano-forge/apollocore/constants"
)

func testEnterpriseAddress(t *testing.T, keyByte byte) common.Address {
	t.Helper()
	var hash common.Blake2b224
	hash[0] = keyByte
	return common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(hash))
}

func testUtxo(t *testing.T, txHashByte byte, index uint32, lovelace uint64) common.Utxo {
	t.Helper()
	var txId common.Blake2b256
	txId[0] = txHashByte
	input := common.NewTransactionInput(txId, index)
	output := common.NewTransactionOutput(testEnterpriseAddress(t, 0x01), common.NewCoinValue(lovelace))
	return common.NewUtxo(input, output)
}

func testUtxoWithAsset(t *testing.T, txHashByte byte, index uint32, lovelace uint64) common.Utxo {
	t.Helper()
	var txId common.Blake2b256
	txId[0] = txHashByte
	input := common.NewTransactionInput(txId, index)

	var policy common.PolicyId
	policy[0] = 0xAA
	assets := common.NewMint()
	assets.Set(policy, common.AssetName("token"), big.NewInt(1))
	output := common.NewTransactionOutput(testEnterpriseAddress(t, 0x01), common.NewValue(lovelace, &assets))
	return common.NewUtxo(input, output)
}

func TestSortUtxosAdaOnlyDescending(t *testing.T) {
	utxos := []common.Utxo{
		testUtxo(t, 1, 0, 1_000_000),
		testUtxo(t, 2, 0, 5_000_000),
		testUtxo(t, 3, 0, 3_000_000),
	}

	sorted := SortUtxos(utxos)
	if len(sorted) != 3 {
		t.Fatalf("expected 3 utxos, got %d", len(sorted))
	}
	if sorted[0].Output.Amount.Coin != 5_000_000 ||
		sorted[1].Output.Amount.Coin != 3_000_000 ||
		sorted[2].Output.Amount.Coin != 1_000_000 {
		t.Fatalf("expected descending order, got %+v", sorted)
	}
}

func TestSortUtxosAdaOnlyBeforeAssets(t *testing.T) {
	utxos := []common.Utxo{
		testUtxoWithAsset(t, 1, 0, 2_000_000),
		testUtxo(t, 2, 0, 1_000_000),
	}

	sorted := SortUtxos(utxos)
	if sorted[0].Output.Amount.Assets != nil && sorted[0].Output.Amount.Assets.Len() > 0 {
		t.Fatalf("expected ADA-only utxo first, got asset-bearing utxo: %+v", sorted[0])
	}
}

func TestSortUtxosDoesNotMutateInput(t *testing.T) {
	utxos := []common.Utxo{
		testUtxo(t, 3, 0, 1_000_000),
		testUtxo(t, 1, 0, 5_000_000),
	}
	original := append([]common.Utxo(nil), utxos...)
	_ = SortUtxos(utxos)
	for i := range utxos {
		if utxos[i].Output.Amount.Coin != original[i].Output.Amount.Coin {
			t.Fatalf("SortUtxos mutated its input slice")
		}
	}
}

func TestSortInputsDeterministic(t *testing.T) {
	utxos := []common.Utxo{
		testUtxo(t, 3, 1, 1_000_000),
		testUtxo(t, 3, 0, 1_000_000),
		testUtxo(t, 1, 0, 1_000_000),
	}

	sorted := SortInputs(utxos)
	if len(sorted) != 3 {
		t.Fatalf("expected 3 utxos, got %d", len(sorted))
	}
	if sorted[0].Input.TransactionId[0] != 1 {
		t.Fatalf("expected tx hash 1 first, got %+v", sorted[0].Input)
	}
	if sorted[1].Input.Index != 0 || sorted[2].Input.Index != 1 {
		t.Fatalf("expected index 0 before index 1 within same tx hash, got %+v, %+v", sorted[1].Input, sorted[2].Input)
	}
}
