package apollocore

import (
	"context"
	"math/big"
	"testing"

	"github.com/cardano-forge/apollocore/backend/fixed"
	"github.com/cardano-forge/apollocore/common"
	"github.com/cardano-forge/apollocore/constants"
)

func TestBuilderCompleteSimplePayment(t *testing.T) {
	cc := fixed.NewEmptyFixedChainContext()

	var ownerHash common.Blake2b224
	ownerHash[0] = 0x11
	owner := common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(ownerHash))

	var recipientHash common.Blake2b224
	recipientHash[0] = 0x22
	recipient := common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(recipientHash))

	var txId common.Blake2b256
	txId[0] = 0x01
	input := common.NewTransactionInput(txId, 0)
	funding := common.NewTransactionOutput(owner, common.NewCoinValue(10_000_000))
	cc.AddUtxo(owner, common.NewUtxo(input, funding))

	builder := New(cc).
		SetWallet(NewExternalWallet(owner)).
		PayToAddress(recipient, common.NewCoinValue(2_000_000))

	tx, err := builder.Complete(context.Background())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if tx.Body.Fee == 0 {
		t.Fatal("expected a nonzero fee")
	}

	var paidRecipient bool
	var totalOut uint64
	for _, out := range tx.Body.Outputs {
		totalOut += out.Amount.Coin
		if out.Address.String() == recipient.String() && out.Amount.Coin == 2_000_000 {
			paidRecipient = true
		}
	}
	if !paidRecipient {
		t.Errorf("expected an output paying 2000000 to recipient, got %+v", tx.Body.Outputs)
	}
	if totalOut+tx.Body.Fee != 10_000_000 {
		t.Errorf("outputs+fee = %d, want exactly 10000000 (inputs consumed)", totalOut+tx.Body.Fee)
	}
	if tx.Body.Inputs.Len() != 1 {
		t.Errorf("expected 1 input selected, got %d", tx.Body.Inputs.Len())
	}
}

func TestBuilderCompleteFailsWithoutChangeAddress(t *testing.T) {
	cc := fixed.NewEmptyFixedChainContext()
	builder := New(cc)
	if _, err := builder.Complete(context.Background()); err == nil {
		t.Fatal("expected Complete to fail without a change address")
	}
}

// TestBuilderCompleteMintThenSendInSameTx covers the case where a
// transaction mints a native asset and immediately pays it out, so the
// asset never needs to come from coin selection's Available pool.
func TestBuilderCompleteMintThenSendInSameTx(t *testing.T) {
	cc := fixed.NewEmptyFixedChainContext()

	var ownerHash common.Blake2b224
	ownerHash[0] = 0x44
	owner := common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(ownerHash))

	var recipientHash common.Blake2b224
	recipientHash[0] = 0x55
	recipient := common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(recipientHash))

	var txId common.Blake2b256
	txId[0] = 0x03
	input := common.NewTransactionInput(txId, 0)
	funding := common.NewTransactionOutput(owner, common.NewCoinValue(10_000_000))
	cc.AddUtxo(owner, common.NewUtxo(input, funding))

	policyScript := common.NewNativeScriptPubkey(ownerHash)
	policy := policyScript.ScriptHash()
	assetName := common.AssetName("testtoken")

	mintedAssets := common.NewMint()
	mintedAssets.Set(policy, assetName, big.NewInt(1))
	mintedValue := common.NewValue(1_500_000, &mintedAssets)

	builder := New(cc).
		SetWallet(NewExternalWallet(owner)).
		Mint(policy, assetName, big.NewInt(1), policyScript).
		PayToAddress(recipient, mintedValue)

	tx, err := builder.Complete(context.Background())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	var paidAsset bool
	for _, out := range tx.Body.Outputs {
		if out.Address.String() != recipient.String() {
			continue
		}
		if out.Amount.Assets != nil && out.Amount.Assets.Asset(policy, assetName).Cmp(big.NewInt(1)) == 0 {
			paidAsset = true
		}
	}
	if !paidAsset {
		t.Errorf("expected recipient output carrying the minted asset, got %+v", tx.Body.Outputs)
	}
	if tx.Body.Mint == nil || tx.Body.Mint.Asset(policy, assetName).Cmp(big.NewInt(1)) != 0 {
		t.Errorf("expected body.Mint to record minting 1 of the test token")
	}
	if tx.Body.Inputs.Len() != 1 {
		t.Errorf("expected the single funding input to be selected, got %d", tx.Body.Inputs.Len())
	}
}

func TestBuilderSignAppendsWitness(t *testing.T) {
	cc := fixed.NewEmptyFixedChainContext()

	var ownerHash common.Blake2b224
	ownerHash[0] = 0x33
	owner := common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(ownerHash))

	var txId common.Blake2b256
	txId[0] = 0x02
	input := common.NewTransactionInput(txId, 0)
	funding := common.NewTransactionOutput(owner, common.NewCoinValue(5_000_000))
	cc.AddUtxo(owner, common.NewUtxo(input, funding))

	builder := New(cc).SetWallet(NewExternalWallet(owner))
	if _, err := builder.Complete(context.Background()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := builder.Sign(); err == nil {
		t.Fatal("expected Sign to fail: ExternalWallet cannot sign")
	}
}
