package apollocore

import (
	"testing"

	"github.com/cardano-forge/apollocore/common"
	"github.com/cardano-forge/apollocore/constants"
)

func TestExternalWalletPubKeyHash(t *testing.T) {
	var paymentHash common.Blake2b224
	paymentHash[0] = 0x42
	addr := common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(paymentHash))

	w := NewExternalWallet(addr)
	if w.Address().String() != addr.String() {
		t.Fatalf("Address() = %v, want %v", w.Address(), addr)
	}
	if w.PubKeyHash() != paymentHash {
		t.Fatalf("PubKeyHash() = %x, want %x", w.PubKeyHash(), paymentHash)
	}
	if w.StakePubKeyHash() != (common.Blake2b224{}) {
		t.Fatalf("StakePubKeyHash() = %x, want zero (no stake credential)", w.StakePubKeyHash())
	}
}

func TestExternalWalletStakePubKeyHash(t *testing.T) {
	var paymentHash, stakeHash common.Blake2b224
	paymentHash[0] = 0x01
	stakeHash[0] = 0x02
	addr := common.NewBaseAddress(constants.Mainnet, common.NewKeyCredential(paymentHash), common.NewKeyCredential(stakeHash))

	w := NewExternalWallet(addr)
	if w.StakePubKeyHash() != stakeHash {
		t.Fatalf("StakePubKeyHash() = %x, want %x", w.StakePubKeyHash(), stakeHash)
	}
}

func TestExternalWalletCannotSign(t *testing.T) {
	addr := common.NewEnterpriseAddress(constants.Mainnet, common.NewKeyCredential(common.Blake2b224{}))
	w := NewExternalWallet(addr)
	if _, err := w.SignTxBody(common.Blake2b256{}); err == nil {
		t.Fatal("expected ExternalWallet.SignTxBody to return an error")
	}
}
