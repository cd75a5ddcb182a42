package common

import (
	"testing"

	"github.com/cardano-forge/apollocore/constants"
)

func TestGovActionTreasuryWithdrawalsRoundTrip(t *testing.T) {
	var acct1, acct2 Address
	var h1, h2 Blake2b224
	h1[0] = 1
	h2[0] = 2
	acct1 = NewRewardAddress(constants.Mainnet, NewKeyCredential(h1))
	acct2 = NewRewardAddress(constants.Mainnet, NewKeyCredential(h2))

	action := GovAction{
		Type:               GovActionTreasuryWithdrawals,
		WithdrawalAccounts: []Address{acct1, acct2},
		WithdrawalAmounts:  []uint64{1_000_000, 2_000_000},
	}

	encoded, err := action.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR: %v", err)
	}

	var decoded GovAction
	if err := decoded.UnmarshalCBOR(encoded); err != nil {
		t.Fatalf("UnmarshalCBOR: %v", err)
	}

	if decoded.Type != GovActionTreasuryWithdrawals {
		t.Fatalf("Type = %v, want GovActionTreasuryWithdrawals", decoded.Type)
	}
	if len(decoded.WithdrawalAccounts) != 2 {
		t.Fatalf("expected 2 withdrawal accounts, got %d", len(decoded.WithdrawalAccounts))
	}

	total := map[string]uint64{}
	for i, acct := range decoded.WithdrawalAccounts {
		total[acct.String()] = decoded.WithdrawalAmounts[i]
	}
	if total[acct1.String()] != 1_000_000 {
		t.Errorf("acct1 withdrawal = %d, want 1000000", total[acct1.String()])
	}
	if total[acct2.String()] != 2_000_000 {
		t.Errorf("acct2 withdrawal = %d, want 2000000", total[acct2.String()])
	}
}

func TestGovActionNoConfidenceRoundTrip(t *testing.T) {
	var txId Blake2b256
	txId[0] = 9
	prior := &GovActionId{TransactionId: txId, ActionIndex: 3}
	action := GovAction{Type: GovActionNoConfidence, PriorActionId: prior}

	encoded, err := action.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR: %v", err)
	}

	var decoded GovAction
	if err := decoded.UnmarshalCBOR(encoded); err != nil {
		t.Fatalf("UnmarshalCBOR: %v", err)
	}
	if decoded.Type != GovActionNoConfidence {
		t.Fatalf("Type = %v, want GovActionNoConfidence", decoded.Type)
	}
}

func TestGovActionInfoRoundTrip(t *testing.T) {
	action := GovAction{Type: GovActionInfo}
	encoded, err := action.MarshalCBOR()
	if err != nil {
		t.Fatalf("MarshalCBOR: %v", err)
	}
	var decoded GovAction
	if err := decoded.UnmarshalCBOR(encoded); err != nil {
		t.Fatalf("UnmarshalCBOR: %v", err)
	}
	if decoded.Type != GovActionInfo {
		t.Fatalf("Type = %v, want GovActionInfo", decoded.Type)
	}
}

func TestDrepRoundTrip(t *testing.T) {
	var h Blake2b224
	h[0] = 7
	for _, d := range []Drep{
		NewDrepKeyHash(h),
		NewDrepScriptHash(h),
		NewDrepAbstain(),
		NewDrepNoConfidence(),
	} {
		encoded, err := d.MarshalCBOR()
		if err != nil {
			t.Fatalf("MarshalCBOR(%v): %v", d, err)
		}
		var decoded Drep
		if err := decoded.UnmarshalCBOR(encoded); err != nil {
			t.Fatalf("UnmarshalCBOR(%v): %v", d, err)
		}
		if decoded.Type != d.Type {
			t.Errorf("Type = %v, want %v", decoded.Type, d.Type)
		}
		if (d.Type == DrepTypeKeyHash || d.Type == DrepTypeScriptHash) && decoded.Hash != d.Hash {
			t.Errorf("Hash = %x, want %x", decoded.Hash, d.Hash)
		}
	}
}
