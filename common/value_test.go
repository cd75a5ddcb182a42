package common

import (
	"math/big"
	"testing"
)

func TestValueAddCoinOnly(t *testing.T) {
	a := NewCoinValue(1_000_000)
	b := NewCoinValue(500_000)
	got, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got.Coin != 1_500_000 {
		t.Fatalf("Coin = %d, want 1500000", got.Coin)
	}
}

func TestValueAddOverflows(t *testing.T) {
	a := NewCoinValue(^uint64(0))
	b := NewCoinValue(1)
	if _, err := a.Add(b); err == nil {
		t.Fatal("expected Add to report a coin overflow")
	}
}

func TestValueSubUnderflows(t *testing.T) {
	a := NewCoinValue(100)
	b := NewCoinValue(200)
	if _, err := a.Sub(b); err == nil {
		t.Fatal("expected Sub to report a coin underflow")
	}
}

func TestValueAddSubRoundTrip(t *testing.T) {
	var policy PolicyId
	policy[0] = 0xAA
	assets := NewMint()
	assets.Set(policy, AssetName("token"), big.NewInt(5))
	a := NewValue(1_000_000, &assets)
	b := NewCoinValue(200_000)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	diff, err := sum.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff.Coin != a.Coin {
		t.Fatalf("round-trip Coin = %d, want %d", diff.Coin, a.Coin)
	}
	if diff.Assets.Asset(policy, AssetName("token")).Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("round-trip asset quantity = %v, want 5", diff.Assets.Asset(policy, AssetName("token")))
	}
}

func TestValueSubAssetUnderflowErrors(t *testing.T) {
	var policy PolicyId
	policy[0] = 0xBB
	have := NewMint()
	have.Set(policy, AssetName("token"), big.NewInt(1))
	want := NewMint()
	want.Set(policy, AssetName("token"), big.NewInt(2))

	a := NewValue(1_000_000, &have)
	b := NewValue(0, &want)
	if _, err := a.Sub(b); err == nil {
		t.Fatal("expected Sub to report an asset underflow")
	}
}

func TestValuePositiveNegativeSplitASignedMintDelta(t *testing.T) {
	var minted, burned PolicyId
	minted[0] = 0xCC
	burned[0] = 0xDD

	delta := NewMint()
	delta.Set(minted, AssetName("new"), big.NewInt(5))
	delta.Set(burned, AssetName("old"), big.NewInt(-3))
	v := Value{Assets: &delta}

	pos := v.Positive()
	if pos.Assets.Asset(minted, AssetName("new")).Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("Positive() minted quantity = %v, want 5", pos.Assets.Asset(minted, AssetName("new")))
	}
	if q := pos.Assets.Asset(burned, AssetName("old")); q != nil && q.Sign() != 0 {
		t.Fatalf("Positive() should not carry the burned entry, got %v", q)
	}

	neg := v.Negative()
	if neg.Assets.Asset(burned, AssetName("old")).Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("Negative() burned quantity = %v, want 3 (absolute value)", neg.Assets.Asset(burned, AssetName("old")))
	}
	if q := neg.Assets.Asset(minted, AssetName("new")); q != nil && q.Sign() != 0 {
		t.Fatalf("Negative() should not carry the minted entry, got %v", q)
	}
}

func TestValuePositiveNegativeOnNilAssets(t *testing.T) {
	v := NewCoinValue(1_000_000)
	if v.Positive().Coin != 1_000_000 {
		t.Fatalf("Positive().Coin = %d, want 1000000", v.Positive().Coin)
	}
	if v.Negative().HasAssets() {
		t.Fatal("Negative() of a coin-only Value should carry no assets")
	}
}

func TestValueIsZero(t *testing.T) {
	if !(NewCoinValue(0)).IsZero() {
		t.Fatal("expected zero-coin, no-assets Value to be IsZero")
	}
	if (NewCoinValue(1)).IsZero() {
		t.Fatal("expected nonzero-coin Value not to be IsZero")
	}
}
