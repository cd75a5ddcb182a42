package common

import (
	"math/big"
	"testing"
)

func TestAssetIdMapOrdersLovelaceFirstThenByAssetIdBytes(t *testing.T) {
	var policyA, policyB PolicyId
	policyA[0] = 0x02
	policyB[0] = 0x01

	assets := NewMint()
	assets.Set(policyA, AssetName("zzz"), big.NewInt(1))
	assets.Set(policyB, AssetName("aaa"), big.NewInt(2))
	v := NewValue(5_000_000, &assets)

	m := NewAssetIdMapFromValue(v)
	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries() len = %d, want 3", len(entries))
	}
	if assetIdKey(entries[0].Id) != assetIdKey(LovelaceAssetId) {
		t.Fatalf("entries[0].Id = %+v, want LovelaceAssetId", entries[0].Id)
	}
	if entries[1].Id.PolicyId != policyB {
		t.Fatalf("entries[1] should be policyB (sorts before policyA), got %+v", entries[1].Id)
	}
	if entries[2].Id.PolicyId != policyA {
		t.Fatalf("entries[2] should be policyA, got %+v", entries[2].Id)
	}
}

func TestAssetIdMapDropsZeroQuantities(t *testing.T) {
	var policy PolicyId
	policy[0] = 0x09
	assets := NewMint()
	assets.Set(policy, AssetName("x"), big.NewInt(0))
	v := NewValue(0, &assets)

	m := NewAssetIdMapFromValue(v)
	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (zero coin and zero-quantity asset should be dropped)", m.Len())
	}
}

func TestDiffAssetIdMapsReportsOnlyChangedEntries(t *testing.T) {
	var policy PolicyId
	policy[0] = 0x03

	beforeAssets := NewMint()
	beforeAssets.Set(policy, AssetName("token"), big.NewInt(10))
	before := NewAssetIdMapFromValue(NewValue(5_000_000, &beforeAssets))

	afterAssets := NewMint()
	afterAssets.Set(policy, AssetName("token"), big.NewInt(7))
	after := NewAssetIdMapFromValue(NewValue(5_000_000, &afterAssets))

	diff := DiffAssetIdMaps(before, after)
	if len(diff) != 1 {
		t.Fatalf("DiffAssetIdMaps len = %d, want 1 (only the token quantity changed)", len(diff))
	}
	if diff[0].Id.PolicyId != policy {
		t.Fatalf("diff[0].Id.PolicyId = %x, want %x", diff[0].Id.PolicyId, policy)
	}
	if diff[0].Quantity.Cmp(big.NewInt(-3)) != 0 {
		t.Fatalf("diff[0].Quantity = %v, want -3 (7-10)", diff[0].Quantity)
	}
}

func TestDiffAssetIdMapsTreatsAbsentAssetAsZero(t *testing.T) {
	var policy PolicyId
	policy[0] = 0x04

	before := NewAssetIdMapFromValue(NewCoinValue(1_000_000))

	afterAssets := NewMint()
	afterAssets.Set(policy, AssetName("new"), big.NewInt(4))
	after := NewAssetIdMapFromValue(NewValue(1_000_000, &afterAssets))

	diff := DiffAssetIdMaps(before, after)
	if len(diff) != 1 {
		t.Fatalf("DiffAssetIdMaps len = %d, want 1", len(diff))
	}
	if diff[0].Quantity.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("diff[0].Quantity = %v, want 4", diff[0].Quantity)
	}
}
