package common

import (
	"encoding/hex"
	"math/big"
	"sort"

	"github.com/cardano-forge/apollocore/cbor"
)

// PolicyId is a minting-policy hash: a 28-byte Blake2b-224 digest.
type PolicyId = Blake2b224

// AssetName is a CDDL `asset_name = bytes .size (0..32)`.
type AssetName []byte

// NewAssetName validates that b is within the CDDL's 0..32 byte bound
// for asset names.
func NewAssetName(b []byte) (AssetName, error) {
	if len(b) > 32 {
		return nil, NewInvalidBoundedBytesSizeError("asset name exceeds 32 bytes (got %d)", len(b))
	}
	return AssetName(b), nil
}

// AssetId pairs a policy with an asset name, the key identity used
// throughout the value algebra and coin selection.
type AssetId struct {
	PolicyId  PolicyId
	AssetName AssetName
}

func (id AssetId) String() string {
	return id.PolicyId.String() + "." + hex.EncodeToString(id.AssetName)
}

// LovelaceAssetId is the sentinel AssetId standing in for plain ADA
// inside an AssetIdMap. It is never a real policy/asset-name pair; it
// is ordered first regardless of its byte value.
var LovelaceAssetId = AssetId{}

// AssetIdEntry is one (AssetId, quantity) pair of an AssetIdMap.
type AssetIdEntry struct {
	Id       AssetId
	Quantity *big.Int
}

// AssetIdMap is a flattened, canonically-ordered view of a Value: every
// non-zero component (lovelace first, then every native asset sorted by
// AssetId bytes) as a single ordered sequence. It is the shape value
// diffing walks, since MultiAsset's nested policy/name maps don't give a
// single total order to compare two values entry-by-entry.
type AssetIdMap struct {
	entries []AssetIdEntry
}

// NewAssetIdMapFromValue flattens v into an AssetIdMap, dropping any
// zero-quantity asset entries.
func NewAssetIdMapFromValue(v Value) AssetIdMap {
	var m AssetIdMap
	if v.Coin != 0 {
		m.entries = append(m.entries, AssetIdEntry{Id: LovelaceAssetId, Quantity: new(big.Int).SetUint64(v.Coin)})
	}
	if v.Assets != nil {
		for _, policy := range v.Assets.Policies() {
			for _, name := range v.Assets.Assets(policy) {
				q := v.Assets.Asset(policy, name)
				if q == nil || q.Sign() == 0 {
					continue
				}
				m.entries = append(m.entries, AssetIdEntry{Id: AssetId{PolicyId: policy, AssetName: name}, Quantity: new(big.Int).Set(q)})
			}
		}
	}
	return m
}

// Len returns the number of non-zero entries.
func (m AssetIdMap) Len() int { return len(m.entries) }

// Entries returns the map's entries in canonical order (lovelace first,
// then native assets sorted by AssetId bytes).
func (m AssetIdMap) Entries() []AssetIdEntry {
	return append([]AssetIdEntry(nil), m.entries...)
}

// assetIdKey returns a comparable map-key form of id: AssetId itself
// isn't comparable (AssetName is a slice), so callers that need a Go
// map keyed by asset identity use this string form instead.
func assetIdKey(id AssetId) string {
	return string(id.PolicyId[:]) + "\x00" + string(id.AssetName)
}

// Quantity returns the quantity recorded for id, or nil if absent.
func (m AssetIdMap) Quantity(id AssetId) *big.Int {
	key := assetIdKey(id)
	for _, e := range m.entries {
		if assetIdKey(e.Id) == key {
			return e.Quantity
		}
	}
	return nil
}

// DiffAssetIdMaps returns every AssetId where b's quantity differs from
// a's, each entry's Quantity holding (b - a) for that asset. AssetIds
// present in only one map are treated as zero in the other.
func DiffAssetIdMaps(a, b AssetIdMap) []AssetIdEntry {
	seen := make(map[string]struct{}, a.Len()+b.Len())
	var order []AssetId
	record := func(id AssetId) {
		key := assetIdKey(id)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		order = append(order, id)
	}
	for _, e := range a.entries {
		record(e.Id)
	}
	for _, e := range b.entries {
		record(e.Id)
	}
	lovelaceKey := assetIdKey(LovelaceAssetId)
	sort.Slice(order, func(i, j int) bool {
		ki, kj := assetIdKey(order[i]), assetIdKey(order[j])
		if ki == lovelaceKey {
			return kj != lovelaceKey
		}
		if kj == lovelaceKey {
			return false
		}
		return order[i].String() < order[j].String()
	})

	var out []AssetIdEntry
	for _, id := range order {
		av := a.Quantity(id)
		bv := b.Quantity(id)
		if av == nil {
			av = big.NewInt(0)
		}
		if bv == nil {
			bv = big.NewInt(0)
		}
		delta := new(big.Int).Sub(bv, av)
		if delta.Sign() == 0 {
			continue
		}
		out = append(out, AssetIdEntry{Id: id, Quantity: delta})
	}
	return out
}

// MultiAsset is a policy-sorted, asset-name-sorted map of quantities, the
// CDDL shape `{* policy_id => {* asset_name => T}}`. T is *big.Int for
// quantities that may be negative (mint deltas) and non-negative for
// output/value amounts; callers choose by instantiation.
type MultiAsset[T any] struct {
	data map[Blake2b224]map[cbor.ByteString]T
}

// NewMultiAsset wraps a nested policy->name->quantity map. The map is
// taken by reference, not copied; callers that need isolation should
// clone first.
func NewMultiAsset[T any](data map[Blake2b224]map[cbor.ByteString]T) MultiAsset[T] {
	if data == nil {
		data = map[Blake2b224]map[cbor.ByteString]T{}
	}
	return MultiAsset[T]{data: data}
}

// Policies returns the set of policy IDs present, sorted for determinism.
func (m *MultiAsset[T]) Policies() []PolicyId {
	if m == nil {
		return nil
	}
	out := make([]PolicyId, 0, len(m.data))
	for p := range m.data {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i][:]) < string(out[j][:])
	})
	return out
}

// Assets returns the asset names minted/held under policy, sorted.
func (m *MultiAsset[T]) Assets(policy PolicyId) []AssetName {
	if m == nil {
		return nil
	}
	names, ok := m.data[policy]
	if !ok {
		return nil
	}
	out := make([]AssetName, 0, len(names))
	for n := range names {
		out = append(out, AssetName(n.Bytes()))
	}
	sort.Slice(out, func(i, j int) bool { return string(out[i]) < string(out[j]) })
	return out
}

// Asset returns the quantity for policy/name, or the zero value of T if
// absent.
func (m *MultiAsset[T]) Asset(policy PolicyId, name AssetName) T {
	var zero T
	if m == nil {
		return zero
	}
	names, ok := m.data[policy]
	if !ok {
		return zero
	}
	v, ok := names[cbor.NewByteString(name)]
	if !ok {
		return zero
	}
	return v
}

// Set stores a quantity for policy/name, creating the inner map if
// needed.
func (m *MultiAsset[T]) Set(policy PolicyId, name AssetName, v T) {
	if m.data == nil {
		m.data = map[Blake2b224]map[cbor.ByteString]T{}
	}
	names, ok := m.data[policy]
	if !ok {
		names = map[cbor.ByteString]T{}
		m.data[policy] = names
	}
	names[cbor.NewByteString(name)] = v
}

// Len returns the total number of (policy, asset name) entries.
func (m *MultiAsset[T]) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, names := range m.data {
		n += len(names)
	}
	return n
}

func (m MultiAsset[T]) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(m.data)
}

func (m *MultiAsset[T]) UnmarshalCBOR(data []byte) error {
	var raw map[Blake2b224]map[cbor.ByteString]T
	if _, err := cbor.Decode(data, &raw); err != nil {
		return WrapDecoding("MultiAsset", err)
	}
	m.data = raw
	return nil
}

// AddBigIntAssets adds other's quantities into m in place (both
// MultiAsset[*big.Int]); entries that sum to zero are pruned so
// IsEmpty/equality behave as the ledger expects.
func AddBigIntAssets(m *MultiAsset[*big.Int], other *MultiAsset[*big.Int]) {
	if other == nil {
		return
	}
	for _, policy := range other.Policies() {
		for _, name := range other.Assets(policy) {
			delta := other.Asset(policy, name)
			if delta == nil {
				continue
			}
			cur := m.Asset(policy, name)
			var sum *big.Int
			if cur == nil {
				sum = new(big.Int).Set(delta)
			} else {
				sum = new(big.Int).Add(cur, delta)
			}
			if sum.Sign() == 0 {
				if names, ok := m.data[policy]; ok {
					delete(names, cbor.NewByteString(name))
					if len(names) == 0 {
						delete(m.data, policy)
					}
				}
				continue
			}
			m.Set(policy, name, sum)
		}
	}
}

// CloneBigIntAssets deep-copies a MultiAsset[*big.Int].
func CloneBigIntAssets(m *MultiAsset[*big.Int]) *MultiAsset[*big.Int] {
	if m == nil {
		return nil
	}
	out := map[Blake2b224]map[cbor.ByteString]*big.Int{}
	for _, policy := range m.Policies() {
		names := map[cbor.ByteString]*big.Int{}
		for _, name := range m.Assets(policy) {
			names[cbor.NewByteString(name)] = new(big.Int).Set(m.Asset(policy, name))
		}
		out[policy] = names
	}
	result := NewMultiAsset(out)
	return &result
}

// IsEmptyBigIntAssets reports whether m is nil or holds only zero
// quantities.
func IsEmptyBigIntAssets(m *MultiAsset[*big.Int]) bool {
	if m == nil {
		return true
	}
	for _, policy := range m.Policies() {
		for _, name := range m.Assets(policy) {
			if v := m.Asset(policy, name); v != nil && v.Sign() != 0 {
				return false
			}
		}
	}
	return true
}
