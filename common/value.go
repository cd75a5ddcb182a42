package common

import "math/big"

// Value is an ADA (lovelace) amount plus an optional bag of native
// assets, the algebra component B operates over: Add, Sub, comparisons
// and zero-elision all live here so the balancer never touches
// *MultiAsset internals directly.
type Value struct {
	Coin   uint64
	Assets *MultiAsset[*big.Int]
}

// NewValue builds a Value with both a coin amount and assets.
func NewValue(coin uint64, assets *MultiAsset[*big.Int]) Value {
	return Value{Coin: coin, Assets: assets}
}

// NewCoinValue builds a lovelace-only Value.
func NewCoinValue(coin uint64) Value {
	return Value{Coin: coin}
}

// Add returns v+other, erroring on uint64 coin overflow (§7
// ArithmeticOverflow).
func (v Value) Add(other Value) (Value, error) {
	sum := v.Coin + other.Coin
	if sum < v.Coin {
		return Value{}, NewArithmeticOverflowError("Value.Add: coin overflow (%d + %d)", v.Coin, other.Coin)
	}
	result := Value{Coin: sum}
	switch {
	case v.Assets != nil && other.Assets != nil:
		result.Assets = CloneBigIntAssets(v.Assets)
		AddBigIntAssets(result.Assets, other.Assets)
	case v.Assets != nil:
		result.Assets = CloneBigIntAssets(v.Assets)
	case other.Assets != nil:
		result.Assets = CloneBigIntAssets(other.Assets)
	}
	return result, nil
}

// Sub returns v-other, erroring if the coin or any asset quantity would
// go negative.
func (v Value) Sub(other Value) (Value, error) {
	if other.Coin > v.Coin {
		return Value{}, NewArithmeticOverflowError("Value.Sub: coin underflow (%d - %d)", v.Coin, other.Coin)
	}
	result := Value{Coin: v.Coin - other.Coin}
	if v.Assets != nil {
		result.Assets = CloneBigIntAssets(v.Assets)
	}
	if other.Assets != nil {
		if result.Assets == nil {
			if !IsEmptyBigIntAssets(other.Assets) {
				return Value{}, NewArithmeticOverflowError("Value.Sub: asset underflow, no assets to subtract from")
			}
			return result, nil
		}
		for _, policy := range other.Assets.Policies() {
			for _, name := range other.Assets.Assets(policy) {
				want := other.Assets.Asset(policy, name)
				have := result.Assets.Asset(policy, name)
				if have == nil {
					have = big.NewInt(0)
				}
				if have.Cmp(want) < 0 {
					return Value{}, NewArithmeticOverflowError("Value.Sub: asset underflow for %s", AssetId{PolicyId: policy, AssetName: name})
				}
			}
		}
		neg := negateAssets(other.Assets)
		AddBigIntAssets(result.Assets, neg)
	}
	return result, nil
}

func negateAssets(m *MultiAsset[*big.Int]) *MultiAsset[*big.Int] {
	out := CloneBigIntAssets(m)
	for _, policy := range out.Policies() {
		for _, name := range out.Assets(policy) {
			v := out.Asset(policy, name)
			out.Set(policy, name, new(big.Int).Neg(v))
		}
	}
	return out
}

// IsZero reports whether v has no lovelace and no non-zero asset
// quantities.
func (v Value) IsZero() bool {
	return v.Coin == 0 && IsEmptyBigIntAssets(v.Assets)
}

// HasAssets reports whether v carries any non-zero native asset.
func (v Value) HasAssets() bool {
	return v.Assets != nil && !IsEmptyBigIntAssets(v.Assets)
}

// GreaterOrEqual reports whether v has at least as much coin and at
// least as much of every asset that other holds (extra assets in v are
// fine).
func (v Value) GreaterOrEqual(other Value) bool {
	if v.Coin < other.Coin {
		return false
	}
	if other.Assets == nil {
		return true
	}
	for _, policy := range other.Assets.Policies() {
		for _, name := range other.Assets.Assets(policy) {
			want := other.Assets.Asset(policy, name)
			if want == nil || want.Sign() <= 0 {
				continue
			}
			have := v.Assets.Asset(policy, name)
			if have == nil || have.Cmp(want) < 0 {
				return false
			}
		}
	}
	return true
}

// IsPositive reports whether every component of v (coin and each asset
// quantity) is >= 0. Values built by this package are always
// coin-non-negative (uint64); the check here exists for symmetry with
// IsNegative and for values assembled from signed deltas upstream.
func (v Value) IsPositive() bool {
	if v.Assets == nil {
		return true
	}
	for _, policy := range v.Assets.Policies() {
		for _, name := range v.Assets.Assets(policy) {
			if q := v.Assets.Asset(policy, name); q != nil && q.Sign() < 0 {
				return false
			}
		}
	}
	return true
}

// Positive returns the component-wise positive part of v: coin
// unchanged (it is never negative) and only the asset quantities that
// are greater than zero. Used together with Negative to split a signed
// delta (such as a Mint, which carries both minted and burned
// quantities) into the amount it creates and the amount it consumes.
func (v Value) Positive() Value {
	if v.Assets == nil {
		return Value{Coin: v.Coin}
	}
	out := NewMultiAsset[*big.Int](nil)
	for _, policy := range v.Assets.Policies() {
		for _, name := range v.Assets.Assets(policy) {
			q := v.Assets.Asset(policy, name)
			if q != nil && q.Sign() > 0 {
				out.Set(policy, name, new(big.Int).Set(q))
			}
		}
	}
	return Value{Coin: v.Coin, Assets: &out}
}

// Negative returns the absolute value of v's negative asset quantities;
// coin is always zero since Value's Coin field is unsigned and so never
// contributes a negative component.
func (v Value) Negative() Value {
	if v.Assets == nil {
		return Value{}
	}
	out := NewMultiAsset[*big.Int](nil)
	for _, policy := range v.Assets.Policies() {
		for _, name := range v.Assets.Assets(policy) {
			q := v.Assets.Asset(policy, name)
			if q != nil && q.Sign() < 0 {
				out.Set(policy, name, new(big.Int).Neg(q))
			}
		}
	}
	return Value{Assets: &out}
}

// Clone deep-copies v.
func (v Value) Clone() Value {
	out := Value{Coin: v.Coin}
	if v.Assets != nil {
		out.Assets = CloneBigIntAssets(v.Assets)
	}
	return out
}
