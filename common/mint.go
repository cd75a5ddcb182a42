package common

import "math/big"

// Mint is the transaction body's `mint` field: a MultiAsset of signed
// quantities (positive to mint, negative to burn).
type Mint = MultiAsset[*big.Int]

// NewMint builds an empty Mint ready for Set calls.
func NewMint() Mint {
	return NewMultiAsset[*big.Int](nil)
}
