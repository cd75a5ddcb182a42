package common

import (
	"math/big"

	"github.com/cardano-forge/apollocore/cbor"
)

// BigInt wraps math/big.Int with the CBOR encoding Cardano's ledger CDDL
// uses: values that fit in a (u)int64 are emitted as a plain CBOR integer,
// everything else as a tagged bignum (tag 2 for non-negative, tag 3 for
// negative), per RFC 8949 §3.4.3.
type BigInt struct {
	*big.Int
}

// NewBigInt wraps an *big.Int. A nil argument wraps a zero value.
func NewBigInt(v *big.Int) BigInt {
	if v == nil {
		return BigInt{big.NewInt(0)}
	}
	return BigInt{v}
}

// NewBigIntFromInt64 builds a BigInt from an int64.
func NewBigIntFromInt64(v int64) BigInt {
	return BigInt{big.NewInt(v)}
}

const (
	bigIntMinI64 = -9223372036854775808
	bigIntMaxU64 = 18446744073709551615
)

func (b BigInt) MarshalCBOR() ([]byte, error) {
	if b.Int == nil {
		return cbor.Encode(0)
	}
	if b.IsInt64() && b.Int64() >= 0 {
		return cbor.Encode(uint64(b.Int64()))
	}
	if b.IsInt64() {
		return cbor.Encode(b.Int64())
	}
	if b.IsUint64() {
		return cbor.Encode(b.Uint64())
	}
	if b.Sign() >= 0 {
		return cbor.Encode(cbor.Tag{Number: 2, Content: b.Bytes()})
	}
	mag := new(big.Int).Neg(b.Int)
	mag.Sub(mag, big.NewInt(1))
	return cbor.Encode(cbor.Tag{Number: 3, Content: mag.Bytes()})
}

func (b *BigInt) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if _, err := cbor.Decode(data, &tag); err == nil && (tag.Number == 2 || tag.Number == 3) {
		raw, ok := tag.Content.([]byte)
		if !ok {
			return WrapDecoding("BigInt: tag content not bytes", nil)
		}
		mag := new(big.Int).SetBytes(raw)
		if tag.Number == 3 {
			mag.Add(mag, big.NewInt(1))
			mag.Neg(mag)
		}
		b.Int = mag
		return nil
	}
	var i big.Int
	if _, err := cbor.Decode(data, &i); err != nil {
		return WrapDecoding("BigInt", err)
	}
	b.Int = &i
	return nil
}
