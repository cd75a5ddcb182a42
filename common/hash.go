// Package common is the entity model (components A, B, D and E of the
// transaction-construction core): hashes, addresses, the value algebra,
// the Cardano entity types (inputs, outputs, certificates, scripts,
// witnesses) and the canonical errors every operation in this module
// returns.
package common

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/cardano-forge/apollocore/cbor"
)

// Blake2b224 is a 28-byte Blake2b-224 digest: policy IDs, payment/stake
// key hashes, script hashes and pool IDs are all this shape.
type Blake2b224 [28]byte

// Blake2b256 is a 32-byte Blake2b-256 digest: transaction hashes, datum
// hashes, script data hashes, auxiliary data hashes, genesis hashes.
type Blake2b256 [32]byte

// NewBlake2b224 validates and wraps a 28-byte slice.
func NewBlake2b224(b []byte) (Blake2b224, error) {
	var h Blake2b224
	if len(b) != len(h) {
		return h, NewInvalidArgumentError("Blake2b224", "expected 28 bytes, got %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// NewBlake2b256 validates and wraps a 32-byte slice.
func NewBlake2b256(b []byte) (Blake2b256, error) {
	var h Blake2b256
	if len(b) != len(h) {
		return h, NewInvalidArgumentError("Blake2b256", "expected 32 bytes, got %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Blake2b224Hash hashes data down to a 28-byte (224-bit) digest.
func Blake2b224Hash(data []byte) Blake2b224 {
	h, err := blake2b.New(28, nil)
	if err != nil {
		panic(err)
	}
	h.Write(data)
	var out Blake2b224
	copy(out[:], h.Sum(nil))
	return out
}

// Blake2b256Hash hashes data down to a 32-byte (256-bit) digest.
func Blake2b256Hash(data []byte) Blake2b256 {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(data)
	var out Blake2b256
	copy(out[:], h.Sum(nil))
	return out
}

func (h Blake2b224) Bytes() []byte { return append([]byte(nil), h[:]...) }
func (h Blake2b256) Bytes() []byte { return append([]byte(nil), h[:]...) }

func (h Blake2b224) String() string { return hex.EncodeToString(h[:]) }
func (h Blake2b256) String() string { return hex.EncodeToString(h[:]) }

func (h Blake2b224) IsZero() bool { return h == Blake2b224{} }
func (h Blake2b256) IsZero() bool { return h == Blake2b256{} }

func (h Blake2b224) MarshalCBOR() ([]byte, error) { return cbor.Encode(h[:]) }
func (h Blake2b256) MarshalCBOR() ([]byte, error) { return cbor.Encode(h[:]) }

func (h *Blake2b224) UnmarshalCBOR(data []byte) error {
	var b []byte
	if _, err := cbor.Decode(data, &b); err != nil {
		return WrapDecoding("Blake2b224", err)
	}
	v, err := NewBlake2b224(b)
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func (h *Blake2b256) UnmarshalCBOR(data []byte) error {
	var b []byte
	if _, err := cbor.Decode(data, &b); err != nil {
		return WrapDecoding("Blake2b256", err)
	}
	v, err := NewBlake2b256(b)
	if err != nil {
		return err
	}
	*h = v
	return nil
}
