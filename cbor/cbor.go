// Package cbor is the canonical CBOR codec kernel (component C of the
// transaction-construction core). It wraps github.com/fxamacker/cbor/v2
// with the deterministic-encoding options Cardano's ledger rules require
// (length-first canonical map-key order, shortest-form integers, definite-length
// strings on output, big-num tags 2/3 for values outside the int64 range)
// and adds the handful of Cardano-specific conventions (tag 258 "set",
// byte-string map keys, struct-as-array records) that the entity model in
// package common is built on.
package cbor

import (
	"errors"
	"fmt"

	fxcbor "github.com/fxamacker/cbor/v2"
)

// RawMessage holds an undecoded chunk of CBOR, mirroring encoding/json's
// RawMessage. Entities use it to defer decoding of a field whose shape
// depends on a sibling discriminator.
type RawMessage = fxcbor.RawMessage

// Tag is a CBOR major-type-6 tagged value.
type Tag = fxcbor.Tag

// Marshaler and Unmarshaler let entity types hand-roll their own CBOR
// shape (most do, since Cardano's array-of-fields records don't map onto
// Go struct tags cleanly once optional trailing fields are involved).
type Marshaler = fxcbor.Marshaler
type Unmarshaler = fxcbor.Unmarshaler

var (
	encMode fxcbor.EncMode
	decMode fxcbor.DecMode
)

func init() {
	encOpts := fxcbor.CanonicalEncOptions()
	encOpts.BigIntConvert = fxcbor.BigIntConvertShortest
	encOpts.IndefLength = fxcbor.IndefLengthForbidden
	encOpts.Time = fxcbor.TimeUnix
	var err error
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor: building canonical encode mode: %v", err))
	}

	decOpts := fxcbor.DecOptions{
		DupMapKey:   fxcbor.DupMapKeyEnforcedAPF,
		IndefLength: fxcbor.IndefLengthAllowed,
		BigIntDec:   fxcbor.BigIntDecodePointer,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor: building decode mode: %v", err))
	}
}

// Encode renders v to deterministic CBOR: shortest-form integers, sorted
// map keys (shorter encoded keys first, equal lengths bytewise),
// definite-length strings, no duplicate map keys.
func Encode(v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, &Error{Kind: ErrEncoding, Breadcrumb: "encode", Cause: err}
	}
	return data, nil
}

// Decode parses CBOR bytes into v. It accepts both definite- and
// indefinite-length byte/text strings, and rejects duplicate map keys.
// It returns the number of bytes consumed, so callers can chain decodes
// out of a longer buffer the way the teacher's helpers do
// (`cbor.Decode(datum, &d)`).
func Decode(data []byte, v any) (int, error) {
	rest, err := decMode.UnmarshalFirst(data, v)
	if err != nil {
		return 0, &Error{Kind: ErrDecoding, Breadcrumb: "decode", Cause: err}
	}
	return len(data) - len(rest), nil
}

// DecodeStoreCbor is embedded by entities that need to remember the exact
// bytes they were decoded from (so re-encoding after a partial mutation,
// or Cbor()/Hash() accessors, can return the original wire bytes rather
// than a re-derived encoding). It is metadata, not content: two entities
// decoded from different-but-equivalent bytes still compare equal on
// their logical fields.
type DecodeStoreCbor struct {
	cborData []byte
}

// SetCbor stores the canonical bytes for this entity.
func (d *DecodeStoreCbor) SetCbor(data []byte) {
	d.cborData = append([]byte(nil), data...)
}

// Cbor returns the stored bytes, or nil if none have been set.
func (d *DecodeStoreCbor) Cbor() []byte {
	return d.cborData
}

// StructAsArray marks an entity as being encoded/decoded as a definite
// length CBOR array of its exported fields in declaration order, rather
// than a map. Embed it and implement MarshalCBOR/UnmarshalCBOR via
// MarshalArray/UnmarshalArray.
type StructAsArray struct{}

// ErrShortArray is returned by UnmarshalArray when the input array has
// fewer elements than the destination struct's required prefix.
var ErrShortArray = errors.New("cbor: array has fewer elements than required fields")
