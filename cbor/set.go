package cbor

// SetTag is the CBOR tag number (RFC 8610 "set" convention adopted by
// Cardano's CDDL) used to mark an array as a deduplicated set.
const SetTag = 258

// setTagPrefix is the 3-byte encoding of "tag 258" in CBOR's major-type-6
// 2-byte-argument form (0xd9 followed by the big-endian uint16 258).
var setTagPrefix = [3]byte{0xd9, 0x01, 0x02}

// SetType is an order-preserving collection that remembers whether it
// was parsed with the optional tag-258 wrapper, so re-encoding
// reproduces the same wire form byte-for-byte (component A's tagged-set
// contract; §8 property 1 / scenario S4). It does not remove duplicate
// elements: NewSetType and UnmarshalCBOR keep every item they are given.
type SetType[T any] struct {
	items  []T
	tagged bool
}

// NewSetType builds a set from items, explicitly choosing the tag-258
// form for programmatic construction (callers who didn't parse the set
// off the wire pick the form they want to emit).
func NewSetType[T any](items []T, tagged bool) SetType[T] {
	return SetType[T]{items: append([]T(nil), items...), tagged: tagged}
}

// Items returns the set's elements in insertion order.
func (s SetType[T]) Items() []T {
	if s.items == nil {
		return nil
	}
	return append([]T(nil), s.items...)
}

// Len returns the number of elements.
func (s SetType[T]) Len() int { return len(s.items) }

// Tagged reports whether this set will (re-)encode with the tag-258
// wrapper.
func (s SetType[T]) Tagged() bool { return s.tagged }

func (s SetType[T]) MarshalCBOR() ([]byte, error) {
	arr, err := Encode(s.items)
	if err != nil {
		return nil, Wrap(ErrEncoding, "SetType", err)
	}
	if !s.tagged {
		return arr, nil
	}
	return Encode(Tag{Number: SetTag, Content: s.items})
}

func (s *SetType[T]) UnmarshalCBOR(data []byte) error {
	if len(data) >= 3 && data[0] == setTagPrefix[0] && data[1] == setTagPrefix[1] && data[2] == setTagPrefix[2] {
		var tag Tag
		if _, err := Decode(data, &tag); err != nil {
			return Wrap(ErrDecoding, "SetType: tag 258", err)
		}
		content, err := Encode(tag.Content)
		if err != nil {
			return Wrap(ErrEncoding, "SetType: re-encode tag content", err)
		}
		var items []T
		if _, err := Decode(content, &items); err != nil {
			return Wrap(ErrDecoding, "SetType: tagged array", err)
		}
		s.items = items
		s.tagged = true
		return nil
	}
	var items []T
	if _, err := Decode(data, &items); err != nil {
		return Wrap(ErrDecoding, "SetType: bare array", err)
	}
	s.items = items
	s.tagged = false
	return nil
}
