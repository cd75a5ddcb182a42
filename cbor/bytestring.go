package cbor

// ByteString is a comparable, hashable stand-in for []byte so arbitrary
// binary data (asset names, in particular) can be used as a Go map key,
// which []byte cannot. It CBOR-encodes as a definite-length byte string.
type ByteString string

// NewByteString wraps a byte slice as a ByteString map key.
func NewByteString(b []byte) ByteString { return ByteString(b) }

// Bytes returns the underlying bytes.
func (b ByteString) Bytes() []byte { return []byte(b) }

func (b ByteString) MarshalCBOR() ([]byte, error) {
	return Encode([]byte(b))
}

func (b *ByteString) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if _, err := Decode(data, &raw); err != nil {
		return Wrap(ErrDecoding, "ByteString", err)
	}
	*b = ByteString(raw)
	return nil
}
