package common

// BoundedBytesChunkSize is the CDDL `bounded_bytes` chunk limit: a byte
// string longer than this is emitted as an indefinite-length string of
// chunks no longer than this. Plutus data bytestrings use that chunked
// form; transaction-metadata bytestrings and text longer than this are
// rejected by Metadatum.MarshalCBOR instead.
const BoundedBytesChunkSize = 64

func headerByte(major byte, additional byte) byte { return major<<5 | additional }

// EncodeBoundedBytes renders b as a definite-length byte string when it
// fits in one chunk, or as an indefinite-length sequence of
// BoundedBytesChunkSize-byte chunks otherwise (RFC 8949 §3.2.3 as
// applied by Cardano's ledger to "bounded bytes").
func EncodeBoundedBytes(b []byte) []byte {
	if len(b) <= BoundedBytesChunkSize {
		return encodeDefiniteBytes(b)
	}
	out := []byte{headerByte(2, 31)}
	for off := 0; off < len(b); off += BoundedBytesChunkSize {
		end := off + BoundedBytesChunkSize
		if end > len(b) {
			end = len(b)
		}
		out = append(out, encodeDefiniteBytes(b[off:end])...)
	}
	out = append(out, 0xff)
	return out
}

func encodeDefiniteBytes(b []byte) []byte {
	return append(encodeHeader(2, uint64(len(b))), b...)
}

func encodeHeader(major byte, n uint64) []byte {
	switch {
	case n < 24:
		return []byte{headerByte(major, byte(n))}
	case n <= 0xff:
		return []byte{headerByte(major, 24), byte(n)}
	case n <= 0xffff:
		return []byte{headerByte(major, 25), byte(n >> 8), byte(n)}
	case n <= 0xffffffff:
		return []byte{headerByte(major, 26), byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	default:
		return []byte{
			headerByte(major, 27),
			byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
			byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
		}
	}
}

func decodeHeader(data []byte) (major byte, arg uint64, headerLen int, indefinite bool, err error) {
	if len(data) == 0 {
		return 0, 0, 0, false, NewOutOfBoundsError("decodeHeader: empty input")
	}
	ib := data[0]
	major = ib >> 5
	ai := ib & 0x1f
	switch {
	case ai < 24:
		return major, uint64(ai), 1, false, nil
	case ai == 24:
		if len(data) < 2 {
			return 0, 0, 0, false, NewOutOfBoundsError("decodeHeader: truncated 1-byte length")
		}
		return major, uint64(data[1]), 2, false, nil
	case ai == 25:
		if len(data) < 3 {
			return 0, 0, 0, false, NewOutOfBoundsError("decodeHeader: truncated 2-byte length")
		}
		return major, uint64(data[1])<<8 | uint64(data[2]), 3, false, nil
	case ai == 26:
		if len(data) < 5 {
			return 0, 0, 0, false, NewOutOfBoundsError("decodeHeader: truncated 4-byte length")
		}
		v := uint64(0)
		for i := 1; i <= 4; i++ {
			v = v<<8 | uint64(data[i])
		}
		return major, v, 5, false, nil
	case ai == 27:
		if len(data) < 9 {
			return 0, 0, 0, false, NewOutOfBoundsError("decodeHeader: truncated 8-byte length")
		}
		v := uint64(0)
		for i := 1; i <= 8; i++ {
			v = v<<8 | uint64(data[i])
		}
		return major, v, 9, false, nil
	case ai == 31:
		return major, 0, 1, true, nil
	default:
		return 0, 0, 0, false, NewOutOfBoundsError("decodeHeader: reserved additional info %d", ai)
	}
}

// DecodeBoundedBytes parses either a definite-length byte string or the
// indefinite-length chunked form EncodeBoundedBytes produces, returning
// the reassembled bytes and the number of input bytes consumed.
func DecodeBoundedBytes(data []byte) ([]byte, int, error) {
	major, arg, hlen, indef, err := decodeHeader(data)
	if err != nil {
		return nil, 0, err
	}
	if major != 2 {
		return nil, 0, NewInvalidArgumentError("DecodeBoundedBytes", "expected major type 2, got %d", major)
	}
	if !indef {
		end := hlen + int(arg)
		if end > len(data) {
			return nil, 0, NewOutOfBoundsError("DecodeBoundedBytes: truncated byte string")
		}
		return append([]byte(nil), data[hlen:end]...), end, nil
	}
	offset := hlen
	var out []byte
	for {
		if offset >= len(data) {
			return nil, 0, NewOutOfBoundsError("DecodeBoundedBytes: unterminated indefinite string")
		}
		if data[offset] == 0xff {
			offset++
			break
		}
		chunk, n, err := DecodeBoundedBytes(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, chunk...)
		offset += n
	}
	return out, offset, nil
}
