package common

import "github.com/cardano-forge/apollocore/cbor"

// MetadatumKind discriminates the `transaction_metadatum` CDDL union.
type MetadatumKind int

const (
	MetadatumKindInt MetadatumKind = iota
	MetadatumKindBytes
	MetadatumKindText
	MetadatumKindList
	MetadatumKindMap
)

// Metadatum is a single node of transaction metadata: an integer, a
// bounded (<=64 byte; MarshalCBOR rejects longer ones) byte string or
// text string, a list, or a map. MetaMap is the top-level `{* transaction_metadatum_label
// => transaction_metadatum}` container.
type Metadatum struct {
	Kind  MetadatumKind
	Int   BigInt
	Bytes []byte
	Text  string
	List  []Metadatum
	Map   []MetadatumPair
}

type MetadatumPair struct {
	Key   Metadatum
	Value Metadatum
}

func NewMetadatumInt(v int64) Metadatum      { return Metadatum{Kind: MetadatumKindInt, Int: NewBigIntFromInt64(v)} }
func NewMetadatumBytes(b []byte) Metadatum   { return Metadatum{Kind: MetadatumKindBytes, Bytes: b} }
func NewMetadatumText(s string) Metadatum    { return Metadatum{Kind: MetadatumKindText, Text: s} }
func NewMetadatumList(l ...Metadatum) Metadatum { return Metadatum{Kind: MetadatumKindList, List: l} }
func NewMetadatumMap(pairs ...MetadatumPair) Metadatum {
	return Metadatum{Kind: MetadatumKindMap, Map: pairs}
}

func (m Metadatum) MarshalCBOR() ([]byte, error) {
	switch m.Kind {
	case MetadatumKindInt:
		return m.Int.MarshalCBOR()
	case MetadatumKindBytes:
		if len(m.Bytes) > 64 {
			return nil, NewInvalidBoundedBytesSizeError("metadatum byte string exceeds 64 bytes (got %d)", len(m.Bytes))
		}
		return EncodeBoundedBytes(m.Bytes), nil
	case MetadatumKindText:
		if len(m.Text) > 64 {
			return nil, NewInvalidBoundedBytesSizeError("metadatum text exceeds 64 bytes (got %d)", len(m.Text))
		}
		return cbor.Encode(m.Text)
	case MetadatumKindList:
		return cbor.Encode(m.List)
	case MetadatumKindMap:
		out := encodeHeader(5, uint64(len(m.Map)))
		for _, p := range m.Map {
			k, err := p.Key.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			v, err := p.Value.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			out = append(out, k...)
			out = append(out, v...)
		}
		return out, nil
	default:
		return nil, NewInvalidMetadatumError("unknown metadatum kind %d", m.Kind)
	}
}

func (m *Metadatum) UnmarshalCBOR(data []byte) error {
	major, n, hlen, indef, err := decodeHeader(data)
	if err != nil {
		return WrapDecoding("Metadatum", err)
	}
	switch major {
	case 0, 1:
		var bi BigInt
		if err := bi.UnmarshalCBOR(data); err != nil {
			return WrapDecoding("Metadatum: int", err)
		}
		*m = Metadatum{Kind: MetadatumKindInt, Int: bi}
	case 2:
		b, _, err := DecodeBoundedBytes(data)
		if err != nil {
			return WrapDecoding("Metadatum: bytes", err)
		}
		*m = Metadatum{Kind: MetadatumKindBytes, Bytes: b}
	case 3:
		var s string
		if _, err := cbor.Decode(data, &s); err != nil {
			return WrapDecoding("Metadatum: text", err)
		}
		*m = Metadatum{Kind: MetadatumKindText, Text: s}
	case 4:
		var list []Metadatum
		if _, err := cbor.Decode(data, &list); err != nil {
			return WrapDecoding("Metadatum: list", err)
		}
		*m = Metadatum{Kind: MetadatumKindList, List: list}
	case 5:
		pairs, err := decodeMetadatumMapPairs(data, n, hlen, indef)
		if err != nil {
			return err
		}
		*m = Metadatum{Kind: MetadatumKindMap, Map: pairs}
	default:
		return NewInvalidMetadatumError("unsupported major type %d", major)
	}
	return nil
}

func decodeMetadatumMapPairs(data []byte, n uint64, hlen int, indef bool) ([]MetadatumPair, error) {
	offset := hlen
	var pairs []MetadatumPair
	readOne := func() (Metadatum, int, error) {
		var raw cbor.RawMessage
		consumed, err := cbor.Decode(data[offset:], &raw)
		if err != nil {
			return Metadatum{}, 0, err
		}
		var md Metadatum
		if err := md.UnmarshalCBOR(raw); err != nil {
			return Metadatum{}, 0, err
		}
		return md, consumed, nil
	}
	readPair := func() error {
		k, kn, err := readOne()
		if err != nil {
			return WrapDecoding("Metadatum: map key", err)
		}
		offset += kn
		v, vn, err := readOne()
		if err != nil {
			return WrapDecoding("Metadatum: map value", err)
		}
		offset += vn
		pairs = append(pairs, MetadatumPair{Key: k, Value: v})
		return nil
	}
	if indef {
		for offset < len(data) && data[offset] != 0xff {
			if err := readPair(); err != nil {
				return nil, err
			}
		}
	} else {
		for i := uint64(0); i < n; i++ {
			if err := readPair(); err != nil {
				return nil, err
			}
		}
	}
	return pairs, nil
}

// MetaMap is the `metadata = {* transaction_metadatum_label =>
// transaction_metadatum}` container keyed by unsigned label.
type MetaMap struct {
	entries []metaEntry
}

type metaEntry struct {
	Label uint64
	Value Metadatum
}

// Set attaches a metadatum under label, overwriting any previous value
// for the same label.
func (m *MetaMap) Set(label uint64, value Metadatum) {
	for i, e := range m.entries {
		if e.Label == label {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, metaEntry{Label: label, Value: value})
}

func (m *MetaMap) Len() int { return len(m.entries) }

func (m MetaMap) MarshalCBOR() ([]byte, error) {
	asMap := make(map[uint64]Metadatum, len(m.entries))
	for _, e := range m.entries {
		asMap[e.Label] = e.Value
	}
	return cbor.Encode(asMap)
}

func (m *MetaMap) UnmarshalCBOR(data []byte) error {
	var asMap map[uint64]Metadatum
	if _, err := cbor.Decode(data, &asMap); err != nil {
		return WrapDecoding("MetaMap", err)
	}
	m.entries = m.entries[:0]
	for label, v := range asMap {
		m.entries = append(m.entries, metaEntry{Label: label, Value: v})
	}
	return nil
}
