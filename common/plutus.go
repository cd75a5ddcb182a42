package common

import "github.com/cardano-forge/apollocore/cbor"

// PlutusDataKind discriminates the five-way `plutus_data` CDDL union.
type PlutusDataKind int

const (
	PlutusDataKindConstr PlutusDataKind = iota
	PlutusDataKindMap
	PlutusDataKindList
	PlutusDataKindBigInt
	PlutusDataKindBytes
)

// PlutusData is Cardano's Plutus datum/redeemer payload type, the
// `plutus_data` CDDL union: a constructor application, a map, a list, a
// big integer or a bounded byte string. Datum is an alias for the same
// shape used for inline/hash datums on transaction outputs.
type PlutusData struct {
	Kind     PlutusDataKind
	Constr   uint64
	Fields   []PlutusData     // Constr, List
	MapPairs []PlutusDataPair // Map, insertion order preserved
	Int      BigInt           // BigInt
	Bytes    []byte           // Bytes
}

// Datum is the same shape as PlutusData; kept as a distinct name because
// that's how the ledger CDDL and the builder's API refer to it.
type Datum = PlutusData

// PlutusDataPair is one key/value entry of a Plutus data map.
type PlutusDataPair struct {
	Key   PlutusData
	Value PlutusData
}

func NewPlutusConstr(tag uint64, fields ...PlutusData) PlutusData {
	return PlutusData{Kind: PlutusDataKindConstr, Constr: tag, Fields: fields}
}

func NewPlutusList(items ...PlutusData) PlutusData {
	return PlutusData{Kind: PlutusDataKindList, Fields: items}
}

func NewPlutusMap(pairs ...PlutusDataPair) PlutusData {
	return PlutusData{Kind: PlutusDataKindMap, MapPairs: pairs}
}

func NewPlutusBigInt(v BigInt) PlutusData {
	return PlutusData{Kind: PlutusDataKindBigInt, Int: v}
}

func NewPlutusInt(v int64) PlutusData {
	return PlutusData{Kind: PlutusDataKindBigInt, Int: NewBigIntFromInt64(v)}
}

func NewPlutusBytes(b []byte) PlutusData {
	return PlutusData{Kind: PlutusDataKindBytes, Bytes: b}
}

const (
	constrTagBase     = 121 // tags 121..127 encode constructor index 0..6
	constrTagBaseHigh = 1280 // tags 1280..1400 encode constructor index 7..127
	constrTagGeneral  = 102 // [index, fields] for index outside 0..127
)

func (d PlutusData) MarshalCBOR() ([]byte, error) {
	switch d.Kind {
	case PlutusDataKindConstr:
		switch {
		case d.Constr <= 6:
			return cbor.Encode(cbor.Tag{Number: constrTagBase + d.Constr, Content: d.Fields})
		case d.Constr <= 127:
			return cbor.Encode(cbor.Tag{Number: constrTagBaseHigh + (d.Constr - 7), Content: d.Fields})
		default:
			return cbor.Encode(cbor.Tag{Number: constrTagGeneral, Content: []any{d.Constr, d.Fields}})
		}
	case PlutusDataKindList:
		return cbor.Encode(d.Fields)
	case PlutusDataKindMap:
		return d.marshalMap()
	case PlutusDataKindBigInt:
		return d.Int.MarshalCBOR()
	case PlutusDataKindBytes:
		return EncodeBoundedBytes(d.Bytes), nil
	default:
		return nil, NewInvalidArgumentError("PlutusData.MarshalCBOR", "unknown kind %d", d.Kind)
	}
}

func (d PlutusData) marshalMap() ([]byte, error) {
	out := encodeHeader(5, uint64(len(d.MapPairs)))
	for _, pair := range d.MapPairs {
		k, err := pair.Key.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		v, err := pair.Value.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		out = append(out, k...)
		out = append(out, v...)
	}
	return out, nil
}

func (d *PlutusData) UnmarshalCBOR(data []byte) error {
	major, _, _, _, err := decodeHeader(data)
	if err != nil {
		return WrapDecoding("PlutusData", err)
	}
	switch major {
	case 2: // bounded bytes
		b, _, err := DecodeBoundedBytes(data)
		if err != nil {
			return WrapDecoding("PlutusData: bytes", err)
		}
		*d = PlutusData{Kind: PlutusDataKindBytes, Bytes: b}
		return nil
	case 0, 1: // unsigned/negative int shortcuts, still representable as big_int
		var bi BigInt
		if err := bi.UnmarshalCBOR(data); err != nil {
			return WrapDecoding("PlutusData: int", err)
		}
		*d = PlutusData{Kind: PlutusDataKindBigInt, Int: bi}
		return nil
	case 4: // list
		var items []PlutusData
		if _, err := cbor.Decode(data, &items); err != nil {
			return WrapDecoding("PlutusData: list", err)
		}
		*d = PlutusData{Kind: PlutusDataKindList, Fields: items}
		return nil
	case 5: // map
		return d.unmarshalMap(data)
	case 6: // tag: constr or big_int
		return d.unmarshalTagged(data)
	default:
		return WrapDecoding("PlutusData", NewInvalidArgumentError("PlutusData.UnmarshalCBOR", "unsupported major type %d", major))
	}
}

func (d *PlutusData) unmarshalMap(data []byte) error {
	_, n, hlen, indef, err := decodeHeader(data)
	if err != nil {
		return WrapDecoding("PlutusData: map header", err)
	}
	pairs := make([]PlutusDataPair, 0, n)
	offset := hlen
	readOne := func() (PlutusData, int, error) {
		var raw cbor.RawMessage
		consumed, err := cbor.Decode(data[offset:], &raw)
		if err != nil {
			return PlutusData{}, 0, err
		}
		var pd PlutusData
		if err := pd.UnmarshalCBOR(raw); err != nil {
			return PlutusData{}, 0, err
		}
		return pd, consumed, nil
	}
	if indef {
		for offset < len(data) && data[offset] != 0xff {
			k, kn, err := readOne()
			if err != nil {
				return WrapDecoding("PlutusData: map key", err)
			}
			offset += kn
			v, vn, err := readOne()
			if err != nil {
				return WrapDecoding("PlutusData: map value", err)
			}
			offset += vn
			pairs = append(pairs, PlutusDataPair{Key: k, Value: v})
		}
	} else {
		for i := uint64(0); i < n; i++ {
			k, kn, err := readOne()
			if err != nil {
				return WrapDecoding("PlutusData: map key", err)
			}
			offset += kn
			v, vn, err := readOne()
			if err != nil {
				return WrapDecoding("PlutusData: map value", err)
			}
			offset += vn
			pairs = append(pairs, PlutusDataPair{Key: k, Value: v})
		}
	}
	*d = PlutusData{Kind: PlutusDataKindMap, MapPairs: pairs}
	return nil
}

func (d *PlutusData) unmarshalTagged(data []byte) error {
	var tag cbor.Tag
	if _, err := cbor.Decode(data, &tag); err != nil {
		return WrapDecoding("PlutusData: tag", err)
	}
	switch {
	case tag.Number == 2 || tag.Number == 3:
		var bi BigInt
		if err := bi.UnmarshalCBOR(data); err != nil {
			return WrapDecoding("PlutusData: bignum", err)
		}
		*d = PlutusData{Kind: PlutusDataKindBigInt, Int: bi}
		return nil
	case tag.Number >= constrTagBase && tag.Number <= constrTagBase+6:
		fields, err := decodeConstrFields(tag.Content)
		if err != nil {
			return err
		}
		*d = PlutusData{Kind: PlutusDataKindConstr, Constr: tag.Number - constrTagBase, Fields: fields}
		return nil
	case tag.Number >= constrTagBaseHigh && tag.Number <= constrTagBaseHigh+120:
		fields, err := decodeConstrFields(tag.Content)
		if err != nil {
			return err
		}
		*d = PlutusData{Kind: PlutusDataKindConstr, Constr: tag.Number - constrTagBaseHigh + 7, Fields: fields}
		return nil
	case tag.Number == constrTagGeneral:
		contentBytes, err := cbor.Encode(tag.Content)
		if err != nil {
			return WrapEncoding("PlutusData: general constr content", err)
		}
		var pair []cbor.RawMessage
		if _, err := cbor.Decode(contentBytes, &pair); err != nil || len(pair) != 2 {
			return WrapDecoding("PlutusData: general constr", err)
		}
		var idx BigInt
		if err := idx.UnmarshalCBOR(pair[0]); err != nil {
			return WrapDecoding("PlutusData: general constr index", err)
		}
		fields, err := decodeConstrFieldsRaw(pair[1])
		if err != nil {
			return err
		}
		*d = PlutusData{Kind: PlutusDataKindConstr, Constr: idx.Uint64(), Fields: fields}
		return nil
	default:
		return WrapDecoding("PlutusData", NewInvalidArgumentError("PlutusData.UnmarshalCBOR", "unsupported tag %d", tag.Number))
	}
}

func decodeConstrFields(content any) ([]PlutusData, error) {
	contentBytes, err := cbor.Encode(content)
	if err != nil {
		return nil, WrapEncoding("PlutusData: constr content", err)
	}
	return decodeConstrFieldsRaw(contentBytes)
}

func decodeConstrFieldsRaw(data []byte) ([]PlutusData, error) {
	var fields []PlutusData
	if _, err := cbor.Decode(data, &fields); err != nil {
		return nil, WrapDecoding("PlutusData: constr fields", err)
	}
	return fields, nil
}
