package common

import (
	"bytes"
	"sort"

	"github.com/cardano-forge/apollocore/cbor"
)

// EncodeLangViews renders the Alonzo "language views" map used in the
// script-data-hash preimage. PlutusV1 is irregular: its map key is the
// CBOR encoding of the language tag wrapped again as a byte string
// (double-serialized), and its cost-model value is an indefinite-length
// array rather than definite-length like every other language.
func EncodeLangViews(used map[uint]struct{}, costModels map[uint][]int64) ([]byte, error) {
	type kv struct{ key, value []byte }
	entries := make([]kv, 0, len(used))
	for v := range used {
		costs := costModels[v]
		if v == 0 {
			keyInner, err := cbor.Encode(uint64(0))
			if err != nil {
				return nil, WrapEncoding("EncodeLangViews: PlutusV1 key", err)
			}
			entries = append(entries, kv{
				key:   encodeDefiniteBytes(keyInner),
				value: encodeIndefiniteInt64Array(costs),
			})
			continue
		}
		key, err := cbor.Encode(uint64(v))
		if err != nil {
			return nil, WrapEncoding("EncodeLangViews: key", err)
		}
		value, err := cbor.Encode(costs)
		if err != nil {
			return nil, WrapEncoding("EncodeLangViews: value", err)
		}
		entries = append(entries, kv{key: key, value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return bytes.Compare(entries[i].key, entries[j].key) < 0 })

	out := encodeHeader(5, uint64(len(entries)))
	for _, e := range entries {
		out = append(out, e.key...)
		out = append(out, e.value...)
	}
	return out, nil
}

// ComputeScriptDataHash computes the Alonzo script-data-hash preimage:
// hash(redeemers ‖ datums ‖ language_views), each section CBOR-encoded
// independently and concatenated raw (not wrapped in an outer array).
// Absent redeemers/datums encode as their empty-collection CBOR, not as
// nothing, since the preimage always has exactly three sections whenever
// one is returned. It returns nil when the transaction carries neither
// redeemers nor datums, since then there is nothing requiring this hash.
func ComputeScriptDataHash(
	redeemers map[RedeemerKey]RedeemerValue,
	datums []Datum,
	usedLangs map[uint]struct{},
	costModels map[uint][]int64,
) (*Blake2b256, error) {
	if len(redeemers) == 0 && len(datums) == 0 {
		return nil, nil
	}

	var redeemerBytes []byte
	var err error
	if len(redeemers) > 0 {
		redeemerBytes, err = cbor.Encode(redeemers)
	} else {
		redeemerBytes, err = cbor.Encode(map[RedeemerKey]RedeemerValue{})
	}
	if err != nil {
		return nil, WrapEncoding("ComputeScriptDataHash: redeemers", err)
	}

	var datumBytes []byte
	if len(datums) > 0 {
		datumBytes, err = cbor.Encode(datums)
	} else {
		datumBytes, err = cbor.Encode([]Datum{})
	}
	if err != nil {
		return nil, WrapEncoding("ComputeScriptDataHash: datums", err)
	}

	var langViewBytes []byte
	if len(usedLangs) > 0 {
		langViewBytes, err = EncodeLangViews(usedLangs, costModels)
	} else {
		langViewBytes, err = cbor.Encode(map[uint][]int64{})
	}
	if err != nil {
		return nil, WrapEncoding("ComputeScriptDataHash: language views", err)
	}

	combined := make([]byte, 0, len(redeemerBytes)+len(datumBytes)+len(langViewBytes))
	combined = append(combined, redeemerBytes...)
	combined = append(combined, datumBytes...)
	combined = append(combined, langViewBytes...)
	hash := Blake2b256Hash(combined)
	return &hash, nil
}

func encodeIndefiniteInt64Array(vals []int64) []byte {
	out := []byte{headerByte(4, 31)}
	for _, v := range vals {
		b, err := cbor.Encode(v)
		if err != nil {
			continue
		}
		out = append(out, b...)
	}
	out = append(out, 0xff)
	return out
}
