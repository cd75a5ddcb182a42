package common

import "github.com/cardano-forge/apollocore/cbor"

// AuxiliaryData is the CDDL `auxiliary_data` union. Post-Mary
// transactions always use the map-with-tag-259 "shelley_ma" shape, so
// that is the only shape this module produces; the plain Shelley map
// form is still accepted on decode for completeness.
type AuxiliaryData struct {
	Metadata      MetaMap
	NativeScripts []NativeScript
	PlutusV1      []PlutusV1Script
	PlutusV2      []PlutusV2Script
	PlutusV3      []PlutusV3Script
}

func (a AuxiliaryData) IsEmpty() bool {
	return a.Metadata.Len() == 0 && len(a.NativeScripts) == 0 &&
		len(a.PlutusV1) == 0 && len(a.PlutusV2) == 0 && len(a.PlutusV3) == 0
}

type auxDataShelleyMA struct {
	Metadata      MetaMap          `cbor:"0,keyasint,omitempty"`
	NativeScripts []NativeScript   `cbor:"1,keyasint,omitempty"`
	PlutusV1      []PlutusV1Script `cbor:"2,keyasint,omitempty"`
	PlutusV2      []PlutusV2Script `cbor:"3,keyasint,omitempty"`
	PlutusV3      []PlutusV3Script `cbor:"4,keyasint,omitempty"`
}

func (a AuxiliaryData) MarshalCBOR() ([]byte, error) {
	inner, err := cbor.Encode(auxDataShelleyMA(a))
	if err != nil {
		return nil, WrapEncoding("AuxiliaryData", err)
	}
	return cbor.Encode(cbor.Tag{Number: 259, Content: cbor.RawMessage(inner)})
}

func (a *AuxiliaryData) UnmarshalCBOR(data []byte) error {
	if major, arg, hlen, _, err := decodeHeader(data); err == nil && major == 6 && arg == 259 {
		var wire auxDataShelleyMA
		if _, err := cbor.Decode(data[hlen:], &wire); err != nil {
			return WrapDecoding("AuxiliaryData: shelley_ma", err)
		}
		*a = AuxiliaryData(wire)
		return nil
	}
	var metadata MetaMap
	if err := metadata.UnmarshalCBOR(data); err != nil {
		return WrapDecoding("AuxiliaryData: shelley metadata", err)
	}
	*a = AuxiliaryData{Metadata: metadata}
	return nil
}

// Hash returns the Blake2b-256 digest of the auxiliary data's canonical
// CBOR, the value stored as the transaction body's auxiliary_data_hash.
func (a AuxiliaryData) Hash() (Blake2b256, error) {
	body, err := cbor.Encode(a)
	if err != nil {
		return Blake2b256{}, WrapEncoding("AuxiliaryData.Hash", err)
	}
	return Blake2b256Hash(body), nil
}
