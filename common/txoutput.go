package common

import (
	"math/big"

	"github.com/cardano-forge/apollocore/cbor"
)

// DatumOptionKind discriminates `datum_option = [0, $hash32] / [1, data]`.
type DatumOptionKind uint

const (
	DatumOptionKindHash   DatumOptionKind = 0
	DatumOptionKindInline DatumOptionKind = 1
)

// DatumOption attaches either a datum hash or an inline datum to an
// output.
type DatumOption struct {
	Kind DatumOptionKind
	Hash Blake2b256
	Data *PlutusData
}

func NewDatumOptionHash(hash Blake2b256) *DatumOption {
	return &DatumOption{Kind: DatumOptionKindHash, Hash: hash}
}

func NewDatumOptionInline(data *PlutusData) (*DatumOption, error) {
	if data == nil {
		return nil, NewInvalidArgumentError("NewDatumOptionInline", "datum cannot be nil")
	}
	return &DatumOption{Kind: DatumOptionKindInline, Data: data}, nil
}

func (o DatumOption) MarshalCBOR() ([]byte, error) {
	switch o.Kind {
	case DatumOptionKindHash:
		return cbor.Encode([]any{o.Kind, o.Hash})
	case DatumOptionKindInline:
		inner, err := cbor.Encode(o.Data)
		if err != nil {
			return nil, WrapEncoding("DatumOption: inline datum", err)
		}
		return cbor.Encode([]any{o.Kind, cbor.Tag{Number: 24, Content: inner}})
	default:
		return nil, NewInvalidArgumentError("DatumOption.MarshalCBOR", "unknown kind %d", o.Kind)
	}
}

func (o *DatumOption) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(data, &raw); err != nil || len(raw) != 2 {
		return WrapDecoding("DatumOption", err)
	}
	var kind DatumOptionKind
	if _, err := cbor.Decode(raw[0], &kind); err != nil {
		return WrapDecoding("DatumOption: kind", err)
	}
	switch kind {
	case DatumOptionKindHash:
		var h Blake2b256
		if _, err := cbor.Decode(raw[1], &h); err != nil {
			return WrapDecoding("DatumOption: hash", err)
		}
		*o = DatumOption{Kind: kind, Hash: h}
	case DatumOptionKindInline:
		var tag cbor.Tag
		if _, err := cbor.Decode(raw[1], &tag); err != nil {
			return WrapDecoding("DatumOption: tag 24", err)
		}
		inner, ok := tag.Content.([]byte)
		if !ok {
			return WrapDecoding("DatumOption: tag content not bytes", nil)
		}
		var d PlutusData
		if err := d.UnmarshalCBOR(inner); err != nil {
			return WrapDecoding("DatumOption: inline datum", err)
		}
		*o = DatumOption{Kind: kind, Data: &d}
	default:
		return NewInvalidArgumentError("DatumOption.UnmarshalCBOR", "unknown kind %d", kind)
	}
	return nil
}

// TransactionOutput is the post-Alonzo (Babbage+) `transaction_output`
// map form: address, value, optional datum option, optional reference
// script. Map-encoded (not struct-as-array) because the CDDL defines it
// as `{0 => address, 1 => value, ? 2 => datum_option, ? 3 => script_ref}`.
type TransactionOutput struct {
	Address   Address
	Amount    Value
	Datum     *DatumOption
	ScriptRef *ScriptRef
}

func NewTransactionOutput(addr Address, amount Value) TransactionOutput {
	return TransactionOutput{Address: addr, Amount: amount}
}

type txOutputWire struct {
	Address   Address      `cbor:"0,keyasint"`
	Amount    cbor.RawMessage `cbor:"1,keyasint"`
	Datum     *DatumOption `cbor:"2,keyasint,omitempty"`
	ScriptRef *ScriptRef   `cbor:"3,keyasint,omitempty"`
}

func (o TransactionOutput) MarshalCBOR() ([]byte, error) {
	amountRaw, err := marshalValue(o.Amount)
	if err != nil {
		return nil, err
	}
	wire := txOutputWire{Address: o.Address, Amount: amountRaw, Datum: o.Datum, ScriptRef: o.ScriptRef}
	return cbor.Encode(wire)
}

func (o *TransactionOutput) UnmarshalCBOR(data []byte) error {
	var wire txOutputWire
	if _, err := cbor.Decode(data, &wire); err != nil {
		return WrapDecoding("TransactionOutput", err)
	}
	val, err := unmarshalValue(wire.Amount)
	if err != nil {
		return err
	}
	*o = TransactionOutput{Address: wire.Address, Amount: val, Datum: wire.Datum, ScriptRef: wire.ScriptRef}
	return nil
}

// marshalValue renders a Value per the CDDL `value = coin /
// [coin, multiasset]` shape: bare integer when there are no assets,
// two-element array otherwise.
func marshalValue(v Value) (cbor.RawMessage, error) {
	if !v.HasAssets() {
		return cbor.Encode(v.Coin)
	}
	return cbor.Encode([]any{v.Coin, v.Assets})
}

func unmarshalValue(raw cbor.RawMessage) (Value, error) {
	var coin uint64
	if _, err := cbor.Decode(raw, &coin); err == nil {
		return NewCoinValue(coin), nil
	}
	var pair []cbor.RawMessage
	if _, err := cbor.Decode(raw, &pair); err != nil || len(pair) != 2 {
		return Value{}, WrapDecoding("value", err)
	}
	if _, err := cbor.Decode(pair[0], &coin); err != nil {
		return Value{}, WrapDecoding("value: coin", err)
	}
	var assets MultiAsset[*big.Int]
	if err := assets.UnmarshalCBOR(pair[1]); err != nil {
		return Value{}, WrapDecoding("value: assets", err)
	}
	return NewValue(coin, &assets), nil
}
