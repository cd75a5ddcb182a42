package common

import "github.com/cardano-forge/apollocore/cbor"

// Script is implemented by every script type that can sit behind a
// ScriptRef or be referenced by a witness: NativeScript, PlutusV1Script,
// PlutusV2Script, PlutusV3Script.
type Script interface {
	ScriptHash() Blake2b224
}

// PlutusV1Script, PlutusV2Script, PlutusV3Script wrap the compiled
// script bytes for each Plutus language version. The script hash uses a
// different tag byte per version (1, 2, 3) so the same bytes under a
// different language hash differently.
type PlutusV1Script []byte
type PlutusV2Script []byte
type PlutusV3Script []byte

func (s NativeScript) ScriptHash() Blake2b224 { return s.Hash() }

func (s PlutusV1Script) ScriptHash() Blake2b224 { return Blake2b224Hash(append([]byte{1}, s...)) }
func (s PlutusV2Script) ScriptHash() Blake2b224 { return Blake2b224Hash(append([]byte{2}, s...)) }
func (s PlutusV3Script) ScriptHash() Blake2b224 { return Blake2b224Hash(append([]byte{3}, s...)) }

func (s PlutusV1Script) MarshalCBOR() ([]byte, error)      { return cbor.Encode([]byte(s)) }
func (s *PlutusV1Script) UnmarshalCBOR(data []byte) error  { return decodeByteSlice(data, (*[]byte)(s)) }
func (s PlutusV2Script) MarshalCBOR() ([]byte, error)      { return cbor.Encode([]byte(s)) }
func (s *PlutusV2Script) UnmarshalCBOR(data []byte) error  { return decodeByteSlice(data, (*[]byte)(s)) }
func (s PlutusV3Script) MarshalCBOR() ([]byte, error)      { return cbor.Encode([]byte(s)) }
func (s *PlutusV3Script) UnmarshalCBOR(data []byte) error  { return decodeByteSlice(data, (*[]byte)(s)) }

func decodeByteSlice(data []byte, dst *[]byte) error {
	var b []byte
	if _, err := cbor.Decode(data, &b); err != nil {
		return WrapDecoding("script bytes", err)
	}
	*dst = b
	return nil
}

// ScriptRefType discriminates the CDDL `script_ref = [0, native_script]
// / [1, plutus_v1_script] / [2, plutus_v2_script] / [3, plutus_v3_script]`.
type ScriptRefType uint

const (
	ScriptRefTypeNative ScriptRefType = 0
	ScriptRefTypePlutusV1 ScriptRefType = 1
	ScriptRefTypePlutusV2 ScriptRefType = 2
	ScriptRefTypePlutusV3 ScriptRefType = 3
)

// ScriptRef is an output-attached reference script.
type ScriptRef struct {
	Type   ScriptRefType
	Script Script
}

// NewScriptRef builds a ScriptRef, detecting the language from the
// concrete Script type.
func NewScriptRef(script Script) (*ScriptRef, error) {
	var t ScriptRefType
	switch script.(type) {
	case NativeScript:
		t = ScriptRefTypeNative
	case PlutusV1Script:
		t = ScriptRefTypePlutusV1
	case PlutusV2Script:
		t = ScriptRefTypePlutusV2
	case PlutusV3Script:
		t = ScriptRefTypePlutusV3
	default:
		return nil, NewInvalidArgumentError("NewScriptRef", "unsupported script type %T", script)
	}
	return &ScriptRef{Type: t, Script: script}, nil
}

func (r ScriptRef) ScriptHash() Blake2b224 {
	if r.Script == nil {
		return Blake2b224{}
	}
	return r.Script.ScriptHash()
}

// ScriptRef is CBOR-wrapped as `tag(24, bytes .cbor [type, script])` on
// the wire (a "double-CBOR" nested encoding), matching how reference
// scripts are embedded in Babbage+ transaction outputs.
func (r ScriptRef) MarshalCBOR() ([]byte, error) {
	inner, err := cbor.Encode([]any{r.Type, r.Script})
	if err != nil {
		return nil, WrapEncoding("ScriptRef", err)
	}
	return cbor.Encode(cbor.Tag{Number: 24, Content: inner})
}

func (r *ScriptRef) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if _, err := cbor.Decode(data, &tag); err != nil {
		return WrapDecoding("ScriptRef: tag 24", err)
	}
	inner, ok := tag.Content.([]byte)
	if !ok {
		return WrapDecoding("ScriptRef: tag content not bytes", nil)
	}
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(inner, &raw); err != nil || len(raw) != 2 {
		return WrapDecoding("ScriptRef: inner array", err)
	}
	var t ScriptRefType
	if _, err := cbor.Decode(raw[0], &t); err != nil {
		return WrapDecoding("ScriptRef: type", err)
	}
	switch t {
	case ScriptRefTypeNative:
		var ns NativeScript
		if err := ns.UnmarshalCBOR(raw[1]); err != nil {
			return err
		}
		r.Script = ns
	case ScriptRefTypePlutusV1:
		var ps PlutusV1Script
		if err := ps.UnmarshalCBOR(raw[1]); err != nil {
			return err
		}
		r.Script = ps
	case ScriptRefTypePlutusV2:
		var ps PlutusV2Script
		if err := ps.UnmarshalCBOR(raw[1]); err != nil {
			return err
		}
		r.Script = ps
	case ScriptRefTypePlutusV3:
		var ps PlutusV3Script
		if err := ps.UnmarshalCBOR(raw[1]); err != nil {
			return err
		}
		r.Script = ps
	default:
		return NewInvalidArgumentError("ScriptRef.UnmarshalCBOR", "unknown script ref type %d", t)
	}
	r.Type = t
	return nil
}
