package common

import "github.com/cardano-forge/apollocore/cbor"

// NativeScriptType is the CDDL discriminant of `native_script`.
type NativeScriptType uint

const (
	NativeScriptTypePubkey           NativeScriptType = 0
	NativeScriptTypeAll              NativeScriptType = 1
	NativeScriptTypeAny              NativeScriptType = 2
	NativeScriptTypeNofK             NativeScriptType = 3
	NativeScriptTypeInvalidBefore    NativeScriptType = 4
	NativeScriptTypeInvalidHereafter NativeScriptType = 5
)

// NativeScript is the multisig/timelock script union. Only the fields
// relevant to Type are meaningful.
type NativeScript struct {
	Type    NativeScriptType
	KeyHash Blake2b224
	Scripts []NativeScript
	N       uint
	Slot    uint64
}

func NewNativeScriptPubkey(hash Blake2b224) NativeScript {
	return NativeScript{Type: NativeScriptTypePubkey, KeyHash: hash}
}

func NewNativeScriptAll(scripts []NativeScript) NativeScript {
	return NativeScript{Type: NativeScriptTypeAll, Scripts: scripts}
}

func NewNativeScriptAny(scripts []NativeScript) NativeScript {
	return NativeScript{Type: NativeScriptTypeAny, Scripts: scripts}
}

func NewNativeScriptNofK(n uint, scripts []NativeScript) (NativeScript, error) {
	if len(scripts) == 0 {
		return NativeScript{}, NewInvalidArgumentError("NewNativeScriptNofK", "scripts list cannot be empty")
	}
	if n == 0 || n > uint(len(scripts)) {
		return NativeScript{}, NewInvalidArgumentError("NewNativeScriptNofK", "n (%d) out of range for %d scripts", n, len(scripts))
	}
	return NativeScript{Type: NativeScriptTypeNofK, N: n, Scripts: scripts}, nil
}

func NewNativeScriptInvalidBefore(slot uint64) NativeScript {
	return NativeScript{Type: NativeScriptTypeInvalidBefore, Slot: slot}
}

func NewNativeScriptInvalidHereafter(slot uint64) NativeScript {
	return NativeScript{Type: NativeScriptTypeInvalidHereafter, Slot: slot}
}

func (s NativeScript) Hash() Blake2b224 {
	body, err := cbor.Encode(s)
	if err != nil {
		return Blake2b224{}
	}
	return Blake2b224Hash(append([]byte{0}, body...))
}

func (s NativeScript) MarshalCBOR() ([]byte, error) {
	switch s.Type {
	case NativeScriptTypePubkey:
		return cbor.Encode([]any{s.Type, s.KeyHash})
	case NativeScriptTypeAll, NativeScriptTypeAny:
		return cbor.Encode([]any{s.Type, s.Scripts})
	case NativeScriptTypeNofK:
		return cbor.Encode([]any{s.Type, s.N, s.Scripts})
	case NativeScriptTypeInvalidBefore, NativeScriptTypeInvalidHereafter:
		return cbor.Encode([]any{s.Type, s.Slot})
	default:
		return nil, NewInvalidArgumentError("NativeScript.MarshalCBOR", "unknown type %d", s.Type)
	}
}

func (s *NativeScript) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(data, &raw); err != nil || len(raw) == 0 {
		return WrapDecoding("NativeScript", err)
	}
	var typ NativeScriptType
	if _, err := cbor.Decode(raw[0], &typ); err != nil {
		return WrapDecoding("NativeScript: type", err)
	}
	switch typ {
	case NativeScriptTypePubkey:
		var h Blake2b224
		if _, err := cbor.Decode(raw[1], &h); err != nil {
			return WrapDecoding("NativeScript: pubkey hash", err)
		}
		*s = NativeScript{Type: typ, KeyHash: h}
	case NativeScriptTypeAll, NativeScriptTypeAny:
		var scripts []NativeScript
		if _, err := cbor.Decode(raw[1], &scripts); err != nil {
			return WrapDecoding("NativeScript: sub-scripts", err)
		}
		*s = NativeScript{Type: typ, Scripts: scripts}
	case NativeScriptTypeNofK:
		var n uint
		if _, err := cbor.Decode(raw[1], &n); err != nil {
			return WrapDecoding("NativeScript: n", err)
		}
		var scripts []NativeScript
		if _, err := cbor.Decode(raw[2], &scripts); err != nil {
			return WrapDecoding("NativeScript: sub-scripts", err)
		}
		*s = NativeScript{Type: typ, N: n, Scripts: scripts}
	case NativeScriptTypeInvalidBefore, NativeScriptTypeInvalidHereafter:
		var slot uint64
		if _, err := cbor.Decode(raw[1], &slot); err != nil {
			return WrapDecoding("NativeScript: slot", err)
		}
		*s = NativeScript{Type: typ, Slot: slot}
	default:
		return NewInvalidArgumentError("NativeScript.UnmarshalCBOR", "unknown type %d", typ)
	}
	return nil
}
