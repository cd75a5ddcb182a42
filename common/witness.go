package common

import "github.com/cardano-forge/apollocore/cbor"

// VkeyWitness is a `[vkey, signature]` pair proving control of a payment
// or stake key.
type VkeyWitness struct {
	cbor.StructAsArray
	Vkey      []byte
	Signature []byte
}

func (w VkeyWitness) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(w) }
func (w *VkeyWitness) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, w) }

// BootstrapWitness authenticates a Byron-era input.
type BootstrapWitness struct {
	cbor.StructAsArray
	PublicKey  []byte
	Signature  []byte
	ChainCode  []byte
	Attributes []byte
}

func (w BootstrapWitness) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(w) }
func (w *BootstrapWitness) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, w) }

// RedeemerTag identifies which part of the transaction a redeemer
// authorizes script execution for.
type RedeemerTag uint

const (
	RedeemerTagSpend  RedeemerTag = 0
	RedeemerTagMint   RedeemerTag = 1
	RedeemerTagCert   RedeemerTag = 2
	RedeemerTagReward RedeemerTag = 3
	RedeemerTagVoting RedeemerTag = 4
	RedeemerTagPropose RedeemerTag = 5
)

// ExUnits is the Plutus execution-budget pair (memory, CPU steps).
type ExUnits struct {
	cbor.StructAsArray
	Memory uint64
	Steps  uint64
}

func (e ExUnits) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(e) }
func (e *ExUnits) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, e) }

func (e ExUnits) Add(other ExUnits) ExUnits {
	return ExUnits{Memory: e.Memory + other.Memory, Steps: e.Steps + other.Steps}
}

// RedeemerKey/RedeemerValue split a redeemer into the map-key and
// map-value halves the Conway CDDL uses: `redeemers =
// {redeemer_key => redeemer_value}`.
type RedeemerKey struct {
	cbor.StructAsArray
	Tag   RedeemerTag
	Index uint32
}

type RedeemerValue struct {
	cbor.StructAsArray
	Data    PlutusData
	ExUnits ExUnits
}

func (k RedeemerKey) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(k) }
func (k *RedeemerKey) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, k) }
func (v RedeemerValue) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(v) }
func (v *RedeemerValue) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, v) }

// WitnessSet is the CDDL `transaction_witness_set` map (keys present
// only when their list is non-empty).
type WitnessSet struct {
	VkeyWitnesses      []VkeyWitness
	NativeScripts      []NativeScript
	BootstrapWitnesses []BootstrapWitness
	PlutusV1Scripts    []PlutusV1Script
	PlutusV2Scripts    []PlutusV2Script
	PlutusV3Scripts    []PlutusV3Script
	PlutusData         []PlutusData
	Redeemers          map[RedeemerKey]RedeemerValue
}

type witnessSetWire struct {
	VkeyWitnesses      []VkeyWitness             `cbor:"0,keyasint,omitempty"`
	NativeScripts      []NativeScript            `cbor:"1,keyasint,omitempty"`
	BootstrapWitnesses []BootstrapWitness        `cbor:"2,keyasint,omitempty"`
	PlutusV1Scripts    []PlutusV1Script          `cbor:"3,keyasint,omitempty"`
	PlutusData         []PlutusData              `cbor:"4,keyasint,omitempty"`
	Redeemers          map[RedeemerKey]RedeemerValue `cbor:"5,keyasint,omitempty"`
	PlutusV2Scripts    []PlutusV2Script          `cbor:"6,keyasint,omitempty"`
	PlutusV3Scripts    []PlutusV3Script          `cbor:"7,keyasint,omitempty"`
}

func (w WitnessSet) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(witnessSetWire(w))
}

func (w *WitnessSet) UnmarshalCBOR(data []byte) error {
	var wire witnessSetWire
	if _, err := cbor.Decode(data, &wire); err != nil {
		return WrapDecoding("WitnessSet", err)
	}
	*w = WitnessSet(wire)
	return nil
}

// IsEmpty reports whether the witness set has no entries at all.
func (w WitnessSet) IsEmpty() bool {
	return len(w.VkeyWitnesses) == 0 && len(w.NativeScripts) == 0 &&
		len(w.BootstrapWitnesses) == 0 && len(w.PlutusV1Scripts) == 0 &&
		len(w.PlutusV2Scripts) == 0 && len(w.PlutusV3Scripts) == 0 &&
		len(w.PlutusData) == 0 && len(w.Redeemers) == 0
}
