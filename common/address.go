package common

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/cardano-forge/apollocore/cbor"
	"github.com/cardano-forge/apollocore/constants"
)

// AddressType is the CIP-19 header-byte address-type nibble.
type AddressType uint8

const (
	AddressTypeKeyKey       AddressType = 0b0000
	AddressTypeScriptKey    AddressType = 0b0001
	AddressTypeKeyScript    AddressType = 0b0010
	AddressTypeScriptScript AddressType = 0b0011
	AddressTypeKeyPointer   AddressType = 0b0100
	AddressTypeScriptPointer AddressType = 0b0101
	AddressTypeKeyNone      AddressType = 0b0110
	AddressTypeScriptNone   AddressType = 0b0111
	AddressTypeByron        AddressType = 0b1000
	AddressTypeNoneKey      AddressType = 0b1110
	AddressTypeNoneScript   AddressType = 0b1111
)

// ChainPointer is the certificate-pointer form of a stake credential:
// the slot/tx-index/cert-index of the stake registration certificate.
type ChainPointer struct {
	Slot           uint64
	TxIndex        uint64
	CertificateIndex uint64
}

// Address is a Cardano address: either a Shelley-era address (payment
// credential plus an optional stake credential/pointer, bech32-encoded)
// or an opaque Byron-era address (base58-encoded, CBOR payload).
type Address struct {
	network   constants.Network
	addrType  AddressType
	payment   *Credential
	stake     *Credential
	pointer   *ChainPointer
	byronRaw  []byte // set only for AddressTypeByron
}

// NewAddress parses a bech32 ("addr1...", "addr_test1...", "stake1...")
// or base58 (Byron, "Ae2...", "DdzFF...") address string.
func NewAddress(s string) (Address, error) {
	if isLikelyBech32(s) {
		return newAddressFromBech32(s)
	}
	raw := base58.Decode(s)
	if len(raw) == 0 {
		return Address{}, NewInvalidArgumentError("NewAddress", "not a valid bech32 or base58 address: %q", s)
	}
	return Address{addrType: AddressTypeByron, byronRaw: raw}, nil
}

func isLikelyBech32(s string) bool {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '1' {
			return i > 0
		}
	}
	return false
}

func newAddressFromBech32(s string) (Address, error) {
	_, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return Address{}, NewInvalidArgumentError("NewAddress", "bech32 decode: %v", err)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, NewInvalidArgumentError("NewAddress", "bech32 bit regroup: %v", err)
	}
	return NewAddressFromBytes(raw)
}

// NewAddressFromBytes parses the raw binary address payload (header byte
// followed by credential hashes / pointer varints).
func NewAddressFromBytes(raw []byte) (Address, error) {
	if len(raw) == 0 {
		return Address{}, NewInvalidArgumentError("NewAddressFromBytes", "empty address")
	}
	header := raw[0]
	addrType := AddressType(header >> 4)
	if addrType == AddressTypeByron {
		return Address{addrType: AddressTypeByron, byronRaw: raw}, nil
	}
	netID := header & 0x0f
	network := constants.Testnet
	if netID == 1 {
		network = constants.Mainnet
	}
	a := Address{network: network, addrType: addrType}
	body := raw[1:]

	readHash := func(b []byte) (Blake2b224, []byte, error) {
		if len(b) < 28 {
			return Blake2b224{}, nil, NewOutOfBoundsError("address payload too short for a 28-byte hash")
		}
		h, _ := NewBlake2b224(b[:28])
		return h, b[28:], nil
	}

	switch addrType {
	case AddressTypeKeyKey, AddressTypeScriptKey, AddressTypeKeyScript, AddressTypeScriptScript:
		h1, rest, err := readHash(body)
		if err != nil {
			return Address{}, err
		}
		h2, _, err := readHash(rest)
		if err != nil {
			return Address{}, err
		}
		if addrType == AddressTypeKeyKey || addrType == AddressTypeKeyScript {
			cred := NewKeyCredential(h1)
			a.payment = &cred
		} else {
			cred := NewScriptCredential(h1)
			a.payment = &cred
		}
		if addrType == AddressTypeKeyKey || addrType == AddressTypeScriptKey {
			cred := NewKeyCredential(h2)
			a.stake = &cred
		} else {
			cred := NewScriptCredential(h2)
			a.stake = &cred
		}
	case AddressTypeKeyPointer, AddressTypeScriptPointer:
		h1, rest, err := readHash(body)
		if err != nil {
			return Address{}, err
		}
		if addrType == AddressTypeKeyPointer {
			cred := NewKeyCredential(h1)
			a.payment = &cred
		} else {
			cred := NewScriptCredential(h1)
			a.payment = &cred
		}
		slot, rest, err := readVarUint(rest)
		if err != nil {
			return Address{}, err
		}
		txIdx, rest, err := readVarUint(rest)
		if err != nil {
			return Address{}, err
		}
		certIdx, _, err := readVarUint(rest)
		if err != nil {
			return Address{}, err
		}
		a.pointer = &ChainPointer{Slot: slot, TxIndex: txIdx, CertificateIndex: certIdx}
	case AddressTypeKeyNone, AddressTypeScriptNone:
		h1, _, err := readHash(body)
		if err != nil {
			return Address{}, err
		}
		if addrType == AddressTypeKeyNone {
			cred := NewKeyCredential(h1)
			a.payment = &cred
		} else {
			cred := NewScriptCredential(h1)
			a.payment = &cred
		}
	case AddressTypeNoneKey, AddressTypeNoneScript:
		h1, _, err := readHash(body)
		if err != nil {
			return Address{}, err
		}
		if addrType == AddressTypeNoneKey {
			cred := NewKeyCredential(h1)
			a.stake = &cred
		} else {
			cred := NewScriptCredential(h1)
			a.stake = &cred
		}
	default:
		return Address{}, NewInvalidArgumentError("NewAddressFromBytes", "unrecognized address type nibble %#x", addrType)
	}
	return a, nil
}

func readVarUint(b []byte) (uint64, []byte, error) {
	var v uint64
	for i, by := range b {
		v = (v << 7) | uint64(by&0x7f)
		if by&0x80 == 0 {
			return v, b[i+1:], nil
		}
	}
	return 0, nil, NewOutOfBoundsError("truncated pointer varint")
}

func writeVarUint(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var tmp []byte
	for v > 0 {
		tmp = append([]byte{byte(v & 0x7f)}, tmp...)
		v >>= 7
	}
	for i := 0; i < len(tmp)-1; i++ {
		tmp[i] |= 0x80
	}
	return tmp
}

// NewEnterpriseAddress builds a payment-only (no stake component) address.
func NewEnterpriseAddress(network constants.Network, payment Credential) Address {
	addrType := AddressTypeKeyNone
	if payment.IsScript() {
		addrType = AddressTypeScriptNone
	}
	cred := payment
	return Address{network: network, addrType: addrType, payment: &cred}
}

// NewBaseAddress builds a payment+stake address.
func NewBaseAddress(network constants.Network, payment, stake Credential) Address {
	var addrType AddressType
	switch {
	case !payment.IsScript() && !stake.IsScript():
		addrType = AddressTypeKeyKey
	case payment.IsScript() && !stake.IsScript():
		addrType = AddressTypeScriptKey
	case !payment.IsScript() && stake.IsScript():
		addrType = AddressTypeKeyScript
	default:
		addrType = AddressTypeScriptScript
	}
	p, s := payment, stake
	return Address{network: network, addrType: addrType, payment: &p, stake: &s}
}

// NewRewardAddress builds a stake/reward account address (no payment
// credential).
func NewRewardAddress(network constants.Network, stake Credential) Address {
	addrType := AddressTypeNoneKey
	if stake.IsScript() {
		addrType = AddressTypeNoneScript
	}
	s := stake
	return Address{network: network, addrType: addrType, stake: &s}
}

// Bytes renders the raw binary address payload (header byte + hashes).
func (a Address) Bytes() []byte {
	if a.addrType == AddressTypeByron {
		return append([]byte(nil), a.byronRaw...)
	}
	netID := byte(0)
	if a.network == constants.Mainnet {
		netID = 1
	}
	out := []byte{byte(a.addrType)<<4 | netID}
	if a.payment != nil {
		out = append(out, a.payment.Credential.Bytes()...)
	}
	if a.stake != nil {
		out = append(out, a.stake.Credential.Bytes()...)
	} else if a.pointer != nil {
		out = append(out, writeVarUint(a.pointer.Slot)...)
		out = append(out, writeVarUint(a.pointer.TxIndex)...)
		out = append(out, writeVarUint(a.pointer.CertificateIndex)...)
	}
	return out
}

// String renders the address in its canonical text form: bech32 for
// Shelley-era addresses, base58 for Byron.
func (a Address) String() string {
	if a.addrType == AddressTypeByron {
		return base58.Encode(a.byronRaw)
	}
	hrp := "addr"
	if a.addrType == AddressTypeNoneKey || a.addrType == AddressTypeNoneScript {
		hrp = "stake"
	}
	if a.network != constants.Mainnet {
		hrp += "_test"
	}
	data, err := bech32.ConvertBits(a.Bytes(), 8, 5, true)
	if err != nil {
		return ""
	}
	s, err := bech32.Encode(hrp, data)
	if err != nil {
		return ""
	}
	return s
}

func (a Address) Network() constants.Network { return a.network }
func (a Address) Type() AddressType          { return a.addrType }
func (a Address) IsByron() bool              { return a.addrType == AddressTypeByron }

// PaymentCredential returns the address's payment credential, if any.
func (a Address) PaymentCredential() *Credential { return a.payment }

// StakeCredential returns the address's attached stake credential, if any
// (absent for enterprise, pointer and Byron addresses).
func (a Address) StakeCredential() *Credential { return a.stake }

// Pointer returns the address's stake pointer, if it is a pointer
// address.
func (a Address) Pointer() *ChainPointer { return a.pointer }

func (a Address) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(a.Bytes())
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if _, err := cbor.Decode(data, &raw); err != nil {
		return WrapDecoding("Address", err)
	}
	parsed, err := NewAddressFromBytes(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
