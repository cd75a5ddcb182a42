package common

import "github.com/cardano-forge/apollocore/cbor"

// CredentialType distinguishes a key-hash credential from a script-hash
// one. Payment credentials, stake credentials, DRep credentials and
// committee-member credentials all share this shape.
type CredentialType uint

const (
	CredentialTypeAddrKeyHash CredentialType = 0
	CredentialTypeScriptHash  CredentialType = 1
)

// Credential is a CDDL `credential = [0, addr_keyhash // 1, scripthash]`
// pair: a discriminant and a 28-byte hash.
type Credential struct {
	cbor.StructAsArray
	CredType   CredentialType
	Credential Blake2b224
}

// NewKeyCredential builds a key-hash credential.
func NewKeyCredential(hash Blake2b224) Credential {
	return Credential{CredType: CredentialTypeAddrKeyHash, Credential: hash}
}

// NewScriptCredential builds a script-hash credential.
func NewScriptCredential(hash Blake2b224) Credential {
	return Credential{CredType: CredentialTypeScriptHash, Credential: hash}
}

func (c Credential) IsScript() bool { return c.CredType == CredentialTypeScriptHash }

func (c Credential) MarshalCBOR() ([]byte, error) {
	return cbor.MarshalArray(c)
}

func (c *Credential) UnmarshalCBOR(data []byte) error {
	return cbor.UnmarshalArray(data, c)
}
