package common

import "github.com/cardano-forge/apollocore/cbor"

// CertificateType enumerates the CDDL `certificate` union's discriminant
// byte, Conway-era numbering (stake, pool and governance certs share one
// tagged union on the wire).
type CertificateType uint

const (
	CertStakeRegistration        CertificateType = 0
	CertStakeDeregistration      CertificateType = 1
	CertStakeDelegation          CertificateType = 2
	CertPoolRegistration         CertificateType = 3
	CertPoolRetirement           CertificateType = 4
	CertRegCert                  CertificateType = 7
	CertUnregCert                CertificateType = 8
	CertVoteDelegCert            CertificateType = 9
	CertStakeVoteDelegCert       CertificateType = 10
	CertStakeRegDelegCert        CertificateType = 11
	CertVoteRegDelegCert         CertificateType = 12
	CertStakeVoteRegDelegCert    CertificateType = 13
	CertAuthCommitteeHotCert     CertificateType = 14
	CertResignCommitteeColdCert  CertificateType = 15
	CertRegDrepCert              CertificateType = 16
	CertUnregDrepCert            CertificateType = 17
	CertUpdateDrepCert           CertificateType = 18
)

// PoolMargin is the pool's numerator/denominator reward-margin fraction.
type PoolMargin struct {
	cbor.StructAsArray
	Numerator   uint64
	Denominator uint64
}

// PoolParams is the CDDL `pool_params` record backing a pool registration
// certificate.
type PoolParams struct {
	Operator      Blake2b224
	VrfKeyHash    Blake2b256
	Pledge        uint64
	Cost          uint64
	Margin        PoolMargin
	RewardAccount Address
	Owners        []Blake2b224
	Relays        []cbor.RawMessage
	Metadata      *PoolMetadata
}

// PoolMetadata is the off-chain pool metadata pointer.
type PoolMetadata struct {
	cbor.StructAsArray
	URL  string
	Hash Blake2b256
}

func (m PoolMetadata) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(m) }
func (m *PoolMetadata) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, m) }

func (p PoolParams) MarshalCBOR() ([]byte, error) {
	var metadata any
	if p.Metadata != nil {
		metadata = p.Metadata
	}
	return cbor.Encode([]any{
		p.Operator, p.VrfKeyHash, p.Pledge, p.Cost, p.Margin,
		p.RewardAccount, p.Owners, p.Relays, metadata,
	})
}

func (p *PoolParams) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(data, &raw); err != nil || len(raw) < 9 {
		return WrapDecoding("PoolParams", err)
	}
	var out PoolParams
	fields := []any{
		&out.Operator, &out.VrfKeyHash, &out.Pledge, &out.Cost, &out.Margin,
		&out.RewardAccount, &out.Owners, &out.Relays,
	}
	for i, f := range fields {
		if _, err := cbor.Decode(raw[i], f); err != nil {
			return WrapDecoding("PoolParams: field", err)
		}
	}
	var metaTag cbor.RawMessage = raw[8]
	if string(metaTag) != "\xf6" { // CBOR null
		var meta PoolMetadata
		if err := meta.UnmarshalCBOR(metaTag); err == nil {
			out.Metadata = &meta
		}
	}
	*p = out
	return nil
}

// Certificate is the tagged union of every certificate kind the builder
// can emit. Not every field is populated for a given Type; callers use
// the NewXxxCertificate constructors to build one correctly.
type Certificate struct {
	Type          CertificateType
	Credential    Credential
	Credential2   Credential // second credential for deleg/committee certs
	PoolKeyHash   Blake2b224
	Epoch         uint64
	Coin          uint64
	Drep          *Drep
	Anchor        *Anchor
	PoolParams    *PoolParams
}

func NewStakeRegistrationCertificate(cred Credential) Certificate {
	return Certificate{Type: CertStakeRegistration, Credential: cred}
}

func NewStakeDeregistrationCertificate(cred Credential) Certificate {
	return Certificate{Type: CertStakeDeregistration, Credential: cred}
}

func NewStakeDelegationCertificate(cred Credential, pool Blake2b224) Certificate {
	return Certificate{Type: CertStakeDelegation, Credential: cred, PoolKeyHash: pool}
}

func NewPoolRetirementCertificate(pool Blake2b224, epoch uint64) Certificate {
	return Certificate{Type: CertPoolRetirement, PoolKeyHash: pool, Epoch: epoch}
}

func NewRegCertificate(cred Credential, deposit uint64) Certificate {
	return Certificate{Type: CertRegCert, Credential: cred, Coin: deposit}
}

func NewUnregCertificate(cred Credential, deposit uint64) Certificate {
	return Certificate{Type: CertUnregCert, Credential: cred, Coin: deposit}
}

func NewVoteDelegCertificate(cred Credential, drep Drep) Certificate {
	return Certificate{Type: CertVoteDelegCert, Credential: cred, Drep: &drep}
}

func NewStakeVoteDelegCertificate(cred Credential, pool Blake2b224, drep Drep) Certificate {
	return Certificate{Type: CertStakeVoteDelegCert, Credential: cred, PoolKeyHash: pool, Drep: &drep}
}

func NewRegDrepCertificate(cred Credential, deposit uint64, anchor *Anchor) Certificate {
	return Certificate{Type: CertRegDrepCert, Credential: cred, Coin: deposit, Anchor: anchor}
}

func NewUnregDrepCertificate(cred Credential, deposit uint64) Certificate {
	return Certificate{Type: CertUnregDrepCert, Credential: cred, Coin: deposit}
}

func NewUpdateDrepCertificate(cred Credential, anchor *Anchor) Certificate {
	return Certificate{Type: CertUpdateDrepCert, Credential: cred, Anchor: anchor}
}

func NewAuthCommitteeHotCertificate(cold, hot Credential) Certificate {
	return Certificate{Type: CertAuthCommitteeHotCert, Credential: cold, Credential2: hot}
}

func NewResignCommitteeColdCertificate(cold Credential, anchor *Anchor) Certificate {
	return Certificate{Type: CertResignCommitteeColdCert, Credential: cold, Anchor: anchor}
}

func (c Certificate) MarshalCBOR() ([]byte, error) {
	switch c.Type {
	case CertStakeRegistration, CertStakeDeregistration:
		return cbor.Encode([]any{c.Type, c.Credential})
	case CertStakeDelegation:
		return cbor.Encode([]any{c.Type, c.Credential, c.PoolKeyHash})
	case CertPoolRegistration:
		return cbor.Encode([]any{c.Type, c.PoolParams})
	case CertPoolRetirement:
		return cbor.Encode([]any{c.Type, c.PoolKeyHash, c.Epoch})
	case CertRegCert, CertUnregCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.Coin})
	case CertVoteDelegCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.Drep})
	case CertStakeVoteDelegCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.PoolKeyHash, c.Drep})
	case CertStakeRegDelegCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.PoolKeyHash, c.Coin})
	case CertVoteRegDelegCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.Drep, c.Coin})
	case CertStakeVoteRegDelegCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.PoolKeyHash, c.Drep, c.Coin})
	case CertAuthCommitteeHotCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.Credential2})
	case CertResignCommitteeColdCert:
		return cbor.Encode([]any{c.Type, c.Credential, anchorOrNil(c.Anchor)})
	case CertRegDrepCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.Coin, anchorOrNil(c.Anchor)})
	case CertUnregDrepCert:
		return cbor.Encode([]any{c.Type, c.Credential, c.Coin})
	case CertUpdateDrepCert:
		return cbor.Encode([]any{c.Type, c.Credential, anchorOrNil(c.Anchor)})
	default:
		return nil, NewInvalidArgumentError("Certificate.MarshalCBOR", "unknown certificate type %d", c.Type)
	}
}

func anchorOrNil(a *Anchor) any {
	if a == nil {
		return nil
	}
	return a
}

func (c *Certificate) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(data, &raw); err != nil || len(raw) == 0 {
		return WrapDecoding("Certificate", err)
	}
	var typ CertificateType
	if _, err := cbor.Decode(raw[0], &typ); err != nil {
		return WrapDecoding("Certificate: type", err)
	}
	get := func(i int, v any) error {
		if i >= len(raw) {
			return NewOutOfBoundsError("Certificate: missing field %d for type %d", i, typ)
		}
		_, err := cbor.Decode(raw[i], v)
		return err
	}
	out := Certificate{Type: typ}
	switch typ {
	case CertStakeRegistration, CertStakeDeregistration:
		if err := get(1, &out.Credential); err != nil {
			return WrapDecoding("Certificate: credential", err)
		}
	case CertStakeDelegation:
		if err := get(1, &out.Credential); err != nil {
			return WrapDecoding("Certificate: credential", err)
		}
		if err := get(2, &out.PoolKeyHash); err != nil {
			return WrapDecoding("Certificate: pool", err)
		}
	case CertPoolRetirement:
		if err := get(1, &out.PoolKeyHash); err != nil {
			return WrapDecoding("Certificate: pool", err)
		}
		if err := get(2, &out.Epoch); err != nil {
			return WrapDecoding("Certificate: epoch", err)
		}
	case CertRegCert, CertUnregCert, CertUnregDrepCert:
		if err := get(1, &out.Credential); err != nil {
			return WrapDecoding("Certificate: credential", err)
		}
		if err := get(2, &out.Coin); err != nil {
			return WrapDecoding("Certificate: coin", err)
		}
	case CertVoteDelegCert:
		if err := get(1, &out.Credential); err != nil {
			return WrapDecoding("Certificate: credential", err)
		}
		var d Drep
		if err := get(2, &d); err != nil {
			return WrapDecoding("Certificate: drep", err)
		}
		out.Drep = &d
	case CertAuthCommitteeHotCert:
		if err := get(1, &out.Credential); err != nil {
			return WrapDecoding("Certificate: cold credential", err)
		}
		if err := get(2, &out.Credential2); err != nil {
			return WrapDecoding("Certificate: hot credential", err)
		}
	case CertResignCommitteeColdCert, CertUpdateDrepCert:
		if err := get(1, &out.Credential); err != nil {
			return WrapDecoding("Certificate: credential", err)
		}
	case CertRegDrepCert:
		if err := get(1, &out.Credential); err != nil {
			return WrapDecoding("Certificate: credential", err)
		}
		if err := get(2, &out.Coin); err != nil {
			return WrapDecoding("Certificate: coin", err)
		}
	default:
		return NewInvalidArgumentError("Certificate.UnmarshalCBOR", "unsupported certificate type %d on decode", typ)
	}
	*c = out
	return nil
}
