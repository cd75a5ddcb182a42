package common

import "github.com/cardano-forge/apollocore/cbor"

// DrepType discriminates the CDDL `drep` union: a key-hash delegate, a
// script-hash delegate, or the two special always-abstain/always-no-
// confidence delegates.
type DrepType uint

const (
	DrepTypeKeyHash        DrepType = 0
	DrepTypeScriptHash     DrepType = 1
	DrepTypeAbstain        DrepType = 2
	DrepTypeNoConfidence   DrepType = 3
)

// Drep is a delegated-representative reference.
type Drep struct {
	Type DrepType
	Hash Blake2b224
}

func NewDrepKeyHash(h Blake2b224) Drep    { return Drep{Type: DrepTypeKeyHash, Hash: h} }
func NewDrepScriptHash(h Blake2b224) Drep { return Drep{Type: DrepTypeScriptHash, Hash: h} }
func NewDrepAbstain() Drep                { return Drep{Type: DrepTypeAbstain} }
func NewDrepNoConfidence() Drep           { return Drep{Type: DrepTypeNoConfidence} }

func (d Drep) MarshalCBOR() ([]byte, error) {
	switch d.Type {
	case DrepTypeKeyHash, DrepTypeScriptHash:
		return cbor.Encode([]any{d.Type, d.Hash})
	case DrepTypeAbstain, DrepTypeNoConfidence:
		return cbor.Encode([]any{d.Type})
	default:
		return nil, NewInvalidArgumentError("Drep.MarshalCBOR", "unknown drep type %d", d.Type)
	}
}

func (d *Drep) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(data, &raw); err != nil || len(raw) == 0 {
		return WrapDecoding("Drep", err)
	}
	var typ DrepType
	if _, err := cbor.Decode(raw[0], &typ); err != nil {
		return WrapDecoding("Drep: type", err)
	}
	out := Drep{Type: typ}
	if typ == DrepTypeKeyHash || typ == DrepTypeScriptHash {
		if len(raw) < 2 {
			return NewOutOfBoundsError("Drep: missing hash")
		}
		if _, err := cbor.Decode(raw[1], &out.Hash); err != nil {
			return WrapDecoding("Drep: hash", err)
		}
	}
	*d = out
	return nil
}

// Anchor points at off-chain rationale/metadata: a URL plus the
// blake2b-256 hash of its content.
type Anchor struct {
	cbor.StructAsArray
	URL  string
	Hash Blake2b256
}

func (a Anchor) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(a) }
func (a *Anchor) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, a) }

// GovActionId identifies a previously-submitted governance action by
// the transaction that proposed it and its index within that tx.
type GovActionId struct {
	cbor.StructAsArray
	TransactionId Blake2b256
	ActionIndex   uint32
}

func (g GovActionId) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(g) }
func (g *GovActionId) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, g) }

// Vote is a yes/no/abstain ballot.
type Vote uint

const (
	VoteNo      Vote = 0
	VoteYes     Vote = 1
	VoteAbstain Vote = 2
)

// VoterType discriminates who is casting a vote.
type VoterType uint

const (
	VoterConstitutionalCommitteeHotKeyHash    VoterType = 0
	VoterConstitutionalCommitteeHotScriptHash VoterType = 1
	VoterDrepKeyHash                          VoterType = 2
	VoterDrepScriptHash                       VoterType = 3
	VoterStakingPoolKeyHash                   VoterType = 4
)

// Voter identifies the credential casting a vote.
type Voter struct {
	cbor.StructAsArray
	Type VoterType
	Hash Blake2b224
}

func (v Voter) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(v) }
func (v *Voter) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, v) }

// VotingProcedure is a single `[vote, anchor/null]` ballot entry.
type VotingProcedure struct {
	Vote   Vote
	Anchor *Anchor
}

func (p VotingProcedure) MarshalCBOR() ([]byte, error) {
	return cbor.Encode([]any{p.Vote, anchorOrNil(p.Anchor)})
}

func (p *VotingProcedure) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(data, &raw); err != nil || len(raw) != 2 {
		return WrapDecoding("VotingProcedure", err)
	}
	var out VotingProcedure
	if _, err := cbor.Decode(raw[0], &out.Vote); err != nil {
		return WrapDecoding("VotingProcedure: vote", err)
	}
	if string(raw[1]) != "\xf6" {
		var a Anchor
		if err := a.UnmarshalCBOR(raw[1]); err == nil {
			out.Anchor = &a
		}
	}
	*p = out
	return nil
}

// VotingProcedures is the nested `{voter => {gov_action_id =>
// voting_procedure}}` map the transaction body's votes field holds.
type VotingProcedures map[Voter]map[GovActionId]VotingProcedure

// GovActionType discriminates the `gov_action` CDDL union.
type GovActionType uint

const (
	GovActionParameterChange     GovActionType = 0
	GovActionHardForkInitiation  GovActionType = 1
	GovActionTreasuryWithdrawals GovActionType = 2
	GovActionNoConfidence        GovActionType = 3
	GovActionUpdateCommittee     GovActionType = 4
	GovActionNewConstitution     GovActionType = 5
	GovActionInfo                GovActionType = 6
)

// GovAction is the payload of a governance-action proposal. Only the
// fields relevant to Type are populated; Raw carries the literal
// sub-fields for action kinds this module treats as opaque pass-through
// (parameter_change's protocol-param-update diff, in particular).
type GovAction struct {
	Type                GovActionType
	PriorActionId       *GovActionId
	WithdrawalAccounts  []Address
	WithdrawalAmounts   []uint64
	NewConstitutionURL  string
	NewConstitutionHash *Blake2b256
	Raw                 []cbor.RawMessage
}

func (a GovAction) marshalWithdrawalsMap() map[cbor.ByteString]uint64 {
	m := make(map[cbor.ByteString]uint64, len(a.WithdrawalAccounts))
	for i, addr := range a.WithdrawalAccounts {
		m[cbor.NewByteString(addr.Bytes())] = a.WithdrawalAmounts[i]
	}
	return m
}

func (a GovAction) MarshalCBOR() ([]byte, error) {
	switch a.Type {
	case GovActionTreasuryWithdrawals:
		return cbor.Encode([]any{a.Type, a.marshalWithdrawalsMap(), nil})
	case GovActionNoConfidence:
		return cbor.Encode([]any{a.Type, govActionIdOrNil(a.PriorActionId)})
	case GovActionInfo:
		return cbor.Encode([]any{a.Type})
	default:
		elems := make([]any, 0, len(a.Raw)+1)
		elems = append(elems, a.Type)
		for _, r := range a.Raw {
			elems = append(elems, r)
		}
		return cbor.Encode(elems)
	}
}

func govActionIdOrNil(g *GovActionId) any {
	if g == nil {
		return nil
	}
	return g
}

func (a *GovAction) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(data, &raw); err != nil || len(raw) == 0 {
		return WrapDecoding("GovAction", err)
	}
	var typ GovActionType
	if _, err := cbor.Decode(raw[0], &typ); err != nil {
		return WrapDecoding("GovAction: type", err)
	}
	if typ == GovActionTreasuryWithdrawals && len(raw) >= 2 {
		var m map[cbor.ByteString]uint64
		if _, err := cbor.Decode(raw[1], &m); err == nil {
			out := GovAction{Type: typ}
			for k, v := range m {
				addr, err := NewAddressFromBytes(k.Bytes())
				if err != nil {
					return err
				}
				out.WithdrawalAccounts = append(out.WithdrawalAccounts, addr)
				out.WithdrawalAmounts = append(out.WithdrawalAmounts, v)
			}
			*a = out
			return nil
		}
	}
	*a = GovAction{Type: typ, Raw: raw[1:]}
	return nil
}

// ProposalProcedure is a single governance-action proposal entry in the
// transaction body's `proposal_procedures` set.
type ProposalProcedure struct {
	cbor.StructAsArray
	Deposit       uint64
	RewardAccount Address
	GovAction     GovAction
	Anchor        Anchor
}

func (p ProposalProcedure) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(p) }
func (p *ProposalProcedure) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, p) }
