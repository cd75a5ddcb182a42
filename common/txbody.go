package common

import "github.com/cardano-forge/apollocore/cbor"

// TransactionBody is the Conway-era `transaction_body` map. Optional
// fields are nil/zero-value when absent; MarshalCBOR only emits the keys
// that are populated.
type TransactionBody struct {
	Inputs                SetType[TransactionInput]
	Outputs               []TransactionOutput
	Fee                   uint64
	Ttl                   *uint64
	Certificates          *SetType[Certificate]
	Withdrawals           *Withdrawal
	AuxiliaryDataHash     *Blake2b256
	ValidityIntervalStart *uint64
	Mint                  *Mint
	ScriptDataHash        *Blake2b256
	Collateral            *SetType[TransactionInput]
	RequiredSigners       *SetType[Blake2b224]
	NetworkId             *uint
	CollateralReturn      *TransactionOutput
	TotalCollateral       *uint64
	ReferenceInputs       *SetType[TransactionInput]
	VotingProcedures      VotingProcedures
	ProposalProcedures    *SetType[ProposalProcedure]
	CurrentTreasuryValue  *uint64
	Donation              *uint64
}

type transactionBodyWire struct {
	Inputs                SetType[TransactionInput]       `cbor:"0,keyasint"`
	Outputs               []TransactionOutput              `cbor:"1,keyasint"`
	Fee                   uint64                           `cbor:"2,keyasint"`
	Ttl                   *uint64                          `cbor:"3,keyasint,omitempty"`
	Certificates          *SetType[Certificate]            `cbor:"4,keyasint,omitempty"`
	Withdrawals           *Withdrawal                       `cbor:"5,keyasint,omitempty"`
	AuxiliaryDataHash     *Blake2b256                      `cbor:"7,keyasint,omitempty"`
	ValidityIntervalStart *uint64                          `cbor:"8,keyasint,omitempty"`
	Mint                  *Mint                            `cbor:"9,keyasint,omitempty"`
	ScriptDataHash        *Blake2b256                      `cbor:"11,keyasint,omitempty"`
	Collateral            *SetType[TransactionInput]       `cbor:"13,keyasint,omitempty"`
	RequiredSigners       *SetType[Blake2b224]             `cbor:"14,keyasint,omitempty"`
	NetworkId             *uint                            `cbor:"15,keyasint,omitempty"`
	CollateralReturn      *TransactionOutput               `cbor:"16,keyasint,omitempty"`
	TotalCollateral       *uint64                          `cbor:"17,keyasint,omitempty"`
	ReferenceInputs       *SetType[TransactionInput]       `cbor:"18,keyasint,omitempty"`
	VotingProcedures      VotingProcedures                 `cbor:"19,keyasint,omitempty"`
	ProposalProcedures    *SetType[ProposalProcedure]      `cbor:"20,keyasint,omitempty"`
	CurrentTreasuryValue  *uint64                          `cbor:"21,keyasint,omitempty"`
	Donation              *uint64                          `cbor:"22,keyasint,omitempty"`
}

func (b TransactionBody) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(transactionBodyWire(b))
}

func (b *TransactionBody) UnmarshalCBOR(data []byte) error {
	var wire transactionBodyWire
	if _, err := cbor.Decode(data, &wire); err != nil {
		return WrapDecoding("TransactionBody", err)
	}
	*b = TransactionBody(wire)
	return nil
}

// Hash returns the Blake2b-256 digest of the body's canonical CBOR, the
// value every witness signs.
func (b TransactionBody) Hash() (Blake2b256, error) {
	raw, err := cbor.Encode(b)
	if err != nil {
		return Blake2b256{}, WrapEncoding("TransactionBody.Hash", err)
	}
	return Blake2b256Hash(raw), nil
}
