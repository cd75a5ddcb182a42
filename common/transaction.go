package common

import "github.com/cardano-forge/apollocore/cbor"

// Transaction is the full `[transaction_body, transaction_witness_set,
// bool, auxiliary_data / null]` wire structure.
type Transaction struct {
	cbor.DecodeStoreCbor
	Body          TransactionBody
	WitnessSet    WitnessSet
	IsValid       bool
	AuxiliaryData *AuxiliaryData
}

func NewTransaction(body TransactionBody, witnessSet WitnessSet, auxData *AuxiliaryData) Transaction {
	return Transaction{Body: body, WitnessSet: witnessSet, IsValid: true, AuxiliaryData: auxData}
}

func (t Transaction) MarshalCBOR() ([]byte, error) {
	var aux any
	if t.AuxiliaryData != nil {
		aux = t.AuxiliaryData
	}
	return cbor.Encode([]any{t.Body, t.WitnessSet, t.IsValid, aux})
}

func (t *Transaction) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if _, err := cbor.Decode(data, &raw); err != nil || len(raw) != 4 {
		return WrapDecoding("Transaction", err)
	}
	var out Transaction
	if err := out.Body.UnmarshalCBOR(raw[0]); err != nil {
		return err
	}
	if err := out.WitnessSet.UnmarshalCBOR(raw[1]); err != nil {
		return err
	}
	if _, err := cbor.Decode(raw[2], &out.IsValid); err != nil {
		return WrapDecoding("Transaction: is_valid", err)
	}
	if string(raw[3]) != "\xf6" {
		var aux AuxiliaryData
		if err := aux.UnmarshalCBOR(raw[3]); err != nil {
			return err
		}
		out.AuxiliaryData = &aux
	}
	out.SetCbor(data)
	*t = out
	return nil
}

// Hash returns the transaction's ID: the Blake2b-256 hash of its body.
func (t Transaction) Hash() (Blake2b256, error) { return t.Body.Hash() }

// Bytes renders the transaction's canonical CBOR, using the bytes it
// was decoded from if available.
func (t Transaction) Bytes() ([]byte, error) {
	if cached := t.Cbor(); cached != nil {
		return cached, nil
	}
	return cbor.Encode(t)
}
