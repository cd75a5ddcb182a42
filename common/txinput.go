package common

import "github.com/cardano-forge/apollocore/cbor"

// TransactionInput is a CDDL `transaction_input = [transaction_id, index]`.
type TransactionInput struct {
	cbor.StructAsArray
	TransactionId Blake2b256
	Index         uint32
}

func NewTransactionInput(txID Blake2b256, index uint32) TransactionInput {
	return TransactionInput{TransactionId: txID, Index: index}
}

func (i TransactionInput) MarshalCBOR() ([]byte, error)    { return cbor.MarshalArray(i) }
func (i *TransactionInput) UnmarshalCBOR(data []byte) error { return cbor.UnmarshalArray(data, i) }

// Compare orders inputs the way the ledger's set serialization and the
// builder's deterministic ordering both want: by tx id, then index.
func (i TransactionInput) Compare(other TransactionInput) int {
	if c := compareBytes(i.TransactionId[:], other.TransactionId[:]); c != 0 {
		return c
	}
	switch {
	case i.Index < other.Index:
		return -1
	case i.Index > other.Index:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
