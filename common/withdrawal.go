package common

import "github.com/cardano-forge/apollocore/cbor"

// Withdrawal is the transaction body's `withdrawals` field: a map from
// reward account to the lovelace amount withdrawn. It preserves
// insertion order for deterministic iteration (e.g. when computing
// UniqueSigners) and rejects re-adding the same reward account, since a
// transaction can only withdraw from each account once.
type Withdrawal struct {
	accounts []Address
	amounts  []uint64
}

// Add records a withdrawal from addr. Returns a KindDuplicatedKey error
// if addr already has a withdrawal recorded.
func (w *Withdrawal) Add(addr Address, lovelace uint64) error {
	for _, a := range w.accounts {
		if string(a.Bytes()) == string(addr.Bytes()) {
			return NewDuplicatedKeyError("Withdrawal.Add: reward account %s already has a withdrawal", addr.String())
		}
	}
	w.accounts = append(w.accounts, addr)
	w.amounts = append(w.amounts, lovelace)
	return nil
}

func (w *Withdrawal) Len() int { return len(w.accounts) }

// Total sums every recorded withdrawal amount.
func (w *Withdrawal) Total() uint64 {
	var sum uint64
	for _, a := range w.amounts {
		sum += a
	}
	return sum
}

// Accounts returns the withdrawing reward accounts in insertion order.
func (w *Withdrawal) Accounts() []Address {
	return append([]Address(nil), w.accounts...)
}

func (w Withdrawal) MarshalCBOR() ([]byte, error) {
	m := make(map[cbor.ByteString]uint64, len(w.accounts))
	for i, a := range w.accounts {
		m[cbor.NewByteString(a.Bytes())] = w.amounts[i]
	}
	return cbor.Encode(m)
}

func (w *Withdrawal) UnmarshalCBOR(data []byte) error {
	var m map[cbor.ByteString]uint64
	if _, err := cbor.Decode(data, &m); err != nil {
		return WrapDecoding("Withdrawal", err)
	}
	w.accounts = w.accounts[:0]
	w.amounts = w.amounts[:0]
	for k, v := range m {
		addr, err := NewAddressFromBytes(k.Bytes())
		if err != nil {
			return err
		}
		w.accounts = append(w.accounts, addr)
		w.amounts = append(w.amounts, v)
	}
	return nil
}
