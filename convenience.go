package apollocore

import (
	"fmt"

	"github.com/cardano-forge/apollocore/common"
)

// PayToAddressBech32 pays to a bech32-encoded address.
func (b *Builder) PayToAddressBech32(bech32 string, amount common.Value) (*Builder, error) {
	addr, err := common.NewAddress(bech32)
	if err != nil {
		return b, fmt.Errorf("apollocore: invalid bech32 address: %w", err)
	}
	return b.PayToAddress(addr, amount), nil
}

// SetChangeAddressBech32 sets the change address from a bech32 string.
func (b *Builder) SetChangeAddressBech32(bech32 string) (*Builder, error) {
	addr, err := common.NewAddress(bech32)
	if err != nil {
		return b, fmt.Errorf("apollocore: invalid bech32 address: %w", err)
	}
	return b.SetChangeAddress(addr), nil
}

// PayToContractWithReferenceScript pays to a script address with an
// inline datum and attaches a reference script to the output.
func (b *Builder) PayToContractWithReferenceScript(addr common.Address, datum *common.PlutusData, amount common.Value, script common.Script) (*Builder, error) {
	ref, err := common.NewScriptRef(script)
	if err != nil {
		return b, fmt.Errorf("apollocore: building script ref: %w", err)
	}
	out := common.NewTransactionOutput(addr, amount)
	out.ScriptRef = ref
	if datum != nil {
		datumOpt, err := common.NewDatumOptionInline(datum)
		if err != nil {
			return b, fmt.Errorf("apollocore: attaching inline datum: %w", err)
		}
		out.Datum = datumOpt
	}
	return b.AddPayment(out), nil
}

// PayToAddressWithReferenceScript pays to an address with a reference
// script attached but no datum.
func (b *Builder) PayToAddressWithReferenceScript(addr common.Address, amount common.Value, script common.Script) (*Builder, error) {
	ref, err := common.NewScriptRef(script)
	if err != nil {
		return b, fmt.Errorf("apollocore: building script ref: %w", err)
	}
	out := common.NewTransactionOutput(addr, amount)
	out.ScriptRef = ref
	return b.AddPayment(out), nil
}
