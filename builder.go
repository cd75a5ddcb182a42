// Package apollocore builds, balances, signs and submits Cardano
// transactions. It ties together package common's entity/CBOR model,
// package balancer's fee/coin-selection driver and package backend's
// chain-data providers into a fluent transaction builder.
package apollocore

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cardano-forge/apollocore/backend"
	"github.com/cardano-forge/apollocore/balancer"
	"github.com/cardano-forge/apollocore/common"
)

// mintEntry records one Mint call's policy/asset/amount/redeemer for
// later application to the draft body and witness set.
type mintEntry struct {
	Policy   common.PolicyId
	Asset    common.AssetName
	Amount   *big.Int
	Script   common.Script
	Redeemer *common.Datum
	ExUnits  common.ExUnits
}

// Builder is the main transaction-construction entry point: accumulate
// payments, inputs, mints, certificates and withdrawals, then Complete
// to run the balancer and produce a signable transaction.
type Builder struct {
	ctx      backend.ChainContext
	provider *chainProvider
	wallet   Wallet

	payments         []common.TransactionOutput
	preselectedUtxos []common.Utxo
	availableUtxos   []common.Utxo
	changeAddress    *common.Address
	certificates     []common.Certificate
	proposals        []common.ProposalProcedure
	withdrawals      common.Withdrawal
	hasWithdrawals   bool
	mints            []mintEntry
	datums           []common.Datum
	requiredSigners  []common.Blake2b224
	referenceInputs  []common.TransactionInput
	collateral       []common.Utxo
	extraSignerPad   int
	forcedFee        *uint64

	v1Scripts  []common.PlutusV1Script
	v2Scripts  []common.PlutusV2Script
	v3Scripts  []common.PlutusV3Script
	nativeScripts []common.NativeScript

	result *balancer.Result
	tx     *common.Transaction
}

// New creates a Builder driven by the given chain context.
func New(cc backend.ChainContext) *Builder {
	return &Builder{ctx: cc, provider: newChainProvider(cc)}
}

// SetWallet sets the wallet used as the default change address and
// signer.
func (b *Builder) SetWallet(w Wallet) *Builder {
	b.wallet = w
	if b.changeAddress == nil {
		addr := w.Address()
		b.changeAddress = &addr
	}
	return b
}

// SetChangeAddress overrides the address leftover change is paid to.
func (b *Builder) SetChangeAddress(addr common.Address) *Builder {
	b.changeAddress = &addr
	return b
}

// AddPayment adds a transaction output to pay.
func (b *Builder) AddPayment(out common.TransactionOutput) *Builder {
	b.payments = append(b.payments, out)
	return b
}

// PayToAddress is a convenience AddPayment for a plain value transfer.
func (b *Builder) PayToAddress(addr common.Address, amount common.Value) *Builder {
	return b.AddPayment(common.NewTransactionOutput(addr, amount))
}

// PayToContract adds a payment carrying a datum (by hash or inline).
func (b *Builder) PayToContract(addr common.Address, amount common.Value, datum *common.DatumOption) *Builder {
	out := common.NewTransactionOutput(addr, amount)
	out.Datum = datum
	return b.AddPayment(out)
}

// AddInput forces a specific UTxO to be spent, outside coin selection.
func (b *Builder) AddInput(utxo common.Utxo) *Builder {
	b.preselectedUtxos = append(b.preselectedUtxos, utxo)
	return b
}

// AddLoadedUtxos adds to the candidate pool coin selection draws from.
func (b *Builder) AddLoadedUtxos(utxos ...common.Utxo) *Builder {
	b.availableUtxos = append(b.availableUtxos, utxos...)
	return b
}

// CollectFrom is an alias of AddLoadedUtxos, named for the common case
// of spending from a script address whose UTxOs were fetched up front.
func (b *Builder) CollectFrom(utxos ...common.Utxo) *Builder {
	return b.AddLoadedUtxos(utxos...)
}

// SetCollateral sets the collateral UTxOs backing Plutus script failure.
func (b *Builder) SetCollateral(utxos ...common.Utxo) *Builder {
	b.collateral = utxos
	return b
}

// AddReferenceInput adds a reference input (read, not spent).
func (b *Builder) AddReferenceInput(in common.TransactionInput) *Builder {
	b.referenceInputs = append(b.referenceInputs, in)
	return b
}

// AddRequiredSigner records an extra required-signer key hash not
// otherwise discoverable from inputs, certs or withdrawals (e.g. a
// native-script multisig participant).
func (b *Builder) AddRequiredSigner(hash common.Blake2b224) *Builder {
	b.requiredSigners = append(b.requiredSigners, hash)
	return b
}

// AddCertificate appends a certificate to the transaction body.
func (b *Builder) AddCertificate(cert common.Certificate) *Builder {
	b.certificates = append(b.certificates, cert)
	return b
}

// AddProposalProcedure appends a governance proposal procedure; its
// deposit is accounted for by the balancer the same way a certificate
// deposit is.
func (b *Builder) AddProposalProcedure(proposal common.ProposalProcedure) *Builder {
	b.proposals = append(b.proposals, proposal)
	return b
}

// AddDatum adds a datum to the witness set, for outputs locked by a
// datum hash rather than an inline datum.
func (b *Builder) AddDatum(datum common.Datum) *Builder {
	b.datums = append(b.datums, datum)
	return b
}

// RegisterStake adds a stake registration certificate.
func (b *Builder) RegisterStake(cred common.Credential) *Builder {
	return b.AddCertificate(common.NewStakeRegistrationCertificate(cred))
}

// DeregisterStake adds a stake deregistration certificate.
func (b *Builder) DeregisterStake(cred common.Credential) *Builder {
	return b.AddCertificate(common.NewStakeDeregistrationCertificate(cred))
}

// DelegateStake adds a stake delegation certificate.
func (b *Builder) DelegateStake(cred common.Credential, pool common.Blake2b224) *Builder {
	return b.AddCertificate(common.NewStakeDelegationCertificate(cred, pool))
}

// DelegateVote adds a vote delegation certificate.
func (b *Builder) DelegateVote(cred common.Credential, drep common.Drep) *Builder {
	return b.AddCertificate(common.NewVoteDelegCertificate(cred, drep))
}

// AddWithdrawal records a reward withdrawal. Returns an error if the
// account already has a withdrawal recorded in this builder.
func (b *Builder) AddWithdrawal(addr common.Address, amount uint64) error {
	if err := b.withdrawals.Add(addr, amount); err != nil {
		return err
	}
	b.hasWithdrawals = true
	return nil
}

// Mint adds a token-mint/burn entry. amount is signed: positive mints,
// negative burns. script is the policy script authorizing it. Mint
// records no redeemer or exUnits, so a Plutus policy added this way gets
// no mint redeemer in the transaction.
func (b *Builder) Mint(policy common.PolicyId, asset common.AssetName, amount *big.Int, script common.Script) *Builder {
	b.mints = append(b.mints, mintEntry{Policy: policy, Asset: asset, Amount: amount, Script: script})
	b.attachScript(script)
	return b
}

// SetForcedFee pins the transaction fee instead of letting the balancer
// estimate one. Mirrors the balancer's Request.ForcedFee escape hatch.
func (b *Builder) SetForcedFee(fee uint64) *Builder {
	b.forcedFee = &fee
	return b
}

// AddExtraSignerPadding pads the fee-estimation witness count for
// signers coin selection can't discover structurally (e.g. extra
// native-script multisig participants beyond what UniqueSigners finds).
func (b *Builder) AddExtraSignerPadding(n int) *Builder {
	b.extraSignerPad += n
	return b
}

func (b *Builder) attachScript(script common.Script) {
	switch s := script.(type) {
	case common.NativeScript:
		b.nativeScripts = append(b.nativeScripts, s)
	case common.PlutusV1Script:
		b.v1Scripts = append(b.v1Scripts, s)
	case common.PlutusV2Script:
		b.v2Scripts = append(b.v2Scripts, s)
	case common.PlutusV3Script:
		b.v3Scripts = append(b.v3Scripts, s)
	}
}

func (b *Builder) mintValue() *common.Mint {
	if len(b.mints) == 0 {
		return nil
	}
	m := common.NewMint()
	for _, e := range b.mints {
		m.Set(e.Policy, e.Asset, e.Amount)
	}
	return &m
}

// redeemers collects one RedeemerValue per distinct minting policy that
// carries a Plutus redeemer, keyed by that policy's index in the mint
// value's canonical (sorted) policy order, which is how the ledger
// correlates a RedeemerTagMint entry back to its policy.
func (b *Builder) redeemers() map[common.RedeemerKey]common.RedeemerValue {
	m := b.mintValue()
	if m == nil {
		return nil
	}
	policies := m.Policies()
	index := make(map[common.PolicyId]int, len(policies))
	for i, p := range policies {
		index[p] = i
	}
	out := map[common.RedeemerKey]common.RedeemerValue{}
	for _, e := range b.mints {
		if e.Redeemer == nil {
			continue
		}
		i, ok := index[e.Policy]
		if !ok {
			continue
		}
		key := common.RedeemerKey{Tag: common.RedeemerTagMint, Index: uint32(i)}
		out[key] = common.RedeemerValue{Data: *e.Redeemer, ExUnits: e.ExUnits}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Complete runs the balancer against the builder's accumulated state,
// fetching the wallet's own UTxOs as the candidate pool when none were
// explicitly loaded, and produces a balanced, unsigned transaction.
func (b *Builder) Complete(ctx context.Context) (*common.Transaction, error) {
	if b.changeAddress == nil {
		return nil, fmt.Errorf("apollocore: no change address set (call SetWallet or SetChangeAddress)")
	}

	available := b.availableUtxos
	if len(available) == 0 && b.wallet != nil {
		utxos, err := b.ctx.Utxos(ctx, b.wallet.Address())
		if err != nil {
			return nil, fmt.Errorf("apollocore: fetching wallet utxos: %w", err)
		}
		available = utxos
	}

	pp, err := b.ctx.ProtocolParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("apollocore: fetching protocol parameters: %w", err)
	}

	bal := balancer.New(pp, depositsFromParams(pp)).WithEvaluator(b.provider)

	var withdrawals *common.Withdrawal
	if b.hasWithdrawals {
		withdrawals = &b.withdrawals
	}

	req := balancer.Request{
		Inputs:             b.preselectedUtxos,
		Available:          SortUtxos(available),
		Outputs:            b.payments,
		ChangeAddress:      *b.changeAddress,
		Certificates:       b.certificates,
		Proposals:          b.proposals,
		Withdrawals:        withdrawals,
		Mint:               b.mintValue(),
		RequiredSigners:    b.requiredSigners,
		ReferenceInputs:    b.referenceInputs,
		Collateral:         b.collateral,
		ExtraSignerPadding: b.extraSignerPad,
		ForcedFee:          b.forcedFee,
		Redeemers:          b.redeemers(),
		Datums:             b.datums,
	}

	result, err := bal.Balance(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("apollocore: balancing transaction: %w", err)
	}
	b.result = &result

	ws := common.WitnessSet{
		NativeScripts:   b.nativeScripts,
		PlutusV1Scripts: b.v1Scripts,
		PlutusV2Scripts: b.v2Scripts,
		PlutusV3Scripts: b.v3Scripts,
		PlutusData:      b.datums,
		Redeemers:       result.Redeemers,
	}

	body := result.Body
	if hasPlutusScripts(ws) {
		hash, err := b.scriptDataHash(pp, result.Redeemers)
		if err != nil {
			return nil, err
		}
		body.ScriptDataHash = hash
	}
	if len(b.requiredSigners) > 0 {
		set := common.NewSetType(dedupSigners(result.Signers), true)
		body.RequiredSigners = &set
	}

	tx := common.NewTransaction(body, ws, nil)
	b.tx = &tx
	return &tx, nil
}

func hasPlutusScripts(ws common.WitnessSet) bool {
	return len(ws.PlutusV1Scripts) > 0 || len(ws.PlutusV2Scripts) > 0 || len(ws.PlutusV3Scripts) > 0
}

// scriptDataHash computes the Alonzo script-data-hash preimage
// (redeemers ‖ datums ‖ language views) over this transaction's actual
// redeemers and datums and the cost models for every Plutus language
// its witness set uses.
func (b *Builder) scriptDataHash(pp common.ProtocolParameters, redeemers map[common.RedeemerKey]common.RedeemerValue) (*common.Blake2b256, error) {
	used := make(map[uint]struct{})
	costModels := make(map[uint][]int64)
	addLang := func(key string) {
		v, ok := langVersionFromCostModelKey(key)
		if !ok {
			return
		}
		if costs, ok := pp.CostModels[key]; ok {
			used[v] = struct{}{}
			costModels[v] = costs
		}
	}
	if len(b.v1Scripts) > 0 {
		addLang("PlutusV1")
	}
	if len(b.v2Scripts) > 0 {
		addLang("PlutusV2")
	}
	if len(b.v3Scripts) > 0 {
		addLang("PlutusV3")
	}
	hash, err := common.ComputeScriptDataHash(redeemers, b.datums, used, costModels)
	if err != nil {
		return nil, fmt.Errorf("apollocore: computing script data hash: %w", err)
	}
	return hash, nil
}

func dedupSigners(signers []common.Blake2b224) []common.Blake2b224 {
	seen := make(map[common.Blake2b224]struct{}, len(signers))
	out := make([]common.Blake2b224, 0, len(signers))
	for _, s := range signers {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Sign signs the completed transaction with the builder's wallet and
// appends the resulting vkey witness. Complete must be called first.
func (b *Builder) Sign() (*common.Transaction, error) {
	if b.tx == nil {
		return nil, fmt.Errorf("apollocore: Sign called before Complete")
	}
	if b.wallet == nil {
		return nil, fmt.Errorf("apollocore: no wallet set")
	}
	bodyHash, err := b.tx.Body.Hash()
	if err != nil {
		return nil, fmt.Errorf("apollocore: hashing transaction body: %w", err)
	}
	witness, err := b.wallet.SignTxBody(bodyHash)
	if err != nil {
		return nil, fmt.Errorf("apollocore: signing transaction: %w", err)
	}
	b.tx.WitnessSet.VkeyWitnesses = append(b.tx.WitnessSet.VkeyWitnesses, witness)
	return b.tx, nil
}

// GetTx returns the transaction built so far (nil before Complete).
func (b *Builder) GetTx() *common.Transaction { return b.tx }

// GetTxCbor returns the CBOR encoding of the transaction built so far.
func (b *Builder) GetTxCbor() ([]byte, error) {
	if b.tx == nil {
		return nil, fmt.Errorf("apollocore: GetTxCbor called before Complete")
	}
	return b.tx.Bytes()
}

// Submit submits the built, signed transaction via the chain context.
func (b *Builder) Submit(ctx context.Context) (common.Blake2b256, error) {
	if b.tx == nil {
		return common.Blake2b256{}, fmt.Errorf("apollocore: Submit called before Complete")
	}
	return b.provider.SubmitTx(ctx, *b.tx)
}
