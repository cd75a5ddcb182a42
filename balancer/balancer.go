package balancer

import (
	"context"
	"fmt"

	"github.com/cardano-forge/apollocore/common"
)

// maxBalanceIterations bounds the fixed-point loop: each pass can only
// grow the fee (never shrink, since size only grows as witnesses/change
// are added), so convergence within a handful of passes is guaranteed
// once inputs/outputs stop changing. Three mirrors the teacher's
// generally-sufficient draft/selection/final-size pass count.
const maxBalanceIterations = 3

// Request is everything the balancer needs to turn a set of payments
// and optional extras into a balanced transaction body.
type Request struct {
	Inputs            []common.Utxo // pre-selected, always included
	Available         []common.Utxo // candidate pool for coin selection
	Outputs           []common.TransactionOutput
	ChangeAddress     common.Address
	Certificates      []common.Certificate
	Proposals         []common.ProposalProcedure
	Withdrawals       *common.Withdrawal
	Mint              *common.Mint
	RequiredSigners   []common.Blake2b224
	ReferenceInputs   []common.TransactionInput
	// Collateral, when non-empty, pins the exact collateral inputs to
	// use. When empty and the request carries redeemers, the balancer
	// auto-selects collateral from Available the same way it auto-
	// selects payment inputs.
	Collateral         []common.Utxo
	ExtraSignerPadding int
	ForcedFee          *uint64

	// Redeemers and Datums are the witness-set contents driving Plutus
	// script execution. Their presence is what triggers automatic
	// collateral selection and Evaluator invocation.
	Redeemers map[common.RedeemerKey]common.RedeemerValue
	Datums    []common.Datum
}

// Result is the balanced body plus the bookkeeping the builder needs to
// finish assembling a signable transaction.
type Result struct {
	Body             common.TransactionBody
	SelectedInputs   []common.Utxo
	ChangeOutput     *common.TransactionOutput
	Fee              uint64
	Signers          []common.Blake2b224
	CollateralInputs []common.Utxo
	CollateralReturn *common.TransactionOutput
	TotalCollateral  uint64
	// Redeemers holds the request's redeemers with execution units
	// refreshed by the Evaluator, when one is configured.
	Redeemers map[common.RedeemerKey]common.RedeemerValue
}

// Balancer ties coin selection, implicit coin accounting, fee estimation
// and collateral sizing together into the bounded fixed-point loop that
// produces a transaction balancing to exactly zero leftover value.
type Balancer struct {
	Selector  CoinSelector
	Evaluator Evaluator
	Deposits  DepositAmounts
	Params    common.ProtocolParameters
}

func New(pp common.ProtocolParameters, deposits DepositAmounts) *Balancer {
	return &Balancer{Selector: GreedySelector{}, Deposits: deposits, Params: pp}
}

// WithEvaluator attaches the Plutus script evaluator the balancer
// invokes before sizing collateral and estimating the final fee,
// whenever the request carries redeemers.
func (b *Balancer) WithEvaluator(e Evaluator) *Balancer {
	b.Evaluator = e
	return b
}

// Balance runs the fixed-point loop: select coins for the current fee
// guess, estimate the fee of the resulting draft, and repeat with the
// new fee guess until it stops changing or the iteration bound is hit.
func (b *Balancer) Balance(ctx context.Context, req Request) (Result, error) {
	implicit := ComputeImplicitCoin(req.Certificates, req.Proposals, req.Withdrawals, b.Deposits)

	outputTotal, err := sumOutputs(req.Outputs)
	if err != nil {
		return Result{}, err
	}
	preselectedTotal, err := sumInputs(req.Inputs)
	if err != nil {
		return Result{}, err
	}

	// Minted assets reduce what coin selection must find among Available
	// (they materialize from the mint, not from an input); burned assets
	// are the opposite, since an existing input quantity must cover them.
	var mintPositive, mintNegative common.Value
	if req.Mint != nil {
		mintValue := common.Value{Assets: req.Mint}
		mintPositive = mintValue.Positive()
		mintNegative = mintValue.Negative()
	}

	hasScripts := len(req.Redeemers) > 0

	var fee uint64
	if req.ForcedFee != nil {
		fee = *req.ForcedFee
	}

	var (
		selected            []common.Utxo
		change              common.Value
		redeemers           map[common.RedeemerKey]common.RedeemerValue
		collateralPicked    []common.Utxo
		collateralReturnOut *common.TransactionOutput
		totalCollateral     uint64
	)

	for iter := 0; iter < maxBalanceIterations; iter++ {
		required, err := outputTotal.Add(common.NewCoinValue(fee))
		if err != nil {
			return Result{}, err
		}
		if implicit.Net() < 0 {
			required, err = required.Add(common.NewCoinValue(uint64(-implicit.Net())))
			if err != nil {
				return Result{}, err
			}
		}
		required = saturatingSub(required, mintPositive)
		if mintNegative.HasAssets() {
			required, err = required.Add(mintNegative)
			if err != nil {
				return Result{}, err
			}
		}

		haveSoFar := preselectedTotal
		if implicit.Net() > 0 {
			haveSoFar, err = haveSoFar.Add(common.NewCoinValue(uint64(implicit.Net())))
			if err != nil {
				return Result{}, err
			}
		}

		selected, change, err = b.Selector.SelectCoins(req.Available, mustSub(required, haveSoFar))
		if err != nil {
			return Result{}, err
		}

		allInputs := append(append([]common.Utxo(nil), req.Inputs...), selected...)

		redeemers = req.Redeemers
		collateralPicked = nil
		collateralReturnOut = nil
		totalCollateral = 0

		if hasScripts {
			if b.Evaluator != nil {
				evalBody, err := b.draftBody(req, allInputs, change, nil, nil, 0)
				if err != nil {
					return Result{}, err
				}
				evalWitnesses := common.WitnessSet{Redeemers: redeemers, PlutusData: req.Datums}
				evalTx := common.NewTransaction(evalBody, evalWitnesses, nil)
				updated, err := b.Evaluator.Evaluate(ctx, evalTx, allInputs)
				if err != nil {
					return Result{}, fmt.Errorf("balancer: evaluating script redeemers: %w", err)
				}
				redeemers = mergeExUnits(req.Redeemers, updated)
			}

			minCollateral := MinCollateral(fee, b.Params)
			if minCollateral > 0 {
				candidates := req.Collateral
				if len(candidates) == 0 {
					candidates = req.Available
				}
				picked, err := SelectCollateral(candidates, minCollateral, b.Params.MaxCollateralInputs)
				if err != nil {
					return Result{}, err
				}
				collateralPicked = picked
				collateralReturnOut = CollateralReturn(picked, minCollateral, req.ChangeAddress)
				for _, u := range picked {
					totalCollateral += u.Output.Amount.Coin
				}
			}
		}

		effectiveCollateral := req.Collateral
		if len(collateralPicked) > 0 {
			effectiveCollateral = collateralPicked
		}
		signers := UniqueSigners(allInputs, effectiveCollateral, req.RequiredSigners, req.Certificates, req.Withdrawals)

		body, err := b.draftBody(req, allInputs, change, collateralPicked, collateralReturnOut, totalCollateral)
		if err != nil {
			return Result{}, err
		}
		draftBytes, err := draftTxBytes(body, signers, req.ExtraSignerPadding, redeemers, req.Datums)
		if err != nil {
			return Result{}, err
		}

		newFee := fee
		if req.ForcedFee == nil {
			newFee = MinFee(draftBytes, b.Params, redeemers)
		}
		if newFee == fee {
			var changeOut *common.TransactionOutput
			if change.Coin > 0 || change.HasAssets() {
				out := common.NewTransactionOutput(req.ChangeAddress, change)
				changeOut = &out
			}
			body.Fee = fee
			return Result{
				Body:             body,
				SelectedInputs:   allInputs,
				ChangeOutput:     changeOut,
				Fee:              fee,
				Signers:          signers,
				CollateralInputs: collateralPicked,
				CollateralReturn: collateralReturnOut,
				TotalCollateral:  totalCollateral,
				Redeemers:        redeemers,
			}, nil
		}
		fee = newFee
	}
	return Result{}, common.NewBalanceInsufficientError("Balance: fee estimate did not converge within %d iterations", maxBalanceIterations)
}

// mergeExUnits returns base with each entry's ExUnits replaced by the
// evaluator's measured value, when present; entries the evaluator didn't
// report (it shouldn't omit any) keep base's original ExUnits.
func mergeExUnits(base map[common.RedeemerKey]common.RedeemerValue, updated map[common.RedeemerKey]common.ExUnits) map[common.RedeemerKey]common.RedeemerValue {
	out := make(map[common.RedeemerKey]common.RedeemerValue, len(base))
	for k, v := range base {
		if u, ok := updated[k]; ok {
			v.ExUnits = u
		}
		out[k] = v
	}
	return out
}

func sumOutputs(outs []common.TransactionOutput) (common.Value, error) {
	var total common.Value
	var err error
	for _, o := range outs {
		total, err = total.Add(o.Amount)
		if err != nil {
			return common.Value{}, err
		}
	}
	return total, nil
}

func sumInputs(utxos []common.Utxo) (common.Value, error) {
	var total common.Value
	var err error
	for _, u := range utxos {
		total, err = total.Add(u.Output.Amount)
		if err != nil {
			return common.Value{}, err
		}
	}
	return total, nil
}

// mustSub computes a-b with negative components clamped to zero: the
// balancer only ever asks "how much more do I need", which is never
// negative in a well-formed request.
func mustSub(a, b common.Value) common.Value {
	return saturatingSub(a, b)
}

func (b *Balancer) draftBody(
	req Request,
	inputs []common.Utxo,
	change common.Value,
	collateral []common.Utxo,
	collateralReturn *common.TransactionOutput,
	totalCollateral uint64,
) (common.TransactionBody, error) {
	inputRefs := make([]common.TransactionInput, len(inputs))
	for i, u := range inputs {
		inputRefs[i] = u.Input
	}
	outs := append([]common.TransactionOutput(nil), req.Outputs...)
	if change.Coin > 0 || change.HasAssets() {
		outs = append(outs, common.NewTransactionOutput(req.ChangeAddress, change))
	}
	body := common.TransactionBody{
		Inputs:  common.NewSetType(inputRefs, true),
		Outputs: outs,
		Fee:     0,
	}
	if len(req.Certificates) > 0 {
		certs := common.NewSetType(req.Certificates, true)
		body.Certificates = &certs
	}
	if len(req.Proposals) > 0 {
		proposals := common.NewSetType(req.Proposals, true)
		body.ProposalProcedures = &proposals
	}
	if req.Withdrawals != nil && req.Withdrawals.Len() > 0 {
		body.Withdrawals = req.Withdrawals
	}
	if req.Mint != nil {
		body.Mint = req.Mint
	}
	if len(req.ReferenceInputs) > 0 {
		refs := common.NewSetType(req.ReferenceInputs, true)
		body.ReferenceInputs = &refs
	}
	if len(collateral) > 0 {
		collRefs := make([]common.TransactionInput, len(collateral))
		for i, u := range collateral {
			collRefs[i] = u.Input
		}
		collSet := common.NewSetType(collRefs, true)
		body.Collateral = &collSet
	}
	if collateralReturn != nil {
		body.CollateralReturn = collateralReturn
	}
	if totalCollateral > 0 {
		tc := totalCollateral
		body.TotalCollateral = &tc
	}
	return body, nil
}

func draftTxBytes(
	body common.TransactionBody,
	signers []common.Blake2b224,
	extraPadding int,
	redeemers map[common.RedeemerKey]common.RedeemerValue,
	datums []common.Datum,
) ([]byte, error) {
	ws := common.WitnessSet{
		VkeyWitnesses: PlaceholderWitnesses(PlaceholderWitnessCount(signers, extraPadding)),
		Redeemers:     redeemers,
		PlutusData:    datums,
	}
	tx := common.NewTransaction(body, ws, nil)
	return tx.Bytes()
}
