// Package balancer is the fee/collateral/coin-selection driver
// (components F through J): implicit coin accounting, signer discovery,
// fee and collateral sizing, and the bounded fixed-point balancing loop
// that ties them together, plus the Provider/CoinSelector/Evaluator
// collaborator contracts.
package balancer

import "github.com/cardano-forge/apollocore/common"

// DepositAmounts names the per-certificate-kind deposit/refund amounts
// the current protocol parameters require. Conway separates these out
// (stake, DRep and governance-action deposits differ), where pre-Conway
// eras only had a single stake-key deposit.
type DepositAmounts struct {
	StakeKeyDeposit  uint64
	PoolDeposit      uint64
	DrepDeposit      uint64
	GovActionDeposit uint64
}

// ImplicitCoin is ComputeImplicitCoin's result: the coin a transaction
// implicitly creates or consumes outside of its inputs/outputs: certificate deposits paid,
// deposits refunded by deregistration, and withdrawals drawn from
// reward accounts. A positive Deposited value is money the transaction
// must find from its inputs; a positive Returned value is money the
// transaction gets to spend on top of its inputs.
type ImplicitCoin struct {
	Deposited uint64
	Returned  uint64
	Withdrawn uint64
}

// Net returns Returned+Withdrawn-Deposited as a signed delta: positive
// means the transaction has implicit coin available beyond its inputs,
// negative means it owes deposits beyond what its outputs need.
func (c ImplicitCoin) Net() int64 {
	return int64(c.Returned) + int64(c.Withdrawn) - int64(c.Deposited)
}

// ComputeImplicitCoin walks certs, proposal procedures and withdrawals
// to total up the transaction's implicit coin movement. Every proposal
// procedure's deposit is an amount the transaction must find from its
// inputs, same as a certificate deposit.
func ComputeImplicitCoin(certs []common.Certificate, proposals []common.ProposalProcedure, withdrawals *common.Withdrawal, deposits DepositAmounts) ImplicitCoin {
	var out ImplicitCoin
	for _, p := range proposals {
		out.Deposited += p.Deposit
	}
	for _, c := range certs {
		switch c.Type {
		case common.CertStakeRegistration:
			out.Deposited += deposits.StakeKeyDeposit
		case common.CertStakeDeregistration:
			out.Returned += deposits.StakeKeyDeposit
		case common.CertRegCert:
			out.Deposited += c.Coin
		case common.CertUnregCert:
			out.Returned += c.Coin
		case common.CertPoolRegistration:
			out.Deposited += deposits.PoolDeposit
		case common.CertPoolRetirement:
			out.Returned += deposits.PoolDeposit
		case common.CertRegDrepCert:
			out.Deposited += c.Coin
		case common.CertUnregDrepCert:
			out.Returned += c.Coin
		case common.CertStakeRegDelegCert, common.CertVoteRegDelegCert, common.CertStakeVoteRegDelegCert:
			out.Deposited += c.Coin
		}
	}
	if withdrawals != nil {
		out.Withdrawn += withdrawals.Total()
	}
	return out
}
