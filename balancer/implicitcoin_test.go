package balancer

import (
	"testing"

	"github.com/cardano-forge/apollocore/common"
)

func TestComputeImplicitCoinStakeRegistrationDeposits(t *testing.T) {
	var h common.Blake2b224
	h[0] = 1
	cred := common.NewKeyCredential(h)
	certs := []common.Certificate{common.NewStakeRegistrationCertificate(cred)}
	deposits := DepositAmounts{StakeKeyDeposit: 2_000_000}

	got := ComputeImplicitCoin(certs, nil, nil, deposits)
	if got.Deposited != 2_000_000 {
		t.Fatalf("Deposited = %d, want 2000000", got.Deposited)
	}
	if got.Net() != -2_000_000 {
		t.Fatalf("Net() = %d, want -2000000", got.Net())
	}
}

func TestComputeImplicitCoinDeregistrationReturnsDeposit(t *testing.T) {
	var h common.Blake2b224
	h[0] = 1
	cred := common.NewKeyCredential(h)
	certs := []common.Certificate{common.NewStakeDeregistrationCertificate(cred)}
	deposits := DepositAmounts{StakeKeyDeposit: 2_000_000}

	got := ComputeImplicitCoin(certs, nil, nil, deposits)
	if got.Returned != 2_000_000 {
		t.Fatalf("Returned = %d, want 2000000", got.Returned)
	}
	if got.Net() != 2_000_000 {
		t.Fatalf("Net() = %d, want 2000000", got.Net())
	}
}

func TestComputeImplicitCoinWithdrawalsAddToNet(t *testing.T) {
	var stakeHash common.Blake2b224
	stakeHash[0] = 5
	acct := common.NewRewardAddress(0, common.NewKeyCredential(stakeHash))

	var w common.Withdrawal
	if err := w.Add(acct, 3_000_000); err != nil {
		t.Fatalf("Withdrawal.Add: %v", err)
	}

	got := ComputeImplicitCoin(nil, nil, &w, DepositAmounts{})
	if got.Withdrawn != 3_000_000 {
		t.Fatalf("Withdrawn = %d, want 3000000", got.Withdrawn)
	}
	if got.Net() != 3_000_000 {
		t.Fatalf("Net() = %d, want 3000000", got.Net())
	}
}

func TestComputeImplicitCoinProposalDepositsAreDeposited(t *testing.T) {
	var stakeHash common.Blake2b224
	stakeHash[0] = 7
	acct := common.NewRewardAddress(0, common.NewKeyCredential(stakeHash))
	proposals := []common.ProposalProcedure{
		{Deposit: 100_000_000, RewardAccount: acct},
		{Deposit: 100_000_000, RewardAccount: acct},
	}

	got := ComputeImplicitCoin(nil, proposals, nil, DepositAmounts{})
	if got.Deposited != 200_000_000 {
		t.Fatalf("Deposited = %d, want 200000000", got.Deposited)
	}
	if got.Net() != -200_000_000 {
		t.Fatalf("Net() = %d, want -200000000", got.Net())
	}
}

func TestUniqueSignersDedupesAcrossInputsAndRequired(t *testing.T) {
	var h common.Blake2b224
	h[0] = 9
	addr := common.NewEnterpriseAddress(0, common.NewKeyCredential(h))

	var txId common.Blake2b256
	input := common.NewTransactionInput(txId, 0)
	output := common.NewTransactionOutput(addr, common.NewCoinValue(1_000_000))
	utxo := common.NewUtxo(input, output)

	signers := UniqueSigners([]common.Utxo{utxo}, nil, []common.Blake2b224{h}, nil, nil)
	if len(signers) != 1 {
		t.Fatalf("expected 1 deduplicated signer, got %d: %+v", len(signers), signers)
	}
	if signers[0] != h {
		t.Fatalf("signer = %x, want %x", signers[0], h)
	}
}

func TestUniqueSignersIgnoresScriptCredentials(t *testing.T) {
	var h common.Blake2b224
	h[0] = 9
	addr := common.NewEnterpriseAddress(0, common.NewScriptCredential(h))

	var txId common.Blake2b256
	input := common.NewTransactionInput(txId, 0)
	output := common.NewTransactionOutput(addr, common.NewCoinValue(1_000_000))
	utxo := common.NewUtxo(input, output)

	signers := UniqueSigners([]common.Utxo{utxo}, nil, nil, nil, nil)
	if len(signers) != 0 {
		t.Fatalf("expected 0 signers for a script-locked input, got %+v", signers)
	}
}

func TestUniqueSignersIncludesPoolRegistrationOwners(t *testing.T) {
	var owner1, owner2 common.Blake2b224
	owner1[0] = 0xA1
	owner2[0] = 0xA2
	cert := common.Certificate{
		Type:       common.CertPoolRegistration,
		PoolParams: &common.PoolParams{Owners: []common.Blake2b224{owner1, owner2}},
	}

	signers := UniqueSigners(nil, nil, nil, []common.Certificate{cert}, nil)
	if len(signers) != 2 {
		t.Fatalf("expected 2 pool-owner signers, got %d: %+v", len(signers), signers)
	}
}

func TestUniqueSignersIncludesPoolRetirementOperator(t *testing.T) {
	var pool common.Blake2b224
	pool[0] = 0xB1
	cert := common.NewPoolRetirementCertificate(pool, 500)

	signers := UniqueSigners(nil, nil, nil, []common.Certificate{cert}, nil)
	if len(signers) != 1 || signers[0] != pool {
		t.Fatalf("expected pool key hash as signer, got %+v", signers)
	}
}

func TestUniqueSignersIncludesCommitteeColdKeyOnAuthHot(t *testing.T) {
	var cold, hot common.Blake2b224
	cold[0] = 0xC1
	hot[0] = 0xC2
	cert := common.NewAuthCommitteeHotCertificate(common.NewKeyCredential(cold), common.NewKeyCredential(hot))

	signers := UniqueSigners(nil, nil, nil, []common.Certificate{cert}, nil)
	if len(signers) != 1 || signers[0] != cold {
		t.Fatalf("expected cold committee key hash as signer, got %+v", signers)
	}
}
