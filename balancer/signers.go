package balancer

import "github.com/cardano-forge/apollocore/common"

// UniqueSigners collects the set of payment key hashes that must sign a
// transaction: the payment credential of every input/collateral-input
// address, every explicitly required signer, and every key credential
// referenced by a certificate or a withdrawing reward account. The
// result is de-duplicated but not sorted; callers that need a
// deterministic order sort it themselves (fee estimation pads per
// signer, so order doesn't matter there).
func UniqueSigners(
	inputs []common.Utxo,
	collateral []common.Utxo,
	requiredSigners []common.Blake2b224,
	certs []common.Certificate,
	withdrawals *common.Withdrawal,
) []common.Blake2b224 {
	seen := map[common.Blake2b224]struct{}{}
	var out []common.Blake2b224
	add := func(h common.Blake2b224) {
		if h.IsZero() {
			return
		}
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}

	addFromAddress := func(addr common.Address) {
		if cred := addr.PaymentCredential(); cred != nil && !cred.IsScript() {
			add(cred.Credential)
		}
	}

	for _, u := range inputs {
		addFromAddress(u.Output.Address)
	}
	for _, u := range collateral {
		addFromAddress(u.Output.Address)
	}
	for _, h := range requiredSigners {
		add(h)
	}
	for _, c := range certs {
		switch c.Type {
		case common.CertStakeRegistration, common.CertStakeDeregistration, common.CertStakeDelegation,
			common.CertRegCert, common.CertUnregCert, common.CertVoteDelegCert,
			common.CertStakeVoteDelegCert, common.CertStakeRegDelegCert, common.CertVoteRegDelegCert,
			common.CertStakeVoteRegDelegCert, common.CertRegDrepCert, common.CertUnregDrepCert,
			common.CertUpdateDrepCert, common.CertAuthCommitteeHotCert:
			if !c.Credential.IsScript() {
				add(c.Credential.Credential)
			}
		case common.CertPoolRegistration:
			if c.PoolParams != nil {
				for _, owner := range c.PoolParams.Owners {
					add(owner)
				}
			}
		case common.CertPoolRetirement:
			add(c.PoolKeyHash)
		}
	}
	if withdrawals != nil {
		for _, acct := range withdrawals.Accounts() {
			if cred := acct.StakeCredential(); cred != nil && !cred.IsScript() {
				add(cred.Credential)
			}
		}
	}
	return out
}
