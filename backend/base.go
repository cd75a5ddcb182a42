// Package backend provides the ChainContext abstraction and its concrete
// implementations (fixed fixture, caching wrapper, Blockfrost, Maestro,
// Ogmios, UTxO RPC): the network-facing side of the Provider contract
// the balancer depends on.
package backend

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cardano-forge/apollocore/common"
)

// ChainContext is the full network surface a transaction builder needs:
// UTxO lookups, protocol/genesis parameters, submission and evaluation,
// plus the smaller queries (tip, current epoch, script lookup by hash)
// that convenience helpers and certificate validation use.
type ChainContext interface {
	ProtocolParams(ctx context.Context) (common.ProtocolParameters, error)
	GenesisParams(ctx context.Context) (common.GenesisParameters, error)
	NetworkId() uint8
	CurrentEpoch(ctx context.Context) (uint64, error)
	MaxTxFee(ctx context.Context) (uint64, error)
	Tip(ctx context.Context) (uint64, error)
	Utxos(ctx context.Context, address common.Address) ([]common.Utxo, error)
	SubmitTx(ctx context.Context, txCbor []byte) (common.Blake2b256, error)
	EvaluateTx(ctx context.Context, txCbor []byte, resolved []common.Utxo) (map[common.RedeemerKey]common.ExUnits, error)
	UtxoByRef(ctx context.Context, txHash common.Blake2b256, index uint32) (*common.Utxo, error)
	ScriptCbor(ctx context.Context, scriptHash common.Blake2b224) ([]byte, error)
}

// ParseRedeemerTag parses a redeemer purpose string, as returned by
// provider evaluate-tx endpoints, to a RedeemerTag.
func ParseRedeemerTag(s string) (common.RedeemerTag, error) {
	switch strings.ToLower(s) {
	case "spend":
		return common.RedeemerTagSpend, nil
	case "mint":
		return common.RedeemerTagMint, nil
	case "cert", "publish":
		return common.RedeemerTagCert, nil
	case "reward", "withdraw":
		return common.RedeemerTagReward, nil
	case "vote", "voting":
		return common.RedeemerTagVoting, nil
	case "propose", "proposing":
		return common.RedeemerTagPropose, nil
	default:
		return 0, fmt.Errorf("backend: unsupported redeemer tag %q", s)
	}
}

// ParseFraction parses a fraction string ("1/2") or plain decimal to a
// float64, as providers encode pool margins and similar ratios.
func ParseFraction(s string) (float64, error) {
	parts := strings.Split(s, "/")
	if len(parts) == 2 {
		num, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("backend: invalid numerator %q: %w", parts[0], err)
		}
		den, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, fmt.Errorf("backend: invalid denominator %q: %w", parts[1], err)
		}
		if den == 0 || math.IsNaN(num) || math.IsNaN(den) || math.IsInf(num, 0) || math.IsInf(den, 0) {
			return 0, fmt.Errorf("backend: invalid fraction %q", s)
		}
		return num / den, nil
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("backend: invalid number %q: %w", s, err)
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("backend: invalid number (NaN/Inf) %q", s)
	}
	return val, nil
}

// ComputeMaxTxFee returns the theoretical maximum transaction fee implied
// by the current protocol parameters: `maxTxSize*minFeeA + minFeeB`.
func ComputeMaxTxFee(pp common.ProtocolParameters) (uint64, error) {
	return pp.MaxTxSize*pp.MinFeeA + pp.MinFeeB, nil
}
