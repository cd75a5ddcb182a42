// Package constants holds small fixed protocol and provider values shared
// across the module.
package constants

// MinLovelace is a conservative minimum-ADA floor in lovelace. No code in
// this module reads it.
const MinLovelace = 1_000_000

// Network identifies a Cardano network for address header bytes and
// provider base URLs.
type Network int

const (
	Mainnet Network = iota
	Testnet
	Preview
	Preprod
)

const (
	BlockfrostBaseUrlMainnet = "https://cardano-mainnet.blockfrost.io/api"
	BlockfrostBaseUrlTestnet = "https://cardano-testnet.blockfrost.io/api"
	BlockfrostBaseUrlPreview = "https://cardano-preview.blockfrost.io/api"
	BlockfrostBaseUrlPreprod = "https://cardano-preprod.blockfrost.io/api"
)

// StakeDeposit is a fallback key/stake deposit in lovelace. No code in
// this module reads it; deposits come from the protocol parameters.
const StakeDeposit = 2_000_000

// ExMemoryBuffer and ExStepBuffer are padding fractions for
// evaluator-returned ExUnits, to absorb small differences between the
// evaluator's and a node's script evaluation. No code in this module
// reads them.
const (
	ExMemoryBuffer = 0.2
	ExStepBuffer   = 0.2
)
