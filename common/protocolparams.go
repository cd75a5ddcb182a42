package common

// ExUnitPrices is the Plutus execution-unit price pair used to convert
// ExUnits into a lovelace fee contribution.
type ExUnitPrices struct {
	Memory float64
	Steps  float64
}

// ProtocolParameters is the subset of the chain's current protocol
// parameters the fee/collateral/min-UTxO calculations need. JSON tags
// follow the field names Blockfrost's `/epochs/latest/parameters`
// endpoint uses, since that is the most common decoding target; other
// backends populate the struct programmatically instead of through JSON.
type ProtocolParameters struct {
	MinFeeA                    uint64       `json:"min_fee_a"`
	MinFeeB                    uint64       `json:"min_fee_b"`
	MaxTxSize                  uint64       `json:"max_tx_size"`
	MaxValSize                 uint64       `json:"max_val_size,string"`
	KeyDeposit                 uint64       `json:"key_deposit,string"`
	PoolDeposit                uint64       `json:"pool_deposit,string"`
	DrepDeposit                uint64       `json:"drep_deposit,string"`
	GovActionDeposit           uint64       `json:"gov_action_deposit,string"`
	PriceMem                   float64      `json:"price_mem"`
	PriceStep                  float64      `json:"price_step"`
	MaxTxExMem                 uint64       `json:"max_tx_ex_mem,string"`
	MaxTxExSteps               uint64       `json:"max_tx_ex_steps,string"`
	CoinsPerUtxoByte           uint64       `json:"coins_per_utxo_size,string"`
	CollateralPercent          uint64       `json:"collateral_percent"`
	MaxCollateralInputs        uint64       `json:"max_collateral_inputs"`
	MinFeeRefScriptCostPerByte uint64       `json:"min_fee_ref_script_cost_per_byte"`
	CostModels                 map[string][]int64 `json:"-"`
}

// ExUnitPrices returns the price pair as a typed struct for the fee
// calculator.
func (p ProtocolParameters) ExUnitPrices() ExUnitPrices {
	return ExUnitPrices{Memory: p.PriceMem, Steps: p.PriceStep}
}

// GenesisParameters carries the chain-wide constants that don't change
// with a protocol-parameter update: network magic, era boundaries, slot
// length. Needed to translate POSIX-time validity intervals into slots.
type GenesisParameters struct {
	NetworkMagic    uint32  `json:"network_magic"`
	SystemStart     int64   `json:"system_start"`
	SlotLength      uint64  `json:"slot_length"`
	ActiveSlotsCoeff float64 `json:"active_slots_coefficient"`
	EpochLength     uint64  `json:"epoch_length"`
}
