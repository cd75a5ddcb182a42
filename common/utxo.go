package common

// Utxo pairs an unspent transaction output with the input that
// references it, the unit coin selection and the balancer operate over.
type Utxo struct {
	Input  TransactionInput
	Output TransactionOutput
}

func NewUtxo(input TransactionInput, output TransactionOutput) Utxo {
	return Utxo{Input: input, Output: output}
}
