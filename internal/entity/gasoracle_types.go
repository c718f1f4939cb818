package entity

import jsoniter "github.com/json-iterator/go"

// GasOracleEnvelope is the Etherscan-style response wrapper. On failure Status is "0"
// and Result holds a plain error string instead of an object.
type GasOracleEnvelope struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Result  jsoniter.RawMessage `json:"result"`
}

// GasOracleResult holds the gas tracker prices. Prices are decimal strings in gwei.
type GasOracleResult struct {
	LastBlock       string `json:"LastBlock"`
	SafeGasPrice    string `json:"SafeGasPrice"`
	ProposeGasPrice string `json:"ProposeGasPrice"`
	FastGasPrice    string `json:"FastGasPrice"`
	SuggestBaseFee  string `json:"suggestBaseFee"`
	GasUsedRatio    string `json:"gasUsedRatio"`
}
