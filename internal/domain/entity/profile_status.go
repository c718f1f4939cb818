package entity

import "time"

// ProfileStatus is the result of checking a profile against the node it points to.
type ProfileStatus struct {
	ProfileName         string         `json:"profileName"`
	Endpoint            string         `json:"endpoint"`
	ExpectedNetworkID   string         `json:"expectedNetworkId"`
	Valid               bool           `json:"valid"`
	ValidationErrors    []FieldError   `json:"validationErrors,omitempty"`
	Warnings            []string       `json:"warnings,omitempty"`
	Reachable           bool           `json:"reachable"`
	ReportedNetworkID   string         `json:"reportedNetworkId,omitempty"`
	NetworkIDMatch      bool           `json:"networkIdMatch"`
	ChainID             string         `json:"chainId,omitempty"`
	ClientVersion       string         `json:"clientVersion,omitempty"`
	BlockNumber         uint64         `json:"blockNumber,omitempty"`
	BlockGasLimit       uint64         `json:"blockGasLimit,omitempty"`
	ProfileGas          uint64         `json:"profileGas"`
	GasWithinBlockLimit bool           `json:"gasWithinBlockLimit"`
	ProfileGasPriceGwei string         `json:"profileGasPriceGwei"`
	NodeGasPriceGwei    string         `json:"nodeGasPriceGwei,omitempty"`
	Sender              *SenderBalance `json:"sender,omitempty"`
	Errors              []ProfileError `json:"errors,omitempty"`
	Healthy             bool           `json:"healthy"`
	CheckedAt           time.Time      `json:"checkedAt"`
}
