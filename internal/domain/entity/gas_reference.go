package entity

import (
	"errors"
	"time"
)

// ErrGasOracleDisabled is returned when no gas oracle is configured.
var ErrGasOracleDisabled = errors.New("gas oracle is not configured")

// GasReference holds reference gas prices, in gwei, taken from a gas oracle.
type GasReference struct {
	Source      string    `json:"source"`
	LastBlock   uint64    `json:"lastBlock"`
	SafeGwei    float64   `json:"safeGwei"`
	ProposeGwei float64   `json:"proposeGwei"`
	FastGwei    float64   `json:"fastGwei"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// GasComparison compares a profile gas price with the reference propose price.
type GasComparison struct {
	ProfileName    string       `json:"profileName"`
	ProfileGwei    float64      `json:"profileGwei"`
	Reference      GasReference `json:"reference"`
	Ratio          float64      `json:"ratio"`
	Tolerance      float64      `json:"tolerance"`
	Drifted        bool         `json:"drifted"`
	RecommendedWei uint64       `json:"recommendedWei"`
}
