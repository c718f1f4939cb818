package entity

import "math/big"

// SenderBalance represents the native balance held by the default sender of a profile.
type SenderBalance struct {
	Address          string   `json:"address" yaml:"address"`
	Amount           *big.Int `json:"-" yaml:"-"`
	Wei              string   `json:"wei" yaml:"wei"`
	FormattedBalance string   `json:"formattedBalance" yaml:"formattedBalance"`
}
