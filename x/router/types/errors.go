package types

import (
	"cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Module error codes
var (
	ErrUnauthorized          = errors.Register(ModuleName, 2, "unauthorized caller")
	ErrProtectedAsset        = errors.Register(ModuleName, 3, "protected asset")
	ErrInsufficientLiquidity = errors.Register(ModuleName, 4, "insufficient liquidity")
	ErrCloneOfClone          = errors.Register(ModuleName, 5, "cannot clone a clone")
	ErrStrategyNotFound      = errors.Register(ModuleName, 6, "strategy not found")
	ErrInvalidAddress        = errors.Register(ModuleName, 7, "invalid address")
	ErrInvalidAmount         = errors.Register(ModuleName, 8, "invalid amount")
	ErrWantMismatch          = errors.Register(ModuleName, 9, "outer and inner vault assets differ")
	ErrInvalidTriggerConfig  = errors.Register(ModuleName, 10, "invalid trigger configuration")
	ErrInvalidName           = errors.Register(ModuleName, 11, "invalid strategy name")
)

// Sweep rejection reasons
const (
	ReasonWant      = "!want"
	ReasonShares    = "!shares"
	ReasonProtected = "!protected"
)

// CheckShortfall returns ErrInsufficientLiquidity when freed is below requested.
// Withdraw never fails on a shortfall; callers use this to detect one.
func CheckShortfall(requested, freed math.Int) error {
	if freed.GTE(requested) {
		return nil
	}
	return errors.Wrapf(ErrInsufficientLiquidity, "requested %s, freed %s", requested, freed)
}
