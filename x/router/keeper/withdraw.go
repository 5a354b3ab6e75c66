package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// Withdraw frees up to amount for the outer vault, idle want first and then
// the inner vault up to its withdrawable limit. A shortfall is returned as a
// smaller freed amount, never as an error; callers compare freed to amount.
func (k *Keeper) Withdraw(ctx sdk.Context, caller, addr string, amount math.Int) (math.Int, error) {
	s, err := k.mustGetStrategy(ctx, addr)
	if err != nil {
		return math.ZeroInt(), err
	}
	if caller != s.Vault {
		return math.ZeroInt(), errorsmod.Wrapf(types.ErrUnauthorized, "%s is not the vault", caller)
	}
	if amount.IsNil() || amount.IsNegative() {
		return math.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount, "withdraw %s", amount)
	}

	idle := k.wantBalance(ctx, s)
	if amount.GT(idle) {
		if _, err := k.innerWithdraw(ctx, s, amount.Sub(idle)); err != nil {
			return math.ZeroInt(), err
		}
	}

	freed := math.MinInt(amount, k.wantBalance(ctx, s))
	if err := k.send(ctx, s.Address, s.Vault, s.Want, freed); err != nil {
		return math.ZeroInt(), err
	}

	shortfall := amount.Sub(freed)
	if err := types.CheckShortfall(amount, freed); err != nil {
		k.logger.Info("partial withdrawal", "strategy", s.Address, "error", err.Error())
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeWithdrawn,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute(types.AttributeKeyRequested, amount.String()),
			sdk.NewAttribute(types.AttributeKeyFreed, freed.String()),
		),
	)
	if k.metrics != nil {
		k.metrics.RecordWithdraw(s.Address, toFloat(shortfall))
	}
	return freed, nil
}
