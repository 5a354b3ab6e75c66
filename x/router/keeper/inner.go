package keeper

import (
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// Inner vault state is read fresh on every call; nothing is cached.

// innerDeposit deposits up to amount, clamped to the inner vault's capacity.
// It returns the amount actually deposited; the remainder stays idle.
func (k *Keeper) innerDeposit(ctx sdk.Context, s *types.Strategy, amount math.Int) (math.Int, error) {
	capacity := k.inner.MaxDeposit(ctx, s.InnerVault, s.Address)
	amount = math.MinInt(amount, capacity)
	if !amount.IsPositive() {
		return math.ZeroInt(), nil
	}
	if _, err := k.inner.Deposit(ctx, s.InnerVault, s.Address, amount); err != nil {
		return math.ZeroInt(), err
	}
	return amount, nil
}

// innerWithdraw withdraws up to amount, capped by maxWithdraw.
// Freed is measured as the change in the strategy's want balance.
func (k *Keeper) innerWithdraw(ctx sdk.Context, s *types.Strategy, amount math.Int) (math.Int, error) {
	amount = math.MinInt(amount, k.innerMaxWithdraw(ctx, s))
	if !amount.IsPositive() {
		return math.ZeroInt(), nil
	}
	before := k.wantBalance(ctx, s)
	if _, err := k.inner.Withdraw(ctx, s.InnerVault, s.Address, s.Address, amount); err != nil {
		return math.ZeroInt(), err
	}
	return k.wantBalance(ctx, s).Sub(before), nil
}

// innerPositionValue converts the strategy's inner shares to assets
func (k *Keeper) innerPositionValue(ctx sdk.Context, s *types.Strategy) math.Int {
	shares := k.inner.BalanceOf(ctx, s.InnerVault, s.Address)
	if !shares.IsPositive() {
		return math.ZeroInt()
	}
	return k.inner.ConvertToAssets(ctx, s.InnerVault, shares)
}

func (k *Keeper) innerMaxWithdraw(ctx sdk.Context, s *types.Strategy) math.Int {
	return k.inner.MaxWithdraw(ctx, s.InnerVault, s.Address)
}

// InnerTotalAssets returns the inner vault's total assets
func (k *Keeper) InnerTotalAssets(ctx sdk.Context, s *types.Strategy) math.Int {
	return k.inner.TotalAssets(ctx, s.InnerVault)
}

// ProfitMaxUnlockTime is how long inner vault profit takes to show in its share price
func (k *Keeper) ProfitMaxUnlockTime(ctx sdk.Context, s *types.Strategy) time.Duration {
	return k.inner.ProfitMaxUnlockTime(ctx, s.InnerVault)
}
