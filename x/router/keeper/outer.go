package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// The outer vault is authoritative for debt and profit accounting.
// These accessors pass its answers through unchanged.

// VaultPricePerShare returns the outer vault share price
func (k *Keeper) VaultPricePerShare(ctx sdk.Context, s *types.Strategy) math.LegacyDec {
	return k.outer.PricePerShare(ctx, s.Vault)
}

// VaultTotalAssets returns the outer vault's total assets
func (k *Keeper) VaultTotalAssets(ctx sdk.Context, s *types.Strategy) math.Int {
	return k.outer.TotalAssets(ctx, s.Vault)
}

// VaultBalanceOf returns holder's outer vault share balance
func (k *Keeper) VaultBalanceOf(ctx sdk.Context, s *types.Strategy, holder string) math.Int {
	return k.outer.BalanceOf(ctx, s.Vault, holder)
}

// StrategyParams returns the outer vault's record of the strategy
func (k *Keeper) StrategyParams(ctx sdk.Context, s *types.Strategy) (types.StrategyParams, error) {
	return k.outer.StrategyParams(ctx, s.Vault, s.Address)
}

func (k *Keeper) debtOutstanding(ctx sdk.Context, s *types.Strategy) math.Int {
	return k.outer.DebtOutstanding(ctx, s.Vault, s.Address)
}

func (k *Keeper) creditAvailable(ctx sdk.Context, s *types.Strategy) math.Int {
	return k.outer.CreditAvailable(ctx, s.Vault, s.Address)
}

func (k *Keeper) report(ctx sdk.Context, s *types.Strategy, gain, loss, debtPayment math.Int) (math.Int, error) {
	return k.outer.Report(ctx, s.Vault, s.Address, gain, loss, debtPayment)
}
