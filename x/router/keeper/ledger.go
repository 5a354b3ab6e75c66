package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// balanceOf returns holder's balance of denom. Bad addresses read as zero.
func (k *Keeper) balanceOf(ctx sdk.Context, holder, denom string) math.Int {
	addr, err := sdk.AccAddressFromBech32(holder)
	if err != nil {
		return math.ZeroInt()
	}
	return k.bankKeeper.GetBalance(ctx, addr, denom).Amount
}

// wantBalance is the idle want held directly by the strategy
func (k *Keeper) wantBalance(ctx sdk.Context, s *types.Strategy) math.Int {
	return k.balanceOf(ctx, s.Address, s.Want)
}

func (k *Keeper) send(ctx sdk.Context, from, to, denom string, amount math.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	fromAddr, err := sdk.AccAddressFromBech32(from)
	if err != nil {
		return errorsmod.Wrapf(types.ErrInvalidAddress, "from: %s", err)
	}
	toAddr, err := sdk.AccAddressFromBech32(to)
	if err != nil {
		return errorsmod.Wrapf(types.ErrInvalidAddress, "to: %s", err)
	}
	return k.bankKeeper.SendCoins(ctx, fromAddr, toAddr, sdk.NewCoins(sdk.NewCoin(denom, amount)))
}
