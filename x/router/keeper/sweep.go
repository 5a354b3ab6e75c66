package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// ProtectedTokens lists extra denoms Sweep refuses beyond want and the vault share
func (k *Keeper) ProtectedTokens() []string {
	return k.protected
}

// Sweep sends the strategy's full balance of a mis-sent denom to governance.
// The want denom, the outer vault's share denom and protected denoms are refused.
func (k *Keeper) Sweep(ctx sdk.Context, caller, addr, denom string) (math.Int, error) {
	s, err := k.mustGetStrategy(ctx, addr)
	if err != nil {
		return math.ZeroInt(), err
	}
	if !s.Roles.HasAny(caller, types.RoleGovernance) {
		return math.ZeroInt(), errorsmod.Wrapf(types.ErrUnauthorized, "%s is not governance", caller)
	}
	if err := k.checkSweepable(ctx, s, denom); err != nil {
		if k.metrics != nil {
			k.metrics.RecordSweep("rejected")
		}
		return math.ZeroInt(), err
	}

	amount := k.balanceOf(ctx, s.Address, denom)
	if err := k.send(ctx, s.Address, s.Roles.Governance, denom, amount); err != nil {
		return math.ZeroInt(), err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwept,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute(types.AttributeKeyDenom, denom),
			sdk.NewAttribute(types.AttributeKeyAmount, amount.String()),
			sdk.NewAttribute(types.AttributeKeyRecipient, s.Roles.Governance),
		),
	)
	if k.metrics != nil {
		k.metrics.RecordSweep("swept")
	}
	k.logger.Info("swept", "strategy", s.Address, "denom", denom, "amount", amount.String())
	return amount, nil
}

func (k *Keeper) checkSweepable(ctx sdk.Context, s *types.Strategy, denom string) error {
	if denom == s.Want {
		return errorsmod.Wrap(types.ErrProtectedAsset, types.ReasonWant)
	}
	shareDenom, err := k.outer.ShareDenom(ctx, s.Vault)
	if err != nil {
		return err
	}
	if denom == shareDenom {
		return errorsmod.Wrap(types.ErrProtectedAsset, types.ReasonShares)
	}
	for _, p := range k.ProtectedTokens() {
		if denom == p {
			return errorsmod.Wrap(types.ErrProtectedAsset, types.ReasonProtected)
		}
	}
	return nil
}
