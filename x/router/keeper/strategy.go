package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/openalpha/yield-router/x/router/types"
)

// deriveAddress returns the custody address of the seq-th strategy instance
func deriveAddress(seq uint64) sdk.AccAddress {
	return sdk.AccAddress(address.Module(types.ModuleName, []byte("strategy"), sdk.Uint64ToBigEndian(seq)))
}

// resolveWant checks that both vaults manage the same asset and returns it
func (k *Keeper) resolveWant(ctx sdk.Context, vault, innerVault string) (string, error) {
	want, err := k.outer.Asset(ctx, vault)
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrInvalidAddress, "outer vault %s: %s", vault, err)
	}
	innerWant, err := k.inner.Asset(ctx, innerVault)
	if err != nil {
		return "", errorsmod.Wrapf(types.ErrInvalidAddress, "inner vault %s: %s", innerVault, err)
	}
	if want != innerWant {
		return "", errorsmod.Wrapf(types.ErrWantMismatch, "outer %s, inner %s", want, innerWant)
	}
	return want, nil
}

// newInstance builds a strategy record bound to a fresh address
func (k *Keeper) newInstance(ctx sdk.Context, vault, innerVault, name string, roles types.Roles) (*types.Strategy, uint64, error) {
	if err := types.ValidateName(name); err != nil {
		return nil, 0, err
	}
	want, err := k.resolveWant(ctx, vault, innerVault)
	if err != nil {
		return nil, 0, err
	}
	vr, err := k.outer.Roles(ctx, vault)
	if err != nil {
		return nil, 0, errorsmod.Wrapf(types.ErrInvalidAddress, "outer vault %s: %s", vault, err)
	}
	roles.Governance = vr.Governance
	roles.Management = vr.Management
	roles.Guardian = vr.Guardian

	seq := k.nextSequence(ctx, types.SequenceKey)
	addr := deriveAddress(seq).String()
	s := types.NewStrategy(addr, name, want, vault, innerVault, roles, ctx.BlockHeight(), ctx.BlockTime())
	return s, seq, nil
}

// CreateStrategy deploys an original strategy. The creator becomes strategist, keeper and rewards.
func (k *Keeper) CreateStrategy(ctx sdk.Context, creator, vault, innerVault, name string) (*types.Strategy, error) {
	if _, err := sdk.AccAddressFromBech32(creator); err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidAddress, "creator: %s", err)
	}
	s, _, err := k.newInstance(ctx, vault, innerVault, name, types.Roles{
		Strategist: creator,
		Keeper:     creator,
		Rewards:    creator,
	})
	if err != nil {
		return nil, err
	}
	k.SetStrategy(ctx, s)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeStrategyCreated,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute(types.AttributeKeyVault, vault),
			sdk.NewAttribute(types.AttributeKeyInnerVault, innerVault),
			sdk.NewAttribute(types.AttributeKeyName, name),
		),
	)
	if k.metrics != nil {
		k.metrics.RecordStrategyCreated("original")
	}
	k.logger.Info("strategy created", "strategy", s.Address, "vault", vault, "inner_vault", innerVault, "want", s.Want)
	return s, nil
}

// EstimatedTotalAssets is idle want plus the value of the inner position.
// An unknown strategy reads as zero.
func (k *Keeper) EstimatedTotalAssets(ctx sdk.Context, addr string) math.Int {
	s := k.GetStrategy(ctx, addr)
	if s == nil {
		return math.ZeroInt()
	}
	return k.estimatedTotalAssets(ctx, s)
}

func (k *Keeper) estimatedTotalAssets(ctx sdk.Context, s *types.Strategy) math.Int {
	return k.wantBalance(ctx, s).Add(k.innerPositionValue(ctx, s))
}

// Tend performs maintenance between harvests. The inner vault accrues
// passively so there is nothing to move.
func (k *Keeper) Tend(ctx sdk.Context, caller, addr string) error {
	s, err := k.mustGetStrategy(ctx, addr)
	if err != nil {
		return err
	}
	if !s.Roles.HasAny(caller, types.RoleManagement, types.RoleStrategist, types.RoleKeeper, types.RoleGovernance) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot tend", caller)
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeTended,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute(types.AttributeKeyCaller, caller),
		),
	)
	return nil
}
