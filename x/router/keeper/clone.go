package keeper

import (
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// CloneStrategy replicates an original onto a new vault pair. The clone
// shares the keeper logic, copies the original's trigger configuration and
// owns its own record. Anyone may clone.
func (k *Keeper) CloneStrategy(
	ctx sdk.Context,
	caller, original, vault, innerVault, name, strategist, rewards, keeper string,
) (string, error) {
	orig, err := k.mustGetStrategy(ctx, original)
	if err != nil {
		return "", err
	}
	if orig.IsClone {
		return "", errorsmod.Wrapf(types.ErrCloneOfClone, "%s is a clone of %s", orig.Address, orig.Original)
	}
	for _, addr := range []string{strategist, rewards, keeper} {
		if _, err := sdk.AccAddressFromBech32(addr); err != nil {
			return "", errorsmod.Wrapf(types.ErrInvalidAddress, "%s: %s", addr, err)
		}
	}

	s, seq, err := k.newInstance(ctx, vault, innerVault, name, types.Roles{
		Strategist: strategist,
		Keeper:     keeper,
		Rewards:    rewards,
	})
	if err != nil {
		return "", err
	}
	s.IsClone = true
	s.Original = orig.Address
	s.Triggers = orig.Triggers
	k.SetStrategy(ctx, s)

	k.SetCloneRecord(ctx, &types.CloneRecord{
		Sequence:   seq,
		Clone:      s.Address,
		Original:   orig.Address,
		Vault:      vault,
		InnerVault: innerVault,
		Name:       name,
		Strategist: strategist,
		Rewards:    rewards,
		Keeper:     keeper,
		Height:     ctx.BlockHeight(),
	})

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeCloned,
			sdk.NewAttribute(types.AttributeKeyClone, s.Address),
			sdk.NewAttribute(types.AttributeKeyOriginal, orig.Address),
			sdk.NewAttribute(types.AttributeKeyVault, vault),
			sdk.NewAttribute(types.AttributeKeyInnerVault, innerVault),
			sdk.NewAttribute(types.AttributeKeyName, name),
			sdk.NewAttribute(types.AttributeKeyStrategist, strategist),
			sdk.NewAttribute(types.AttributeKeyRewards, rewards),
			sdk.NewAttribute(types.AttributeKeyKeeper, keeper),
		),
	)
	if k.metrics != nil {
		k.metrics.RecordStrategyCreated("clone")
	}
	k.logger.Info("strategy cloned",
		"clone", s.Address,
		"original", orig.Address,
		"sequence", strconv.FormatUint(seq, 10),
		"caller", caller,
	)
	return s.Address, nil
}
