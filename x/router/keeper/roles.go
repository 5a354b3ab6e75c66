package keeper

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// SetEmergencyExit moves the strategy into EmergencyExiting and asks the
// outer vault to revoke its debt ratio. No funds move until the next harvest.
// Calling it on an exiting strategy is a no-op.
func (k *Keeper) SetEmergencyExit(ctx sdk.Context, caller, addr string) error {
	s, err := k.mustGetStrategy(ctx, addr)
	if err != nil {
		return err
	}
	if !s.Roles.HasAny(caller, types.RoleGuardian, types.RoleGovernance) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot set emergency exit", caller)
	}
	if !s.EnterEmergencyExit() {
		return nil
	}
	if err := k.outer.RevokeStrategy(ctx, s.Vault, s.Address); err != nil {
		return err
	}
	k.SetStrategy(ctx, s)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeEmergencyExitEnabled,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute(types.AttributeKeyCaller, caller),
		),
	)
	if k.metrics != nil {
		k.metrics.RecordStrategyState(s.Address, toFloat(k.estimatedTotalAssets(ctx, s)), true)
	}
	k.logger.Warn("emergency exit enabled", "strategy", s.Address, "caller", caller)
	return nil
}

// SetKeeper replaces the keeper. Strategist or governance only.
func (k *Keeper) SetKeeper(ctx sdk.Context, caller, addr, keeper string) error {
	return k.setRole(ctx, caller, addr, types.RoleKeeper, keeper, types.RoleStrategist, types.RoleGovernance)
}

// SetStrategist replaces the strategist. Strategist or governance only.
func (k *Keeper) SetStrategist(ctx sdk.Context, caller, addr, strategist string) error {
	return k.setRole(ctx, caller, addr, types.RoleStrategist, strategist, types.RoleStrategist, types.RoleGovernance)
}

// SetRewards replaces the rewards recipient. Strategist or governance only.
func (k *Keeper) SetRewards(ctx sdk.Context, caller, addr, rewards string) error {
	return k.setRole(ctx, caller, addr, types.RoleRewards, rewards, types.RoleStrategist, types.RoleGovernance)
}

// UpdateRoles lets governance reassign any role, including its own
func (k *Keeper) UpdateRoles(ctx sdk.Context, caller, addr, role, holder string) error {
	if !types.IsValidRole(role) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "unknown role %q", role)
	}
	return k.setRole(ctx, caller, addr, role, holder, types.RoleGovernance)
}

func (k *Keeper) setRole(ctx sdk.Context, caller, addr, role, holder string, allowed ...string) error {
	s, err := k.mustGetStrategy(ctx, addr)
	if err != nil {
		return err
	}
	if !s.Roles.HasAny(caller, allowed...) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot set %s", caller, role)
	}
	if _, err := sdk.AccAddressFromBech32(holder); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidAddress, "%s: %s", role, err)
	}
	s.Roles.Set(role, holder)
	k.SetStrategy(ctx, s)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeRolesUpdated,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute(types.AttributeKeyRole, role),
			sdk.NewAttribute(types.AttributeKeyAddress, holder),
		),
	)
	return nil
}

// SetTriggerConfig replaces the harvest trigger configuration
func (k *Keeper) SetTriggerConfig(ctx sdk.Context, caller, addr string, cfg types.TriggerConfig) error {
	s, err := k.mustGetStrategy(ctx, addr)
	if err != nil {
		return err
	}
	if !s.Roles.HasAny(caller, types.RoleStrategist, types.RoleManagement, types.RoleGovernance) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot configure triggers", caller)
	}
	if err := cfg.Validate(); err != nil {
		return errorsmod.Wrap(types.ErrInvalidTriggerConfig, err.Error())
	}
	s.Triggers = cfg
	k.SetStrategy(ctx, s)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeTriggerConfigUpdated,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute("min_report_delay", cfg.MinReportDelay.String()),
			sdk.NewAttribute("max_report_delay", cfg.MaxReportDelay.String()),
			sdk.NewAttribute("credit_threshold", cfg.CreditThreshold.String()),
			sdk.NewAttribute("max_call_cost", cfg.MaxCallCost.String()),
		),
	)
	return nil
}

// SetForceHarvestTriggerOnce makes HarvestTrigger return true until the next harvest
func (k *Keeper) SetForceHarvestTriggerOnce(ctx sdk.Context, caller, addr string, force bool) error {
	s, err := k.mustGetStrategy(ctx, addr)
	if err != nil {
		return err
	}
	if !s.Roles.HasAny(caller, types.RoleStrategist, types.RoleManagement, types.RoleGovernance) {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s cannot force harvest", caller)
	}
	s.ForceHarvestOnce = force
	k.SetStrategy(ctx, s)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeForceHarvestSet,
			sdk.NewAttribute(types.AttributeKeyStrategy, s.Address),
			sdk.NewAttribute("force", boolString(force)),
		),
	)
	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
