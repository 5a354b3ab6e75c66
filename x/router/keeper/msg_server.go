package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// MsgServer defines the router MsgServer.
// Every handler runs on a cache context and only writes on success.
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// atomically runs fn on a cache context and commits only when it succeeds
func atomically(goCtx context.Context, fn func(ctx sdk.Context) error) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	cacheCtx, write := ctx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}
	write()
	return nil
}

// CreateStrategy handles MsgCreateStrategy
func (m *MsgServer) CreateStrategy(goCtx context.Context, msg *types.MsgCreateStrategy) (*types.MsgCreateStrategyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	var addr string
	err := atomically(goCtx, func(ctx sdk.Context) error {
		s, err := m.keeper.CreateStrategy(ctx, msg.Creator, msg.Vault, msg.InnerVault, msg.Name)
		if err != nil {
			return err
		}
		addr = s.Address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgCreateStrategyResponse{Strategy: addr}, nil
}

// CloneStrategy handles MsgCloneStrategy
func (m *MsgServer) CloneStrategy(goCtx context.Context, msg *types.MsgCloneStrategy) (*types.MsgCloneStrategyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	var clone string
	err := atomically(goCtx, func(ctx sdk.Context) (err error) {
		clone, err = m.keeper.CloneStrategy(ctx, msg.Sender, msg.Original, msg.Vault, msg.InnerVault,
			msg.Name, msg.Strategist, msg.Rewards, msg.Keeper)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgCloneStrategyResponse{Clone: clone}, nil
}

// Harvest handles MsgHarvest
func (m *MsgServer) Harvest(goCtx context.Context, msg *types.MsgHarvest) (*types.MsgHarvestResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	var report *types.HarvestReport
	err := atomically(goCtx, func(ctx sdk.Context) (err error) {
		report, err = m.keeper.Harvest(ctx, msg.Caller, msg.Strategy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgHarvestResponse{
		ReportID:        report.ReportID,
		Profit:          report.Profit.String(),
		Loss:            report.Loss.String(),
		DebtPayment:     report.DebtPayment.String(),
		DebtOutstanding: report.DebtOutstanding.String(),
	}, nil
}

// Tend handles MsgTend
func (m *MsgServer) Tend(goCtx context.Context, msg *types.MsgTend) (*types.MsgTendResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	err := atomically(goCtx, func(ctx sdk.Context) error {
		return m.keeper.Tend(ctx, msg.Caller, msg.Strategy)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgTendResponse{}, nil
}

// SetEmergencyExit handles MsgSetEmergencyExit
func (m *MsgServer) SetEmergencyExit(goCtx context.Context, msg *types.MsgSetEmergencyExit) (*types.MsgSetEmergencyExitResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	err := atomically(goCtx, func(ctx sdk.Context) error {
		return m.keeper.SetEmergencyExit(ctx, msg.Caller, msg.Strategy)
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgSetEmergencyExitResponse{}, nil
}

// Sweep handles MsgSweep
func (m *MsgServer) Sweep(goCtx context.Context, msg *types.MsgSweep) (*types.MsgSweepResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	var amount string
	err := atomically(goCtx, func(ctx sdk.Context) error {
		swept, err := m.keeper.Sweep(ctx, msg.Caller, msg.Strategy, msg.Denom)
		if err != nil {
			return err
		}
		amount = swept.String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &types.MsgSweepResponse{Amount: amount}, nil
}

// SetKeeper handles MsgSetKeeper
func (m *MsgServer) SetKeeper(goCtx context.Context, msg *types.MsgSetKeeper) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	return m.empty(atomically(goCtx, func(ctx sdk.Context) error {
		return m.keeper.SetKeeper(ctx, msg.Caller, msg.Strategy, msg.Keeper)
	}))
}

// SetStrategist handles MsgSetStrategist
func (m *MsgServer) SetStrategist(goCtx context.Context, msg *types.MsgSetStrategist) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	return m.empty(atomically(goCtx, func(ctx sdk.Context) error {
		return m.keeper.SetStrategist(ctx, msg.Caller, msg.Strategy, msg.Strategist)
	}))
}

// SetRewards handles MsgSetRewards
func (m *MsgServer) SetRewards(goCtx context.Context, msg *types.MsgSetRewards) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	return m.empty(atomically(goCtx, func(ctx sdk.Context) error {
		return m.keeper.SetRewards(ctx, msg.Caller, msg.Strategy, msg.Rewards)
	}))
}

// UpdateRoles handles MsgUpdateRoles
func (m *MsgServer) UpdateRoles(goCtx context.Context, msg *types.MsgUpdateRoles) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	return m.empty(atomically(goCtx, func(ctx sdk.Context) error {
		return m.keeper.UpdateRoles(ctx, msg.Caller, msg.Strategy, msg.Role, msg.Address)
	}))
}

// SetTriggerConfig handles MsgSetTriggerConfig
func (m *MsgServer) SetTriggerConfig(goCtx context.Context, msg *types.MsgSetTriggerConfig) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	cfg, err := msg.TriggerConfig()
	if err != nil {
		return nil, err
	}
	return m.empty(atomically(goCtx, func(ctx sdk.Context) error {
		return m.keeper.SetTriggerConfig(ctx, msg.Caller, msg.Strategy, cfg)
	}))
}

// SetForceHarvestTriggerOnce handles MsgSetForceHarvestTriggerOnce
func (m *MsgServer) SetForceHarvestTriggerOnce(goCtx context.Context, msg *types.MsgSetForceHarvestTriggerOnce) (*types.MsgEmptyResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	return m.empty(atomically(goCtx, func(ctx sdk.Context) error {
		return m.keeper.SetForceHarvestTriggerOnce(ctx, msg.Caller, msg.Strategy, msg.Force)
	}))
}

func (m *MsgServer) empty(err error) (*types.MsgEmptyResponse, error) {
	if err != nil {
		return nil, err
	}
	return &types.MsgEmptyResponse{}, nil
}
