package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

// QueryServer defines the router QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// StrategyView is a strategy record with its live figures
type StrategyView struct {
	Strategy             *types.Strategy `json:"strategy"`
	EstimatedTotalAssets math.Int        `json:"estimated_total_assets"`
	IdleWant             math.Int        `json:"idle_want"`
	PositionValue        math.Int        `json:"position_value"`
}

// TriggerView holds both trigger answers for a call cost
type TriggerView struct {
	Strategy string   `json:"strategy"`
	CallCost math.Int `json:"call_cost"`
	Harvest  bool     `json:"harvest"`
	Tend     bool     `json:"tend"`
}

// Strategy returns a strategy by address
func (q *QueryServer) Strategy(ctx context.Context, addr string) (*StrategyView, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	s, err := q.keeper.mustGetStrategy(sdkCtx, addr)
	if err != nil {
		return nil, err
	}
	idle := q.keeper.wantBalance(sdkCtx, s)
	position := q.keeper.innerPositionValue(sdkCtx, s)
	return &StrategyView{
		Strategy:             s,
		EstimatedTotalAssets: idle.Add(position),
		IdleWant:             idle,
		PositionValue:        position,
	}, nil
}

// Strategies returns all strategies
func (q *QueryServer) Strategies(ctx context.Context, offset, limit uint64) ([]*types.Strategy, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	all := q.keeper.GetAllStrategies(sdkCtx)

	total := uint64(len(all))

	// Apply pagination
	if offset >= total {
		return []*types.Strategy{}, total, nil
	}

	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}

	return all[offset:end], total, nil
}

// EstimatedTotalAssets returns idle plus deployed assets
func (q *QueryServer) EstimatedTotalAssets(ctx context.Context, addr string) (math.Int, error) {
	return q.keeper.EstimatedTotalAssets(sdk.UnwrapSDKContext(ctx), addr), nil
}

// Triggers evaluates both triggers at callCost
func (q *QueryServer) Triggers(ctx context.Context, addr string, callCost math.Int) (*TriggerView, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return &TriggerView{
		Strategy: addr,
		CallCost: callCost,
		Harvest:  q.keeper.HarvestTrigger(sdkCtx, addr, callCost),
		Tend:     q.keeper.TendTrigger(sdkCtx, addr, callCost),
	}, nil
}

// CloneRecords returns clone records created after sequence `after`
func (q *QueryServer) CloneRecords(ctx context.Context, after uint64) ([]*types.CloneRecord, error) {
	var out []*types.CloneRecord
	for _, rec := range q.keeper.GetCloneRecords(sdk.UnwrapSDKContext(ctx)) {
		if rec.Sequence > after {
			out = append(out, rec)
		}
	}
	return out, nil
}

// HarvestHistory returns the reports of a strategy, oldest first
func (q *QueryServer) HarvestHistory(ctx context.Context, addr string) ([]*types.HarvestReport, error) {
	return q.keeper.GetHarvestReports(sdk.UnwrapSDKContext(ctx), addr), nil
}
