package keeper

import (
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// HarvestTrigger advises keepers whether a harvest is worth its call cost.
// It is read-only and never fails; a nil call cost reads as zero.
func (k *Keeper) HarvestTrigger(ctx sdk.Context, addr string, callCost math.Int) bool {
	result := k.harvestTrigger(ctx, addr, callCost)
	if k.metrics != nil {
		k.metrics.RecordTrigger("harvest", result)
	}
	return result
}

func (k *Keeper) harvestTrigger(ctx sdk.Context, addr string, callCost math.Int) bool {
	if callCost.IsNil() {
		callCost = math.ZeroInt()
	}
	s := k.GetStrategy(ctx, addr)
	if s == nil {
		return false
	}
	cfg := s.Triggers
	if !cfg.MaxCallCost.IsNil() && cfg.MaxCallCost.IsPositive() && callCost.GT(cfg.MaxCallCost) {
		return false
	}
	if s.ForceHarvestOnce {
		return true
	}

	assets := k.estimatedTotalAssets(ctx, s)
	if s.InEmergencyExit() {
		return assets.IsPositive()
	}

	params, err := k.StrategyParams(ctx, s)
	if err != nil {
		return false
	}
	if params.DebtRatio == 0 && assets.IsZero() {
		return false
	}

	since := ctx.BlockTime().Sub(time.Unix(params.LastReport, 0))
	if since < cfg.MinReportDelay {
		return false
	}
	if cfg.MaxReportDelay > 0 && since >= cfg.MaxReportDelay {
		return true
	}

	threshold := cfg.CreditThreshold
	if threshold.IsNil() {
		threshold = math.ZeroInt()
	}
	if k.creditAvailable(ctx, s).GT(threshold) {
		return true
	}
	return k.wantBalance(ctx, s).GT(threshold)
}

// TendTrigger delegates to the configured TendPolicy
func (k *Keeper) TendTrigger(ctx sdk.Context, addr string, callCost math.Int) bool {
	if callCost.IsNil() {
		callCost = math.ZeroInt()
	}
	s := k.GetStrategy(ctx, addr)
	result := s != nil && k.tendPolicy(ctx, s, callCost)
	if k.metrics != nil {
		k.metrics.RecordTrigger("tend", result)
	}
	return result
}
