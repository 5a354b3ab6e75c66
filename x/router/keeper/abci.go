package keeper

import (
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// EndBlocker refreshes per-strategy gauges. It never mutates state.
func (k *Keeper) EndBlocker(ctx sdk.Context) error {
	if k.metrics == nil {
		return nil
	}
	start := time.Now()

	strategies := k.GetAllStrategies(ctx)
	for _, s := range strategies {
		k.metrics.RecordStrategyState(s.Address, toFloat(k.estimatedTotalAssets(ctx, s)), s.InEmergencyExit())
	}
	k.metrics.UpdateSystemMetrics(ctx.BlockHeight())

	k.logger.Debug("router EndBlocker completed",
		"block", ctx.BlockHeight(),
		"strategies", len(strategies),
		"total_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
