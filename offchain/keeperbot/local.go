package keeperbot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/keeper"
	"github.com/openalpha/yield-router/x/router/types"
)

// LocalChain drives an in-process router keeper. It serves as both
// ChainReader and TxSubmitter, signing every message as caller.
// Calls are serialized because sdk contexts are not safe for concurrent use.
type LocalChain struct {
	mu     sync.Mutex
	keeper *keeper.Keeper
	msgs   *keeper.MsgServer
	ctx    func() sdk.Context
	caller string
	status SubmitterStatus
}

var (
	_ ChainReader = (*LocalChain)(nil)
	_ TxSubmitter = (*LocalChain)(nil)
)

// NewLocalChain creates a LocalChain. ctx returns the current block context.
func NewLocalChain(k *keeper.Keeper, ctx func() sdk.Context, caller string) *LocalChain {
	return &LocalChain{
		keeper: k,
		msgs:   keeper.NewMsgServerImpl(k),
		ctx:    ctx,
		caller: caller,
		status: SubmitterStatus{Connected: true},
	}
}

// Strategies lists every strategy in the keeper
func (c *LocalChain) Strategies(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all := c.keeper.GetAllStrategies(c.ctx())
	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, s.Address)
	}
	return out, nil
}

// Strategy returns the state of one strategy
func (c *LocalChain) Strategy(ctx context.Context, addr string) (*StrategyInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sdkCtx := c.ctx()
	s := c.keeper.GetStrategy(sdkCtx, addr)
	if s == nil {
		return nil, fmt.Errorf("strategy %s not found", addr)
	}
	return &StrategyInfo{
		Address:         s.Address,
		Name:            s.Name,
		EstimatedAssets: c.keeper.EstimatedTotalAssets(sdkCtx, addr),
		EmergencyExit:   s.InEmergencyExit(),
		LastHarvestAt:   time.Unix(s.LastHarvestAt, 0),
	}, nil
}

// HarvestTrigger evaluates the harvest trigger
func (c *LocalChain) HarvestTrigger(ctx context.Context, addr string, callCost math.Int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keeper.HarvestTrigger(c.ctx(), addr, callCost), nil
}

// TendTrigger evaluates the tend trigger
func (c *LocalChain) TendTrigger(ctx context.Context, addr string, callCost math.Int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keeper.TendTrigger(c.ctx(), addr, callCost), nil
}

// Harvest delivers a MsgHarvest
func (c *LocalChain) Harvest(ctx context.Context, strategy string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.msgs.Harvest(c.ctx(), &types.MsgHarvest{Caller: c.caller, Strategy: strategy})
	return c.record(err)
}

// Tend delivers a MsgTend
func (c *LocalChain) Tend(ctx context.Context, strategy string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.msgs.Tend(c.ctx(), &types.MsgTend{Caller: c.caller, Strategy: strategy})
	return c.record(err)
}

// GetStatus returns the submission status
func (c *LocalChain) GetStatus() SubmitterStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *LocalChain) record(err error) error {
	if err != nil {
		c.status.FailedSubmissions++
		c.status.LastError = err.Error()
		return err
	}
	c.status.TotalSubmissions++
	c.status.LastSubmitTime = c.ctx().BlockTime()
	return nil
}
