// Package simchain wires the router keeper to the reference vault
// simulations on an in-memory multistore.
package simchain

import (
	"fmt"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/openalpha/yield-router/testutil/vaultsim"
	"github.com/openalpha/yield-router/x/router/keeper"
	"github.com/openalpha/yield-router/x/router/types"
)

// GenesisTime is the block time of the first simulated block
var GenesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Chain is an in-process chain running the router module
type Chain struct {
	Ctx sdk.Context

	Bank   *vaultsim.Bank
	Outer  *vaultsim.OuterVaults
	Inner  *vaultsim.InnerVaults
	Keeper *keeper.Keeper

	MsgServer   *keeper.MsgServer
	QueryServer *keeper.QueryServer
}

// New creates a chain at height 1
func New(logger log.Logger, opts ...keeper.Option) (*Chain, error) {
	routerKey := storetypes.NewKVStoreKey(types.StoreKey)
	simKey := storetypes.NewKVStoreKey(vaultsim.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(routerKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(simKey, storetypes.StoreTypeIAVL, db)
	if err := stateStore.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1, Time: GenesisTime}, false, logger)

	bank := vaultsim.NewBank(simKey)
	outer := vaultsim.NewOuterVaults(simKey, bank, logger)
	inner := vaultsim.NewInnerVaults(simKey, bank)
	k := keeper.NewKeeper(routerKey, bank, outer, inner, logger, opts...)
	outer.SetWithdrawer(k)

	return &Chain{
		Ctx:         ctx,
		Bank:        bank,
		Outer:       outer,
		Inner:       inner,
		Keeper:      k,
		MsgServer:   keeper.NewMsgServerImpl(k),
		QueryServer: keeper.NewQueryServerImpl(k),
	}, nil
}

// Mine advances one block and d of block time
func (c *Chain) Mine(d time.Duration) {
	c.Ctx = c.Ctx.
		WithBlockHeight(c.Ctx.BlockHeight() + 1).
		WithBlockTime(c.Ctx.BlockTime().Add(d)).
		WithEventManager(sdk.NewEventManager())
}

// Account derives a deterministic account address from a name
func Account(name string) string {
	return sdk.AccAddress(address.Hash("simchain", []byte(name))).String()
}

// Fixture is the standard deployment: one outer vault, one inner vault and
// one original strategy taking the whole debt ratio.
type Fixture struct {
	Want   string
	Amount math.Int

	Gov        string
	Management string
	Guardian   string
	Strategist string
	Keeper     string
	Rewards    string
	User       string
	Whale      string

	Vault      string
	InnerVault string
	Strategy   string
}

// InnerUnlockTime is the inner vault's profit unlock window
const InnerUnlockTime = 10 * 24 * time.Hour

// InnerPerformanceFeeBPS is charged by the inner vault on reported profit
const InnerPerformanceFeeBPS = 1_000

// DefaultAmount is 100 tokens with 18 decimals
var DefaultAmount = math.NewIntWithDecimal(100, 18)

// NewFixture deploys the standard setup and funds the user with amount
func (c *Chain) NewFixture(amount math.Int) (*Fixture, error) {
	f := &Fixture{
		Want:       "udai",
		Amount:     amount,
		Gov:        Account("gov"),
		Management: Account("management"),
		Guardian:   Account("guardian"),
		Strategist: Account("strategist"),
		Keeper:     Account("keeper"),
		Rewards:    Account("rewards"),
		User:       Account("user"),
		Whale:      Account("whale"),
	}
	ctx := c.Ctx

	c.Bank.Mint(ctx, f.Whale, f.Want, math.NewIntWithDecimal(1_000_000, 18))
	if err := c.Bank.Transfer(ctx, f.Whale, f.User, f.Want, amount); err != nil {
		return nil, err
	}

	f.InnerVault = c.Inner.Create(ctx, "v3-dai", f.Want, InnerUnlockTime, InnerPerformanceFeeBPS, Account("v3-fees"))
	f.Vault = c.Outer.Create(ctx, "yvdai", f.Want, types.VaultRoles{
		Governance: f.Gov,
		Management: f.Management,
		Guardian:   f.Guardian,
	})
	if err := c.Outer.SetDepositLimit(ctx, f.Vault, vaultsim.Unlimited); err != nil {
		return nil, err
	}

	s, err := c.Keeper.CreateStrategy(ctx, f.Strategist, f.Vault, f.InnerVault, "StrategyV3Router")
	if err != nil {
		return nil, err
	}
	f.Strategy = s.Address
	if err := c.Keeper.SetKeeper(ctx, f.Strategist, f.Strategy, f.Keeper); err != nil {
		return nil, err
	}
	if err := c.Outer.AddStrategy(ctx, f.Vault, f.Strategy, types.MaxBPS, math.ZeroInt(), vaultsim.Unlimited); err != nil {
		return nil, err
	}
	return f, nil
}

// Clone clones the fixture strategy onto the same vault pair, moves the
// original's debt ratio to the clone and returns the clone address.
func (c *Chain) Clone(f *Fixture) (string, error) {
	ctx := c.Ctx
	if err := c.Outer.UpdateStrategyDebtRatio(ctx, f.Vault, f.Strategy, 0); err != nil {
		return "", err
	}
	clone, err := c.Keeper.CloneStrategy(ctx, f.Strategist, f.Strategy, f.Vault, f.InnerVault,
		"test clone", f.Strategist, f.Rewards, f.Keeper)
	if err != nil {
		return "", err
	}
	if err := c.Outer.AddStrategy(ctx, f.Vault, clone, types.MaxBPS, math.ZeroInt(), vaultsim.Unlimited); err != nil {
		return "", err
	}
	return clone, nil
}

// Deposit puts the user's amount into the outer vault
func (c *Chain) Deposit(f *Fixture) error {
	_, err := c.Outer.Deposit(c.Ctx, f.Vault, f.User, f.Amount)
	return err
}
