package keeper_test

import (
	"errors"
	"testing"
	"time"

	"cosmossdk.io/math"

	"github.com/openalpha/yield-router/testutil/simchain"
	"github.com/openalpha/yield-router/x/router/types"
)

func TestMsgServerHarvest(t *testing.T) {
	chain, f := setup(t)
	if err := chain.Deposit(f); err != nil {
		t.Fatal(err)
	}
	chain.Mine(time.Second)

	res, err := chain.MsgServer.Harvest(chain.Ctx, &types.MsgHarvest{Caller: f.Keeper, Strategy: f.Strategy})
	if err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	if res.ReportID != types.ReportID(f.Strategy, 1) {
		t.Errorf("expected report id %s, got %s", types.ReportID(f.Strategy, 1), res.ReportID)
	}
	if res.Profit != "0" || res.Loss != "0" || res.DebtOutstanding != "0" {
		t.Errorf("unexpected first report %+v", res)
	}
	if n := countEvents(chain.Ctx.EventManager().Events(), types.EventTypeHarvested); n != 1 {
		t.Errorf("expected 1 harvested event, got %d", n)
	}
	requireApprox(t, "deployed assets", chain.Keeper.EstimatedTotalAssets(chain.Ctx, f.Strategy), f.Amount)
}

func TestMsgServerFailureLeavesNoTrace(t *testing.T) {
	chain, f := setup(t)
	if err := chain.Deposit(f); err != nil {
		t.Fatal(err)
	}
	chain.Mine(time.Second)

	if _, err := chain.MsgServer.Harvest(chain.Ctx, &types.MsgHarvest{Caller: f.User, Strategy: f.Strategy}); !errors.Is(err, types.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if n := len(chain.Ctx.EventManager().Events()); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
	if reports := chain.Keeper.GetHarvestReports(chain.Ctx, f.Strategy); len(reports) != 0 {
		t.Errorf("expected no reports, got %d", len(reports))
	}

	idle := math.NewInt(1_000)
	if err := chain.Bank.Transfer(chain.Ctx, f.Whale, f.Strategy, f.Want, idle); err != nil {
		t.Fatal(err)
	}
	_, err := chain.MsgServer.Sweep(chain.Ctx, &types.MsgSweep{Caller: f.Gov, Strategy: f.Strategy, Denom: f.Want})
	if !errors.Is(err, types.ErrProtectedAsset) {
		t.Fatalf("expected ErrProtectedAsset, got %v", err)
	}
	if got := chain.Bank.Balance(chain.Ctx, f.Strategy, f.Want); !got.Equal(idle) {
		t.Errorf("expected strategy to keep %s, got %s", idle, got)
	}
	if n := countEvents(chain.Ctx.EventManager().Events(), types.EventTypeSwept); n != 0 {
		t.Errorf("expected no swept events, got %d", n)
	}
}

func TestMsgServerCreateAndClone(t *testing.T) {
	chain, f := setup(t)

	created, err := chain.MsgServer.CreateStrategy(chain.Ctx, &types.MsgCreateStrategy{
		Creator:    f.Strategist,
		Vault:      f.Vault,
		InnerVault: f.InnerVault,
		Name:       "second",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if s := chain.Keeper.GetStrategy(chain.Ctx, created.Strategy); s == nil || s.Name != "second" {
		t.Fatalf("expected stored strategy, got %+v", s)
	}

	cloned, err := chain.MsgServer.CloneStrategy(chain.Ctx, &types.MsgCloneStrategy{
		Sender:     f.User,
		Original:   created.Strategy,
		Vault:      f.Vault,
		InnerVault: f.InnerVault,
		Name:       "third",
		Strategist: f.User,
		Rewards:    f.User,
		Keeper:     f.User,
	})
	if err != nil {
		t.Fatalf("clone failed: %v", err)
	}
	s := chain.Keeper.GetStrategy(chain.Ctx, cloned.Clone)
	if s == nil || !s.IsClone || s.Original != created.Strategy {
		t.Fatalf("expected clone of %s, got %+v", created.Strategy, s)
	}
	if s.Roles.Governance != f.Gov {
		t.Errorf("expected governance inherited from vault, got %s", s.Roles.Governance)
	}
}

func TestMsgServerValidateBasic(t *testing.T) {
	chain, f := setup(t)

	testCases := []struct {
		name string
		run  func() error
	}{
		{"harvest bad caller", func() error {
			_, err := chain.MsgServer.Harvest(chain.Ctx, &types.MsgHarvest{Caller: "bad", Strategy: f.Strategy})
			return err
		}},
		{"sweep bad denom", func() error {
			_, err := chain.MsgServer.Sweep(chain.Ctx, &types.MsgSweep{Caller: f.Gov, Strategy: f.Strategy, Denom: "1!"})
			return err
		}},
		{"update unknown role", func() error {
			_, err := chain.MsgServer.UpdateRoles(chain.Ctx, &types.MsgUpdateRoles{Caller: f.Gov, Strategy: f.Strategy, Role: "owner", Address: f.User})
			return err
		}},
		{"trigger config bad amount", func() error {
			_, err := chain.MsgServer.SetTriggerConfig(chain.Ctx, &types.MsgSetTriggerConfig{
				Caller: f.Strategist, Strategy: f.Strategy, CreditThreshold: "lots",
			})
			return err
		}},
		{"create without name", func() error {
			_, err := chain.MsgServer.CreateStrategy(chain.Ctx, &types.MsgCreateStrategy{Creator: f.User, Vault: f.Vault, InnerVault: f.InnerVault})
			return err
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestMsgServerRoleFlow(t *testing.T) {
	chain, f := setup(t)
	ctx := chain.Ctx
	keeperAddr := simchain.Account("bot")

	if _, err := chain.MsgServer.SetKeeper(ctx, &types.MsgSetKeeper{Caller: f.Strategist, Strategy: f.Strategy, Keeper: keeperAddr}); err != nil {
		t.Fatal(err)
	}
	if _, err := chain.MsgServer.Tend(ctx, &types.MsgTend{Caller: keeperAddr, Strategy: f.Strategy}); err != nil {
		t.Errorf("new keeper tend failed: %v", err)
	}
	if _, err := chain.MsgServer.SetForceHarvestTriggerOnce(ctx, &types.MsgSetForceHarvestTriggerOnce{
		Caller: f.Strategist, Strategy: f.Strategy, Force: true,
	}); err != nil {
		t.Fatal(err)
	}
	if !chain.Keeper.HarvestTrigger(ctx, f.Strategy, math.ZeroInt()) {
		t.Error("expected forced harvest trigger")
	}
	if _, err := chain.MsgServer.SetEmergencyExit(ctx, &types.MsgSetEmergencyExit{Caller: f.Guardian, Strategy: f.Strategy}); err != nil {
		t.Fatal(err)
	}
	if !chain.Keeper.GetStrategy(ctx, f.Strategy).InEmergencyExit() {
		t.Error("expected emergency exit")
	}
}
