package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/openalpha/yield-router/testutil/simchain"
	"github.com/openalpha/yield-router/x/router/types"
)

// Step is a snapshot taken after one scenario action
type Step struct {
	Height          int64  `json:"height"`
	Action          string `json:"action"`
	StrategyAssets  string `json:"strategy_assets"`
	StrategyIdle    string `json:"strategy_idle"`
	VaultAssets     string `json:"vault_assets"`
	VaultIdle       string `json:"vault_idle"`
	PricePerShare   string `json:"price_per_share"`
	UserWant        string `json:"user_want"`
	UserShares      string `json:"user_shares"`
	DebtOutstanding string `json:"debt_outstanding,omitempty"`
	Note            string `json:"note,omitempty"`
}

// Result is the output of one scenario run
type Result struct {
	Scenario string `json:"scenario"`
	Strategy string `json:"strategy"`
	Steps    []Step `json:"steps"`
}

// run carries the chain through a scenario and records steps
type run struct {
	chain  *simchain.Chain
	f      *simchain.Fixture
	result *Result
}

type scenarioFunc func(r *run) error

var scenarios = map[string]scenarioFunc{
	"operation":          operationScenario,
	"clone":              cloneScenario,
	"emergency-exit":     emergencyExitScenario,
	"profitable-harvest": profitableHarvestScenario,
	"change-debt":        changeDebtScenario,
	"illiquid-withdraw":  illiquidWithdrawScenario,
	"sweep":              sweepScenario,
}

// ScenarioNames lists the available scenarios in order
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScenarioCmd returns the command running one named scenario
func ScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "scenario [name]",
		Short:     "Run a scenario: " + strings.Join(ScenarioNames(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: ScenarioNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			chain, f, err := e.chain()
			if err != nil {
				return err
			}
			result, err := RunScenario(chain, f, args[0])
			if err != nil {
				return err
			}
			return e.print(result)
		},
	}
}

// RunScenario runs name against a freshly deployed fixture
func RunScenario(chain *simchain.Chain, f *simchain.Fixture, name string) (*Result, error) {
	fn, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (available: %s)", name, strings.Join(ScenarioNames(), ", "))
	}
	r := &run{
		chain:  chain,
		f:      f,
		result: &Result{Scenario: name, Strategy: f.Strategy},
	}
	if err := fn(r); err != nil {
		return r.result, fmt.Errorf("scenario %s: %w", name, err)
	}
	return r.result, nil
}

func (r *run) step(action, note string) {
	c, f := r.chain, r.f
	ctx := c.Ctx
	vault, _ := c.Outer.Get(ctx, f.Vault)
	vaultIdle := math.ZeroInt()
	if vault != nil {
		vaultIdle = vault.TotalIdle
	}
	r.result.Steps = append(r.result.Steps, Step{
		Height:          ctx.BlockHeight(),
		Action:          action,
		StrategyAssets:  c.Keeper.EstimatedTotalAssets(ctx, f.Strategy).String(),
		StrategyIdle:    c.Bank.Balance(ctx, f.Strategy, f.Want).String(),
		VaultAssets:     c.Outer.TotalAssets(ctx, f.Vault).String(),
		VaultIdle:       vaultIdle.String(),
		PricePerShare:   c.Outer.PricePerShare(ctx, f.Vault).String(),
		UserWant:        c.Bank.Balance(ctx, f.User, f.Want).String(),
		UserShares:      c.Outer.BalanceOf(ctx, f.Vault, f.User).String(),
		DebtOutstanding: c.Outer.DebtOutstanding(ctx, f.Vault, f.Strategy).String(),
		Note:            note,
	})
}

func (r *run) deposit() error {
	if err := r.chain.Deposit(r.f); err != nil {
		return err
	}
	r.step("deposit", "")
	return nil
}

func (r *run) harvest() error {
	r.chain.Mine(time.Second)
	res, err := r.chain.MsgServer.Harvest(r.chain.Ctx, &types.MsgHarvest{Caller: r.f.Keeper, Strategy: r.f.Strategy})
	if err != nil {
		return err
	}
	r.step("harvest", fmt.Sprintf("report %s profit=%s loss=%s debt_payment=%s", res.ReportID, res.Profit, res.Loss, res.DebtPayment))
	return nil
}

func (r *run) withdrawAll() error {
	r.chain.Mine(time.Second)
	got, err := r.chain.Outer.Withdraw(r.chain.Ctx, r.f.Vault, r.f.User, nil)
	if err != nil {
		return err
	}
	r.step("withdraw", "received "+got.String())
	return nil
}

func (r *run) setDebtRatio(bps uint64) error {
	if err := r.chain.Outer.UpdateStrategyDebtRatio(r.chain.Ctx, r.f.Vault, r.f.Strategy, bps); err != nil {
		return err
	}
	r.step("debt_ratio", fmt.Sprintf("%d bps", bps))
	return nil
}

func operationScenario(r *run) error {
	if err := r.deposit(); err != nil {
		return err
	}
	if err := r.harvest(); err != nil {
		return err
	}
	if _, err := r.chain.MsgServer.Tend(r.chain.Ctx, &types.MsgTend{Caller: r.f.Keeper, Strategy: r.f.Strategy}); err != nil {
		return err
	}
	r.step("tend", "")
	r.chain.Mine(time.Hour)
	return r.withdrawAll()
}

func cloneScenario(r *run) error {
	clone, err := r.chain.Clone(r.f)
	if err != nil {
		return err
	}
	original := r.f.Strategy
	r.f.Strategy = clone
	r.result.Strategy = clone
	r.step("clone", "cloned from "+original)

	if err := r.deposit(); err != nil {
		return err
	}
	if err := r.harvest(); err != nil {
		return err
	}
	return r.withdrawAll()
}

func emergencyExitScenario(r *run) error {
	if err := r.deposit(); err != nil {
		return err
	}
	if err := r.harvest(); err != nil {
		return err
	}
	if _, err := r.chain.MsgServer.SetEmergencyExit(r.chain.Ctx, &types.MsgSetEmergencyExit{Caller: r.f.Guardian, Strategy: r.f.Strategy}); err != nil {
		return err
	}
	r.step("emergency_exit", "")
	return r.harvest()
}

func profitableHarvestScenario(r *run) error {
	if err := r.deposit(); err != nil {
		return err
	}
	if err := r.harvest(); err != nil {
		return err
	}

	// simulate yield: donate 1% to the inner vault and let it report
	profit := r.f.Amount.QuoRaw(100)
	ctx := r.chain.Ctx
	if err := r.chain.Bank.Transfer(ctx, r.f.Whale, r.f.InnerVault, r.f.Want, profit); err != nil {
		return err
	}
	if _, err := r.chain.Inner.Report(ctx, r.f.InnerVault); err != nil {
		return err
	}
	r.step("inner_profit", "donated "+profit.String())

	r.chain.Mine(simchain.InnerUnlockTime)
	if err := r.harvest(); err != nil {
		return err
	}
	r.chain.Mine(6 * time.Hour)
	r.step("unlocked", "")
	return nil
}

func changeDebtScenario(r *run) error {
	if err := r.deposit(); err != nil {
		return err
	}
	for _, bps := range []uint64{5_000, 10_000, 5_000} {
		if err := r.setDebtRatio(bps); err != nil {
			return err
		}
		if err := r.harvest(); err != nil {
			return err
		}
	}
	return nil
}

func illiquidWithdrawScenario(r *run) error {
	if err := r.deposit(); err != nil {
		return err
	}
	if err := r.harvest(); err != nil {
		return err
	}
	half := r.f.Amount.QuoRaw(2)
	if err := r.chain.Inner.SetWithdrawable(r.chain.Ctx, r.f.InnerVault, &half); err != nil {
		return err
	}
	r.step("limit_liquidity", "inner vault withdrawable "+half.String())
	return r.withdrawAll()
}

func sweepScenario(r *run) error {
	const denom = "urwd"
	amount := math.NewIntWithDecimal(5, 18)
	r.chain.Bank.Mint(r.chain.Ctx, r.f.Strategy, denom, amount)
	r.step("airdrop", amount.String()+denom)

	if _, err := r.chain.MsgServer.Sweep(r.chain.Ctx, &types.MsgSweep{Caller: r.f.Gov, Strategy: r.f.Strategy, Denom: r.f.Want}); err == nil {
		return fmt.Errorf("sweeping want must fail")
	}
	r.step("sweep_want_rejected", "")

	res, err := r.chain.MsgServer.Sweep(r.chain.Ctx, &types.MsgSweep{Caller: r.f.Gov, Strategy: r.f.Strategy, Denom: denom})
	if err != nil {
		return err
	}
	r.step("sweep", "governance received "+res.Amount+denom)
	return nil
}
