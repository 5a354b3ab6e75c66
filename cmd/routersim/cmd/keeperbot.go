package cmd

import (
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/openalpha/yield-router/offchain/keeperbot"
)

const (
	flagBlocks        = "blocks"
	flagBlockTime     = "block-time"
	flagBlockInterval = "block-interval"
	flagYieldEvery    = "yield-every"
	flagConfig        = "config"
	flagPolicy        = "policy"
	flagCallCost      = "call-cost"
)

// BotSummary is printed after a keeper bot simulation
type BotSummary struct {
	Blocks        int                       `json:"blocks"`
	Harvests      int                       `json:"harvests"`
	Submissions   keeperbot.SubmitterStatus `json:"submissions"`
	PricePerShare string                    `json:"price_per_share"`
	VaultAssets   string                    `json:"vault_assets"`
}

// KeeperBotCmd returns the command running the keeper bot against a simulated chain
func KeeperBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keeperbot",
		Short: "Run the keeper bot against a simulated chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			blocks, _ := cmd.Flags().GetInt(flagBlocks)
			blockTime, _ := cmd.Flags().GetDuration(flagBlockTime)
			interval, _ := cmd.Flags().GetDuration(flagBlockInterval)
			yieldEvery, _ := cmd.Flags().GetInt(flagYieldEvery)
			configPath, _ := cmd.Flags().GetString(flagConfig)

			config, err := keeperbot.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed(flagPolicy) {
				config.HarvestPolicy, _ = cmd.Flags().GetString(flagPolicy)
			}
			if cmd.Flags().Changed(flagCallCost) {
				config.CallCost, _ = cmd.Flags().GetString(flagCallCost)
			}
			// the simulated chain has no websocket endpoint
			config.WebSocketURL = ""
			if err := config.Validate(); err != nil {
				return err
			}

			chain, f, err := e.chain()
			if err != nil {
				return err
			}
			if err := chain.Deposit(f); err != nil {
				return err
			}

			local := keeperbot.NewLocalChain(chain.Keeper, func() sdk.Context { return chain.Ctx }, f.Keeper)
			opts := []keeperbot.Option{
				keeperbot.WithClock(func() time.Time { return chain.Ctx.BlockTime() }),
			}
			if e.metrics != nil {
				opts = append(opts, keeperbot.WithMetrics(e.metrics))
			}
			bot, err := keeperbot.New(config, local, local, e.logger, opts...)
			if err != nil {
				return err
			}
			if err := bot.Seed(cmd.Context()); err != nil {
				return err
			}

			profit := f.Amount.QuoRaw(1_000)
			for i := 1; i <= blocks; i++ {
				chain.Mine(blockTime)
				if yieldEvery > 0 && i%yieldEvery == 0 {
					if err := chain.Bank.Transfer(chain.Ctx, f.Whale, f.InnerVault, f.Want, profit); err != nil {
						return err
					}
					if _, err := chain.Inner.Report(chain.Ctx, f.InnerVault); err != nil {
						return err
					}
				}
				bot.Tick(cmd.Context(), chain.Ctx.BlockTime())
				if err := chain.Keeper.EndBlocker(chain.Ctx); err != nil {
					return err
				}
				if interval > 0 {
					time.Sleep(interval)
				}
			}

			return e.print(BotSummary{
				Blocks:        blocks,
				Harvests:      len(chain.Keeper.GetHarvestReports(chain.Ctx, f.Strategy)),
				Submissions:   local.GetStatus(),
				PricePerShare: chain.Outer.PricePerShare(chain.Ctx, f.Vault).String(),
				VaultAssets:   chain.Outer.TotalAssets(chain.Ctx, f.Vault).String(),
			})
		},
	}

	cmd.Flags().Int(flagBlocks, 1_000, "Number of blocks to simulate")
	cmd.Flags().Duration(flagBlockTime, time.Hour, "Block time advanced per block")
	cmd.Flags().Duration(flagBlockInterval, 0, "Wall clock pause between blocks")
	cmd.Flags().Int(flagYieldEvery, 24, "Donate yield to the inner vault every N blocks (0 disables)")
	cmd.Flags().String(flagConfig, "", "Keeper bot YAML config")
	cmd.Flags().String(flagPolicy, "", "Harvest policy expression, overrides the config file")
	cmd.Flags().String(flagCallCost, "0", "Call cost passed to the triggers, overrides the config file")
	return cmd
}
