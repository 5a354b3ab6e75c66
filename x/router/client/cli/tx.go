package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-router/x/router/types"
)

const (
	flagMinReportDelay  = "min-report-delay"
	flagMaxReportDelay  = "max-report-delay"
	flagCreditThreshold = "credit-threshold"
	flagMaxCallCost     = "max-call-cost"
)

// GetTxCmd returns the transaction commands for the router module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Router module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdCreateStrategy(),
		CmdCloneStrategy(),
		CmdHarvest(),
		CmdTend(),
		CmdSetEmergencyExit(),
		CmdSweep(),
		CmdSetKeeper(),
		CmdSetStrategist(),
		CmdSetRewards(),
		CmdUpdateRoles(),
		CmdSetTriggerConfig(),
		CmdForceHarvest(),
	)

	return cmd
}

// txCmd builds a command that signs one message built from the sender and args
func txCmd(use, short string, nargs int, build func(from string, args []string) (sdk.Msg, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg, err := build(clientCtx.GetFromAddress().String(), args)
			if err != nil {
				return err
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdCreateStrategy returns the command to deploy an original strategy
func CmdCreateStrategy() *cobra.Command {
	return txCmd("create [vault] [inner-vault] [name]", "Deploy a strategy between an outer and an inner vault", 3,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgCreateStrategy{Creator: from, Vault: args[0], InnerVault: args[1], Name: args[2]}, nil
		})
}

// CmdCloneStrategy returns the command to clone an original strategy
func CmdCloneStrategy() *cobra.Command {
	return txCmd("clone [original] [vault] [inner-vault] [name] [strategist] [rewards] [keeper]",
		"Clone a strategy onto another vault pair", 7,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgCloneStrategy{
				Sender:     from,
				Original:   args[0],
				Vault:      args[1],
				InnerVault: args[2],
				Name:       args[3],
				Strategist: args[4],
				Rewards:    args[5],
				Keeper:     args[6],
			}, nil
		})
}

// CmdHarvest returns the command to harvest a strategy
func CmdHarvest() *cobra.Command {
	return txCmd("harvest [strategy]", "Report profit or loss to the vault and rebalance", 1,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgHarvest{Caller: from, Strategy: args[0]}, nil
		})
}

// CmdTend returns the command to tend a strategy
func CmdTend() *cobra.Command {
	return txCmd("tend [strategy]", "Tend a strategy", 1,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgTend{Caller: from, Strategy: args[0]}, nil
		})
}

// CmdSetEmergencyExit returns the command to start unwinding a strategy
func CmdSetEmergencyExit() *cobra.Command {
	return txCmd("emergency-exit [strategy]", "Put a strategy into emergency exit", 1,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgSetEmergencyExit{Caller: from, Strategy: args[0]}, nil
		})
}

// CmdSweep returns the command to sweep a stray denom
func CmdSweep() *cobra.Command {
	return txCmd("sweep [strategy] [denom]", "Send a non-protected denom held by the strategy to governance", 2,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgSweep{Caller: from, Strategy: args[0], Denom: args[1]}, nil
		})
}

// CmdSetKeeper returns the command to replace the keeper
func CmdSetKeeper() *cobra.Command {
	return txCmd("set-keeper [strategy] [keeper]", "Replace the strategy keeper", 2,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgSetKeeper{Caller: from, Strategy: args[0], Keeper: args[1]}, nil
		})
}

// CmdSetStrategist returns the command to replace the strategist
func CmdSetStrategist() *cobra.Command {
	return txCmd("set-strategist [strategy] [strategist]", "Replace the strategist", 2,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgSetStrategist{Caller: from, Strategy: args[0], Strategist: args[1]}, nil
		})
}

// CmdSetRewards returns the command to replace the rewards recipient
func CmdSetRewards() *cobra.Command {
	return txCmd("set-rewards [strategy] [rewards]", "Replace the rewards recipient", 2,
		func(from string, args []string) (sdk.Msg, error) {
			return &types.MsgSetRewards{Caller: from, Strategy: args[0], Rewards: args[1]}, nil
		})
}

// CmdUpdateRoles returns the command for governance to reassign a role
func CmdUpdateRoles() *cobra.Command {
	return txCmd("update-role [strategy] [role] [address]", "Reassign a strategy role (governance)", 3,
		func(from string, args []string) (sdk.Msg, error) {
			if !types.IsValidRole(args[1]) {
				return nil, fmt.Errorf("unknown role %q", args[1])
			}
			return &types.MsgUpdateRoles{Caller: from, Strategy: args[0], Role: args[1], Address: args[2]}, nil
		})
}

// CmdSetTriggerConfig returns the command to tune the harvest trigger
func CmdSetTriggerConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-triggers [strategy]",
		Short: "Tune the harvest trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			minDelay, _ := cmd.Flags().GetDuration(flagMinReportDelay)
			maxDelay, _ := cmd.Flags().GetDuration(flagMaxReportDelay)
			threshold, _ := cmd.Flags().GetString(flagCreditThreshold)
			maxCost, _ := cmd.Flags().GetString(flagMaxCallCost)

			msg := &types.MsgSetTriggerConfig{
				Caller:          clientCtx.GetFromAddress().String(),
				Strategy:        args[0],
				MinReportDelay:  int64(minDelay.Seconds()),
				MaxReportDelay:  int64(maxDelay.Seconds()),
				CreditThreshold: threshold,
				MaxCallCost:     maxCost,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	defaults := types.DefaultTriggerConfig()
	cmd.Flags().Duration(flagMinReportDelay, defaults.MinReportDelay, "Minimum time between harvests")
	cmd.Flags().Duration(flagMaxReportDelay, defaults.MaxReportDelay, "Force a harvest after this long (0 disables)")
	cmd.Flags().String(flagCreditThreshold, defaults.CreditThreshold.String(), "Harvest when credit or idle want exceeds this")
	cmd.Flags().String(flagMaxCallCost, "0", "Refuse to trigger above this call cost (0 disables)")
	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdForceHarvest returns the command to force the next harvest trigger
func CmdForceHarvest() *cobra.Command {
	return txCmd("force-harvest [strategy] [true|false]", "Make the harvest trigger fire until the next harvest", 2,
		func(from string, args []string) (sdk.Msg, error) {
			force, err := strconv.ParseBool(args[1])
			if err != nil {
				return nil, fmt.Errorf("invalid flag: %v", err)
			}
			return &types.MsgSetForceHarvestTriggerOnce{Caller: from, Strategy: args[0], Force: force}, nil
		})
}
