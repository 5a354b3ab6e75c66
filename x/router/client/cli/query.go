package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/types/kv"

	"github.com/openalpha/yield-router/x/router/types"
)

// GetQueryCmd returns the cli query commands for the router module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        types.ModuleName,
		Short:                      "Querying commands for the router module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryStrategy(),
		CmdQueryStrategies(),
		CmdQueryCloneRecords(),
		CmdQueryHarvestHistory(),
	)

	return cmd
}

// CmdQueryStrategy returns the command to query one strategy record
func CmdQueryStrategy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy [address]",
		Short: "Query a strategy record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			bz, _, err := clientCtx.QueryStore(types.StrategyKey(args[0]), types.StoreKey)
			if err != nil {
				return err
			}
			if len(bz) == 0 {
				return fmt.Errorf("strategy not found: %s", args[0])
			}
			return clientCtx.PrintRaw(bz)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryStrategies returns the command to list all strategies
func CmdQueryStrategies() *cobra.Command {
	return subspaceCmd("strategies", "List all strategies", func(args []string) []byte {
		return types.StrategyKeyPrefix
	}, 0)
}

// CmdQueryCloneRecords returns the command to list clone discovery records
func CmdQueryCloneRecords() *cobra.Command {
	return subspaceCmd("clone-records", "List clone records in creation order", func(args []string) []byte {
		return types.CloneRecordKeyPrefix
	}, 0)
}

// CmdQueryHarvestHistory returns the command to list a strategy's harvest reports
func CmdQueryHarvestHistory() *cobra.Command {
	return subspaceCmd("harvest-history [strategy]", "List harvest reports of a strategy", func(args []string) []byte {
		return types.HarvestReportPrefix(args[0])
	}, 1)
}

// subspaceCmd prints every JSON value under a store prefix as one array
func subspaceCmd(use, short string, prefix func(args []string) []byte, nargs int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientQueryContext(cmd)
			if err != nil {
				return err
			}

			res, err := clientCtx.QueryABCI(abci.RequestQuery{
				Path:   "/store/" + types.StoreKey + "/subspace",
				Data:   prefix(args),
				Height: clientCtx.Height,
			})
			if err != nil {
				return err
			}
			output, err := decodeSubspace(res.Value)
			if err != nil {
				return err
			}
			return clientCtx.PrintRaw(output)
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// decodeSubspace turns a subspace query response into a JSON array of the stored values
func decodeSubspace(bz []byte) ([]byte, error) {
	var pairs kv.Pairs
	if err := pairs.Unmarshal(bz); err != nil {
		return nil, fmt.Errorf("failed to decode subspace: %w", err)
	}
	values := make([]json.RawMessage, 0, len(pairs.Pairs))
	for _, pair := range pairs.Pairs {
		values = append(values, json.RawMessage(pair.Value))
	}
	return json.Marshal(values)
}
