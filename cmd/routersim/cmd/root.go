package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	routermetrics "github.com/openalpha/yield-router/metrics"
	"github.com/openalpha/yield-router/testutil/simchain"
	"github.com/openalpha/yield-router/x/router/keeper"
)

const (
	flagMetricsAddr = "metrics-addr"
	flagQuiet       = "quiet"
)

// NewRootCmd creates the routersim root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "routersim",
		Short: "Yield router simulator",
		Long: `routersim runs the router module against simulated outer and inner vaults
on an in-memory chain. Scenarios print their results as JSON.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String(flagMetricsAddr, "", "Serve Prometheus metrics on this address (e.g. :9090)")
	rootCmd.PersistentFlags().Bool(flagQuiet, false, "Disable logging")

	rootCmd.AddCommand(
		ScenarioCmd(),
		KeeperBotCmd(),
	)
	return rootCmd
}

// env is what every subcommand needs to build a chain
type env struct {
	logger  log.Logger
	metrics *routermetrics.Collector
	server  *http.Server
	out     io.Writer
}

func newEnv(cmd *cobra.Command) (*env, error) {
	e := &env{
		logger: log.NewLogger(os.Stderr),
		out:    cmd.OutOrStdout(),
	}
	if quiet, _ := cmd.Flags().GetBool(flagQuiet); quiet {
		e.logger = log.NewNopLogger()
	}

	addr, _ := cmd.Flags().GetString(flagMetricsAddr)
	if addr == "" {
		return e, nil
	}
	e.metrics = routermetrics.GetCollector()
	mux := http.NewServeMux()
	mux.Handle("/metrics", routermetrics.Handler())
	e.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	e.logger.Info("serving metrics", "addr", addr)
	return e, nil
}

func (e *env) chain() (*simchain.Chain, *simchain.Fixture, error) {
	var opts []keeper.Option
	if e.metrics != nil {
		opts = append(opts, keeper.WithMetrics(e.metrics))
	}
	chain, err := simchain.New(e.logger, opts...)
	if err != nil {
		return nil, nil, err
	}
	f, err := chain.NewFixture(simchain.DefaultAmount)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to deploy fixture: %w", err)
	}
	return chain, f, nil
}

func (e *env) print(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.out, string(output))
	return err
}

func (e *env) close() {
	if e.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = e.server.Shutdown(ctx)
}
