package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/openalpha/yield-router/cmd/routersim/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("failure when running routersim", "err", err)
		os.Exit(1)
	}
}
