// Command sleepctl is the operator CLI: hash an identity-provider subject the
// way the server does, run schema migrations, or force a weekly summary run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/config"
	"github.com/sakif/alive-sleep/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "sleepctl",
	Short:         "Operator tools for the Alive sleep tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newHashCmd(), newMigrateCmd(), newSummarizeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnv reads the same configuration the server does, with a quieter
// logger unless LOG_LEVEL asks otherwise.
func loadEnv() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
