// Package main provides the bikeshare CLI. It wires the subcommands, loads
// configuration from the environment and initializes logging.
package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/bikeshare/internal/config"
	"github.com/ukydev/bikeshare/internal/logging"
)

// setup loads the configuration named by the --env-file flag and builds the
// logger writing to out.
func setup(cmd *cobra.Command, out io.Writer) (*config.Config, *log.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(out, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newRootCommand(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bikeshare",
		Short:         "Bike sharing rental service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().String("env-file", ".env", "Env file loaded before reading the environment")

	rootCmd.AddCommand(
		simulateCommand(out),
		tokenCommand(out),
	)
	return rootCmd
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
