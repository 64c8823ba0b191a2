package main

import (
	"fmt"
	"io"
	"maps"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/bikeshare/internal/auth"
	"github.com/ukydev/bikeshare/internal/metrics"
	"github.com/ukydev/bikeshare/internal/simulator"
)

func simulateCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Runs a simulated day of rentals against an in-memory service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, out)
			if err != nil {
				return err
			}

			simCfg := simulator.Config{
				Riders:          cfg.Simulation.Riders,
				Bikes:           cfg.Simulation.Bikes,
				Rides:           cfg.Simulation.Rides,
				MaxRideDuration: cfg.Simulation.MaxRideDuration,
				Seed:            cfg.Simulation.Seed,
			}
			// flags win over the environment when set
			flags := cmd.Flags()
			if flags.Changed("riders") {
				simCfg.Riders, _ = flags.GetInt("riders")
			}
			if flags.Changed("bikes") {
				simCfg.Bikes, _ = flags.GetInt("bikes")
			}
			if flags.Changed("rides") {
				simCfg.Rides, _ = flags.GetInt("rides")
			}
			if flags.Changed("seed") {
				simCfg.Seed, _ = flags.GetInt64("seed")
			}

			reg := prometheus.NewRegistry()
			recorder, err := metrics.NewRecorder(reg)
			if err != nil {
				return fmt.Errorf("could not create metrics recorder: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.WithFields(log.Fields{
				"env":    cfg.Environment,
				"riders": simCfg.Riders,
				"bikes":  simCfg.Bikes,
				"rides":  simCfg.Rides,
				"seed":   simCfg.Seed,
			}).Info("Starting simulation")

			sim := simulator.New(
				simCfg,
				auth.NewBcryptCrypt(cfg.BcryptCost),
				auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry),
				logger,
				recorder,
			)
			report, err := sim.Run(ctx)
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			fmt.Fprintf(out, "riders=%d bikes=%d rides=%d rejected=%d revenue=%.2f distance_km=%.1f elapsed=%s\n",
				report.Riders, report.Bikes, report.Rides, report.Rejected, report.Revenue, report.DistanceKm, report.Elapsed)

			totals, err := metrics.Totals(reg)
			if err != nil {
				return fmt.Errorf("could not gather metrics: %w", err)
			}
			counters := make([]string, 0, len(totals))
			for _, name := range slices.Sorted(maps.Keys(totals)) {
				counters = append(counters, fmt.Sprintf("%s=%g", name, totals[name]))
			}
			fmt.Fprintln(out, strings.Join(counters, " "))
			return nil
		},
	}

	cmd.Flags().Int("riders", 0, "Number of riders (overrides SIM_RIDERS)")
	cmd.Flags().Int("bikes", 0, "Number of bikes (overrides SIM_BIKES)")
	cmd.Flags().Int("rides", 0, "Number of ride requests (overrides SIM_RIDES)")
	cmd.Flags().Int64("seed", 0, "Random seed (overrides SIM_SEED)")

	return cmd
}
