// Command hem runs the BS EN ISO 52016/52010/EN 14825 whole-dwelling
// energy model over a configuration file. Grounded on
// awaistechnologist-smart-run/cmd/smart-run/main.go's cobra root +
// subcommand shape (persistent --config flag, cobra.OnInitialize binding
// viper), adapted from that repo's appliance-scheduling commands to
// run/validate/schema.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"hemcore/internal/config"
	"hemcore/internal/hemlog"
	"hemcore/internal/live"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hem",
		Short: "hem runs the whole-dwelling Home Energy Model core engine",
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the run configuration (YAML)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(schemaCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var liveAddr string
	var sampleEvery int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation over the configured period",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := hemlog.New(os.Stderr, verbose)

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			dwelling, err := cfg.Build()
			if err != nil {
				return err
			}

			if liveAddr != "" {
				hub := live.NewHub()
				dwelling.Sink = live.NewBroadcaster(hub, sampleEvery)

				mux := http.NewServeMux()
				mux.Handle("/progress", live.NewHandler(hub))
				server := &http.Server{Addr: liveAddr, Handler: mux}
				go func() {
					logger.Info().Str("addr", liveAddr).Msg("serving live progress feed")
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Warn().Err(err).Msg("live progress server stopped")
					}
				}()
			}

			logger.Info().
				Int("zones", len(dwelling.Zones)).
				Int("total_steps", dwelling.Clock.TotalSteps()).
				Msg("starting run")

			results, err := dwelling.Run()
			if err != nil {
				return err
			}

			totalUnmet := 0.0
			for _, r := range results {
				totalUnmet += r.UnmetDemandKWh
			}
			logger.Info().
				Int("steps_completed", len(results)).
				Float64("total_unmet_demand_kwh", totalUnmet).
				Msg("run complete")

			return nil
		},
	}

	cmd.Flags().StringVar(&liveAddr, "live-addr", "", "if set, serve a live progress websocket feed at this address (e.g. :8080)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 48, "broadcast one in every N timesteps on the live feed")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration without running the simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if _, err := cfg.Build(); err != nil {
				return err
			}
			fmt.Println("config valid")
			return nil
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration object's field layout as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(config.Config{})
		},
	}
}
