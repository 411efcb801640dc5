// Package cmd provides the CLI commands for discounts.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"service-discounts/internal/config"
	"service-discounts/internal/infrastructure/storage"
	"service-discounts/internal/logging"
	"service-discounts/pkg/engine"
)

// Version is the CLI version.
const Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "discounts",
	Short: "Resolve order discounts from CRM discount programs",
	Long: `discounts prices the lines of a CRM order by running the partner,
invoice threshold, accumulative and per-product discount programs
and keeping the best discount for each nomenclature group.

Examples:
  discounts calculate --snapshot crm.yaml --order 100 --company 7
  discounts volumes record --snapshot crm.yaml --order 100 --company 7
  discounts volumes get --company 7 --group 10
  discounts volumes import volumes.csv`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(volumesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	config.LoadEnv()
	path := cfgFile
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// newService builds the engine with the configured volume store. The returned function releases it.
func newService(ctx context.Context, opts ...engine.Option) (*engine.Service, func(), error) {
	cfg := config.Get()
	if err := cfg.Discounts.Validate(); err != nil {
		return nil, nil, err
	}
	store, closeFn, err := storage.OpenVolumeStore(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open volume store: %w", err)
	}
	opts = append([]engine.Option{engine.WithVolumeStore(store)}, opts...)
	return engine.NewService(cfg.Discounts, opts...), closeFn, nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "discounts version %s\n", Version)
	},
}
