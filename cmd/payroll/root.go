package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/payroll-import/internal/config"
	"github.com/JonMunkholm/payroll-import/internal/importer"
	"github.com/JonMunkholm/payroll-import/internal/logging"
)

type rootOptions struct {
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Import monthly payroll files and render salary slips",
		Long: `payroll imports CSV, TSV, XLSX and XLS payroll exports into the
configured stores and renders PDF salary slips from stored batches.

Stores and limits are configured through the same environment variables
as the HTTP server (STORE_PRIMARY, STORE_SECONDARY, LOCAL_STORE_PATH, ...).

Example Usage:
  payroll sample --format xlsx --out payroll_sample.xlsx
  payroll import --file march.xlsx --month March --year 2025 --dry-run
  payroll import --file march.xlsx --month March --year 2025
  payroll slip --period March_2025 --id T001_March_2025`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.envFile != "" {
				if err := godotenv.Overload(opts.envFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			}
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			// stdout carries command output
			logging.SetupWriter(cmd.ErrOrStderr(), level, "text")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env", "", "Path to a .env file to load before reading configuration")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	cmd.AddCommand(
		newImportCmd(),
		newSampleCmd(),
		newSlipCmd(),
		newVersionCmd(),
	)
	return cmd
}

// openService loads configuration and opens the configured stores.
func openService(cmd *cobra.Command) (*importer.Service, *config.Config, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	svc, closeStores, err := importer.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return svc, cfg, closeStores, nil
}
