package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/payroll-import/internal/core"
	"github.com/JonMunkholm/payroll-import/internal/payslip"
)

type slipOptions struct {
	period string
	month  string
	year   string
	id     string
	out    string
}

func newSlipCmd() *cobra.Command {
	var opts slipOptions

	cmd := &cobra.Command{
		Use:   "slip",
		Short: "Render a stored record as a PDF salary slip",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSlip(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.period, "period", "", "Period key, e.g. March_2025")
	cmd.Flags().StringVar(&opts.month, "month", "", "Payroll month name (with --year, instead of --period)")
	cmd.Flags().StringVar(&opts.year, "year", "", "Payroll year (with --month, instead of --period)")
	cmd.Flags().StringVar(&opts.id, "id", "", "Record id, e.g. T001_March_2025 (required)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output PDF file (default: payslip_<id>.pdf)")

	_ = cmd.MarkFlagRequired("id")
	cmd.MarkFlagsMutuallyExclusive("period", "month")
	cmd.MarkFlagsMutuallyExclusive("period", "year")

	return cmd
}

func runSlip(cmd *cobra.Command, opts slipOptions) error {
	key := strings.TrimSpace(opts.period)
	if key == "" {
		period := core.Period{Month: strings.TrimSpace(opts.month), Year: strings.TrimSpace(opts.year)}
		if err := period.Validate(); err != nil {
			return fmt.Errorf("%w (or pass --period)", err)
		}
		key = period.Key()
	}

	svc, cfg, closeStores, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeStores()

	rec, err := svc.Slip(cmd.Context(), key, opts.id)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = payslip.Filename(rec)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}

	err = payslip.Render(f, rec, payslip.Options{
		Title:        cfg.Payslip.Title,
		Organization: cfg.Payslip.Organization,
		Currency:     cfg.Payslip.Currency,
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("render slip: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
