package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/payroll-import/internal/core"
)

type importOptions struct {
	file   string
	month  string
	year   string
	kind   string
	dryRun bool
	asJSON bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a payroll file for one month",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Payroll file to import (required)")
	cmd.Flags().StringVar(&opts.month, "month", "", "Payroll month name, e.g. March (required)")
	cmd.Flags().StringVar(&opts.year, "year", "", "Payroll year, e.g. 2025 (required)")
	cmd.Flags().StringVar(&opts.kind, "kind", "", "File kind: csv, tsv, xlsx or xls (default: from file extension)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show how the file would be imported without writing")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full result as JSON")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	kind, err := fileKind(opts.file, opts.kind)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.file, err)
	}

	svc, _, closeStores, err := openService(cmd)
	if err != nil {
		return err
	}
	defer closeStores()

	period := core.Period{Month: opts.month, Year: opts.year}
	out := cmd.OutOrStdout()

	if opts.dryRun {
		p, err := svc.Preview(cmd.Context(), raw, kind, period)
		if err != nil {
			return errors.New(core.FormatUserError(err))
		}
		if opts.asJSON {
			return printJSON(cmd, p)
		}
		fmt.Fprintf(out, "Would import %d record(s) for %s.\n", p.RecordCount, p.Period)
		fmt.Fprintf(out, "  mapped columns: %d, unmapped fields: %d\n", len(p.Mapping), len(p.Unmapped))
		for _, w := range p.Warnings {
			fmt.Fprintf(out, "  warning: %s\n", w.Message)
		}
		if len(p.Skipped) > 0 {
			fmt.Fprintf(out, "  skipped rows: %d\n", len(p.Skipped))
		}
		return nil
	}

	res := svc.ImportFile(cmd.Context(), raw, kind, period)
	if opts.asJSON {
		if err := printJSON(cmd, res); err != nil {
			return err
		}
	} else if res.Success {
		fmt.Fprintln(out, res.Message)
	}
	if !res.Success {
		return errors.New(res.Message)
	}
	return nil
}

// fileKind returns the explicit kind, or the kind implied by the filename.
func fileKind(path, kind string) (core.SourceKind, error) {
	if kind != "" {
		return core.ParseKind(kind)
	}
	return core.KindFromFilename(filepath.Base(path))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
