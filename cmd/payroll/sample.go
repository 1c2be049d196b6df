package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/payroll-import/internal/core"
)

func newSampleCmd() *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a sample payroll file with the canonical columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			switch format {
			case "csv":
				if err := core.WriteSampleCSV(&buf); err != nil {
					return err
				}
			case "xlsx":
				if err := core.WriteSampleXLSX(&buf); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported sample format %q (want csv or xlsx)", format)
			}

			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write sample: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Sample format: csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")

	return cmd
}
