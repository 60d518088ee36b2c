package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	gptable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/collection-tools/registrar/internal/cleaning"
	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/table"
)

func newCleanCmd() *cobra.Command {
	var (
		start  int
		end    int
		output string
	)

	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Cut an inventory export down to the rows and columns in use",
		Long: `Reads a spreadsheet export (.xlsx, .xls or .csv), keeps the rows in the
given range, and drops every column that carries no data inside it.

The row range is half-open and 0-based, counted below the header row.
--end 0 means the end of the file.`,
		Example: `  # Keep the first 970 data rows
  registrar clean inventar.xlsx --end 970

  # Slice a window out of a large export and write CSV
  registrar clean inventar.xlsx --start 700 --end 850 -o window.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			t, err := table.ReadFile(args[0], cfg.Encodings)
			if err != nil {
				return err
			}

			if end <= 0 {
				end = len(t.Rows)
			}
			cleaned, summary, err := cleaning.Clean(t, start, end)
			if err != nil {
				return err
			}

			if output == "" {
				output = cleaning.OutputName(summary.RowStart, summary.RowEnd)
			}
			if strings.EqualFold(filepath.Ext(output), ".csv") {
				err = table.WriteCSV(cleaned, output)
			} else {
				err = table.WriteXLSX(cleaned, output)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderCleanSummary(summary, output))
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "First data row to keep (0-based)")
	cmd.Flags().IntVar(&end, "end", 0, "Data row to stop before (0 means end of file)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.xlsx or .csv)")

	return cmd
}

func renderCleanSummary(s *cleaning.Summary, output string) string {
	tw := gptable.NewWriter()
	tw.SetStyle(gptable.StyleRounded)
	tw.AppendHeader(gptable.Row{"Cleaned", output})
	tw.AppendRow(gptable.Row{"Rows kept", s.RowsKept})
	tw.AppendRow(gptable.Row{"Columns kept", len(s.KeptColumns)})
	tw.AppendRow(gptable.Row{"Columns removed", strings.Join(s.RemovedColumns, ", ")})
	return tw.Render()
}
