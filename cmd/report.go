package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/report"
	"github.com/collection-tools/registrar/internal/table"
)

func newReportCmd() *cobra.Command {
	var (
		topMaterials int
		output       string
		idsOut       string
	)

	cmd := &cobra.Command{
		Use:   "report <file>...",
		Short: "Summarise a catalogue: unique objects, materials, decades",
		Long: `Counts unique objects across the given tables (rows sharing an inventory
number count once), ranks the leading materials, and buckets objects by
decade using the first four-digit year in the date column.

The numbers print as tables; -o writes them as CSV and --ids-out exports
the unique inventory numbers.`,
		Example: `  registrar report cleaned_data.csv

  registrar report teil1.xlsx teil2.xlsx -o report.csv --ids-out object_ids.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			var records []table.Record
			for _, path := range args {
				t, err := table.ReadFile(path, cfg.Encodings)
				if err != nil {
					return err
				}
				records = append(records, t.Records(cfg.Mapping())...)
			}

			stats := report.Compute(records, topMaterials, 15)
			fmt.Fprint(cmd.OutOrStdout(), report.Render(stats))

			if output != "" {
				if err := table.WriteCSV(stats.Table(), output); err != nil {
					return err
				}
			}
			if idsOut != "" {
				if err := table.WriteCSV(stats.IDTable(), idsOut); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topMaterials, "top", 10, "How many materials to rank")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the numbers as CSV")
	cmd.Flags().StringVar(&idsOut, "ids-out", "", "Write the unique inventory numbers as CSV")

	return cmd
}
