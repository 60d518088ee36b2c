package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/merging"
	"github.com/collection-tools/registrar/internal/table"
)

func newMergeCmd() *cobra.Command {
	var (
		key    string
		output string
	)

	cmd := &cobra.Command{
		Use:   "merge <file>...",
		Short: "Merge cleaned exports into one record per inventory number",
		Long: `Concatenates one or more cleaned exports, drops rows without an
inventory number, and folds rows sharing a number into a single record
where the first non-empty value per column wins. Records split across
rows with complementary fields filled come out whole.`,
		Example: `  registrar merge non_empty_0_970.xlsx

  # Merge two partial exports into one table
  registrar merge teil1.xlsx teil2.xlsx -o cleaned_data.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if key == "" {
				key = cfg.Columns.ID
			}

			inputs := make([]merging.Input, 0, len(args))
			for _, path := range args {
				t, err := table.ReadFile(path, cfg.Encodings)
				if err != nil {
					return err
				}
				inputs = append(inputs, merging.Input{Name: filepath.Base(path), Table: t})
			}

			merged, summary, err := merging.Merge(inputs, key)
			if err != nil {
				return err
			}
			if err := table.WriteCSV(merged, output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Merged %d rows into %d records (%d blank ids, %d duplicates), wrote %s\n",
				summary.InputRows, summary.OutputRows, summary.BlankIDs, summary.Duplicates, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Identifier column (defaults to the configured id column)")
	cmd.Flags().StringVarP(&output, "output", "o", "cleaned_data.csv", "Output CSV file")

	return cmd
}
