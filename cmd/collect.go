package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/collection-tools/registrar/internal/collect"
	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/table"
)

func newCollectCmd() *cobra.Command {
	var (
		roots []string
		dest  string
		byID  bool
	)

	cmd := &cobra.Command{
		Use:   "collect <cleaned-file>",
		Short: "Copy the photographs a catalogue references into one folder",
		Long: `Reads a cleaned table, resolves each record's image references against
the source roots in order, and copies every readable match into the
destination folder. Missing and unreadable files are logged and counted,
never fatal.

With --by-id the image path column is ignored and files are matched by
inventory number prefix instead. That also happens automatically when
the table has no image path column.`,
		Example: `  registrar collect cleaned_data.csv --root /mnt/fotoarchiv --root ./scans

  # Match by inventory number prefix
  registrar collect cleaned_data.csv --root ./fotos --by-id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if len(roots) == 0 {
				roots = cfg.Images.Roots
			}
			if len(roots) == 0 {
				return fmt.Errorf("no image roots given (use --root or the config file)")
			}
			if dest == "" {
				dest = cfg.Images.Dir
			}

			t, err := table.ReadFile(args[0], cfg.Encodings)
			if err != nil {
				return err
			}
			records := t.Records(cfg.Mapping())

			var report *collect.Report
			if byID || t.ColumnIndex(cfg.Columns.ImagePaths) < 0 {
				report, err = collect.CollectByID(cmd.Context(), records, roots, dest)
			} else {
				report, err = collect.Collect(cmd.Context(), records, roots, dest)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d images for %d records into %s (%d missing)\n",
				report.Copied, report.Records, dest, report.Missing)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&roots, "root", nil, "Image source root, repeatable")
	cmd.Flags().StringVar(&dest, "dest", "", "Destination folder (defaults to the configured images dir)")
	cmd.Flags().BoolVar(&byID, "by-id", false, "Match files by inventory number instead of the image path column")

	return cmd
}
