package cmd

import (
	"fmt"

	gptable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/collection-tools/registrar/internal/archive"
	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/table"
)

func newArchiveCmd() *cobra.Command {
	var (
		captionsPath string
		output       string
		inspectPath  string
	)

	cmd := &cobra.Command{
		Use:   "archive [cleaned-file]",
		Short: "Store a finished catalogue as a Parquet snapshot",
		Long: `Joins a cleaned table with its caption file row by row and stores the
result as one typed Parquet file. The two files must come from the same
run; the join is by position and refuses mismatched row counts.

Use --inspect to look inside an existing snapshot.`,
		Example: `  registrar archive cleaned_data.csv --captions caption.csv

  registrar archive --inspect catalog_snapshot.parquet`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if inspectPath != "" {
				return inspectArchive(cmd, inspectPath)
			}
			if len(args) != 1 {
				return fmt.Errorf("expected a cleaned file (or --inspect)")
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			t, err := table.ReadFile(args[0], cfg.Encodings)
			if err != nil {
				return err
			}
			captions, err := table.ReadFile(captionsPath, cfg.Encodings)
			if err != nil {
				return err
			}

			entries, err := archive.FromTables(t.Records(cfg.Mapping()), captions)
			if err != nil {
				return err
			}
			if err := archive.Write(output, entries); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d objects to %s\n", len(entries), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&captionsPath, "captions", "caption.csv", "Caption file from the same run")
	cmd.Flags().StringVarP(&output, "output", "o", "catalog_snapshot.parquet", "Output Parquet file")
	cmd.Flags().StringVar(&inspectPath, "inspect", "", "Print a summary of an existing snapshot instead of building one")

	return cmd
}

func inspectArchive(cmd *cobra.Command, path string) error {
	entries, err := archive.Read(path)
	if err != nil {
		return err
	}

	tw := gptable.NewWriter()
	tw.SetStyle(gptable.StyleRounded)
	tw.AppendHeader(gptable.Row{"Object", "Headline", "Image", "Status"})
	sample := entries
	if len(sample) > 10 {
		sample = sample[:10]
	}
	for _, e := range sample {
		tw.AppendRow(gptable.Row{e.ObjectID, e.Headline, e.ImageFile, e.Status})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d objects in %s\n%s\n", len(entries), path, tw.Render())
	return nil
}
