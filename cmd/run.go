package cmd

import (
	"fmt"

	gptable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/models"
	"github.com/collection-tools/registrar/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	var (
		roots      []string
		out        string
		start      int
		end        int
		language   string
		categorize bool
		snapshot   string
	)

	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Run the full pipeline: clean, merge, collect, caption",
		Long: `Executes every stage over the given exports and writes cleaned_data.csv,
the collected images folder and caption.csv into the output directory.

With --snapshot the joined result is additionally stored as a Parquet
archive in the output directory.`,
		Example: `  export GEMINI_API_KEY=...
  registrar run inventar.xlsx --root /mnt/fotoarchiv --out ./katalog

  registrar run teil1.xlsx teil2.xlsx --root ./fotos --end 970 --snapshot catalog_snapshot.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			runner := &pipeline.Runner{Config: cfg, Snapshot: snapshot}
			summary, err := runner.Run(cmd.Context(), models.JobRequest{
				Inputs:     args,
				ImageRoots: roots,
				OutputDir:  out,
				RowStart:   start,
				RowEnd:     end,
				Language:   language,
				Categorize: categorize,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderRunSummary(summary))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&roots, "root", nil, "Image source root, repeatable")
	cmd.Flags().StringVar(&out, "out", "", "Output directory (defaults to the configured one)")
	cmd.Flags().IntVar(&start, "start", 0, "First data row to keep (0-based)")
	cmd.Flags().IntVar(&end, "end", 0, "Data row to stop before (0 means end of file)")
	cmd.Flags().StringVar(&language, "language", "", "Caption language, e.g. deutsch or english")
	cmd.Flags().BoolVar(&categorize, "categorize", false, "Ask the model to assign a collection category")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Also store the joined result as a Parquet file with this name")

	return cmd
}

func renderRunSummary(s *pipeline.Summary) string {
	tw := gptable.NewWriter()
	tw.SetStyle(gptable.StyleRounded)
	tw.AppendHeader(gptable.Row{"Pipeline", ""})
	tw.AppendRow(gptable.Row{"Inputs", s.Inputs})
	tw.AppendRow(gptable.Row{"Merged records", s.MergedRecords})
	tw.AppendRow(gptable.Row{"Images found", s.ImagesFound})
	tw.AppendRow(gptable.Row{"Images missing", s.ImagesMissing})
	tw.AppendRow(gptable.Row{"Captioned", s.Captioned})
	tw.AppendRow(gptable.Row{"Fallbacks", s.Fallbacks})
	tw.AppendRow(gptable.Row{"Failed", s.Failed})
	for _, out := range s.Outputs {
		tw.AppendRow(gptable.Row{"Output", out})
	}
	return tw.Render()
}
