package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/collection-tools/registrar/internal/caption"
	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/table"
)

func newCaptionCmd() *cobra.Command {
	var (
		imagesDir  string
		output     string
		language   string
		categorize bool
		model      string
	)

	cmd := &cobra.Command{
		Use:   "caption <cleaned-file>",
		Short: "Generate object descriptions with a vision-capable LLM",
		Long: `Sends each record's catalogue facts and up to four collected photographs
to the configured provider and writes one headline and description per
object. Records whose call fails after retries keep a caption built from
their facts, so the output always lines up with the input row for row.

The provider is chosen in the config file; credentials come from
GEMINI_API_KEY or OPENAI_API_KEY, or OLLAMA_URL for a local model.`,
		Example: `  export GEMINI_API_KEY=...
  registrar caption cleaned_data.csv --images collected_images

  # English captions with category assignment
  registrar caption cleaned_data.csv --images fotos --language english --categorize`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if language != "" {
				cfg.Caption.Language = language
			}
			if categorize {
				cfg.Caption.Categorize = true
			}
			if model != "" {
				cfg.Caption.Model = model
			}
			if imagesDir == "" {
				imagesDir = cfg.Images.Dir
			}

			provider, err := cfg.Provider()
			if err != nil {
				return err
			}

			t, err := table.ReadFile(args[0], cfg.Encodings)
			if err != nil {
				return err
			}
			records := t.Records(cfg.Mapping())

			enricher := caption.NewEnricher(provider, cfg.EnricherOptions(imagesDir))
			results, err := enricher.EnrichAll(cmd.Context(), records, func(i int, rec table.Record, res caption.Result) {
				slog.Info("Captioned record", "id", rec.ID, "status", res.Status, "done", i+1, "total", len(records))
			})
			if err != nil {
				return err
			}

			if err := table.WriteCSV(caption.Table(results, cfg.Caption.Categorize), output); err != nil {
				return err
			}

			var ok, fallback, failed int
			for _, r := range results {
				switch r.Status {
				case caption.StatusOK:
					ok++
				case caption.StatusFallback:
					fallback++
				case caption.StatusFailed:
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Captioned %d records: %d ok, %d fallback, %d failed, wrote %s\n",
				len(results), ok, fallback, failed, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&imagesDir, "images", "", "Folder with collected images (defaults to the configured images dir)")
	cmd.Flags().StringVarP(&output, "output", "o", "caption.csv", "Output CSV file")
	cmd.Flags().StringVar(&language, "language", "", "Caption language, e.g. deutsch or english")
	cmd.Flags().BoolVar(&categorize, "categorize", false, "Ask the model to assign a collection category")
	cmd.Flags().StringVar(&model, "model", "", "Model override")

	return cmd
}
