package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	verbose bool
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registrar",
		Short: "Museum catalogue pipeline with LLM-generated object captions",
		Long: `Registrar turns raw museum inventory exports into a publishable catalogue.

It cleans spreadsheet exports, merges fragmented records into one row per
inventory number, collects the referenced object photographs, and generates
captions with vision-capable LLMs (Gemini, OpenAI or Ollama).`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newCleanCmd())
	cmd.AddCommand(newMergeCmd())
	cmd.AddCommand(newCollectCmd())
	cmd.AddCommand(newCaptionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newArchiveCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
