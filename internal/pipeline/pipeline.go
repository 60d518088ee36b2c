// Package pipeline sequences the catalogue stages over one set of inputs:
// clean the spreadsheets, merge them into one record per identifier,
// collect the object photographs, generate captions.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/collection-tools/registrar/internal/archive"
	"github.com/collection-tools/registrar/internal/caption"
	"github.com/collection-tools/registrar/internal/cleaning"
	"github.com/collection-tools/registrar/internal/collect"
	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/merging"
	"github.com/collection-tools/registrar/internal/models"
	"github.com/collection-tools/registrar/internal/providers"
	"github.com/collection-tools/registrar/internal/table"
)

// Stage names, in execution order.
const (
	StageClean   = "clean"
	StageMerge   = "merge"
	StageCollect = "collect"
	StageCaption = "caption"
)

// Observer receives one line per pipeline step. Done and total count
// records within the current stage; total is 0 while unknown.
type Observer func(stage, message string, done, total int)

// Summary sums up a completed run.
type Summary struct {
	Inputs        int
	MergedRecords int
	ImagesFound   int
	ImagesMissing int
	Captioned     int
	Fallbacks     int
	Failed        int
	Outputs       []string
}

// Runner executes the pipeline. Provider overrides the configured caption
// provider when set; serve injects it once so a bad credential surfaces at
// startup, not mid-job. Snapshot, when set, additionally stores the joined
// result as a Parquet archive under the output directory.
type Runner struct {
	Config   config.Config
	Provider providers.Provider
	Observe  Observer
	Snapshot string
}

// Run executes all stages for one request. The error is non-nil for
// structural failures and cancellation; per-record caption failures are
// folded into the summary instead.
func (r *Runner) Run(ctx context.Context, req models.JobRequest) (*Summary, error) {
	if len(req.Inputs) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	cfg := r.Config
	if req.Language != "" {
		cfg.Caption.Language = req.Language
	}
	if req.Categorize {
		cfg.Caption.Categorize = true
	}

	provider := r.Provider
	if provider == nil {
		var err error
		provider, err = cfg.Provider()
		if err != nil {
			return nil, err
		}
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &Summary{Inputs: len(req.Inputs)}

	merged, err := r.cleanAndMerge(ctx, cfg, req, outDir, summary)
	if err != nil {
		return nil, err
	}

	records := merged.Records(cfg.Mapping())
	imagesDir, err := r.collectImages(ctx, cfg, req, merged, records, outDir, summary)
	if err != nil {
		return nil, err
	}

	results, err := r.captionRecords(ctx, cfg, provider, records, imagesDir, outDir, summary)
	if err != nil {
		return nil, err
	}

	if r.Snapshot != "" {
		if err := r.writeSnapshot(records, results, outDir, summary); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

// cleanAndMerge runs stages one and two and writes cleaned_data.csv.
func (r *Runner) cleanAndMerge(ctx context.Context, cfg config.Config, req models.JobRequest, outDir string, summary *Summary) (*table.Table, error) {
	inputs := make([]merging.Input, 0, len(req.Inputs))
	for i, path := range req.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.publish(StageClean, fmt.Sprintf("Reading %s", filepath.Base(path)), i, len(req.Inputs))

		t, err := table.ReadFile(path, cfg.Encodings)
		if err != nil {
			return nil, err
		}

		start, end := req.RowStart, req.RowEnd
		if end <= 0 {
			end = len(t.Rows)
		}
		cleaned, cleanSummary, err := cleaning.Clean(t, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to clean %s: %w", filepath.Base(path), err)
		}
		r.publish(StageClean, fmt.Sprintf("%s: kept %d rows, %d columns", filepath.Base(path), cleanSummary.RowsKept, len(cleanSummary.KeptColumns)), i+1, len(req.Inputs))

		inputs = append(inputs, merging.Input{Name: filepath.Base(path), Table: cleaned})
	}

	merged, mergeSummary, err := merging.Merge(inputs, cfg.Columns.ID)
	if err != nil {
		return nil, err
	}
	summary.MergedRecords = mergeSummary.OutputRows
	r.publish(StageMerge, fmt.Sprintf("%d rows in, %d records out (%d blank ids, %d duplicates)",
		mergeSummary.InputRows, mergeSummary.OutputRows, mergeSummary.BlankIDs, mergeSummary.Duplicates), mergeSummary.OutputRows, mergeSummary.OutputRows)

	mergedPath := filepath.Join(outDir, "cleaned_data.csv")
	if err := table.WriteCSV(merged, mergedPath); err != nil {
		return nil, err
	}
	summary.Outputs = append(summary.Outputs, mergedPath)
	return merged, nil
}

// collectImages runs stage three. Without source roots the stage is
// skipped and captioning proceeds from facts alone.
func (r *Runner) collectImages(ctx context.Context, cfg config.Config, req models.JobRequest, merged *table.Table, records []table.Record, outDir string, summary *Summary) (string, error) {
	roots := req.ImageRoots
	if len(roots) == 0 {
		roots = cfg.Images.Roots
	}
	if len(roots) == 0 {
		r.publish(StageCollect, "No image roots configured, skipping collection", 0, 0)
		return "", nil
	}

	imagesDir := cfg.Images.Dir
	if !filepath.IsAbs(imagesDir) {
		imagesDir = filepath.Join(outDir, imagesDir)
	}

	var report *collect.Report
	var err error
	if merged.ColumnIndex(cfg.Columns.ImagePaths) >= 0 {
		report, err = collect.Collect(ctx, records, roots, imagesDir)
	} else {
		report, err = collect.CollectByID(ctx, records, roots, imagesDir)
	}
	if err != nil {
		return "", err
	}

	summary.ImagesFound = report.Found
	summary.ImagesMissing = report.Missing
	summary.Outputs = append(summary.Outputs, imagesDir)
	r.publish(StageCollect, fmt.Sprintf("%d images collected, %d missing", report.Found, report.Missing), len(records), len(records))
	return imagesDir, nil
}

// captionRecords runs stage four and writes caption.csv.
func (r *Runner) captionRecords(ctx context.Context, cfg config.Config, provider providers.Provider, records []table.Record, imagesDir, outDir string, summary *Summary) ([]caption.Result, error) {
	enricher := caption.NewEnricher(provider, cfg.EnricherOptions(imagesDir))

	results, err := enricher.EnrichAll(ctx, records, func(i int, rec table.Record, res caption.Result) {
		r.publish(StageCaption, fmt.Sprintf("%s: %s", rec.ID, res.Status), i+1, len(records))
	})
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		switch res.Status {
		case caption.StatusOK:
			summary.Captioned++
		case caption.StatusFallback:
			summary.Fallbacks++
		case caption.StatusFailed:
			summary.Failed++
		}
	}

	captionPath := filepath.Join(outDir, "caption.csv")
	if err := table.WriteCSV(caption.Table(results, cfg.Caption.Categorize), captionPath); err != nil {
		return nil, err
	}
	summary.Outputs = append(summary.Outputs, captionPath)
	return results, nil
}

func (r *Runner) writeSnapshot(records []table.Record, results []caption.Result, outDir string, summary *Summary) error {
	entries, err := archive.FromResults(records, results)
	if err != nil {
		return err
	}

	path := r.Snapshot
	if !filepath.IsAbs(path) {
		path = filepath.Join(outDir, path)
	}
	if err := archive.Write(path, entries); err != nil {
		return err
	}
	summary.Outputs = append(summary.Outputs, path)
	r.publish(StageCaption, fmt.Sprintf("Snapshot of %d objects written", len(entries)), len(entries), len(entries))
	return nil
}

func (r *Runner) publish(stage, message string, done, total int) {
	slog.Info(message, "stage", stage)
	if r.Observe != nil {
		r.Observe(stage, message, done, total)
	}
}
