// Package caption turns merged catalogue records and their collected
// photographs into headline and description pairs via a multimodal AI
// provider, degrading to deterministic fact-based captions when the
// provider cannot deliver.
package caption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"time"

	"github.com/collection-tools/registrar/internal/collect"
	"github.com/collection-tools/registrar/internal/providers"
	"github.com/collection-tools/registrar/internal/table"
)

// Generation status of one record.
const (
	StatusOK       = "ok"
	StatusFallback = "fallback"
	StatusFailed   = "failed"
)

// Result is one generated caption row. It is created once per record and
// appended to the output in input order.
type Result struct {
	Headline  string
	Caption   string
	ImageFile string
	Category  string
	Status    string
}

// EnrichmentCallError records a provider call that failed after all
// retries. The batch continues with a fallback caption; this error is
// logged, never fatal.
type EnrichmentCallError struct {
	RecordID string
	Attempts int
	Err      error
}

func (e *EnrichmentCallError) Error() string {
	return fmt.Sprintf("enrichment call for %s failed after %d attempts: %v", e.RecordID, e.Attempts, e.Err)
}

func (e *EnrichmentCallError) Unwrap() error {
	return e.Err
}

// Options configures an Enricher.
type Options struct {
	Model       string
	Temperature float64
	Language    Language
	Categories  []string
	ImagesDir   string
	MaxImages   int
	MinLength   int
	MinInterval time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// Enricher drives the caption generation pass over a set of records.
type Enricher struct {
	provider providers.Provider
	opts     Options
	limiter  *Limiter
}

// NewEnricher creates an enricher with defaults filled in: up to 4 images
// per record, captions of at least 10 characters, 3 attempts with linear
// backoff starting at 10 seconds.
func NewEnricher(p providers.Provider, opts Options) *Enricher {
	if opts.MaxImages <= 0 {
		opts.MaxImages = 4
	}
	if opts.MinLength <= 0 {
		opts.MinLength = 10
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 10 * time.Second
	}
	if opts.Language.HeadlineTag == "" {
		opts.Language = LanguageFor("")
	}
	return &Enricher{
		provider: p,
		opts:     opts,
		limiter:  &Limiter{Interval: opts.MinInterval},
	}
}

// EnrichAll generates one caption per record in input order. The observe
// callback, when non-nil, sees each result as it is produced. Only context
// cancellation stops the pass early; per-record failures degrade to
// fallback captions.
func (e *Enricher) EnrichAll(ctx context.Context, records []table.Record, observe func(i int, rec table.Record, res Result)) ([]Result, error) {
	results := make([]Result, 0, len(records))
	for i, rec := range records {
		res, err := e.Enrich(ctx, rec)
		if err != nil {
			return results, err
		}
		slog.Info("Generated caption", "record", rec.ID, "status", res.Status)
		results = append(results, res)
		if observe != nil {
			observe(i, rec, res)
		}
	}
	return results, nil
}

// Enrich generates the caption for a single record. The returned error is
// non-nil only when the context was cancelled; every other failure is
// folded into the result status.
func (e *Enricher) Enrich(ctx context.Context, rec table.Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	paths := e.recordImages(rec)
	images, err := providers.LoadImages(paths)
	if err != nil {
		slog.Warn("Failed to load images, captioning from facts alone", "record", rec.ID, "error", err)
		images = nil
		paths = nil
	}
	imageFile := ""
	if len(paths) > 0 {
		imageFile = filepath.Base(paths[0])
	}

	req := providers.Request{
		Model:       e.opts.Model,
		Temperature: e.opts.Temperature,
		Prompt:      BuildPrompt(rec, e.opts.Language, len(images) > 0, e.opts.Categories),
		Images:      images,
	}

	text, err := e.call(ctx, rec, req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		slog.Warn("Caption generation failed, using fallback", "record", rec.ID, "error", err)
		headline, capt := Fallback(rec)
		return Result{Headline: headline, Caption: capt, ImageFile: imageFile, Status: StatusFailed}, nil
	}

	reply := ParseReply(text, e.opts.Language)
	headline := Clean(reply.Headline)
	capt := Clean(reply.Caption)

	status := StatusOK
	if headline == "" || !Usable(capt, e.opts.MinLength) {
		fh, fc := Fallback(rec)
		if headline == "" {
			headline = fh
		}
		if !Usable(capt, e.opts.MinLength) {
			capt = fc
		}
		status = StatusFallback
	}
	return Result{Headline: headline, Caption: capt, ImageFile: imageFile, Category: reply.Category, Status: status}, nil
}

func (e *Enricher) recordImages(rec table.Record) []string {
	if e.opts.ImagesDir == "" {
		return nil
	}
	paths, err := collect.ImagesFor(e.opts.ImagesDir, rec.Key(), e.opts.MaxImages)
	if err != nil {
		slog.Warn("Failed to list images, captioning from facts alone", "record", rec.ID, "error", err)
		return nil
	}
	return paths
}

// call invokes the provider under the rate limiter, retrying transient
// failures with linear backoff.
func (e *Enricher) call(ctx context.Context, rec table.Record, req providers.Request) (string, error) {
	var lastErr error
	attempts := 0
	for attempts < e.opts.MaxAttempts {
		if err := e.limiter.Wait(ctx); err != nil {
			return "", err
		}
		attempts++
		text, err := e.provider.Describe(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !transient(err) {
			break
		}
		if attempts < e.opts.MaxAttempts {
			wait := time.Duration(attempts) * e.opts.Backoff
			slog.Warn("Provider call failed, backing off", "record", rec.ID, "attempt", attempts, "wait", wait, "error", err)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return "", ctx.Err()
			case <-timer.C:
			}
		}
	}
	return "", &EnrichmentCallError{RecordID: rec.ID, Attempts: attempts, Err: lastErr}
}

// transient reports whether a provider error is worth retrying. Rate
// limits and timeouts are; malformed requests and auth failures are not.
func transient(err error) bool {
	var rl *providers.RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Table lays results out under the caption.csv header. The category column
// appears only when categorisation was requested.
func Table(results []Result, withCategory bool) *table.Table {
	columns := []string{"headline", "caption", "image_file"}
	if withCategory {
		columns = append(columns, "category")
	}
	t := table.New(columns)
	for _, r := range results {
		row := []string{r.Headline, r.Caption, r.ImageFile}
		if withCategory {
			row = append(row, r.Category)
		}
		t.AppendRow(row)
	}
	return t
}
