package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/collection-tools/registrar/internal/archive"
	"github.com/collection-tools/registrar/internal/config"
	"github.com/collection-tools/registrar/internal/models"
	"github.com/collection-tools/registrar/internal/providers"
	"github.com/collection-tools/registrar/internal/table"
)

type fakeProvider struct {
	reply string
	err   error
	calls int
}

func (f *fakeProvider) Describe(ctx context.Context, req providers.Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
}

func writeInputCSV(t *testing.T, dir string) string {
	t.Helper()
	content := "t1,T2,T3,T5,T13,T14,Leer\n" +
		"HA-1/1,Siemens,Bakelit,10 x 5 cm,photos\\HA-1-1.png,1935,\n" +
		"HA-1/1,,Bakelit,,,1935,\n" +
		"HA-2/1,AEG,Stahl,,,1950,\n" +
		",Geist,,,,,\n"
	path := filepath.Join(dir, "bestand.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Caption.RateLimit.MinIntervalSeconds = 0
	cfg.Caption.RateLimit.BackoffSeconds = 0
	return cfg
}

func TestRunFullPipeline(t *testing.T) {
	dir := t.TempDir()
	input := writeInputCSV(t, dir)

	root := filepath.Join(dir, "fotos")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	writeTestPNG(t, filepath.Join(root, "HA-1-1.png"))

	outDir := filepath.Join(dir, "out")
	provider := &fakeProvider{reply: "TITEL: Ein Objekt\nBESCHREIBUNG: Eine lange genug gültige Beschreibung."}

	var stages []string
	runner := &Runner{
		Config:   testConfig(),
		Provider: provider,
		Observe: func(stage, message string, done, total int) {
			stages = append(stages, stage)
		},
	}

	summary, err := runner.Run(context.Background(), models.JobRequest{
		Inputs:     []string{input},
		ImageRoots: []string{root},
		OutputDir:  outDir,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.MergedRecords != 2 {
		t.Errorf("Expected 2 merged records, got %d", summary.MergedRecords)
	}
	if summary.ImagesFound != 1 {
		t.Errorf("Expected 1 image found, got %d", summary.ImagesFound)
	}
	if summary.Captioned != 2 {
		t.Errorf("Expected 2 captioned records, got %d (fallbacks %d, failed %d)", summary.Captioned, summary.Fallbacks, summary.Failed)
	}
	if provider.calls != 2 {
		t.Errorf("Expected 2 provider calls, got %d", provider.calls)
	}

	merged, err := table.ReadFile(filepath.Join(outDir, "cleaned_data.csv"), nil)
	if err != nil {
		t.Fatalf("Failed to read merged output: %v", err)
	}
	if len(merged.Rows) != 2 {
		t.Errorf("Expected 2 rows in cleaned_data.csv, got %d", len(merged.Rows))
	}
	if merged.Cell(0, "T2") != "Siemens" || merged.Cell(0, "T5") != "10 x 5 cm" {
		t.Errorf("Expected coalesced first record, got %v", merged.Rows[0])
	}
	for _, column := range merged.Columns {
		if column == "Leer" {
			t.Error("Expected empty column dropped before merge")
		}
	}

	captions, err := table.ReadFile(filepath.Join(outDir, "caption.csv"), nil)
	if err != nil {
		t.Fatalf("Failed to read caption output: %v", err)
	}
	if len(captions.Columns) != 3 || captions.Columns[0] != "headline" {
		t.Errorf("Unexpected caption.csv header: %v", captions.Columns)
	}
	if captions.Cell(0, "image_file") != "HA-1-1.png" {
		t.Errorf("Expected collected image recorded, got %q", captions.Cell(0, "image_file"))
	}

	seen := map[string]bool{}
	for _, stage := range stages {
		seen[stage] = true
	}
	for _, stage := range []string{StageClean, StageMerge, StageCollect, StageCaption} {
		if !seen[stage] {
			t.Errorf("Expected observer to see stage %s", stage)
		}
	}
}

func TestRunWithoutImageRoots(t *testing.T) {
	dir := t.TempDir()
	input := writeInputCSV(t, dir)
	outDir := filepath.Join(dir, "out")

	provider := &fakeProvider{reply: "TITEL: Ein Objekt\nBESCHREIBUNG: Eine lange genug gültige Beschreibung."}
	runner := &Runner{Config: testConfig(), Provider: provider}

	summary, err := runner.Run(context.Background(), models.JobRequest{
		Inputs:    []string{input},
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.ImagesFound != 0 {
		t.Errorf("Expected no images, got %d", summary.ImagesFound)
	}
	if summary.Captioned != 2 {
		t.Errorf("Expected text-only captioning to proceed, got %d captioned", summary.Captioned)
	}
}

func TestRunProviderFailureDegrades(t *testing.T) {
	dir := t.TempDir()
	input := writeInputCSV(t, dir)
	outDir := filepath.Join(dir, "out")

	provider := &fakeProvider{err: errors.New("model offline")}
	runner := &Runner{Config: testConfig(), Provider: provider}

	summary, err := runner.Run(context.Background(), models.JobRequest{
		Inputs:    []string{input},
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 2 {
		t.Errorf("Expected 2 failed records, got %d", summary.Failed)
	}

	captions, err := table.ReadFile(filepath.Join(outDir, "caption.csv"), nil)
	if err != nil {
		t.Fatalf("Failed to read caption output: %v", err)
	}
	if len(captions.Rows) != 2 {
		t.Fatalf("Expected 2 caption rows, got %d", len(captions.Rows))
	}
	if captions.Cell(0, "caption") == "" {
		t.Error("Expected fallback caption, got empty cell")
	}
}

func TestRunNoInputs(t *testing.T) {
	runner := &Runner{Config: testConfig(), Provider: &fakeProvider{}}
	if _, err := runner.Run(context.Background(), models.JobRequest{}); err == nil {
		t.Fatal("Expected error without inputs")
	}
}

func TestRunUnreadableInput(t *testing.T) {
	runner := &Runner{Config: testConfig(), Provider: &fakeProvider{}}
	_, err := runner.Run(context.Background(), models.JobRequest{
		Inputs:    []string{"/does/not/exist.csv"},
		OutputDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("Expected error for missing input file")
	}
}

func TestRunMissingKeyColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.csv")
	if err := os.WriteFile(path, []byte("name,value\na,1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &Runner{Config: testConfig(), Provider: &fakeProvider{}}
	_, err := runner.Run(context.Background(), models.JobRequest{
		Inputs:    []string{path},
		OutputDir: filepath.Join(dir, "out"),
	})
	if err == nil {
		t.Fatal("Expected error for missing key column")
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	input := writeInputCSV(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &Runner{Config: testConfig(), Provider: &fakeProvider{}}
	start := time.Now()
	_, err := runner.Run(ctx, models.JobRequest{
		Inputs:    []string{input},
		OutputDir: filepath.Join(dir, "out"),
	})
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected prompt return on cancellation, took %v", elapsed)
	}
}

func TestRunRowRange(t *testing.T) {
	dir := t.TempDir()
	input := writeInputCSV(t, dir)
	outDir := filepath.Join(dir, "out")

	provider := &fakeProvider{reply: "TITEL: Ein Objekt\nBESCHREIBUNG: Eine lange genug gültige Beschreibung."}
	runner := &Runner{Config: testConfig(), Provider: provider}

	summary, err := runner.Run(context.Background(), models.JobRequest{
		Inputs:    []string{input},
		OutputDir: outDir,
		RowStart:  2,
		RowEnd:    3,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.MergedRecords != 1 {
		t.Errorf("Expected only the third row in range, got %d records", summary.MergedRecords)
	}
}

func TestRunSnapshot(t *testing.T) {
	dir := t.TempDir()
	input := writeInputCSV(t, dir)
	outDir := filepath.Join(dir, "out")

	provider := &fakeProvider{reply: "TITEL: Ein Objekt\nBESCHREIBUNG: Eine lange genug gültige Beschreibung."}
	runner := &Runner{Config: testConfig(), Provider: provider, Snapshot: "catalogue.parquet"}

	summary, err := runner.Run(context.Background(), models.JobRequest{
		Inputs:    []string{input},
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	snapshotPath := filepath.Join(outDir, "catalogue.parquet")
	found := false
	for _, out := range summary.Outputs {
		if out == snapshotPath {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected snapshot in outputs, got %v", summary.Outputs)
	}

	entries, err := archive.Read(snapshotPath)
	if err != nil {
		t.Fatalf("Failed to read snapshot back: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].ObjectID != "HA-1/1" || entries[0].Headline != "Ein Objekt" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[0].Status != "ok" {
		t.Errorf("Expected ok status in snapshot, got %q", entries[0].Status)
	}
}
