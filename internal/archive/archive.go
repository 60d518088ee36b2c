// Package archive stores enriched catalogue snapshots as Parquet. A
// snapshot joins the merged records with their generated captions so the
// full result of a run survives in one typed file.
package archive

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/collection-tools/registrar/internal/caption"
	"github.com/collection-tools/registrar/internal/table"
)

// Entry is one object in a snapshot.
type Entry struct {
	ObjectID     string `json:"object_id" parquet:"object_id"`
	Manufacturer string `json:"manufacturer" parquet:"manufacturer"`
	Material     string `json:"material" parquet:"material"`
	Dimensions   string `json:"dimensions" parquet:"dimensions"`
	Date         string `json:"date" parquet:"date"`
	ImageFile    string `json:"image_file" parquet:"image_file"`
	Headline     string `json:"headline" parquet:"headline"`
	Caption      string `json:"caption" parquet:"caption"`
	Category     string `json:"category" parquet:"category"`
	Status       string `json:"status" parquet:"status"`
}

// FromResults pairs records with the caption results of the same run.
func FromResults(records []table.Record, results []caption.Result) ([]Entry, error) {
	if len(records) != len(results) {
		return nil, fmt.Errorf("record count %d does not match result count %d", len(records), len(results))
	}
	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		res := results[i]
		entries = append(entries, Entry{
			ObjectID:     rec.ID,
			Manufacturer: rec.Manufacturer,
			Material:     rec.Material,
			Dimensions:   rec.Dimensions,
			Date:         rec.Date,
			ImageFile:    res.ImageFile,
			Headline:     res.Headline,
			Caption:      res.Caption,
			Category:     res.Category,
			Status:       res.Status,
		})
	}
	return entries, nil
}

// FromTables joins a cleaned table with a caption table written by an
// earlier run. Rows pair up by position; the caption file carries no
// identifiers of its own. Status stays empty because the caption file
// does not record it.
func FromTables(records []table.Record, captions *table.Table) ([]Entry, error) {
	if len(records) != len(captions.Rows) {
		return nil, fmt.Errorf("record count %d does not match caption row count %d", len(records), len(captions.Rows))
	}
	entries := make([]Entry, 0, len(records))
	for i, rec := range records {
		entries = append(entries, Entry{
			ObjectID:     rec.ID,
			Manufacturer: rec.Manufacturer,
			Material:     rec.Material,
			Dimensions:   rec.Dimensions,
			Date:         rec.Date,
			ImageFile:    captions.Cell(i, "image_file"),
			Headline:     captions.Cell(i, "headline"),
			Caption:      captions.Cell(i, "caption"),
			Category:     captions.Cell(i, "category"),
		})
	}
	return entries, nil
}

// Write stores the entries as a Parquet file.
func Write(path string, entries []Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}

	writer := parquet.NewGenericWriter[Entry](file)
	if _, err := writer.Write(entries); err != nil {
		file.Close()
		return fmt.Errorf("failed to write archive rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to close archive writer: %w", err)
	}
	return file.Close()
}

// Read loads a snapshot back.
func Read(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	var entries []Entry
	rows := make([]Entry, 128)
	for {
		n, err := reader.Read(rows)
		if n > 0 {
			entries = append(entries, rows[:n]...)
		}
		if err != nil {
			break
		}
	}
	return entries, nil
}
