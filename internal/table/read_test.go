package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadFileUTF8CSV(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "input.csv")

	data := "t1,T3\nHA-1,Glas\nHA-2,Porzellan\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tbl, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if len(tbl.Columns) != 2 || tbl.Columns[0] != "t1" {
		t.Errorf("Expected columns [t1 T3], got %v", tbl.Columns)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(tbl.Rows))
	}
	if tbl.Cell(1, "T3") != "Porzellan" {
		t.Errorf("Expected Porzellan, got %q", tbl.Cell(1, "T3"))
	}
}

func TestReadFileLegacyEncodingFallback(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "legacy.csv")

	// "Glasmanufaktur Jäger" in windows-1252: 0xe4 is ä and invalid UTF-8.
	data := []byte("t1,T2\nHA-1,Glasmanufaktur J\xe4ger\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tbl, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got := tbl.Cell(0, "T2"); got != "Glasmanufaktur Jäger" {
		t.Errorf("Expected decoded umlaut, got %q", got)
	}
}

func TestReadFileBOMStripped(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bom.csv")

	data := "\xef\xbb\xbft1,T3\nHA-1,Glas\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tbl, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if tbl.Columns[0] != "t1" {
		t.Errorf("Expected BOM stripped from first column, got %q", tbl.Columns[0])
	}
}

func TestReadFileUnreadableWithRestrictedEncodings(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "broken.csv")

	if err := os.WriteFile(path, []byte("t1\n\xff\xfe\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := ReadFile(path, []string{"utf-8"})
	var unreadable *UnreadableFileError
	if !errors.As(err, &unreadable) {
		t.Fatalf("Expected UnreadableFileError, got %v", err)
	}
	if unreadable.Path != path {
		t.Errorf("Expected path %s in error, got %s", path, unreadable.Path)
	}
}

func TestReadFileLegacyBIFFRejected(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Liste1.xls")

	// OLE compound file magic marks a real BIFF workbook.
	data := []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1, 0x00, 0x00}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err := ReadFile(path, nil)
	var unreadable *UnreadableFileError
	if !errors.As(err, &unreadable) {
		t.Fatalf("Expected UnreadableFileError, got %v", err)
	}
	if unreadable.Hint == "" {
		t.Error("Expected conversion hint in error")
	}
}

func TestReadFileMislabelledXLS(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "export.xls")

	// CSV content behind an .xls extension, as exported spreadsheets often are.
	if err := os.WriteFile(path, []byte("t1,T3\nHA-1,Holz\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	tbl, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if tbl.Cell(0, "T3") != "Holz" {
		t.Errorf("Expected Holz, got %q", tbl.Cell(0, "T3"))
	}
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	_, err := ReadFile("notes.txt", nil)
	if err == nil {
		t.Error("Expected error for unsupported file type, got nil")
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out.xlsx")

	tbl := New([]string{"t1", "T3"})
	tbl.AppendRow([]string{"HA-1", "Glas"})
	tbl.AppendRow([]string{"HA-2", ""})

	if err := WriteXLSX(tbl, path); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	got, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got.Rows))
	}
	if got.Cell(0, "T3") != "Glas" {
		t.Errorf("Expected Glas, got %q", got.Cell(0, "T3"))
	}
	if got.Cell(1, "t1") != "HA-2" {
		t.Errorf("Expected HA-2, got %q", got.Cell(1, "t1"))
	}
}

func TestCSVRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out.csv")

	tbl := New([]string{"t1", "T3"})
	tbl.AppendRow([]string{"HA-1", "Glas, grün"})

	if err := WriteCSV(tbl, path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadFile(path, nil)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got.Cell(0, "T3") != "Glas, grün" {
		t.Errorf("Expected quoted value to survive, got %q", got.Cell(0, "T3"))
	}
}
