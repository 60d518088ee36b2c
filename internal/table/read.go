package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncodings is the decode order for CSV input: UTF-8 when the bytes
// are valid, then the Windows codepages older museum exports were saved in.
var DefaultEncodings = []string{"utf-8", "windows-1252", "iso-8859-1"}

// oleMagic marks an OLE compound file, the container of legacy BIFF .xls
// workbooks.
var oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}

// UnreadableFileError reports that no supported format or encoding produced
// a usable table from the file.
type UnreadableFileError struct {
	Path  string
	Tried []string
	Hint  string
}

func (e *UnreadableFileError) Error() string {
	msg := fmt.Sprintf("unreadable file %s", e.Path)
	if len(e.Tried) > 0 {
		msg += fmt.Sprintf(" (tried encodings %s)", strings.Join(e.Tried, ", "))
	}
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

// ReadFile loads a spreadsheet into a Table. The first row becomes the
// column names. CSV files are decoded with the given encodings in order
// (DefaultEncodings when nil). Legacy BIFF .xls workbooks cannot be parsed;
// files that merely carry the wrong extension over OOXML or CSV content are
// read anyway before the reader asks for a conversion.
func ReadFile(path string, encodings []string) (*Table, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return readCSV(path, data, encodings)
	case ".xlsx":
		return readWorkbook(path)
	case ".xls":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if bytes.HasPrefix(data, oleMagic) {
			return nil, &UnreadableFileError{Path: path, Hint: "legacy BIFF workbook, save the sheet as .xlsx or .csv"}
		}
		if t, err := readWorkbook(path); err == nil {
			return t, nil
		}
		if t, err := readCSV(path, data, encodings); err == nil {
			return t, nil
		}
		return nil, &UnreadableFileError{Path: path, Tried: encodings, Hint: "save the sheet as .xlsx or .csv"}
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func readCSV(path string, data []byte, encodings []string) (*Table, error) {
	for _, name := range encodings {
		decoded, err := decode(data, name)
		if err != nil {
			continue
		}
		t, err := parseCSV(decoded)
		if err != nil {
			continue
		}
		return t, nil
	}
	return nil, &UnreadableFileError{Path: path, Tried: encodings}
}

// decode converts raw bytes to UTF-8 text using the named IANA encoding.
// For UTF-8 itself the bytes must already be valid, so that mojibake input
// falls through to the legacy codepages.
func decode(data []byte, name string) ([]byte, error) {
	norm := strings.ToLower(name)
	if norm == "utf-8" || norm == "utf8" {
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("input is not valid UTF-8")
		}
		return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return enc.NewDecoder().Bytes(data)
}

func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV input has no header row")
	}
	return fromRows(rows), nil
}

func readWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}
	return fromRows(rows), nil
}

// fromRows builds a table from raw sheet rows. The first row names the
// columns; short data rows are padded so every row spans the full width.
func fromRows(rows [][]string) *Table {
	columns := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		columns[i] = strings.TrimSpace(c)
	}
	t := New(columns)
	for _, row := range rows[1:] {
		t.AppendRow(row)
	}
	return t
}
