package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SupportedExtensions lists the file types Parse accepts.
var SupportedExtensions = []string{".csv", ".xlsx", ".json"}

// Parse reads a CSV, XLSX or JSON file, choosing the format by the
// extension of name. The first CSV or XLSX row is the header row; a JSON
// file must be an array of objects whose keys become headers in order of
// first appearance.
func Parse(name string, r io.Reader) (Table, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	case ".json":
		return parseJSON(r)
	default:
		return Table{}, fmt.Errorf("%w %q", ErrUnsupportedFile, ext)
	}
}

func parseCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(WrapText(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, malformed(err)
		}
		records = append(records, rec)
	}
	return buildTable(records)
}

func parseXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, malformed(err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("close xlsx workbook", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrEmptyFile
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if strings.EqualFold(s, "Products") {
			sheet = s
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("%w: read sheet %q: %v", ErrMalformedFile, sheet, err)
	}
	return buildTable(rows)
}

// malformed wraps a decoder error as ErrMalformedFile. Size-limit errors
// pass through unchanged.
func malformed(err error) error {
	if errors.Is(err, ErrFileTooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrMalformedFile, err)
}

// buildTable turns header-first string records into a Table, skipping rows
// whose cells are all blank.
func buildTable(records [][]string) (Table, error) {
	start := 0
	for start < len(records) && isBlank(records[start]) {
		start++
	}
	if start == len(records) {
		return Table{}, ErrEmptyFile
	}

	headers := uniqueHeaders(records[start])
	rows := make([]RawRow, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		row := make(RawRow, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows}, nil
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// uniqueHeaders trims header names, names blank headers by position and
// suffixes repeats so every header is a distinct key.
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Column " + strconv.Itoa(i+1)
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = h + "_" + strconv.Itoa(n)
		}
		seen[name] = true
		headers[i] = name
	}
	return headers
}

// parseJSON streams an array of objects so header order follows the file.
func parseJSON(r io.Reader) (Table, error) {
	dec := json.NewDecoder(WrapText(r))
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return Table{}, ErrEmptyFile
	}
	if err != nil {
		return Table{}, malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return Table{}, fmt.Errorf("%w: expected an array of objects", ErrMalformedFile)
	}

	var (
		headers []string
		known   = make(map[string]bool)
		rows    []RawRow
	)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Table{}, malformed(err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return Table{}, fmt.Errorf("%w: element %d is not an object", ErrMalformedFile, len(rows))
		}

		row := RawRow{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return Table{}, malformed(err)
			}
			key := strings.TrimSpace(keyTok.(string))

			var v any
			if err := dec.Decode(&v); err != nil {
				return Table{}, malformed(err)
			}
			if key == "" || v == nil {
				continue
			}

			if !known[key] {
				known[key] = true
				headers = append(headers, key)
			}
			row[key] = jsonCell(v)
		}
		if _, err := dec.Token(); err != nil {
			return Table{}, malformed(err)
		}
		rows = append(rows, row)
	}

	if _, err := dec.Token(); err != nil {
		return Table{}, malformed(err)
	}
	if len(headers) == 0 {
		return Table{}, ErrEmptyFile
	}
	return Table{Headers: headers, Rows: rows}, nil
}

// jsonCell renders a decoded JSON value as the raw string a spreadsheet
// cell would hold. Nested values keep their JSON text.
func jsonCell(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
