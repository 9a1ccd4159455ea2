// Package importer implements the client side of the product import
// pipeline: parsing an uploaded file into headers and rows, mapping headers
// to product fields, and transforming rows into records for submission.
//
// The wizard is a state machine over three value types:
//
//	FileSelect -(Load ok)-> Mapping -(Back)-> FileSelect
//	Mapping -(Submit ok)-> Done
//	Mapping -(Submit error)-> Mapping (with Err set)
//	FileSelect -(Load error)-> FileSelect (with Err set)
//
// Every transition returns a new value; no state is shared between them.
package importer

import (
	"context"
	"errors"

	"github.com/JonMunkholm/catalog/internal/core"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("empty file: no header row")
	ErrMalformedFile   = errors.New("malformed file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnknownHeader   = errors.New("unknown header")
	ErrUnknownField    = errors.New("unknown field")
)

// RawRow is one parsed data row keyed by header.
type RawRow map[string]string

// MappedRecord is one row after mapping, keyed by target field.
// Values stay raw strings; coercion happens on the server.
type MappedRecord map[core.Field]string

// ColumnMapping assigns source headers to target fields.
// Headers absent from the map are dropped during transformation.
type ColumnMapping map[string]core.Field

// Table is a parsed file: ordered headers and the data rows.
type Table struct {
	Headers []string
	Rows    []RawRow
}

// Submitter sends transformed records to the catalog.
type Submitter interface {
	Submit(ctx context.Context, records []MappedRecord) (core.ImportResult, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, records []MappedRecord) (core.ImportResult, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, records []MappedRecord) (core.ImportResult, error) {
	return f(ctx, records)
}

// ToImportRecords converts mapped records into the service's input type.
func ToImportRecords(records []MappedRecord) []core.ImportRecord {
	out := make([]core.ImportRecord, len(records))
	for i, rec := range records {
		r := make(core.ImportRecord, len(rec))
		for f, v := range rec {
			r[string(f)] = v
		}
		out[i] = r
	}
	return out
}
