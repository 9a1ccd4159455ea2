package importer

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/JonMunkholm/catalog/internal/core"
)

// State is one step of the import wizard: FileSelect, Mapping or Done.
type State interface {
	isState()
}

// FileSelect waits for a file. Err holds the last parse failure, if any.
type FileSelect struct {
	Err error
}

// Mapping holds a parsed file and the header-to-field assignments.
// Err holds the last submission failure, if any.
type Mapping struct {
	FileName string
	Headers  []string
	Rows     []RawRow
	Columns  ColumnMapping
	Err      error
}

// Done holds the outcome of a successful submission.
type Done struct {
	FileName string
	Result   core.ImportResult
}

func (FileSelect) isState() {}
func (Mapping) isState()    {}
func (Done) isState()       {}

// Start returns the wizard's initial state.
func Start() State {
	return FileSelect{}
}

// Load parses the file. On success it returns a Mapping with a suggested
// column assignment; on failure a FileSelect carrying the error.
func (FileSelect) Load(name string, r io.Reader) State {
	t, err := Parse(name, r)
	if err != nil {
		return FileSelect{Err: err}
	}
	return NewMapping(name, t)
}

// NewMapping enters the mapping step for an already parsed table.
func NewMapping(name string, t Table) Mapping {
	return Mapping{
		FileName: name,
		Headers:  t.Headers,
		Rows:     t.Rows,
		Columns:  SuggestMapping(t.Headers),
	}
}

// Map assigns header to field and returns the updated Mapping. An empty
// field unmaps the header. If another header already targets field, that
// header is unmapped: the latest assignment wins.
func (m Mapping) Map(header string, field core.Field) (Mapping, error) {
	if !slices.Contains(m.Headers, header) {
		return m, fmt.Errorf("%w %q", ErrUnknownHeader, header)
	}
	if field != "" && !core.IsImportable(field) {
		return m, fmt.Errorf("%w %q", ErrUnknownField, field)
	}

	cols := make(ColumnMapping, len(m.Columns)+1)
	for h, f := range m.Columns {
		if h == header || (field != "" && f == field) {
			continue
		}
		cols[h] = f
	}
	if field != "" {
		cols[header] = field
	}

	m.Columns = cols
	m.Err = nil
	return m, nil
}

// FieldFor returns the field header is mapped to, or "" when unmapped.
func (m Mapping) FieldFor(header string) core.Field {
	return m.Columns[header]
}

// Back discards the file and mapping.
func (m Mapping) Back() FileSelect {
	return FileSelect{}
}

// Transform produces one MappedRecord per row, in row order, holding the
// raw value of each mapped header under its target field.
func (m Mapping) Transform() []MappedRecord {
	out := make([]MappedRecord, len(m.Rows))
	for i, row := range m.Rows {
		rec := make(MappedRecord, len(m.Columns))
		for header, field := range m.Columns {
			if v, ok := row[header]; ok {
				rec[field] = v
			}
		}
		out[i] = rec
	}
	return out
}

// Submit transforms the rows and hands them to sub. Success moves to Done;
// failure stays in Mapping with Err set so the user can retry.
func (m Mapping) Submit(ctx context.Context, sub Submitter) State {
	result, err := sub.Submit(ctx, m.Transform())
	if err != nil {
		m.Err = err
		return m
	}
	return Done{FileName: m.FileName, Result: result}
}
