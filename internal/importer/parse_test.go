package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "\xEF\xBB\xBFNombre,Precio\nWidget,9.99\n\nGadget,\"1,234.50\"\n"

	table, err := Parse("products.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Nombre", "Precio"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, RawRow{"Nombre": "Widget", "Precio": "9.99"}, table.Rows[0])
	assert.Equal(t, RawRow{"Nombre": "Gadget", "Precio": "1,234.50"}, table.Rows[1])
}

func TestParseCSVHeaders(t *testing.T) {
	input := "sku,,sku, name \nA1,x,A2,Widget\nB1\n,,,\n"

	table, err := Parse("in.CSV", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"sku", "Column 2", "sku_1", "name"}, table.Headers)
	require.Len(t, table.Rows, 2, "all-blank row is skipped")
	assert.Equal(t, RawRow{"sku": "A1", "Column 2": "x", "sku_1": "A2", "name": "Widget"}, table.Rows[0])
	assert.Equal(t, RawRow{"sku": "B1"}, table.Rows[1], "short row leaves missing cells absent")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"unsupported extension", "products.pdf", "x", ErrUnsupportedFile},
		{"no extension", "products", "x", ErrUnsupportedFile},
		{"empty csv", "products.csv", "", ErrEmptyFile},
		{"blank csv", "products.csv", "\n\n , \n", ErrEmptyFile},
		{"empty json", "products.json", "", ErrEmptyFile},
		{"json object", "products.json", `{"name":"x"}`, ErrMalformedFile},
		{"json array of scalars", "products.json", `[1,2]`, ErrMalformedFile},
		{"json empty array", "products.json", `[]`, ErrEmptyFile},
		{"truncated json", "products.json", `[{"name":"x"`, ErrMalformedFile},
		{"bad xlsx", "products.xlsx", "not a zip", ErrMalformedFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.file, strings.NewReader(tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseJSONKeepsKeyOrder(t *testing.T) {
	input := `[
		{"sku": "A1", "name": "Widget", "retailPrice": 9.99, "favorite": true, "brandId": null},
		{"name": "Gadget", "stock": 3, "sku": "B2", "tags": ["x"]}
	]`

	table, err := Parse("export.json", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"sku", "name", "retailPrice", "favorite", "stock", "tags"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, RawRow{"sku": "A1", "name": "Widget", "retailPrice": "9.99", "favorite": "true"}, table.Rows[0])
	assert.Equal(t, RawRow{"name": "Gadget", "stock": "3", "sku": "B2", "tags": `["x"]`}, table.Rows[1])
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ignored"}))
	_, err := f.NewSheet("Products")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Products", "A1", &[]any{"name", "sku", "retailPrice"}))
	require.NoError(t, f.SetSheetRow("Products", "A2", &[]any{"Widget", "W-1", "9.99"}))
	require.NoError(t, f.SetSheetRow("Products", "A4", &[]any{"Gadget", "G-1"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	table, err := Parse("catalog.xlsx", &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "sku", "retailPrice"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, RawRow{"name": "Widget", "sku": "W-1", "retailPrice": "9.99"}, table.Rows[0])
	assert.Equal(t, RawRow{"name": "Gadget", "sku": "G-1"}, table.Rows[1])
}

func TestParseTooLarge(t *testing.T) {
	input := "name\n" + strings.Repeat("Widget\n", 100)

	_, err := Parse("big.csv", NewLimitedReader(strings.NewReader(input), 64))
	require.ErrorIs(t, err, ErrFileTooLarge)
}
