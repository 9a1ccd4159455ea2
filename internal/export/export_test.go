package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []Record {
	desc := "Blue widget"
	brand := "Acme"
	stock := int32(7)
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	return []Record{
		{
			ID:             1,
			Name:           "Widget",
			Description:    &desc,
			RetailPrice:    decimal.RequireFromString("9.99"),
			WholesalePrice: decimal.RequireFromString("5.5"),
			Stock:          &stock,
			SKU:            "W-1",
			Status:         "ACTIVE",
			Favorite:       true,
			Brand:          &brand,
			CreatedAt:      created,
			UpdatedAt:      created,
			Images:         JoinList([]string{"a.png", "b.png"}),
			Categories:     JoinList([]string{"Home", "Tools"}),
		},
		{
			ID:          2,
			Name:        "Gadget",
			RetailPrice: decimal.Zero,
			SKU:         "G-1",
			Status:      "DRAFT",
			CreatedAt:   created,
			UpdatedAt:   created,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", CSV, false},
		{"csv", CSV, false},
		{"XLSX", XLSX, false},
		{" json ", JSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "text/csv", CSV.ContentType())
	assert.Equal(t, "application/json", JSON.ContentType())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", XLSX.ContentType())
	assert.Equal(t, "products_export.xlsx", XLSX.Filename())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{
		"1", "Widget", "Blue widget", "9.99", "5.5", "7", "W-1", "ACTIVE", "true", "Acme",
		"2024-03-01T12:30:00.000Z", "2024-03-01T12:30:00.000Z", "a.png;b.png", "Home;Tools",
	}, rows[1])
	assert.Equal(t, []string{
		"2", "Gadget", "", "0", "0", "", "G-1", "DRAFT", "false", "",
		"2024-03-01T12:30:00.000Z", "2024-03-01T12:30:00.000Z", "", "",
	}, rows[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sampleRecords()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "Widget", got[0]["name"])
	assert.Equal(t, "9.99", got[0]["retailPrice"])
	assert.Equal(t, float64(7), got[0]["stock"])
	assert.Equal(t, "Acme", got[0]["brand"])
	assert.Nil(t, got[1]["brand"])
	assert.Nil(t, got[1]["stock"])
	for _, c := range Columns {
		assert.Contains(t, got[0], c)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "Widget", rows[1][1])
	assert.Equal(t, "W-1", rows[1][6])
	assert.Equal(t, "a.png;b.png", rows[1][12])
	assert.Equal(t, "true", rows[1][8], "favorite is written as text")
	assert.Equal(t, "false", rows[2][8])
}

func TestWriteXLSXEmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header row only")
	assert.Equal(t, Columns, rows[0])
}

func TestWriteUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, Format("pdf"), sampleRecords())
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, buf.Len())
}
