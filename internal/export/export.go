// Package export encodes catalog records as CSV, XLSX or JSON downloads.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedFormat is returned for any format other than csv, xlsx or json.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	JSON Format = "json"
)

// SheetName is the name of the single worksheet in XLSX exports.
const SheetName = "Products"

// ParseFormat validates a format query value. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, XLSX, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case JSON:
		return "application/json"
	default:
		return "text/csv"
	}
}

// Filename returns the attachment file name for the format.
func (f Format) Filename() string {
	return "products_export." + string(f)
}

// Columns is the fixed column order of every export.
var Columns = []string{
	"id", "name", "description", "retailPrice", "wholesalePrice", "stock", "sku",
	"status", "favorite", "brand", "createdAt", "updatedAt", "images", "categories",
}

// Record is one flattened product. Nil pointers are absent values.
type Record struct {
	ID             int32           `json:"id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
	Stock          *int32          `json:"stock"`
	SKU            string          `json:"sku"`
	Status         string          `json:"status"`
	Favorite       bool            `json:"favorite"`
	Brand          *string         `json:"brand"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Images         string          `json:"images"`
	Categories     string          `json:"categories"`
}

// JoinList joins image URLs or category names the way exports store them.
func JoinList(items []string) string {
	return strings.Join(items, ";")
}

// cells returns the record's values in Columns order with absent values as nil.
func (r Record) cells() []any {
	var description, stock, brand any
	if r.Description != nil {
		description = *r.Description
	}
	if r.Stock != nil {
		stock = *r.Stock
	}
	if r.Brand != nil {
		brand = *r.Brand
	}
	return []any{
		r.ID, r.Name, description, r.RetailPrice, r.WholesalePrice, stock, r.SKU,
		r.Status, r.Favorite, brand, r.CreatedAt, r.UpdatedAt, r.Images, r.Categories,
	}
}

// formatTime renders timestamps as ISO 8601 UTC with millisecond precision.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Write encodes records to w in format f.
func Write(w io.Writer, f Format, records []Record) error {
	switch f {
	case CSV:
		return writeCSV(w, records)
	case XLSX:
		return writeXLSX(w, records)
	case JSON:
		return writeJSON(w, records)
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, string(f))
	}
}
