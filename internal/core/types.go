package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/catalog/internal/database"
	"github.com/shopspring/decimal"
)

// Store is the persistence handle the Service depends on.
// Satisfied by *database.Store.
type Store interface {
	database.Querier
	Ping(ctx context.Context) error
	ExecTx(ctx context.Context, fn func(database.Querier) error) error
}

// Field names a product attribute that can be populated by an import.
type Field string

const (
	FieldName           Field = "name"
	FieldDescription    Field = "description"
	FieldRetailPrice    Field = "retailPrice"
	FieldWholesalePrice Field = "wholesalePrice"
	FieldStock          Field = "stock"
	FieldSKU            Field = "sku"
	FieldStatus         Field = "status"
	FieldFavorite       Field = "favorite"
	FieldBrandID        Field = "brandId"
)

// ImportableFields lists every field an import record may carry, in display order.
var ImportableFields = []Field{
	FieldName,
	FieldDescription,
	FieldRetailPrice,
	FieldWholesalePrice,
	FieldStock,
	FieldSKU,
	FieldStatus,
	FieldFavorite,
	FieldBrandID,
}

// IsImportable reports whether f is one of ImportableFields.
func IsImportable(f Field) bool {
	for _, candidate := range ImportableFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// Status is a product's lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusDraft    Status = "DRAFT"
	StatusArchived Status = "ARCHIVED"
)

// ImportRecord is one record received by an import, keyed by field name.
// Values arrive as strings from spreadsheets or as JSON scalars from API clients.
type ImportRecord map[string]any

// NewProduct is a fully coerced product ready for insertion.
type NewProduct struct {
	Name           string          `json:"name" validate:"required,max=255"`
	Description    *string         `json:"description"`
	RetailPrice    decimal.Decimal `json:"retailPrice" validate:"gte=0,lte=9999999999.99"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice" validate:"gte=0,lte=9999999999.99"`
	Stock          *int32          `json:"stock" validate:"omitempty,gte=0"`
	SKU            string          `json:"sku" validate:"required,max=100"`
	Status         Status          `json:"status" validate:"oneof=ACTIVE DRAFT ARCHIVED"`
	Favorite       bool            `json:"favorite"`
	BrandID        *int32          `json:"brandId" validate:"omitempty,gt=0"`
}

// Rejection explains why an import record was not submitted for insertion.
type Rejection struct {
	Index  int      `json:"index"`
	SKU    string   `json:"sku,omitempty"`
	Errors []string `json:"errors"`
}

// ImportResult is the outcome of a bulk import.
type ImportResult struct {
	Message     string      `json:"message"`
	ImportID    string      `json:"importId"`
	Received    int         `json:"received"`
	Inserted    int         `json:"inserted"`
	Skipped     int         `json:"skipped"`
	SkippedSKUs []string    `json:"skippedSkus"`
	Rejected    []Rejection `json:"rejected"`
}

// ProductQuery selects a page of the catalog.
type ProductQuery struct {
	Page       int    // 1-based
	CategoryID *int32 // nil means all categories
}

// ProductSummary is one row of the catalog list view.
type ProductSummary struct {
	ID             int32
	Name           string
	SKU            string
	Status         Status
	RetailPrice    decimal.Decimal
	WholesalePrice decimal.Decimal
	Stock          *int32
	Favorite       bool
	Brand          string // empty when the product has no brand
	ImageURL       string // first image, empty when none
	Categories     []string
	TotalSales     int64 // number of order items referencing the product
}

// ProductPage is one page of the catalog.
type ProductPage struct {
	Items      []ProductSummary
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
	CategoryID *int32
}

// HasPrev reports whether a previous page exists.
func (p ProductPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p ProductPage) HasNext() bool { return p.Page < p.TotalPages }

// Category is a catalog category as exposed by the categories lookup.
type Category struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// ImportBatch is a historical record of one completed import.
type ImportBatch struct {
	ID        string
	Source    string
	Received  int
	Inserted  int
	Skipped   int
	Rejected  int
	Duration  time.Duration
	CreatedAt time.Time
}
