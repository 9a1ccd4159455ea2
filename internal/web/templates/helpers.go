// Package templates renders the catalog's HTML pages as templ components.
//
// The *_templ.go files are generated from the .templ sources with
// `templ generate`; edit the .templ files and regenerate.
package templates

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/importer"
)

var exportFormats = []string{"csv", "xlsx", "json"}

var productColumns = []string{"", "Name", "SKU", "Status", "Retail", "Wholesale", "Stock", "Brand", "Categories", "Total sales"}

// ProductsURL builds a catalog list URL for page, keeping the category filter.
func ProductsURL(page int, categoryID *int32) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if categoryID != nil {
		q.Set("categoryId", strconv.Itoa(int(*categoryID)))
	}
	return "/products?" + q.Encode()
}

// ExportURL builds an export link in format, keeping the category filter.
func ExportURL(format string, categoryID *int32) string {
	q := url.Values{}
	if categoryID != nil {
		q.Set("categoryId", strconv.Itoa(int(*categoryID)))
	}
	q.Set("format", format)
	return "/api/products/export?" + q.Encode()
}

// FieldInputName is the form field carrying the target of header i.
func FieldInputName(i int) string {
	return "field_" + strconv.Itoa(i)
}

func isSelectedCategory(page core.ProductPage, id int32) bool {
	return page.CategoryID != nil && *page.CategoryID == id
}

func stockLabel(stock *int32) string {
	if stock == nil {
		return "not tracked"
	}
	return strconv.Itoa(int(*stock))
}

func acceptedExtensions() string {
	return strings.Join(importer.SupportedExtensions, ",")
}

// exampleValue is the first row's value for header, or "" for an empty file.
func exampleValue(m importer.Mapping, header string) string {
	if len(m.Rows) == 0 {
		return ""
	}
	return m.Rows[0][header]
}

func rejectionLabel(r core.Rejection) string {
	label := "Row " + strconv.Itoa(r.Index+1)
	if r.SKU != "" {
		label += " (" + r.SKU + ")"
	}
	return label + ": " + strings.Join(r.Errors, "; ")
}
