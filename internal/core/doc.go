// Package core provides the business logic for the product catalog.
//
// The package is independent of any UI or transport layer. The web server,
// the terminal importer and tests all drive it through [Service].
//
// # Import
//
// [Service.ImportProducts] takes records keyed by field name and:
//
//  1. Acquires a slot from the [ImportLimiter], failing with
//     [ErrTooManyImports] when none frees up in time
//  2. Coerces each record with [RecordValidator]: prices become decimals,
//     stock and brandId become optional integers, status defaults to DRAFT
//     and HTML descriptions become plain text
//  3. Rejects records that fail coercion, reporting index, SKU and reasons
//  4. Inserts the remaining records in one statement that skips existing
//     SKUs, and records the batch in the import history
//
// # Listing and Export
//
// [Service.ListProducts] pages through the catalog [PageSize] products at a
// time, optionally filtered by category. [Service.ExportProducts] returns
// every matching product flattened for the export codecs.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - REQ001-REQ003: Request errors (format, category, body)
//   - IMP002-IMP007: Import errors (busy, cancelled, timeout, size)
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - VAL002-VAL008: Validation errors (numbers, required fields, enums)
//   - FILE001-FILE006: File errors (size, format, encoding)
package core
