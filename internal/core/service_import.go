package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/JonMunkholm/catalog/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ImportProducts coerces records and bulk-inserts the valid ones in a single
// statement. Records whose SKU already exists are skipped and reported in
// SkippedSKUs. Records that fail coercion are reported in Rejected and never
// reach the database.
//
// Returns ErrNoRecords for an empty slice, ErrTooManyRecords above the
// configured maximum, ErrTooManyImports if no import slot frees up in time
// and ErrNoValidRecords (with the populated result) when every record was
// rejected.
func (s *Service) ImportProducts(ctx context.Context, records []ImportRecord) (ImportResult, error) {
	if len(records) == 0 {
		return ImportResult{}, ErrNoRecords
	}
	if len(records) > s.maxRecords {
		return ImportResult{}, fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyRecords, len(records), s.maxRecords)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportResult{}, err
	}
	defer s.limiter.Release()

	start := time.Now()
	source := GetImportSourceFromContext(ctx)
	logger := slog.With("source", source, "ip", GetIPAddressFromContext(ctx))

	result := ImportResult{
		Received:    len(records),
		SkippedSKUs: []string{},
		Rejected:    []Rejection{},
	}

	valid, err := s.coerceAll(ctx, records, &result)
	if err != nil {
		return ImportResult{}, err
	}

	if len(valid) == 0 {
		result.Message = fmt.Sprintf("Imported 0 of %d products", result.Received)
		logger.Warn("import rejected every record", "received", result.Received)
		return result, ErrNoValidRecords
	}

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	batchID := uuid.New()
	params := buildCreateParams(valid)

	err = s.store.ExecTx(ctx, func(q database.Querier) error {
		rows, err := q.CreateProducts(ctx, params)
		if err != nil {
			return fmt.Errorf("create products: %w", err)
		}

		inserted := make([]string, len(rows))
		for i, row := range rows {
			inserted[i] = row.Sku
		}
		result.Inserted = len(rows)
		result.SkippedSKUs = skippedSKUs(params.Skus, inserted)
		result.Skipped = len(result.SkippedSKUs)

		if err := q.InsertProductImport(ctx, database.InsertProductImportParams{
			ID:         pgtype.UUID{Bytes: batchID, Valid: true},
			Source:     source,
			Received:   int32(result.Received),
			Inserted:   int32(result.Inserted),
			Skipped:    int32(result.Skipped),
			Rejected:   int32(len(result.Rejected)),
			DurationMs: time.Since(start).Milliseconds(),
		}); err != nil {
			return fmt.Errorf("record import batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	result.ImportID = batchID.String()
	result.Message = fmt.Sprintf("Imported %d of %d products", result.Inserted, result.Received)

	logger.Info("products imported",
		"import_id", result.ImportID,
		"received", result.Received,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"rejected", len(result.Rejected),
		"duration", time.Since(start),
	)

	return result, nil
}

// coerceAll converts every record, appending failures to result.Rejected.
// Brand references are checked in one query after field coercion.
func (s *Service) coerceAll(ctx context.Context, records []ImportRecord, result *ImportResult) ([]NewProduct, error) {
	type candidate struct {
		index   int
		product NewProduct
	}

	candidates := make([]candidate, 0, len(records))
	var brandIDs []int32
	seenBrand := make(map[int32]bool)

	for i, rec := range records {
		p, errs := s.validator.Coerce(rec)
		if len(errs) > 0 {
			result.Rejected = append(result.Rejected, Rejection{
				Index:  i,
				SKU:    p.SKU,
				Errors: messages(errs),
			})
			continue
		}
		if p.BrandID != nil && !seenBrand[*p.BrandID] {
			seenBrand[*p.BrandID] = true
			brandIDs = append(brandIDs, *p.BrandID)
		}
		candidates = append(candidates, candidate{index: i, product: p})
	}

	known := make(map[int32]bool, len(brandIDs))
	if len(brandIDs) > 0 {
		existing, err := s.store.ExistingBrandIDs(ctx, brandIDs)
		if err != nil {
			return nil, fmt.Errorf("check brands: %w", err)
		}
		for _, id := range existing {
			known[id] = true
		}
	}

	valid := make([]NewProduct, 0, len(candidates))
	for _, c := range candidates {
		if c.product.BrandID != nil && !known[*c.product.BrandID] {
			result.Rejected = append(result.Rejected, Rejection{
				Index:  c.index,
				SKU:    c.product.SKU,
				Errors: []string{fmt.Sprintf("%s: brand %d does not exist", FieldBrandID, *c.product.BrandID)},
			})
			continue
		}
		valid = append(valid, c.product)
	}

	sortRejections(result.Rejected)
	return valid, nil
}

// buildCreateParams transposes products into the column arrays the bulk
// insert unnests.
func buildCreateParams(products []NewProduct) database.CreateProductsParams {
	n := len(products)
	params := database.CreateProductsParams{
		Names:           make([]string, n),
		Descriptions:    make([]pgtype.Text, n),
		RetailPrices:    make([]string, n),
		WholesalePrices: make([]string, n),
		Stocks:          make([]pgtype.Int4, n),
		Skus:            make([]string, n),
		Statuses:        make([]string, n),
		Favorites:       make([]bool, n),
		BrandIds:        make([]pgtype.Int4, n),
	}
	for i, p := range products {
		params.Names[i] = p.Name
		params.Descriptions[i] = ToPgText(p.Description)
		params.RetailPrices[i] = p.RetailPrice.String()
		params.WholesalePrices[i] = p.WholesalePrice.String()
		params.Stocks[i] = ToPgInt4(p.Stock)
		params.Skus[i] = p.SKU
		params.Statuses[i] = string(p.Status)
		params.Favorites[i] = p.Favorite
		params.BrandIds[i] = ToPgInt4(p.BrandID)
	}
	return params
}

// skippedSKUs returns the submitted SKUs that were not inserted, in
// submission order. Duplicates within one import are counted per occurrence.
func skippedSKUs(submitted, inserted []string) []string {
	remaining := make(map[string]int, len(inserted))
	for _, sku := range inserted {
		remaining[sku]++
	}

	skipped := []string{}
	for _, sku := range submitted {
		if remaining[sku] > 0 {
			remaining[sku]--
			continue
		}
		skipped = append(skipped, sku)
	}
	return skipped
}

// sortRejections orders rejections by record index. Brand rejections are
// found after field rejections.
func sortRejections(r []Rejection) {
	sort.SliceStable(r, func(i, j int) bool { return r[i].Index < r[j].Index })
}
