package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/catalog/internal/database"
	"github.com/JonMunkholm/catalog/internal/export"
	"github.com/google/uuid"
)

// ListProducts returns one page of the catalog, optionally restricted to a
// category. Returns ErrPageOutOfRange when q.Page is below 1 or beyond the
// last page of a non-empty result.
func (s *Service) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	if q.Page < 1 {
		return ProductPage{}, fmt.Errorf("%w: %d", ErrPageOutOfRange, q.Page)
	}
	category := ToPgInt4(q.CategoryID)

	total, err := s.store.CountProducts(ctx, category)
	if err != nil {
		return ProductPage{}, fmt.Errorf("count products: %w", err)
	}

	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages > 0 && q.Page > totalPages {
		return ProductPage{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, q.Page, totalPages)
	}

	page := ProductPage{
		Items:      []ProductSummary{},
		Page:       q.Page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: totalPages,
		CategoryID: q.CategoryID,
	}
	if total == 0 {
		return page, nil
	}

	rows, err := s.store.ListProductsPage(ctx, database.ListProductsPageParams{
		CategoryID: category,
		Limit:      PageSize,
		Offset:     int32((q.Page - 1) * PageSize),
	})
	if err != nil {
		return ProductPage{}, fmt.Errorf("list products: %w", err)
	}

	for _, r := range rows {
		page.Items = append(page.Items, ProductSummary{
			ID:             r.ID,
			Name:           r.Name,
			SKU:            r.Sku,
			Status:         Status(r.Status),
			RetailPrice:    r.RetailPrice,
			WholesalePrice: r.WholesalePrice,
			Stock:          FromPgInt4(r.Stock),
			Favorite:       r.Favorite,
			Brand:          r.BrandName.String,
			ImageURL:       r.ImageUrl.String,
			Categories:     r.CategoryNames,
			TotalSales:     r.OrderItemCount,
		})
	}
	return page, nil
}

// ExportProducts returns every product matching the category filter,
// flattened for the export codecs.
func (s *Service) ExportProducts(ctx context.Context, categoryID *int32) ([]export.Record, error) {
	rows, err := s.store.ListProductsForExport(ctx, ToPgInt4(categoryID))
	if err != nil {
		return nil, fmt.Errorf("list products for export: %w", err)
	}

	records := make([]export.Record, len(rows))
	for i, r := range rows {
		records[i] = export.Record{
			ID:             r.ID,
			Name:           r.Name,
			Description:    FromPgText(r.Description),
			RetailPrice:    r.RetailPrice,
			WholesalePrice: r.WholesalePrice,
			Stock:          FromPgInt4(r.Stock),
			SKU:            r.Sku,
			Status:         string(r.Status),
			Favorite:       r.Favorite,
			Brand:          FromPgText(r.BrandName),
			CreatedAt:      r.CreatedAt.Time,
			UpdatedAt:      r.UpdatedAt.Time,
			Images:         export.JoinList(r.ImageUrls),
			Categories:     export.JoinList(r.CategoryNames),
		}
	}
	return records, nil
}

// ListCategories returns every category ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]Category, len(rows))
	for i, c := range rows {
		categories[i] = Category{ID: c.ID, Name: c.Name}
	}
	return categories, nil
}

// RecentImports returns the latest import batches, newest first. A limit of
// zero or less selects DefaultRecentImports; larger limits are capped at
// MaxRecentImports.
func (s *Service) RecentImports(ctx context.Context, limit int) ([]ImportBatch, error) {
	switch {
	case limit <= 0:
		limit = DefaultRecentImports
	case limit > MaxRecentImports:
		limit = MaxRecentImports
	}
	rows, err := s.store.ListRecentProductImports(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}

	batches := make([]ImportBatch, len(rows))
	for i, r := range rows {
		batches[i] = ImportBatch{
			ID:        uuid.UUID(r.ID.Bytes).String(),
			Source:    r.Source,
			Received:  int(r.Received),
			Inserted:  int(r.Inserted),
			Skipped:   int(r.Skipped),
			Rejected:  int(r.Rejected),
			Duration:  time.Duration(r.DurationMs) * time.Millisecond,
			CreatedAt: r.CreatedAt.Time,
		}
	}
	return batches, nil
}
