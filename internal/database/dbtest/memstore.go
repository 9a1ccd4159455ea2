// Package dbtest provides an in-memory implementation of the catalog store
// for tests.
package dbtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/catalog/internal/database"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MemStore is an in-memory store. Transactions are not isolated: ExecTx
// runs fn directly against the store.
type MemStore struct {
	mu sync.Mutex

	Products   []database.Product
	Categories []database.Category
	Links      map[int32][]int32 // product id -> category ids
	Brands     map[int32]string
	Images     map[int32][]string
	OrderItems map[int32]int64
	Imports    []database.ProductImport

	// FailWith, when set, is returned by every query.
	FailWith error

	nextID int32
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		Links:      make(map[int32][]int32),
		Brands:     make(map[int32]string),
		Images:     make(map[int32][]string),
		OrderItems: make(map[int32]int64),
	}
}

// Ping implements the store health check.
func (s *MemStore) Ping(context.Context) error { return s.FailWith }

// ExecTx runs fn against the same store.
func (s *MemStore) ExecTx(ctx context.Context, fn func(database.Querier) error) error {
	return fn(s)
}

// AddProduct inserts a draft product linked to categoryIDs and returns its id.
func (s *MemStore) AddProduct(name, sku string, categoryIDs ...int32) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Products = append(s.Products, database.Product{
		ID:        s.nextID,
		Name:      name,
		Sku:       sku,
		Status:    database.ProductStatusDRAFT,
		CreatedAt: pgtype.Timestamptz{Time: now, Valid: true},
		UpdatedAt: pgtype.Timestamptz{Time: now, Valid: true},
	})
	s.Links[s.nextID] = categoryIDs
	return s.nextID
}

func (s *MemStore) matches(p database.Product, categoryID pgtype.Int4) bool {
	if !categoryID.Valid {
		return true
	}
	for _, id := range s.Links[p.ID] {
		if id == categoryID.Int32 {
			return true
		}
	}
	return false
}

func (s *MemStore) categoryNames(productID int32) []string {
	names := []string{}
	for _, id := range s.Links[productID] {
		for _, c := range s.Categories {
			if c.ID == id {
				names = append(names, c.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func (s *MemStore) brandName(id pgtype.Int4) pgtype.Text {
	if !id.Valid {
		return pgtype.Text{}
	}
	name, ok := s.Brands[id.Int32]
	return pgtype.Text{String: name, Valid: ok}
}

func (s *MemStore) CountProducts(_ context.Context, categoryID pgtype.Int4) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	var n int64
	for _, p := range s.Products {
		if s.matches(p, categoryID) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) CreateProducts(_ context.Context, arg database.CreateProductsParams) ([]database.CreateProductsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	existing := make(map[string]bool, len(s.Products))
	for _, p := range s.Products {
		existing[p.Sku] = true
	}

	var rows []database.CreateProductsRow
	for i, sku := range arg.Skus {
		if existing[sku] {
			continue
		}
		existing[sku] = true
		retail, err := decimal.NewFromString(arg.RetailPrices[i])
		if err != nil {
			return nil, err
		}
		wholesale, err := decimal.NewFromString(arg.WholesalePrices[i])
		if err != nil {
			return nil, err
		}
		s.nextID++
		s.Products = append(s.Products, database.Product{
			ID:             s.nextID,
			Name:           arg.Names[i],
			Description:    arg.Descriptions[i],
			RetailPrice:    retail,
			WholesalePrice: wholesale,
			Stock:          arg.Stocks[i],
			Sku:            sku,
			Status:         database.ProductStatus(arg.Statuses[i]),
			Favorite:       arg.Favorites[i],
			BrandID:        arg.BrandIds[i],
		})
		rows = append(rows, database.CreateProductsRow{ID: s.nextID, Sku: sku})
	}
	return rows, nil
}

func (s *MemStore) ExistingBrandIDs(_ context.Context, ids []int32) ([]int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []int32
	for _, id := range ids {
		if _, ok := s.Brands[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *MemStore) InsertProductImport(_ context.Context, arg database.InsertProductImportParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.Imports = append(s.Imports, database.ProductImport{
		ID:         arg.ID,
		Source:     arg.Source,
		Received:   arg.Received,
		Inserted:   arg.Inserted,
		Skipped:    arg.Skipped,
		Rejected:   arg.Rejected,
		DurationMs: arg.DurationMs,
		CreatedAt:  pgtype.Timestamptz{Time: time.Now(), Valid: true},
	})
	return nil
}

func (s *MemStore) ListCategories(context.Context) ([]database.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := append([]database.Category(nil), s.Categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) ListProductsForExport(_ context.Context, categoryID pgtype.Int4) ([]database.ListProductsForExportRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []database.ListProductsForExportRow
	for _, p := range s.Products {
		if !s.matches(p, categoryID) {
			continue
		}
		images := append([]string{}, s.Images[p.ID]...)
		out = append(out, database.ListProductsForExportRow{
			ID:             p.ID,
			Name:           p.Name,
			Description:    p.Description,
			RetailPrice:    p.RetailPrice,
			WholesalePrice: p.WholesalePrice,
			Stock:          p.Stock,
			Sku:            p.Sku,
			Status:         p.Status,
			Favorite:       p.Favorite,
			BrandName:      s.brandName(p.BrandID),
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
			ImageUrls:      images,
			CategoryNames:  s.categoryNames(p.ID),
		})
	}
	return out, nil
}

func (s *MemStore) ListProductsPage(_ context.Context, arg database.ListProductsPageParams) ([]database.ListProductsPageRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var matched []database.Product
	for _, p := range s.Products {
		if s.matches(p, arg.CategoryID) {
			matched = append(matched, p)
		}
	}

	var out []database.ListProductsPageRow
	for i := int(arg.Offset); i < len(matched) && i < int(arg.Offset+arg.Limit); i++ {
		p := matched[i]
		var image pgtype.Text
		if imgs := s.Images[p.ID]; len(imgs) > 0 {
			image = pgtype.Text{String: imgs[0], Valid: true}
		}
		out = append(out, database.ListProductsPageRow{
			ID:             p.ID,
			Name:           p.Name,
			Sku:            p.Sku,
			Status:         p.Status,
			RetailPrice:    p.RetailPrice,
			WholesalePrice: p.WholesalePrice,
			Stock:          p.Stock,
			Favorite:       p.Favorite,
			BrandName:      s.brandName(p.BrandID),
			ImageUrl:       image,
			CategoryNames:  s.categoryNames(p.ID),
			OrderItemCount: s.OrderItems[p.ID],
		})
	}
	return out, nil
}

func (s *MemStore) ListRecentProductImports(_ context.Context, limit int32) ([]database.ProductImport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []database.ProductImport
	for i := len(s.Imports) - 1; i >= 0 && len(out) < int(limit); i-- {
		out = append(out, s.Imports[i])
	}
	return out, nil
}

var _ database.Querier = (*MemStore)(nil)

// SKUs returns the stored SKUs in insertion order.
func (s *MemStore) SKUs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Products))
	for i, p := range s.Products {
		out[i] = p.Sku
	}
	return out
}
