package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/export"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web/templates"
)

// handleHealth reports whether the database is reachable, along with the
// import limiter's occupancy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]any{
		"status":  "ok",
		"imports": s.service.LimiterStatus(),
	}
	if err := s.service.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}
	writeJSON(w, status, body)
}

// handleProductList renders one page of the catalog.
func (s *Server) handleProductList(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(r)
	if !ok {
		http.Redirect(w, r, "/products?page=1", http.StatusTemporaryRedirect)
		return
	}
	categoryID, err := parseCategoryID(r)
	if err != nil {
		http.Redirect(w, r, "/products", http.StatusTemporaryRedirect)
		return
	}

	result, err := s.service.ListProducts(r.Context(), core.ProductQuery{Page: page, CategoryID: categoryID})
	if errors.Is(err, core.ErrPageOutOfRange) {
		http.Redirect(w, r, "/products?page=1", http.StatusTemporaryRedirect)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	categories, err := s.service.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ProductList(result, categories).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render product list", "error", err)
	}
}

// handleCategories returns every category ordered by name.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// importBatchResponse is the JSON form of a core.ImportBatch.
type importBatchResponse struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Received   int       `json:"received"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	Rejected   int       `json:"rejected"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

// handleRecentImports returns the most recent import batches, newest first.
// A limit above core.MaxRecentImports is clamped.
func (s *Server) handleRecentImports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, r, fmt.Errorf("%w: limit %q", core.ErrMalformedBody, v), http.StatusBadRequest)
			return
		}
		limit = min(n, core.MaxRecentImports)
	}

	batches, err := s.service.RecentImports(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	out := make([]importBatchResponse, len(batches))
	for i, b := range batches {
		out[i] = importBatchResponse{
			ID:         b.ID,
			Source:     b.Source,
			Received:   b.Received,
			Inserted:   b.Inserted,
			Skipped:    b.Skipped,
			Rejected:   b.Rejected,
			DurationMs: b.Duration.Milliseconds(),
			CreatedAt:  b.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExport streams every product matching the optional category filter
// as a file download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	categoryID, err := parseCategoryID(r)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	records, err := s.service.ExportProducts(r.Context(), categoryID)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	// Encode fully before writing headers so a codec failure can still be a 500.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, records); err != nil {
		respondError(w, r, fmt.Errorf("export %s: %w", format, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("write export", "error", err)
	}
}
