package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/database"
	"github.com/JonMunkholm/catalog/internal/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(key string) string {
		if key == "DATABASE_URL" {
			return "postgres://localhost/catalog_test"
		}
		return ""
	})
	require.NoError(t, err)
	cfg.Rate.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *dbtest.MemStore) {
	t.Helper()
	store := dbtest.NewMemStore()
	store.Categories = []database.Category{{ID: 1, Name: "Tools"}, {ID: 2, Name: "Garden"}}
	svc := core.NewService(store, core.ServiceConfig{
		MaxConcurrentImports: 2,
		MaxImportWait:        50 * time.Millisecond,
	})
	srv := NewServer(svc, cfg)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, store
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func get(srv *Server, target string) *httptest.ResponseRecorder {
	return do(srv, httptest.NewRequest(http.MethodGet, target, nil))
}

func postJSON(srv *Server, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(srv, req)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))

	rec := get(srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	store.FailWith = errors.New("dial tcp: connection refused")
	rec = get(srv, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRootRedirects(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := get(srv, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))
}

func TestProductList(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))
	for i := 0; i < 12; i++ {
		store.AddProduct("Product "+string(rune('A'+i)), "SKU-"+string(rune('A'+i)), 1)
	}

	rec := get(srv, "/products")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Product A")
	assert.Contains(t, body, "Page 1 of 2")
	assert.Contains(t, body, `rel="next"`)
	assert.NotContains(t, body, `rel="prev"`)
	assert.Contains(t, body, "/api/products/export?format=xlsx")

	rec = get(srv, "/products?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "Product K")
	assert.Contains(t, body, `rel="prev"`)
	assert.NotContains(t, body, `rel="next"`)
}

func TestProductListCategoryFilter(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))
	store.AddProduct("Hammer", "H-1", 1)
	store.AddProduct("Rake", "R-1", 2)

	rec := get(srv, "/products?categoryId=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Rake")
	assert.NotContains(t, body, "Hammer")
	assert.Contains(t, body, `<option value="2" selected>Garden</option>`)
	assert.Contains(t, body, "/api/products/export?categoryId=2&amp;format=csv")
}

func TestProductListEmpty(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := get(srv, "/products?page=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No products found.")
}

func TestProductListRedirects(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))
	store.AddProduct("Hammer", "H-1", 1)

	tests := []struct {
		target   string
		location string
	}{
		{"/products?page=0", "/products?page=1"},
		{"/products?page=-3", "/products?page=1"},
		{"/products?page=abc", "/products?page=1"},
		{"/products?page=5", "/products?page=1"},
		{"/products?categoryId=tools", "/products"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(srv, tt.target)
			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := get(srv, "/api/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":2,"name":"Garden"},{"id":1,"name":"Tools"}]`, rec.Body.String())
}

func TestExportCSV(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))
	store.AddProduct("Hammer", "H-1", 1)

	rec := get(srv, "/api/products/export")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="products_export.csv"`, rec.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,description,retailPrice"))
	assert.Contains(t, lines[1], "Hammer")
}

func TestExportJSONCategoryFilter(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))
	store.AddProduct("Hammer", "H-1", 1)
	store.AddProduct("Rake", "R-1", 2)

	rec := get(srv, "/api/products/export?format=json&categoryId=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Hammer", records[0]["name"])
	assert.Equal(t, "Tools", records[0]["categories"])
}

func TestExportXLSXEmptyCatalog(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := get(srv, "/api/products/export?format=xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="products_export.xlsx"`, rec.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Products"}, f.GetSheetList())
	rows, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "id", rows[0][0])
}

func TestExportErrors(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))

	rec := get(srv, "/api/products/export?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "REQ001", decodeError(t, rec).Code)

	rec = get(srv, "/api/products/export?categoryId=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ002", decodeError(t, rec).Code)

	store.FailWith = errors.New("some driver failure")
	rec = get(srv, "/api/products/export")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "ERR000", resp.Code)
	assert.NotContains(t, rec.Body.String(), "driver failure")
}

func TestImportAPI(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))

	body := `{"data":[
		{"name":"Widget","retailPrice":"9.99","sku":"W-1"},
		{"name":"Gadget","retailPrice":12.5,"sku":"G-1","favorite":true},
		{"name":"Broken","sku":"B-1","status":"GONE"}
	]}`
	rec := postJSON(srv, "/api/products/import", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result core.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Received)
	assert.Equal(t, 2, result.Inserted)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "B-1", result.Rejected[0].SKU)
	assert.Equal(t, "12.5", store.Products[1].RetailPrice.String())

	// Re-importing the same SKUs inserts nothing.
	rec = postJSON(srv, "/api/products/import", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, []string{"W-1", "G-1"}, result.SkippedSKUs)

	rec = get(srv, "/api/imports")
	require.Equal(t, http.StatusOK, rec.Code)
	var batches []importBatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batches))
	require.Len(t, batches, 2)
	assert.Equal(t, core.SourceAPI, batches[0].Source)
	assert.Equal(t, 2, batches[0].Skipped)
}

func TestRecentImportsLimit(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))
	for _, sku := range []string{"A-1", "B-1"} {
		rec := postJSON(srv, "/api/products/import", `{"data":[{"name":"x","sku":"`+sku+`"}]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	tests := []struct {
		query  string
		status int
		count  int
	}{
		{"?limit=1", http.StatusOK, 1},
		{"?limit=100000", http.StatusOK, 2},
		{"?limit=1099511627776", http.StatusOK, 2},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=ten", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := get(srv, "/api/imports"+tt.query)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				assert.Equal(t, "REQ003", decodeError(t, rec).Code)
				return
			}
			var batches []importBatchResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &batches))
			assert.Len(t, batches, tt.count)
		})
	}
}

func TestImportAPIErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"data":`, http.StatusBadRequest, "REQ003"},
		{"missing data", `{}`, http.StatusBadRequest, "IMP006"},
		{"null data", `{"data":null}`, http.StatusBadRequest, "IMP006"},
		{"empty data", `{"data":[]}`, http.StatusBadRequest, "IMP006"},
		{"data not a list", `{"data":{"name":"x"}}`, http.StatusBadRequest, "REQ003"},
		{"no valid records", `{"data":[{"name":"No SKU"}]}`, http.StatusBadRequest, "VAL008"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, testConfig(t))
			rec := postJSON(srv, "/api/products/import", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestImportAPIRejectedDetails(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := postJSON(srv, "/api/products/import", `{"data":[{"sku":"A-1","stock":"lots"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code    string           `json:"code"`
		Details []core.Rejection `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VAL008", resp.Code)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "A-1", resp.Details[0].SKU)
	assert.Len(t, resp.Details[0].Errors, 2)
}

func TestImportAPIDatabaseFailure(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))
	store.FailWith = errors.New("dial tcp 127.0.0.1:5432: connection refused")

	rec := postJSON(srv, "/api/products/import", `{"data":[{"name":"Widget","sku":"W-1"}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "DB004", decodeError(t, rec).Code)
}

func TestImportAPIBodyTooLarge(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.MaxFileSize = 64
	srv, _ := newTestServer(t, cfg)

	body := `{"data":[{"name":"` + strings.Repeat("x", 200) + `","sku":"W-1"}]}`
	rec := postJSON(srv, "/api/products/import", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec).Code)
}

func TestImportAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	srv, _ := newTestServer(t, cfg)

	body := `{"data":[{"name":"Widget","sku":"W-1"}]}`
	rec := postJSON(srv, "/api/products/import", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", strings.NewReader(body))
	req.Header.Set("X-API-Key", "wrong")
	assert.Equal(t, http.StatusForbidden, do(srv, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/products/import", strings.NewReader(body))
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, do(srv, req).Code)
}

func TestImportRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 100
	cfg.Rate.ImportLimit = 1
	srv, _ := newTestServer(t, cfg)

	body := `{"data":[{"name":"Widget","sku":"W-1"}]}`
	rec := postJSON(srv, "/api/products/import", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(srv, "/api/products/import", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)

	// Other routes use the general limit.
	assert.Equal(t, http.StatusOK, get(srv, "/api/categories").Code)
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := get(srv, "/api/categories")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func uploadRequest(t *testing.T, name, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/import/mapping", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func submitRequest(filename, content string, fields ...string) *http.Request {
	form := url.Values{}
	form.Set("filename", filename)
	form.Set("file", base64.StdEncoding.EncodeToString([]byte(content)))
	for i, f := range fields {
		form.Set("field_"+string(rune('0'+i)), f)
	}
	req := httptest.NewRequest(http.MethodPost, "/products/import/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

const wizardCSV = "Nombre,Precio,Codigo\nWidget,9.99,W-1\n"

func TestImportWizardForm(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := get(srv, "/products/import")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `enctype="multipart/form-data"`)
}

func TestImportWizardMapping(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(srv, uploadRequest(t, "products.csv", wizardCSV))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="field_0"`)
	assert.Contains(t, body, `name="field_2"`)
	assert.Contains(t, body, "Nombre")
	assert.Contains(t, body, base64.StdEncoding.EncodeToString([]byte(wizardCSV)))
}

func TestImportWizardMappingErrors(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	rec := do(srv, uploadRequest(t, "products.pdf", "%PDF"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE006")

	rec = do(srv, uploadRequest(t, "products.csv", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE005")

	req := httptest.NewRequest(http.MethodPost, "/products/import/mapping", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rec = do(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportWizardSubmit(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))

	rec := do(srv, submitRequest("products.csv", wizardCSV, "name", "retailPrice", "sku"))
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/products", rec.Header().Get("Location"))

	require.Len(t, store.Products, 1)
	assert.Equal(t, "Widget", store.Products[0].Name)
	assert.Equal(t, "9.99", store.Products[0].RetailPrice.String())
	require.Len(t, store.Imports, 1)
	assert.Equal(t, core.SourceWeb, store.Imports[0].Source)
}

func TestImportWizardSubmitRejected(t *testing.T) {
	srv, store := newTestServer(t, testConfig(t))

	// Without an sku mapping every row is rejected.
	rec := do(srv, submitRequest("products.csv", wizardCSV, "name", "retailPrice", ""))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "VAL008")
	assert.Contains(t, body, "Rejected rows")
	assert.Contains(t, body, `name="field_0"`)
	assert.Empty(t, store.Products)
}

func TestImportWizardSubmitMissingFile(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/products/import/submit", strings.NewReader("filename=x.csv"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := do(srv, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "FILE004")
}
