package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/catalog/internal/core"
)

// parsePage reads the 1-based page query parameter. A missing value is page
// 1; ok is false for non-numeric or non-positive values.
func parsePage(r *http.Request) (page int, ok bool) {
	val := strings.TrimSpace(r.URL.Query().Get("page"))
	if val == "" {
		return 1, true
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return 0, false
	}
	return i, true
}

// parseCategoryID reads the optional categoryId query parameter.
// An empty value means no filter.
func parseCategoryID(r *http.Request) (*int32, error) {
	val := strings.TrimSpace(r.URL.Query().Get("categoryId"))
	if val == "" {
		return nil, nil
	}
	i, err := strconv.ParseInt(val, 10, 32)
	if err != nil || i < 1 {
		return nil, fmt.Errorf("%w %q", core.ErrInvalidCategory, val)
	}
	id := int32(i)
	return &id, nil
}
