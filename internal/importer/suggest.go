package importer

import (
	"strings"

	"github.com/JonMunkholm/catalog/internal/core"
)

// normalizeHeader lowercases h and drops spaces, underscores and hyphens so
// "Retail Price", "retail_price" and "retailPrice" compare equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch r {
		case ' ', '_', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SuggestMapping pre-maps headers whose normalized name equals an importable
// field. Each field is assigned to at most one header, the first that matches.
func SuggestMapping(headers []string) ColumnMapping {
	byName := make(map[string]core.Field, len(core.ImportableFields))
	for _, f := range core.ImportableFields {
		byName[normalizeHeader(string(f))] = f
	}

	mapping := make(ColumnMapping)
	used := make(map[core.Field]bool)
	for _, h := range headers {
		f, ok := byName[normalizeHeader(h)]
		if !ok || used[f] {
			continue
		}
		used[f] = true
		mapping[h] = f
	}
	return mapping
}
