package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress    contextKey = "import_ip"
	ctxKeyImportSource contextKey = "import_source"
)

// Import sources recorded on each ImportBatch.
const (
	SourceAPI = "api"
	SourceWeb = "web"
)

// ContextWithIPAddress adds the client IP address to context for import logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithImportSource records which surface started an import.
func ContextWithImportSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, ctxKeyImportSource, source)
}

// GetIPAddressFromContext extracts IP address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// GetImportSourceFromContext extracts the import source, defaulting to SourceAPI.
func GetImportSourceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyImportSource).(string); ok && v != "" {
		return v
	}
	return SourceAPI
}
