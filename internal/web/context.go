package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/core"
)

// WithRequestMetadata adds the client IP and import source to context for
// import logging.
func WithRequestMetadata(ctx context.Context, r *http.Request, source string) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r))
	ctx = core.ContextWithImportSource(ctx, source)
	return ctx
}

// clientIP returns the request's client address without the port.
// RemoteAddr is already resolved by middleware.TrustedRealIP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
