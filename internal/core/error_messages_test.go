package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "invalid export format",
			err:         ErrInvalidFormat,
			wantCode:    "REQ001",
			wantMessage: "Invalid format",
		},
		{
			name:        "wrapped invalid category",
			err:         fmt.Errorf("export: %w", ErrInvalidCategory),
			wantCode:    "REQ002",
			wantMessage: "Invalid category",
		},
		{
			name:        "missing records",
			err:         ErrNoRecords,
			wantCode:    "IMP006",
			wantMessage: "Invalid data",
		},
		{
			name:        "limiter saturated",
			err:         ErrTooManyImports,
			wantCode:    "IMP002",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "no valid records",
			err:         ErrNoValidRecords,
			wantCode:    "VAL008",
			wantMessage: "No record could be imported",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New(`ERROR: duplicate key value violates unique constraint "products_sku_key"`),
			wantCode:    "DB001",
			wantMessage: "A product with this SKU already exists",
		},
		{
			name:        "foreign key maps correctly",
			err:         errors.New("violates foreign key constraint"),
			wantCode:    "DB003",
			wantMessage: "Referenced record does not exist",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline exceeded",
			err:         fmt.Errorf("create products: %w", context.DeadlineExceeded),
			wantCode:    "IMP005",
			wantMessage: "Request timed out",
		},
		{
			name:        "unsupported file type",
			err:         errors.New(`unsupported file type ".pdf"`),
			wantCode:    "FILE006",
			wantMessage: "Unsupported file type",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A product with this SKU already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrInvalidFormat)

	expected := "Invalid format (Code: REQ001). Use csv, xlsx or json"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrNoRecords, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
