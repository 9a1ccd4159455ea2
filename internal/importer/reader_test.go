package importer

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,sku")...),
			expected: "name,sku",
		},
		{
			name:     "file without BOM",
			input:    []byte("name,sku"),
			expected: "name,sku",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewBOMSkippingReader(bytes.NewReader(tt.input))
			result, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "valid ASCII",
			input:    []byte("name,sku"),
			expected: "name,sku",
		},
		{
			name:     "valid UTF-8 with multibyte",
			input:    []byte("Crème brûlée,€9.99"),
			expected: "Crème brûlée,€9.99",
		},
		{
			name:     "invalid single byte replaced",
			input:    []byte{'h', 'e', 0x80, 'l', 'o'},
			expected: "he?lo",
		},
		{
			name:     "empty input",
			input:    []byte{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewUTF8Sanitizer(bytes.NewReader(tt.input))
			result, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8SanitizerSplitSequence(t *testing.T) {
	// One byte per Read splits every multi-byte rune across calls.
	input := "€ and ü"
	reader := NewUTF8Sanitizer(iotest.OneByteReader(strings.NewReader(input)))

	result, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != input {
		t.Errorf("got %q, want %q", string(result), input)
	}
}

func TestLimitedReader(t *testing.T) {
	_, err := io.ReadAll(NewLimitedReader(strings.NewReader(strings.Repeat("x", 100)), 10))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}

	got, err := io.ReadAll(NewLimitedReader(strings.NewReader("small"), 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "small" {
		t.Errorf("got %q, want %q", got, "small")
	}

	got, err = io.ReadAll(NewLimitedReader(strings.NewReader("unbounded"), 0))
	if err != nil || string(got) != "unbounded" {
		t.Errorf("got %q, %v; want unbounded, nil", got, err)
	}
}

func TestWrapText(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte{'h', 'e', 0x80, 'l', 'o'}...)

	result, err := io.ReadAll(WrapText(bytes.NewReader(input)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// BOM stripped, invalid byte replaced
	if string(result) != "he?lo" {
		t.Errorf("got %q, want %q", string(result), "he?lo")
	}
}
