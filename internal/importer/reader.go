package importer

// reader.go wraps uploaded files before parsing:
//
//   - BOMSkippingReader: removes the UTF-8 BOM (0xEF 0xBB 0xBF) Excel adds
//   - UTF8Sanitizer: replaces invalid UTF-8 sequences with '?'
//   - LimitedReader: fails with ErrFileTooLarge past a byte budget
//
// Use WrapText to apply the first two in the correct order.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader. On the first read it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, err := r.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// UTF8Sanitizer wraps an io.Reader and replaces each run of invalid UTF-8
// bytes with '?'. Multi-byte sequences split across reads are held back
// until the rest arrives.
type UTF8Sanitizer struct {
	reader  io.Reader
	buf     []byte
	pending []byte // incomplete trailing sequence from the previous read
	out     []byte // sanitized bytes not yet returned
	err     error
}

// NewUTF8Sanitizer creates a new streaming UTF-8 sanitizer.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		reader: r,
		buf:    make([]byte, 32*1024),
	}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}

		n, err := s.reader.Read(s.buf)
		s.err = err

		data := append(s.pending, s.buf[:n]...)
		keep := 0
		if err == nil {
			keep = incompleteTrailingBytes(data)
		}
		s.pending = append([]byte(nil), data[len(data)-keep:]...)
		s.out = sanitize(data[:len(data)-keep])
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

func sanitize(data []byte) []byte {
	if isAllASCII(data) || utf8.Valid(data) {
		return data
	}
	return bytes.ToValidUTF8(data, []byte("?"))
}

// isAllASCII is the fast path: most spreadsheet exports are plain ASCII.
func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// incompleteTrailingBytes returns how many bytes at the end of data begin a
// multi-byte sequence that is not yet complete.
func incompleteTrailingBytes(data []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		start := data[len(data)-i:]
		if !utf8.RuneStart(start[0]) {
			continue
		}
		if start[0] >= utf8.RuneSelf && !utf8.FullRune(start) {
			return i
		}
		return 0
	}
	return 0
}

// LimitedReader returns ErrFileTooLarge once more than Max bytes were read.
type LimitedReader struct {
	reader io.Reader
	Max    int64
	read   int64
}

// NewLimitedReader creates a reader capped at max bytes. A max of zero or
// less disables the cap.
func NewLimitedReader(r io.Reader, max int64) *LimitedReader {
	return &LimitedReader{reader: r, Max: max}
}

// Read implements io.Reader.
func (r *LimitedReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)
	if r.Max > 0 && r.read > r.Max {
		return 0, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, r.Max)
	}
	return n, err
}

// WrapText strips a BOM and sanitizes UTF-8, in that order.
func WrapText(r io.Reader) io.Reader {
	return NewUTF8Sanitizer(NewBOMSkippingReader(r))
}
