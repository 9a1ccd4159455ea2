package core

// convert.go turns raw import values into typed product attributes.
//
// Values come from two places: spreadsheet cells (always strings) and JSON
// API clients (strings, json.Number, float64 or bool). Every Parse* function
// accepts either and handles the usual spreadsheet artifacts:
//   - Excel formula prefixes (="value")
//   - Currency symbols and comma thousands separators in prices
//   - Surrounding quotes and whitespace
//
// The ToPg*/FromPg* helpers convert between optional Go values and pgtype
// values with Valid=false standing in for NULL.

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// descriptionPolicy drops every tag. Stripped tags leave a space so block
// elements do not run their words together.
var descriptionPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

var (
	errInvalidNumber  = errors.New("invalid number")
	errInvalidInteger = errors.New("invalid integer")
	errInvalidEnum    = errors.New("invalid enum")
)

// numericRegex validates that a string is a plain decimal after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// thousandsRegex matches numbers grouped with comma thousands separators,
// such as 1,234 or 12,345.67.
var thousandsRegex = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// priceScale is the number of decimal places a stored price keeps.
const priceScale = 2

// ParsePrice converts a raw value into a decimal price.
// Absent and empty values become zero. Prices with more than two decimal
// places are rejected rather than rounded.
func ParsePrice(v any) (decimal.Decimal, error) {
	d, err := parsePrice(v)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.Equal(d.Round(priceScale)) {
		return decimal.Zero, fmt.Errorf("%w %q: more than %d decimal places", errInvalidNumber, ToString(v), priceScale)
	}
	return d, nil
}

func parsePrice(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		return parseDecimalString(val.String())
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, fmt.Errorf("%w %v", errInvalidNumber, val)
		}
		return decimal.NewFromFloat(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case string:
		return parseDecimalString(val)
	default:
		return decimal.Zero, fmt.Errorf("%w %v", errInvalidNumber, v)
	}
}

func parseDecimalString(raw string) (decimal.Decimal, error) {
	s := CleanCell(raw)
	if s == "" {
		return decimal.Zero, nil
	}

	// Accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.TrimSpace(s)

	if thousandsRegex.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w %q", errInvalidNumber, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q", errInvalidNumber, raw)
	}
	return d, nil
}

// ParseOptionalInt converts a raw value into an int32.
// Absent and empty values return nil, meaning "not set".
func ParseOptionalInt(v any) (*int32, error) {
	var n int64
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		i, err := strconv.ParseInt(val.String(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w %q", errInvalidInteger, val.String())
		}
		n = i
	case float64:
		if val != math.Trunc(val) || val > math.MaxInt32 || val < math.MinInt32 {
			return nil, fmt.Errorf("%w %v", errInvalidInteger, val)
		}
		n = int64(val)
	case int:
		if val > math.MaxInt32 || val < math.MinInt32 {
			return nil, fmt.Errorf("%w %v", errInvalidInteger, val)
		}
		n = int64(val)
	case string:
		s := CleanCell(val)
		if s == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w %q", errInvalidInteger, val)
		}
		n = i
	default:
		return nil, fmt.Errorf("%w %v", errInvalidInteger, v)
	}

	i32 := int32(n)
	return &i32, nil
}

// ParseFavorite is true only for the string "true" or the boolean true.
func ParseFavorite(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.TrimSpace(val) == "true"
	default:
		return false
	}
}

// ParseStatus converts a raw value into a Status, case-insensitively.
// Absent and empty values default to DRAFT.
func ParseStatus(v any) (Status, error) {
	if v == nil {
		return StatusDraft, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w %v", errInvalidEnum, v)
	}
	s = strings.ToUpper(CleanCell(s))
	switch Status(s) {
	case "":
		return StatusDraft, nil
	case StatusActive, StatusDraft, StatusArchived:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w %q (want ACTIVE, DRAFT or ARCHIVED)", errInvalidEnum, v)
	}
}

// NormalizeDescription converts an HTML description into plain text with no
// line wrapping. Entities are decoded and whitespace runs collapse to a single
// space. Absent and blank values return nil.
func NormalizeDescription(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.(string)
	if !ok {
		raw = fmt.Sprint(v)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	text := html.UnescapeString(descriptionPolicy.Sanitize(raw))
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil, nil
	}
	return &text, nil
}

// ToString renders a raw value as text. JSON numbers keep their literal form.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// ToPgText converts an optional string to pgtype.Text.
func ToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// ToPgInt4 converts an optional int32 to pgtype.Int4.
func ToPgInt4(i *int32) pgtype.Int4 {
	if i == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: *i, Valid: true}
}

// FromPgInt4 converts pgtype.Int4 to an optional int32.
func FromPgInt4(i pgtype.Int4) *int32 {
	if !i.Valid {
		return nil
	}
	v := i.Int32
	return &v
}

// FromPgText converts pgtype.Text to an optional string.
func FromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	v := t.String
	return &v
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
