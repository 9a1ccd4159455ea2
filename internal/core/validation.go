package core

// validation.go coerces import records into NewProduct values.
//
// Coercion happens in two passes:
//  1. Each field is parsed from its raw value (convert.go); parse failures
//     are collected per field.
//  2. The typed product is checked with go-playground/validator for the
//     rules that need the whole struct (required fields, ranges, enums).
//
// A record with any error is rejected and never reaches the database.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Import field name
	Value   string // The offending raw value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// RecordValidator coerces and validates import records.
// It is safe for concurrent use.
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a RecordValidator.
func NewRecordValidator() *RecordValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their import names rather than Go names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &RecordValidator{validate: v}
}

// Coerce converts rec into a NewProduct. Unknown keys are ignored.
// A non-empty error slice means the record must be rejected.
func (rv *RecordValidator) Coerce(rec ImportRecord) (NewProduct, []ValidationError) {
	var (
		p    NewProduct
		errs []ValidationError
		err  error
	)

	fail := func(f Field, raw any, err error) {
		errs = append(errs, ValidationError{
			Field:   string(f),
			Value:   ToString(raw),
			Message: err.Error(),
		})
	}

	p.Name = CleanCell(ToString(rec[string(FieldName)]))
	p.SKU = CleanCell(ToString(rec[string(FieldSKU)]))
	p.Favorite = ParseFavorite(rec[string(FieldFavorite)])

	if p.Description, err = NormalizeDescription(rec[string(FieldDescription)]); err != nil {
		fail(FieldDescription, rec[string(FieldDescription)], err)
	}
	if p.RetailPrice, err = ParsePrice(rec[string(FieldRetailPrice)]); err != nil {
		fail(FieldRetailPrice, rec[string(FieldRetailPrice)], err)
	}
	if p.WholesalePrice, err = ParsePrice(rec[string(FieldWholesalePrice)]); err != nil {
		fail(FieldWholesalePrice, rec[string(FieldWholesalePrice)], err)
	}
	if p.Stock, err = ParseOptionalInt(rec[string(FieldStock)]); err != nil {
		fail(FieldStock, rec[string(FieldStock)], err)
	}
	if p.BrandID, err = ParseOptionalInt(rec[string(FieldBrandID)]); err != nil {
		fail(FieldBrandID, rec[string(FieldBrandID)], err)
	}
	if p.Status, err = ParseStatus(rec[string(FieldStatus)]); err != nil {
		fail(FieldStatus, rec[string(FieldStatus)], err)
		p.Status = StatusDraft
	}

	failed := make(map[string]bool, len(errs))
	for _, e := range errs {
		failed[e.Field] = true
	}

	if err := rv.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return p, append(errs, ValidationError{Message: err.Error()})
		}
		for _, fe := range verrs {
			if failed[fe.Field()] {
				continue
			}
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Value:   ToString(rec[fe.Field()]),
				Message: validationMessage(fe),
			})
		}
	}

	return p, errs
}

// validationMessage renders a validator failure in the wording used by the
// error code catalogue.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("invalid enum, want one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// messages flattens validation errors into display strings.
func messages(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
