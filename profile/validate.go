package profile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report toml keys instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("even", validateEven)
	v.RegisterStructValidation(validateLayout, Profile{})
	return v
}

// ValidationError lists every profile field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is a single failed field.
type FieldError struct {
	Field   string
	Tag     string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid profile"
	}
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Message
	}
	return "invalid profile: " + strings.Join(msgs, "; ")
}

// Validate checks field ranges and the page alignment of the layout.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return newValidationError(verrs)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func newValidationError(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Fields: make([]FieldError, len(errs))}
	for i, fe := range errs {
		ve.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: formatFieldError(fe),
		}
	}
	return ve
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s character", field, fe.Param())
	case "gtfield":
		return field + " must be above app_start"
	case "even":
		return field + " must be a whole number of words"
	case "pagealigned":
		return fmt.Sprintf("%s 0x%X must be a multiple of page_size", field, fe.Value())
	case "inarea":
		return fmt.Sprintf("%s 0x%X must be a word address inside the application area", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func validateEven(fl validator.FieldLevel) bool {
	return fl.Field().Int()%2 == 0
}

func validateLayout(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(Profile)
	if !ok || p.PageSize <= 0 {
		return
	}

	page := uint32(p.PageSize)
	if p.AppStart%page != 0 {
		sl.ReportError(p.AppStart, "app_start", "AppStart", "pagealigned", "")
	}
	if p.AppEnd%page != 0 {
		sl.ReportError(p.AppEnd, "app_end", "AppEnd", "pagealigned", "")
	}

	if p.LoadCompleteWord != 0 {
		a := p.LoadCompleteAddress
		if a%2 != 0 || a < p.AppStart || uint64(a)+2 > uint64(p.AppEnd) {
			sl.ReportError(a, "load_complete_address", "LoadCompleteAddress", "inarea", "")
		}
	}
}
