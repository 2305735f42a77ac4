package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalid marks every error produced by struct validation.
var ErrInvalid = errors.New("validation failed")

// Struct validates v against its `validate` struct tags and reports every
// failing field.
func Struct(v any) error {
	if v == nil {
		return fmt.Errorf("%w: value cannot be nil", ErrInvalid)
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: field is required", field))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s (got %v)", field, param, e.Value()))
		case "gte", "min":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s (got %v)", field, param, e.Value()))
		case "lte", "max":
			msgs = append(msgs, fmt.Sprintf("%s: must not exceed %s (got %v)", field, param, e.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s: must be one of [%s] (got %v)", field, param, e.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
