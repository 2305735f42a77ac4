package validation

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// FieldError is one failed check collected by a ConfigValidator.
type FieldError struct {
	Scope string
	Field string
	Msg   string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v", e.Scope, e.Field, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Scope, e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ConfigValidator chains checks over hand-written config types and keeps
// going after a failure so callers see every problem at once.
type ConfigValidator struct {
	scope string
	errs  []*FieldError
}

// NewConfigValidator returns a validator whose messages are prefixed with scope.
func NewConfigValidator(scope string) *ConfigValidator {
	return &ConfigValidator{scope: scope}
}

func (cv *ConfigValidator) failf(field, format string, args ...any) *ConfigValidator {
	cv.errs = append(cv.errs, &FieldError{Scope: cv.scope, Field: field, Msg: fmt.Sprintf(format, args...)})
	return cv
}

func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value != "" {
		return cv
	}
	return cv.failf(field, "required field is empty")
}

func (cv *ConfigValidator) MinInt(field string, value, lo int) *ConfigValidator {
	if value >= lo {
		return cv
	}
	return cv.failf(field, "value %d is below minimum %d", value, lo)
}

func (cv *ConfigValidator) MaxInt(field string, value, hi int) *ConfigValidator {
	if value <= hi {
		return cv
	}
	return cv.failf(field, "value %d exceeds maximum %d", value, hi)
}

// Positive requires value > 0.
func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value > 0 {
		return cv
	}
	return cv.failf(field, "value %d must be positive", value)
}

// NonNegative requires value >= 0.
func (cv *ConfigValidator) NonNegative(field string, value int) *ConfigValidator {
	if value >= 0 {
		return cv
	}
	return cv.failf(field, "value %d must be non-negative", value)
}

// UnitInterval requires value in (0, 1]. NaN fails.
func (cv *ConfigValidator) UnitInterval(field string, value float64) *ConfigValidator {
	if !math.IsNaN(value) && value > 0 && value <= 1 {
		return cv
	}
	return cv.failf(field, "value %g must be in (0, 1]", value)
}

// RangeFloat requires value in [lo, hi]. NaN fails.
func (cv *ConfigValidator) RangeFloat(field string, value, lo, hi float64) *ConfigValidator {
	if !math.IsNaN(value) && value >= lo && value <= hi {
		return cv
	}
	return cv.failf(field, "value %g is outside range [%g, %g]", value, lo, hi)
}

func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	if slices.Contains(allowed, value) {
		return cv
	}
	return cv.failf(field, "value %q must be one of %v", value, allowed)
}

// Custom records the error returned by fn, keeping it reachable through
// errors.Is on the joined result.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errs = append(cv.errs, &FieldError{Scope: cv.scope, Field: field, Err: err})
	}
	return cv
}

// When runs checks only if cond holds.
func (cv *ConfigValidator) When(cond bool, checks func(*ConfigValidator)) *ConfigValidator {
	if cond {
		checks(cv)
	}
	return cv
}

func (cv *ConfigValidator) HasErrors() bool { return len(cv.errs) > 0 }

// Errors returns the failed checks in the order they ran.
func (cv *ConfigValidator) Errors() []*FieldError { return cv.errs }

// Validate joins every failed check, or returns nil.
func (cv *ConfigValidator) Validate() error {
	if len(cv.errs) == 0 {
		return nil
	}
	errs := make([]error, len(cv.errs))
	for i, e := range cv.errs {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// DefaultOrInt returns value when positive, def otherwise.
func DefaultOrInt(value, def int) int {
	if value > 0 {
		return value
	}
	return def
}
