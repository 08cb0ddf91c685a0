// Package validator wraps go-playground/validator for declarative struct checks.
// Field errors are named after the field's `env` tag when present, so a configuration
// failure points at the variable an operator has to set.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the first error in the chain returned by Validate.
var ErrValidationFailed = errors.New("struct validation failed")

var validator *gvalidator.Validate

const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
	validator.RegisterTagNameFunc(fieldName)
}

// fieldName prefers the env tag, then the long flag name, then the Go field name.
func fieldName(field reflect.StructField) string {
	if env := field.Tag.Get("env"); env != "" {
		return env
	}
	if long := field.Tag.Get("long"); long != "" {
		return "--" + long
	}
	return field.Name
}

func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			strings.TrimSpace(validationErr.Tag()),
		))
	}

	return errors.Join(errs...)
}

// Validate checks v against its `validate` tags. On failure the returned error matches
// ErrValidationFailed and lists one message per failing field.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
