// Package validator wraps go-playground/validator for declarative struct
// validation with readable error output.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the root of the joined error chain returned when
// one or more fields fail validation. Detect it with errors.Is.
var ErrValidationFailed = errors.New("struct validation failed")

var validate *gvalidator.Validate

func init() {
	validate = gvalidator.New(gvalidator.WithRequiredStructEnabled())
}

// Validate checks v against its `validate:"..."` tags. It returns nil when
// every field passes, otherwise an error joining ErrValidationFailed with
// one message per failing field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs gvalidator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("field %q: value %q fails the %q rule", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag()))
	}

	return errors.Join(errs...)
}
