package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"moviesmama/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct tag validation and reports the first failure as a
// domain.ValidationError with a stable message.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate input: %w", err)
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field + " is required")
	case "email":
		return domain.NewValidationError(field + " must be a valid email address")
	case "max":
		return domain.NewValidationError(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return domain.NewValidationError(field + " is invalid")
	}
}
