package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	errors "github.com/frahmantamala/salesdesk/internal"
	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator instance. Field names in reported
// errors follow the json tag of the struct field.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct validates s and converts failures into a single validation AppError
// carrying one ValidationError per failing field.
func Struct(s interface{}) *errors.AppError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !stderrors.As(err, &ve) {
		return errors.NewValidationError(err.Error(), errors.ErrCodeValidationFailed)
	}

	details := make([]errors.ValidationError, 0, len(ve))
	for _, fe := range ve {
		details = append(details, errors.ValidationError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Code:    string(fieldCode(fe)),
		})
	}

	return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: details})
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func fieldCode(fe validator.FieldError) errors.ErrorCode {
	switch {
	case fe.Tag() == "email":
		return errors.ErrCodeInvalidEmail
	case fe.Tag() == "oneof" && (fe.Field() == "role" || fe.Field() == "permissions"):
		return errors.ErrCodeInvalidRole
	default:
		return errors.ErrCodeValidationFailed
	}
}
