package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the app's custom rules registered
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// report json field names rather than Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("ph_phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs the shared validator against s
func ValidateStruct(s interface{}) error {
	return Validator().Struct(s)
}

// FormatValidationErrors converts validator.ValidationErrors into a slice of ValidationError
func FormatValidationErrors(err error) []ValidationError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	out := make([]ValidationError, len(ve))
	for i, fe := range ve {
		out[i] = ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
		}
		switch fe.Tag() {
		case "required", "required_without":
			out[i].Message = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			out[i].Message = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "ph_phone":
			out[i].Message = fmt.Sprintf("%s must be a Philippine mobile number (09XXXXXXXXX)", fe.Field())
		case "min":
			out[i].Message = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "max":
			out[i].Message = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
		case "len":
			out[i].Message = fmt.Sprintf("%s must be exactly %s characters long", fe.Field(), fe.Param())
		case "oneof":
			out[i].Message = fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
		case "uuid":
			out[i].Message = fmt.Sprintf("%s must be a valid id", fe.Field())
		default:
			out[i].Message = fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
		}
	}
	return out
}
