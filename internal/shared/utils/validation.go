package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rolegate/rolegate/internal/shared/errors"
)

var validate *validator.Validate

var snowflakePattern = regexp.MustCompile(`^[0-9]{1,20}$`)

func init() {
	validate = validator.New()
	RegisterValidations(validate)
}

// RegisterValidations installs the JSON tag name func and the custom rules
// used by request structs: currency, duration and snowflake.
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "USDT", "CNY":
			return true
		}
		return false
	})
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		months := fl.Field().Int()
		return months == -1 || (months >= 1 && months <= 1200)
	})
	_ = v.RegisterValidation("snowflake", func(fl validator.FieldLevel) bool {
		return snowflakePattern.MatchString(fl.Field().String())
	})
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	return ValidationError(err)
}

// ValidationError converts validator failures into an AppError. Other errors
// (malformed JSON) become a plain validation error.
func ValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return errors.NewValidationError("invalid request", err.Error())
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError(
		"Validation failed",
		strings.Join(errorMessages, "; "),
	)
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "numeric":
		return fmt.Sprintf("%s must be a valid number", field)
	case "currency":
		return fmt.Sprintf("%s must be USDT or CNY", field)
	case "duration":
		return fmt.Sprintf("%s must be -1 (forever) or a positive number of months", field)
	case "snowflake":
		return fmt.Sprintf("%s must be a numeric Discord id", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, fe.Tag())
	}
}
