package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs struct-tag validation and returns a flat
// human-readable message, or "" when the value is valid.
func ValidateStruct(value interface{}) string {
	err := validate.Struct(value)
	if err == nil {
		return ""
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, strings.ToLower(fieldErr.Field())+" is required")
		case "email":
			messages = append(messages, strings.ToLower(fieldErr.Field())+" must be a valid email")
		case "min":
			messages = append(messages, strings.ToLower(fieldErr.Field())+" is too short")
		default:
			messages = append(messages, strings.ToLower(fieldErr.Field())+" is invalid")
		}
	}

	return strings.Join(messages, ", ")
}
