package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs the package-wide validator against s, the same
// struct-tag-driven approach the teacher uses for its request DTOs.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidationError is one field failure, shaped for the APIError.Details map.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// FormatValidationErrors converts a validator.ValidationErrors into the
// structured shape the edge renders inside APIError.Details.
func FormatValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out = append(out, &ValidationError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: validationMessage(fe),
			})
		}
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must have at least %s items", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s items", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
