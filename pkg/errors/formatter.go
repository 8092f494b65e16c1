package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messageByTag = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"oneof":    "Value is not one of the allowed options",
	"min":      "Value is too short or too small",
	"max":      "Value is too long or too large",
	"len":      "Value must be exact length",
	"uuid":     "Value must be a UUID",
	"uuid4":    "Value must be a UUID",
}

func msgForTag(fieldError validator.FieldError) string {
	param := fieldError.Param()

	switch fieldError.Tag() {
	case "min":
		if param != "" {
			return fmt.Sprintf("Must be at least %s characters", param)
		}
	case "max":
		if param != "" {
			return fmt.Sprintf("Must not exceed %s characters", param)
		}
	case "len":
		if param != "" {
			return fmt.Sprintf("Must be exactly %s characters", param)
		}
	case "oneof":
		if param != "" {
			return fmt.Sprintf("Must be one of: %s", strings.Join(strings.Fields(param), ", "))
		}
	}

	if msg, ok := messageByTag[fieldError.Tag()]; ok {
		return msg
	}
	return "Invalid value"
}

func getJSONFieldName(structType reflect.Type, fieldName string) string {
	if structType == nil {
		return fieldName
	}

	field, found := structType.FieldByName(fieldName)
	if !found {
		return fieldName
	}

	name := strings.Split(field.Tag.Get("json"), ",")[0]
	if name == "" || name == "-" {
		return fieldName
	}
	return name
}

// FormatValidationErrors turns gin binding errors into per-field messages keyed by JSON name.
func FormatValidationErrors(err error, model any) []ValidationErrorResponse {
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorResponse{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Invalid type for field %s. Expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
		}}
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	var structType reflect.Type
	if model != nil {
		structType = reflect.TypeOf(model)
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
	}

	out := make([]ValidationErrorResponse, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		out = append(out, ValidationErrorResponse{
			Field:   getJSONFieldName(structType, fieldError.StructField()),
			Message: msgForTag(fieldError),
		})
	}

	return out
}
