package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"trackpoint/backend/apperrors"
	"trackpoint/backend/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RequireIDs checks every named identifier and reports all malformed ones
// at once. Names are kept in argument order: name1, id1, name2, id2, ...
func RequireIDs(pairs ...string) error {
	var messages []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if !models.IsValidID(pairs[i+1]) {
			messages = append(messages, fmt.Sprintf("a valid %s must be set as a url parameter", pairs[i]))
		}
	}
	if len(messages) > 0 {
		return apperrors.Validation(messages...)
	}
	return nil
}

// ValidateStruct runs the validate tags on s and converts failures into a
// ValidationError listing each offending field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation(err.Error())
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describeFieldError(fe))
	}
	return apperrors.Validation(messages...)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
