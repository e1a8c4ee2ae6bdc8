package web

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/tahfidz-import/internal/core"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("mappingkey", func(fl validator.FieldLevel) bool {
		_, _, ok := core.SplitMappingKey(fl.Field().String())
		return ok
	})
	return v
}

// validateStruct runs struct tags on v and converts failures to bad requests.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("%v", err)
	}

	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = formatValidationError(fe)
	}
	return badRequest("%s", strings.Join(msgs, "; "))
}

// formatValidationError creates a human-readable validation error message.
func formatValidationError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must have at least " + e.Param() + " item(s)"
	case "max":
		return field + " must be at most " + e.Param() + " characters"
	case "mappingkey":
		return field + " must look like <entity>_<field>"
	default:
		return field + " validation failed: " + e.Tag()
	}
}
