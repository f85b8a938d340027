package resilience

import (
	"errors"
	"reflect"
)

// ValidateInput fails with a VALIDATION AppError when data is nil or the
// zero value of a scalar type. Structs (or pointers to structs) are never
// falsy, even when empty; their `validate` tags decide instead; for other values a non-empty schema is
// applied as a validator tag expression such as "email" or "min=3".
func (e *Engine) ValidateInput(data any, schema string, ec ErrorContext) error {
	if isFalsy(data) {
		return e.CreateError(&ValidationError{Field: "data", Message: "required"}, ec)
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if err := e.validate.Struct(data); err != nil {
			return e.CreateError(err, ec)
		}
		return nil
	}

	if schema != "" {
		if err := e.validate.Var(data, schema); err != nil {
			return e.CreateError(err, ec)
		}
	}
	return nil
}

func isFalsy(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		return false
	}
	return v.IsZero()
}

// HandleFormError turns any failure into a message safe to show next to a
// form. Only validation failures keep their message; everything else gets a
// generic text so internal classification never reaches the form.
func (e *Engine) HandleFormError(err error, fieldName string) string {
	ec := ErrorContext{Component: "form", Action: "submit"}
	if fieldName != "" {
		ec.Metadata = map[string]any{"field": fieldName}
	}

	var app *AppError
	if !errors.As(err, &app) {
		app = e.CreateError(err, ec)
	}
	if app.Kind == KindValidation {
		return app.Message
	}
	return FormErrorMessage
}
