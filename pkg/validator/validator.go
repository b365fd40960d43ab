package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"param,omitempty"`
}

// Message renders the violation the way it is shown to API clients.
func (e *ErrorResponse) Message() string {
	switch e.Tag {
	case "required", "uuid_required":
		return fmt.Sprintf("'%s' is required", e.FailedField)
	case "min", "gte":
		return fmt.Sprintf("'%s' must be at least %s", e.FailedField, e.Value)
	case "max", "lte":
		return fmt.Sprintf("'%s' must be at most %s", e.FailedField, e.Value)
	case "gt":
		return fmt.Sprintf("'%s' must be greater than %s", e.FailedField, e.Value)
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", e.FailedField, e.Value)
	case "email":
		return fmt.Sprintf("'%s' must be a valid email address", e.FailedField)
	case "hexcolor":
		return fmt.Sprintf("'%s' must be a hex color", e.FailedField)
	default:
		return fmt.Sprintf("'%s' failed on '%s'", e.FailedField, e.Tag)
	}
}

var validate = validator.New()

func init() {
	// Report JSON names so messages match the request payload.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	// Money fields validate as plain numbers (gte=0 and friends).
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "body", Tag: "invalid"}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = fieldPath(err.Namespace())
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Summary joins all violation messages into one line.
func Summary(errs []*ErrorResponse) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message())
	}
	return "Validation failed: " + strings.Join(msgs, "; ")
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
