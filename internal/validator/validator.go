// Package validator provides custom validation functions for Gin's binding
// engine and translates binding failures into field-level messages.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgetapp/internal/models"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("payment_status", validatePaymentStatus)
		_ = v.RegisterValidation("payment_frequency", validatePaymentFrequency)
	}
}

// jsonFieldName reports fields by their JSON key so errors match the request body.
func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	return models.PaymentStatus(fl.Field().String()).IsValid()
}

func validatePaymentFrequency(fl validator.FieldLevel) bool {
	return models.PaymentFrequency(fl.Field().String()).IsValid()
}

// FieldErrors converts a binding error into messages keyed by field name.
// It returns nil when err carries no field information.
func FieldErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], message(fe))
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string][]string{typeErr.Field: {typeMessage(typeErr.Type)}}
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "uuid":
		return "Must be a valid UUID."
	case "payment_status", "payment_frequency":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	}
	return "Invalid value."
}

func typeMessage(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float32, reflect.Float64:
		return "A valid number is required."
	case reflect.String:
		return "Not a valid string."
	}
	return "Invalid value."
}
