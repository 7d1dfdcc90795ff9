// internal/pkg/validation/validation.go
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Configure gin's validator once for every binding in the process: field
// names follow the JSON payload and decimals compare as numbers.
func init() {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	engine.RegisterTagNameFunc(jsonName)
	engine.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Struct validates obj against its binding tags
func Struct(obj interface{}) error {
	return binding.Validator.ValidateStruct(obj)
}

// Fields converts tag validation failures into field details. It reports
// false for any other error, such as malformed JSON.
func Fields(err error) ([]FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return fields, true
}

// Message flattens err into "field message; field message"
func Message(err error) string {
	fields, ok := Fields(err)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// fieldPath drops the root struct name, e.g. "SaveRequest.data.contact.email"
// becomes "data.contact.email"
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "hexcolor":
		return "must be a hex colour"
	case "latitude", "longitude":
		return "must be a valid " + fe.Tag()
	case "unique":
		return "must not contain duplicate " + fe.Param() + " values"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
