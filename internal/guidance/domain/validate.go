package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("borrower_type", func(fl validator.FieldLevel) bool {
		return contains(BorrowerTypes, strings.ToLower(strings.TrimSpace(fl.Field().String())))
	})

	_ = v.RegisterValidation("sector_data", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.Map {
			return false
		}
		for _, key := range field.MapKeys() {
			if key.Kind() == reflect.String && contains(SectorKeys, key.String()) {
				return true
			}
		}
		return false
	})

	return v
}

// Validate checks every constraint on req and returns a *ValidationError
// listing all offending fields, or nil.
func Validate(req *LoanApplicationRequest) error {
	if req == nil {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "is required"}}}
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: err.Error()}}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
		})
	}
	return &ValidationError{Fields: fields}
}

// DecodeRequest parses a request body. When some fields carry the wrong JSON
// type the remaining fields are still validated, so the returned
// *ValidationError lists every offending field at once.
func DecodeRequest(body []byte) (*LoanApplicationRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, FromDecodeError(io.EOF)
	}

	var req LoanApplicationRequest
	err := json.Unmarshal(body, &req)
	if err == nil {
		return &req, nil
	}

	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil, FromDecodeError(err)
	}

	fields := typeErrors(body)
	if !hasField(fields, typeErr.Field) {
		fields = append(FromDecodeError(err).Fields, fields...)
	}

	var verr *ValidationError
	if errors.As(Validate(&req), &verr) {
		for _, fe := range verr.Fields {
			if !coveredBy(fields, fe.Field) {
				fields = append(fields, fe)
			}
		}
	}
	return nil, &ValidationError{Fields: fields}
}

// typeErrors decodes each top-level field on its own and reports every one
// whose JSON type does not fit. encoding/json stops at the first mismatch.
func typeErrors(body []byte) []FieldError {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	var fields []FieldError
	t := reflect.TypeOf(LoanApplicationRequest{})
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		value, ok := raw[name]
		if !ok {
			continue
		}

		err := json.Unmarshal(value, reflect.New(sf.Type).Interface())
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			continue
		}
		field := name
		if typeErr.Field != "" {
			field = name + "." + typeErr.Field
		}
		fields = append(fields, FieldError{
			Field:   field,
			Message: fmt.Sprintf("must be %s, got %s", kindName(typeErr.Type), typeErr.Value),
		})
	}
	return fields
}

func hasField(fields []FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

// coveredBy reports whether field is, or sits under, an already reported one.
func coveredBy(fields []FieldError, field string) bool {
	for _, f := range fields {
		if field == f.Field || strings.HasPrefix(field, f.Field+".") || strings.HasPrefix(field, f.Field+"[") {
			return true
		}
	}
	return false
}

// FromDecodeError turns a JSON decoding failure into a ValidationError
// naming the offending field where the decoder knows it.
func FromDecodeError(err error) *ValidationError {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &ValidationError{Fields: []FieldError{{
			Field:   field,
			Message: fmt.Sprintf("must be %s, got %s", kindName(typeErr.Type), typeErr.Value),
		}}}
	case errors.As(err, &syntaxErr):
		return &ValidationError{Fields: []FieldError{{
			Field:   "body",
			Message: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset),
		}}}
	case errors.Is(err, io.EOF):
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "is required"}}}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: "malformed JSON: unexpected end of input"}}}
	default:
		return &ValidationError{Fields: []FieldError{{Field: "body", Message: err.Error()}}}
	}
}

func fieldPath(namespace string) string {
	// Namespace is "LoanApplicationRequest.payment_history[0].due_date".
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "borrower_type":
		return "must be one of " + strings.Join(BorrowerTypes, ", ")
	case "sector_data":
		return "must contain one of " + strings.Join(SectorKeys, ", ")
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Bool:
		return "a boolean"
	case reflect.Ptr:
		return kindName(t.Elem())
	default:
		return "a " + t.Kind().String()
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
