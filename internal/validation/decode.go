package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Decode reads exactly one JSON value from body into dst and normalizes every
// decoding failure into *Errors.
func Decode(body io.Reader, dst any) error {
	if body == nil {
		return &Errors{Message: "Request body is required", Fields: []FieldError{{Field: "body", Rule: "required", Message: "is required"}}}
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return decodeError(err)
		}
		return &Errors{Message: "Malformed JSON body", Fields: []FieldError{{Field: "body", Rule: "json", Message: "must contain a single JSON value"}}}
	}
	return nil
}

// Bind decodes body into dst and validates it.
func (v *Validator) Bind(body io.Reader, dst any) error {
	if err := Decode(body, dst); err != nil {
		return err
	}
	return v.Validate(dst)
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return &Errors{Message: "Request body is required", Fields: []FieldError{{Field: "body", Rule: "required", Message: "is required"}}}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &Errors{Message: "Malformed JSON body", Fields: []FieldError{{Field: "body", Rule: "json", Message: "ends unexpectedly"}}}
	case errors.As(err, &syntaxErr):
		return &Errors{Message: "Malformed JSON body", Fields: []FieldError{{Field: "body", Rule: "json", Message: fmt.Sprintf("is malformed at position %d", syntaxErr.Offset)}}}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &Errors{Fields: []FieldError{{Field: field, Rule: "type", Message: "must be " + describeType(typeErr.Type)}}}
	case errors.As(err, &maxErr):
		return &Errors{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large", Fields: []FieldError{{Field: "body", Rule: "max_bytes", Message: fmt.Sprintf("must not exceed %d bytes", maxErr.Limit)}}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		name := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return &Errors{Fields: []FieldError{{Field: name, Rule: "unknown", Message: "is not allowed"}}}
	default:
		return &Errors{Message: "Malformed JSON body", Fields: []FieldError{{Field: "body", Rule: "json", Message: err.Error()}}}
	}
}

func describeType(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch {
	case t.Kind() == reflect.String:
		return "a string"
	case t.Kind() == reflect.Bool:
		return "a boolean"
	case isNumber(t.Kind()):
		if strings.HasPrefix(t.Kind().String(), "float") {
			return "a number"
		}
		return "an integer"
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		return "an array"
	case t.Kind() == reflect.Struct || t.Kind() == reflect.Map:
		return "an object"
	default:
		return "a valid " + t.String()
	}
}

// BindQuery copies query parameters into the `query`-tagged fields of dst
// (string, bool, signed integers and string slices, embedded structs included)
// and validates the result.
func (v *Validator) BindQuery(values url.Values, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("validation: BindQuery needs a struct pointer, got %T", dst)
	}
	errs := &Errors{}
	bindQueryStruct(rv.Elem(), values, errs)
	if err := errs.OrNil(); err != nil {
		return err
	}
	return v.Validate(dst)
}

func bindQueryStruct(rv reflect.Value, values url.Values, errs *Errors) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		target := rv.Field(i)
		if field.Anonymous && target.Kind() == reflect.Struct {
			bindQueryStruct(target, values, errs)
			continue
		}
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" || !target.CanSet() {
			continue
		}
		raw, ok := values[name]
		if !ok || len(raw) == 0 {
			continue
		}
		value := strings.TrimSpace(raw[0])
		switch target.Kind() {
		case reflect.String:
			target.SetString(value)
		case reflect.Bool:
			parsed, err := strconv.ParseBool(value)
			if err != nil {
				errs.Add(name, "type", "must be a boolean")
				continue
			}
			target.SetBool(parsed)
		case reflect.Int, reflect.Int32, reflect.Int64:
			if value == "" {
				continue
			}
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				errs.Add(name, "type", "must be an integer")
				continue
			}
			target.SetInt(parsed)
		case reflect.Slice:
			if target.Type().Elem().Kind() != reflect.String {
				continue
			}
			items := make([]string, 0, len(raw))
			for _, entry := range raw {
				for _, part := range strings.Split(entry, ",") {
					if trimmed := strings.TrimSpace(part); trimmed != "" {
						items = append(items, trimmed)
					}
				}
			}
			target.Set(reflect.ValueOf(items))
		}
	}
}
