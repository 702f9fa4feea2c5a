package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func (v *Validator) message(fe validator.FieldError) string {
	param := fe.Param()
	switch fe.Tag() {
	case "required", "required_with", "required_without", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "e164":
		return "must be a phone number in E.164 format, e.g. +15551234567"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "len":
		return fmt.Sprintf("must be exactly %s %s", param, unitFor(fe.Kind(), param))
	case "min", "gte":
		if isNumber(fe.Kind()) {
			return "must be greater than or equal to " + param
		}
		return fmt.Sprintf("must contain at least %s %s", param, unitFor(fe.Kind(), param))
	case "max", "lte":
		if isNumber(fe.Kind()) {
			return "must be less than or equal to " + param
		}
		return fmt.Sprintf("must contain at most %s %s", param, unitFor(fe.Kind(), param))
	case "gt":
		return "must be greater than " + param
	case "lt":
		return "must be less than " + param
	case "gtefield":
		return "must be greater than or equal to " + jsonName(param)
	case "ltefield":
		return "must be less than or equal to " + jsonName(param)
	case "eqfield":
		return "must match " + jsonName(param)
	case "nefield":
		return "must differ from " + jsonName(param)
	case "datetime":
		return "must be a date formatted as " + layoutHint(param)
	case "numeric":
		return "must contain only digits"
	case "unique":
		return "must not contain duplicates"
	case "password":
		return "must be 8-72 characters and include upper case, lower case and a digit"
	case "otp":
		return fmt.Sprintf("must be a %d digit code", v.otpLength)
	default:
		return "is invalid"
	}
}

func isNumber(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func unitFor(kind reflect.Kind, param string) string {
	unit := "character"
	if kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map {
		unit = "item"
	}
	if param != "1" {
		unit += "s"
	}
	return unit
}

// jsonName converts a Go field name such as SalaryMin into salary_min.
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func layoutHint(layout string) string {
	if layout == "2006-01-02" {
		return "YYYY-MM-DD"
	}
	return layout
}
