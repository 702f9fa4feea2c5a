// Package validation turns decoded request payloads into normalized field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/alemt19/ats-sub001/internal/schema"
)

// Validator wraps go-playground/validator with the rules shared by every schema.
type Validator struct {
	validate  *validator.Validate
	otpLength int
}

// Option customises a Validator.
type Option func(*Validator)

// WithOTPLength sets the number of digits the "otp" rule expects.
func WithOTPLength(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.otpLength = n
		}
	}
}

// New constructs a Validator that reports fields by their json names.
func New(opts ...Option) *Validator {
	v := &Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		otpLength: 6,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.validate.RegisterTagNameFunc(jsonFieldName)
	_ = v.validate.RegisterValidation("password", validPassword)
	_ = v.validate.RegisterValidation("otp", v.validOTP)
	_ = v.validate.RegisterValidation("notblank", notBlank)
	v.validate.RegisterStructValidation(salaryRange, schema.JobInput{})
	return v
}

// Validate checks v against its struct tags. It returns *Errors or nil.
func (v *Validator) Validate(target any) error {
	err := v.validate.Struct(target)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("validation: %w", err)
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Errors{}
	for _, fe := range fieldErrs {
		out.Add(fieldPath(fe), fe.Tag(), v.message(fe))
	}
	return out
}

func jsonFieldName(fld reflect.StructField) string {
	tag := fld.Tag.Get("json")
	if tag == "" {
		tag = fld.Tag.Get("query")
	}
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// fieldPath drops the root struct name and embedded struct names from the
// namespace; tagged fields are always lower case so Go names stand out.
func fieldPath(fe validator.FieldError) string {
	segments := strings.Split(fe.Namespace(), ".")
	if len(segments) <= 1 {
		return fe.Field()
	}
	kept := make([]string, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		if seg != "" && unicode.IsUpper(rune(seg[0])) {
			continue
		}
		kept = append(kept, seg)
	}
	if len(kept) == 0 {
		return fe.Field()
	}
	return strings.Join(kept, ".")
}

func validPassword(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) < 8 || len(value) > 72 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func (v *Validator) validOTP(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != v.otpLength {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// salaryRange requires a currency once a salary is given and keeps the range ordered.
func salaryRange(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(schema.JobInput)
	if !ok {
		return
	}
	if in.SalaryMax != nil && in.SalaryMin != nil && *in.SalaryMax < *in.SalaryMin {
		sl.ReportError(in.SalaryMax, "salary_max", "SalaryMax", "gtefield", "SalaryMin")
	}
	if (in.SalaryMin != nil || in.SalaryMax != nil) && strings.TrimSpace(in.Currency) == "" {
		sl.ReportError(in.Currency, "currency", "Currency", "required", "")
	}
}
