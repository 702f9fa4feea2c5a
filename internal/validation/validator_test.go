package validation

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alemt19/ats-sub001/internal/schema"
)

func fieldsOf(t *testing.T, err error) map[string]FieldError {
	t.Helper()
	var errs *Errors
	require.True(t, errors.As(err, &errs), "expected *Errors, got %T (%v)", err, err)
	out := make(map[string]FieldError, len(errs.Fields))
	for _, f := range errs.Fields {
		out[f.Field] = f
	}
	return out
}

func TestValidateRegisterInputReportsJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(&schema.RegisterInput{Name: "  ", Email: "not-an-email", Password: "short", Role: "admin"})
	fields := fieldsOf(t, err)

	require.Equal(t, "is required", fields["name"].Message)
	require.Equal(t, "must be a valid email address", fields["email"].Message)
	require.Equal(t, "password", fields["password"].Rule)
	require.Equal(t, "must be one of: recruiter, candidate", fields["role"].Message)
}

func TestValidateAcceptsValidInput(t *testing.T) {
	v := New()
	err := v.Validate(&schema.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "Sup3rSecret", Role: "candidate"})
	require.NoError(t, err)
}

func TestValidateOTPUsesConfiguredLength(t *testing.T) {
	v := New(WithOTPLength(4))
	require.NoError(t, v.Validate(&schema.VerifyEmailInput{Email: "a@b.co", Code: "1234"}))

	fields := fieldsOf(t, v.Validate(&schema.VerifyEmailInput{Email: "a@b.co", Code: "12a4"}))
	require.Equal(t, "must be a 4 digit code", fields["code"].Message)
}

func TestValidateJobSalaryRange(t *testing.T) {
	v := New()
	low, high := int64(50000), int64(40000)
	in := schema.JobInput{
		CompanyID:      "0d3c7a39-5a7c-4d0b-9a86-1f0a2b6f4d11",
		Title:          "Backend Engineer",
		Description:    "Build and operate the hiring platform APIs.",
		EmploymentType: "full_time",
		WorkMode:       "remote",
		SalaryMin:      &low,
		SalaryMax:      &high,
	}
	fields := fieldsOf(t, v.Validate(&in))
	require.Equal(t, "must be greater than or equal to salary_min", fields["salary_max"].Message)
	require.Equal(t, "is required", fields["currency"].Message)

	in.SalaryMax = &low
	in.Currency = "EUR"
	require.NoError(t, v.Validate(&in))
}

func TestValidateCandidateSkillsUsesIndexedPaths(t *testing.T) {
	v := New()
	in := schema.CandidateInput{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Phone:     "555-1234",
		Skills:    []string{"go", " "},
	}
	fields := fieldsOf(t, v.Validate(&in))
	require.Contains(t, fields, "skills[1]")
	require.Contains(t, fields["phone"].Message, "E.164")
}

func TestValidateConfirmPasswordMustMatch(t *testing.T) {
	v := New()
	fields := fieldsOf(t, v.Validate(&schema.ResetPasswordInput{ResetToken: "tok", Password: "Sup3rSecret", ConfirmPassword: "Different1"}))
	require.Equal(t, "must match password", fields["confirm_password"].Message)
}

func TestDecodeNormalizesJSONFailures(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		field   string
		rule    string
		message string
	}{
		{"empty", "", "body", "required", "Request body is required"},
		{"syntax", `{"email": }`, "body", "json", "Malformed JSON body"},
		{"truncated", `{"email": "a@b.co"`, "body", "json", "Malformed JSON body"},
		{"type", `{"email": 42}`, "email", "type", "Validation failed"},
		{"unknown", `{"email": "a@b.co", "admin": true}`, "admin", "unknown", "Validation failed"},
		{"trailing", `{"email": "a@b.co"} {}`, "body", "json", "Malformed JSON body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var dst schema.ForgotPasswordInput
			err := Decode(strings.NewReader(tc.body), &dst)
			var errs *Errors
			require.ErrorAs(t, err, &errs)
			require.Equal(t, tc.message, errs.Summary())
			require.Len(t, errs.Fields, 1)
			require.Equal(t, tc.field, errs.Fields[0].Field)
			require.Equal(t, tc.rule, errs.Fields[0].Rule)
		})
	}
}

func TestDecodeTypeErrorDescribesExpectedType(t *testing.T) {
	var dst schema.CandidateInput
	err := Decode(strings.NewReader(`{"years_experience": "ten"}`), &dst)
	fields := fieldsOf(t, err)
	require.Equal(t, "must be an integer", fields["years_experience"].Message)
}

func TestDecodeBodyTooLarge(t *testing.T) {
	rec := httptest.NewRecorder()
	body := http.MaxBytesReader(rec, io.NopCloser(strings.NewReader(`{"email": "`+strings.Repeat("a", 64)+`@b.co"}`)), 16)
	var dst schema.ForgotPasswordInput
	err := Decode(body, &dst)
	var errs *Errors
	require.ErrorAs(t, err, &errs)
	require.Equal(t, http.StatusRequestEntityTooLarge, errs.StatusCode())
}

func TestBindQueryParsesEmbeddedAndReportsTypeErrors(t *testing.T) {
	v := New()
	var q schema.JobListQuery
	err := v.BindQuery(url.Values{"q": {" go "}, "limit": {"20"}, "status": {"open"}}, &q)
	require.NoError(t, err)
	require.Equal(t, "go", q.Query)
	require.Equal(t, 20, q.Limit)
	require.Equal(t, "open", q.Status)

	var bad schema.JobListQuery
	fields := fieldsOf(t, v.BindQuery(url.Values{"limit": {"many"}}, &bad))
	require.Equal(t, "must be an integer", fields["limit"].Message)

	var tooMany schema.JobListQuery
	fields = fieldsOf(t, v.BindQuery(url.Values{"limit": {"500"}, "status": {"archived"}}, &tooMany))
	require.Equal(t, "must be less than or equal to 100", fields["limit"].Message)
	require.Contains(t, fields, "status")
}

func TestErrorsMessageIsReadable(t *testing.T) {
	errs := Field("email", "required", "is required")
	require.Equal(t, "validation failed: email is required", errs.Error())
	require.Nil(t, (&Errors{}).OrNil())
}
