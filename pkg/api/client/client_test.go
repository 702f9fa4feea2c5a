package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cli, err := New(srv.URL)
	require.NoError(t, err)
	return cli
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	body["statusCode"] = status
	body["success"] = status < http.StatusBadRequest
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewNormalisesBaseURL(t *testing.T) {
	cli, err := New("api.example.test:4000/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.test:4000", cli.baseURL)

	cli, err = New("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", cli.baseURL)
}

func TestLoginUnwrapsEnvelope(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@example.com", body["email"])

		writeEnvelope(w, http.StatusOK, map[string]any{
			"message": "Login successful",
			"data": map[string]any{
				"user":   map[string]any{"id": "u-1", "email": "ana@example.com", "role": "recruiter"},
				"tokens": map[string]any{"access_token": "acc", "refresh_token": "ref", "token_type": "Bearer", "expires_in": 900},
			},
		})
	})

	session, err := cli.Login(context.Background(), "ana@example.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, "u-1", session.User.ID)
	assert.Equal(t, "recruiter", session.User.Role)
	assert.Equal(t, "acc", session.Tokens.AccessToken)
	assert.EqualValues(t, 900, session.Tokens.ExpiresIn)
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"message": "Validation failed",
			"errors":  []map[string]string{{"field": "title", "message": "title is required"}},
		})
	})

	_, err := cli.CreateJob(context.Background(), "tok", JobInput{CompanyID: "c-1"})
	var apiErr APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Validation failed", apiErr.Message)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "title", apiErr.Fields[0].Field)
	assert.Contains(t, apiErr.Error(), "(400)")
}

func TestNonJSONErrorKeepsBody(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	})

	_, err := cli.Me(context.Background(), "tok")
	var apiErr APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestListJobsSendsFiltersAndReadsMeta(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs", r.URL.Path)
		assert.Equal(t, "remote", r.URL.Query().Get("work_mode"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("offset"))
		assert.Empty(t, r.Header.Get("Authorization"))

		writeEnvelope(w, http.StatusOK, map[string]any{
			"message": "Jobs retrieved",
			"data":    []map[string]any{{"id": "j-1", "title": "Backend Engineer", "status": "open"}},
			"meta":    map[string]int{"total": 7, "limit": 5, "offset": 0},
		})
	})

	jobs, page, err := cli.ListJobs(context.Background(), "", JobFilter{WorkMode: "remote", Limit: 5})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Backend Engineer", jobs[0].Title)
	assert.Equal(t, Page{Total: 7, Limit: 5}, page)
}

func TestApplyOmitsEmptyBody(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/j-1/apply", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		writeEnvelope(w, http.StatusCreated, map[string]any{
			"message": "Application submitted",
			"data":    map[string]any{"id": "a-1", "job_id": "j-1", "status": "applied"},
		})
	})

	app, err := cli.Apply(context.Background(), "tok", "j-1", "")
	require.NoError(t, err)
	assert.Equal(t, "applied", app.Status)
}

func TestUpdateApplicationStatus(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/applications/a-1/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"status": "interview", "note": "strong"}, body)
		writeEnvelope(w, http.StatusOK, map[string]any{
			"message": "Application status updated",
			"data":    map[string]any{"id": "a-1", "status": "interview"},
		})
	})

	app, err := cli.UpdateApplicationStatus(context.Background(), "tok", "a-1", "interview", "strong")
	require.NoError(t, err)
	assert.Equal(t, "interview", app.Status)
}

func TestDashboardSummary(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/dashboard/summary", r.URL.Path)
		writeEnvelope(w, http.StatusOK, map[string]any{
			"message": "Dashboard summary retrieved",
			"data": map[string]any{
				"users_by_role":          map[string]int{"admin": 1, "recruiter": 2, "candidate": 3},
				"companies":              4,
				"jobs_by_status":         map[string]int{"open": 2},
				"candidates":             3,
				"applications_by_status": map[string]int{"applied": 5},
			},
		})
	})

	summary, err := cli.DashboardSummary(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Companies)
	assert.Equal(t, 3, summary.UsersByRole["candidate"])
	assert.Equal(t, 5, summary.ApplicationsByStatus["applied"])
}
