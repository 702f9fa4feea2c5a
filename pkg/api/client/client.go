package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client provides typed access to the ATS API for interactive tools.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:4000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// FieldError is a single validation failure reported by the API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents an error envelope returned by the API.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed (%d): %s", e.Status, e.Message)
}

// Page describes the paging metadata of list responses.
type Page struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Meta       *Page           `json:"meta"`
	Errors     []FieldError    `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) (*Page, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < http.StatusBadRequest {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, APIError{Status: resp.StatusCode, Message: msg, Fields: env.Errors}
	}
	if v != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, v); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
	}
	return env.Meta, nil
}

// User reflects API user payloads.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// TokenPair includes access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Session is returned by register, login and refresh.
type Session struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// RegisterInput is the self sign-up payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Register creates a recruiter or candidate account.
func (c *Client) Register(ctx context.Context, input RegisterInput) (Session, error) {
	var resp Session
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", input, "", &resp); err != nil {
		return Session{}, err
	}
	return resp, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var resp Session
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", body, "", &resp); err != nil {
		return Session{}, err
	}
	return resp, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var user User
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, token, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// CodeSent describes where a one-time code was delivered.
type CodeSent struct {
	Destination string `json:"destination"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ForgotPassword requests a password recovery code.
func (c *Client) ForgotPassword(ctx context.Context, email string) (CodeSent, error) {
	var sent CodeSent
	if _, err := c.do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, "", &sent); err != nil {
		return CodeSent{}, err
	}
	return sent, nil
}

// Company is an employer that owns job postings.
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Size        string    `json:"size,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CompanyInput is the create payload for companies.
type CompanyInput struct {
	Name        string `json:"name"`
	Website     string `json:"website,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"size,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// CreateCompany registers a company.
func (c *Client) CreateCompany(ctx context.Context, token string, input CompanyInput) (Company, error) {
	var company Company
	if _, err := c.do(ctx, http.MethodPost, "/companies", input, token, &company); err != nil {
		return Company{}, err
	}
	return company, nil
}

// Job is a posting candidates apply to.
type Job struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	CompanyName    string    `json:"company_name,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location,omitempty"`
	EmploymentType string    `json:"employment_type"`
	WorkMode       string    `json:"work_mode"`
	SalaryMin      *int64    `json:"salary_min,omitempty"`
	SalaryMax      *int64    `json:"salary_max,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// JobInput is the create payload for jobs.
type JobInput struct {
	CompanyID      string `json:"company_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Location       string `json:"location,omitempty"`
	EmploymentType string `json:"employment_type"`
	WorkMode       string `json:"work_mode"`
	SalaryMin      *int64 `json:"salary_min,omitempty"`
	SalaryMax      *int64 `json:"salary_max,omitempty"`
	Currency       string `json:"currency,omitempty"`
	Status         string `json:"status,omitempty"`
}

// JobFilter narrows ListJobs.
type JobFilter struct {
	Query     string
	Status    string
	CompanyID string
	WorkMode  string
	Limit     int
	Offset    int
}

func (f JobFilter) encode() string {
	q := url.Values{}
	setParam(q, "q", f.Query)
	setParam(q, "status", f.Status)
	setParam(q, "company_id", f.CompanyID)
	setParam(q, "work_mode", f.WorkMode)
	setPaging(q, f.Limit, f.Offset)
	return withQuery(q)
}

// ListJobs returns one page of jobs. Anonymous callers only see open jobs.
func (c *Client) ListJobs(ctx context.Context, token string, filter JobFilter) ([]Job, Page, error) {
	var jobs []Job
	meta, err := c.do(ctx, http.MethodGet, "/jobs"+filter.encode(), nil, token, &jobs)
	if err != nil {
		return nil, Page{}, err
	}
	return jobs, pageOf(meta), nil
}

// GetJob fetches a single job.
func (c *Client) GetJob(ctx context.Context, token, jobID string) (Job, error) {
	var job Job
	if _, err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, token, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// CreateJob publishes or drafts a job.
func (c *Client) CreateJob(ctx context.Context, token string, input JobInput) (Job, error) {
	var job Job
	if _, err := c.do(ctx, http.MethodPost, "/jobs", input, token, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Candidate is a person in the hiring pipeline. Phone numbers arrive masked.
type Candidate struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	Location        string    `json:"location,omitempty"`
	Headline        string    `json:"headline,omitempty"`
	Skills          []string  `json:"skills"`
	YearsExperience int       `json:"years_experience"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListCandidates returns candidates matching the optional search term.
func (c *Client) ListCandidates(ctx context.Context, token, query string, limit, offset int) ([]Candidate, Page, error) {
	q := url.Values{}
	setParam(q, "q", query)
	setPaging(q, limit, offset)
	var candidates []Candidate
	meta, err := c.do(ctx, http.MethodGet, "/candidates"+withQuery(q), nil, token, &candidates)
	if err != nil {
		return nil, Page{}, err
	}
	return candidates, pageOf(meta), nil
}

// Application links a candidate to a job.
type Application struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	JobTitle      string    `json:"job_title,omitempty"`
	CandidateID   string    `json:"candidate_id"`
	CandidateName string    `json:"candidate_name,omitempty"`
	Status        string    `json:"status"`
	CoverLetter   string    `json:"cover_letter,omitempty"`
	Source        string    `json:"source,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Apply submits the authenticated candidate's profile to a job.
func (c *Client) Apply(ctx context.Context, token, jobID, coverLetter string) (Application, error) {
	var body any
	if strings.TrimSpace(coverLetter) != "" {
		body = map[string]string{"cover_letter": coverLetter}
	}
	var app Application
	if _, err := c.do(ctx, http.MethodPost, "/jobs/"+url.PathEscape(jobID)+"/apply", body, token, &app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// UpdateApplicationStatus moves an application through the pipeline.
func (c *Client) UpdateApplicationStatus(ctx context.Context, token, applicationID, status, note string) (Application, error) {
	body := map[string]string{"status": status}
	if note != "" {
		body["note"] = note
	}
	var app Application
	path := "/applications/" + url.PathEscape(applicationID) + "/status"
	if _, err := c.do(ctx, http.MethodPatch, path, body, token, &app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Summary holds the admin dashboard totals.
type Summary struct {
	UsersByRole          map[string]int `json:"users_by_role"`
	Companies            int            `json:"companies"`
	JobsByStatus         map[string]int `json:"jobs_by_status"`
	Candidates           int            `json:"candidates"`
	ApplicationsByStatus map[string]int `json:"applications_by_status"`
}

// DashboardSummary returns entity totals. Admin only.
func (c *Client) DashboardSummary(ctx context.Context, token string) (Summary, error) {
	var summary Summary
	if _, err := c.do(ctx, http.MethodGet, "/admin/dashboard/summary", nil, token, &summary); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func setParam(q url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		q.Set(key, value)
	}
}

func setPaging(q url.Values, limit, offset int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
}

func withQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func pageOf(meta *Page) Page {
	if meta == nil {
		return Page{}
	}
	return *meta
}
