package domain

import "time"

// Job statuses.
const (
	JobStatusDraft  = "draft"
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Job is a position published by a company.
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
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Open reports whether the job accepts applications.
func (j Job) Open() bool {
	return j.Status == JobStatusOpen
}

// JobFilter narrows job listings. Empty fields are ignored.
type JobFilter struct {
	Status    string
	CompanyID string
	WorkMode  string
	Query     string
	Limit     int
	Offset    int
}
