package domain

import "time"

// Company is an employer that publishes jobs.
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Size        string    `json:"size,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompanyFilter narrows company listings.
type CompanyFilter struct {
	Query  string
	Limit  int
	Offset int
}
