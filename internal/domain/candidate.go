package domain

import "time"

// Candidate is a person tracked through the hiring pipeline.
type Candidate struct {
	ID              string    `json:"id"`
	UserID          *string   `json:"user_id,omitempty"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone,omitempty"`
	PhoneCipher     []byte    `json:"-"`
	Location        string    `json:"location,omitempty"`
	Headline        string    `json:"headline,omitempty"`
	ResumeURL       string    `json:"resume_url,omitempty"`
	Skills          []string  `json:"skills"`
	YearsExperience int       `json:"years_experience"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (c Candidate) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// CandidateFilter narrows candidate listings.
type CandidateFilter struct {
	Query  string
	Skill  string
	Limit  int
	Offset int
}
