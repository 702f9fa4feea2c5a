package domain

import "time"

// Roles recognised by the API.
const (
	RoleAdmin     = "admin"
	RoleRecruiter = "recruiter"
	RoleCandidate = "candidate"
)

// User represents a platform account.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    []byte     `json:"-"`
	Role            string     `json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Verified reports whether the user confirmed their email address.
func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// IsStaff reports whether the user manages hiring data.
func (u User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleRecruiter
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   string
	Query  string
	Limit  int
	Offset int
}
