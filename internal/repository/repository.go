package repository

import (
	"context"
	"time"

	"github.com/alemt19/ats-sub001/internal/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdateUserPassword(ctx context.Context, id string, hash []byte) error
	MarkEmailVerified(ctx context.Context, id string, at time.Time) error
	UpdateUserRole(ctx context.Context, id, role string) (*domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error)
}

// CompanyRepository persists employers.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, company *domain.Company) error
	GetCompanyByID(ctx context.Context, id string) (*domain.Company, error)
	UpdateCompany(ctx context.Context, company *domain.Company) error
	DeleteCompany(ctx context.Context, id string) error
	ListCompanies(ctx context.Context, filter domain.CompanyFilter) ([]domain.Company, int, error)
}

// JobRepository persists job postings.
type JobRepository interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJobByID(ctx context.Context, id string) (*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	UpdateJobStatus(ctx context.Context, id, status string) (*domain.Job, error)
	DeleteJob(ctx context.Context, id string) error
	ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int, error)
}

// CandidateRepository persists candidate profiles. Phone numbers travel as
// ciphertext in Candidate.PhoneCipher; the plain Phone field is never stored.
type CandidateRepository interface {
	CreateCandidate(ctx context.Context, candidate *domain.Candidate) error
	GetCandidateByID(ctx context.Context, id string) (*domain.Candidate, error)
	GetCandidateByUserID(ctx context.Context, userID string) (*domain.Candidate, error)
	UpdateCandidate(ctx context.Context, candidate *domain.Candidate) error
	DeleteCandidate(ctx context.Context, id string) error
	ListCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int, error)
}

// ApplicationRepository persists applications and their status history.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, application *domain.Application, event *domain.ApplicationEvent) error
	GetApplicationByID(ctx context.Context, id string) (*domain.Application, error)
	// UpdateApplicationStatus moves the application from event.FromStatus to
	// event.ToStatus. It returns ErrConflict when the stored status no longer
	// equals event.FromStatus.
	UpdateApplicationStatus(ctx context.Context, event *domain.ApplicationEvent) (*domain.Application, error)
	DeleteApplication(ctx context.Context, id string) error
	ListApplications(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, int, error)
	ListApplicationEvents(ctx context.Context, applicationID string) ([]domain.ApplicationEvent, error)
	ListRecentApplicationEvents(ctx context.Context, limit int) ([]domain.ApplicationEvent, error)
}

// DashboardRepository answers the aggregate queries behind the admin dashboard.
type DashboardRepository interface {
	DashboardSummary(ctx context.Context) (domain.DashboardSummary, error)
	// CountApplicationsByBucket returns non-empty buckets in [from, to) ordered by start.
	CountApplicationsByBucket(ctx context.Context, from, to time.Time, interval string) ([]domain.BucketCount, error)
}

// Pinger reports store reachability for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}
