package job

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/validation"
)

// Service manages job postings.
type Service struct {
	jobs   repository.JobRepository
	logger *slog.Logger
}

// New returns a job service.
func New(jobs repository.JobRepository, logger *slog.Logger) Service {
	return Service{jobs: jobs, logger: logger}
}

func errUnknownCompany() error {
	return validation.Field("company_id", "exists", "does not reference an existing company")
}

// Create stores a new job. Jobs start as drafts unless a status is given.
func (s Service) Create(ctx context.Context, actorID string, in schema.JobInput) (*domain.Job, error) {
	now := time.Now().UTC()
	job := apply(&domain.Job{ID: uuid.NewString(), CreatedBy: actorID, CreatedAt: now, UpdatedAt: now}, in)
	if job.Status == "" {
		job.Status = domain.JobStatusDraft
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		if errors.Is(err, repository.ErrInvalidArgument) {
			return nil, errUnknownCompany()
		}
		return nil, err
	}
	s.logger.Info("job created", "job_id", job.ID, "company_id", job.CompanyID, "status", job.Status)
	return job, nil
}

// Get returns a job. Viewers who are not staff only see open jobs.
func (s Service) Get(ctx context.Context, viewer *domain.User, id string) (*domain.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isStaff(viewer) && !job.Open() {
		return nil, repository.ErrNotFound
	}
	return job, nil
}

// Update replaces a job's fields. An empty status keeps the current one.
func (s Service) Update(ctx context.Context, id string, in schema.JobInput) (*domain.Job, error) {
	current, err := s.jobs.GetJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	job := apply(&domain.Job{ID: id}, in)
	if job.Status == "" {
		job.Status = current.Status
	}
	if err := s.jobs.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, repository.ErrInvalidArgument) {
			return nil, errUnknownCompany()
		}
		return nil, err
	}
	return job, nil
}

// UpdateStatus opens, closes or drafts a job.
func (s Service) UpdateStatus(ctx context.Context, id, status string) (*domain.Job, error) {
	job, err := s.jobs.UpdateJobStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("job status changed", "job_id", id, "status", status)
	return job, nil
}

// Delete removes a job together with its applications.
func (s Service) Delete(ctx context.Context, id string) error {
	if err := s.jobs.DeleteJob(ctx, id); err != nil {
		return err
	}
	s.logger.Info("job deleted", "job_id", id)
	return nil
}

// List pages through jobs. Viewers who are not staff only see open jobs.
func (s Service) List(ctx context.Context, viewer *domain.User, filter domain.JobFilter) ([]domain.Job, int, error) {
	if !isStaff(viewer) {
		if filter.Status != "" && filter.Status != domain.JobStatusOpen {
			return []domain.Job{}, 0, nil
		}
		filter.Status = domain.JobStatusOpen
	}
	return s.jobs.ListJobs(ctx, filter)
}

func isStaff(u *domain.User) bool {
	return u != nil && u.IsStaff()
}

func apply(j *domain.Job, in schema.JobInput) *domain.Job {
	j.CompanyID = in.CompanyID
	j.Title = strings.TrimSpace(in.Title)
	j.Description = strings.TrimSpace(in.Description)
	j.Location = strings.TrimSpace(in.Location)
	j.EmploymentType = in.EmploymentType
	j.WorkMode = in.WorkMode
	j.SalaryMin = in.SalaryMin
	j.SalaryMax = in.SalaryMax
	j.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	j.Status = in.Status
	return j
}
