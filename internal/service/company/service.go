package company

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/schema"
)

var (
	errNameTaken = apperr.New(apperr.KindConflict, "a company with this name already exists")
	errHasJobs   = apperr.New(apperr.KindConflict, "company still has jobs; delete or move them first")
)

// Service manages employers.
type Service struct {
	companies repository.CompanyRepository
	logger    *slog.Logger
}

// New returns a company service.
func New(companies repository.CompanyRepository, logger *slog.Logger) Service {
	return Service{companies: companies, logger: logger}
}

// Create stores a new company owned by actorID.
func (s Service) Create(ctx context.Context, actorID string, in schema.CompanyInput) (*domain.Company, error) {
	now := time.Now().UTC()
	company := apply(&domain.Company{ID: uuid.NewString(), CreatedBy: actorID, CreatedAt: now, UpdatedAt: now}, in)
	if err := s.companies.CreateCompany(ctx, company); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errNameTaken
		}
		return nil, err
	}
	s.logger.Info("company created", "company_id", company.ID, "actor", actorID)
	return company, nil
}

// Get returns a company.
func (s Service) Get(ctx context.Context, id string) (*domain.Company, error) {
	return s.companies.GetCompanyByID(ctx, id)
}

// Update replaces a company's fields.
func (s Service) Update(ctx context.Context, id string, in schema.CompanyInput) (*domain.Company, error) {
	company := apply(&domain.Company{ID: id}, in)
	if err := s.companies.UpdateCompany(ctx, company); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errNameTaken
		}
		return nil, err
	}
	return company, nil
}

// Delete removes a company without jobs.
func (s Service) Delete(ctx context.Context, id string) error {
	if err := s.companies.DeleteCompany(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return errHasJobs
		}
		return err
	}
	s.logger.Info("company deleted", "company_id", id)
	return nil
}

// List pages through companies.
func (s Service) List(ctx context.Context, filter domain.CompanyFilter) ([]domain.Company, int, error) {
	return s.companies.ListCompanies(ctx, filter)
}

func apply(c *domain.Company, in schema.CompanyInput) *domain.Company {
	c.Name = strings.TrimSpace(in.Name)
	c.Website = strings.TrimSpace(in.Website)
	c.Industry = strings.TrimSpace(in.Industry)
	c.Size = in.Size
	c.Location = strings.TrimSpace(in.Location)
	c.Description = strings.TrimSpace(in.Description)
	return c
}
