// Package memory keeps every repository in process memory. It backs tests and
// single-node development runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
)

// Store implements the repository interfaces on maps guarded by one lock.
type Store struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	companies    map[string]domain.Company
	jobs         map[string]domain.Job
	candidates   map[string]domain.Candidate
	applications map[string]domain.Application
	events       []domain.ApplicationEvent
	now          func() time.Time
}

var (
	_ repository.UserRepository        = (*Store)(nil)
	_ repository.CompanyRepository     = (*Store)(nil)
	_ repository.JobRepository         = (*Store)(nil)
	_ repository.CandidateRepository   = (*Store)(nil)
	_ repository.ApplicationRepository = (*Store)(nil)
	_ repository.DashboardRepository   = (*Store)(nil)
	_ repository.Pinger                = (*Store)(nil)
)

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		companies:    make(map[string]domain.Company),
		jobs:         make(map[string]domain.Job),
		candidates:   make(map[string]domain.Candidate),
		applications: make(map[string]domain.Application),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// CreateUser inserts a user; emails are unique ignoring case.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrConflict
		}
	}
	s.users[user.ID] = *user
	return nil
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetUserByID fetches a user by identifier.
func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// UpdateUserPassword replaces the stored hash.
func (s *Store) UpdateUserPassword(_ context.Context, id string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = append([]byte(nil), hash...)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

// MarkEmailVerified stamps the verification time.
func (s *Store) MarkEmailVerified(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	at = at.UTC()
	u.EmailVerifiedAt = &at
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

// UpdateUserRole changes a user's role.
func (s *Store) UpdateUserRole(_ context.Context, id, role string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = s.now()
	s.users[id] = u
	return &u, nil
}

// ListUsers pages through users, newest first.
func (s *Store) ListUsers(_ context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if !matches(filter.Query, u.Name, u.Email) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	total := len(out)
	return page(out, filter.Limit, filter.Offset), total, nil
}

// CreateCompany inserts a company; names are unique ignoring case.
func (s *Store) CreateCompany(_ context.Context, company *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.companyNameTaken(company.Name, "") {
		return repository.ErrConflict
	}
	s.companies[company.ID] = *company
	return nil
}

// GetCompanyByID fetches a company.
func (s *Store) GetCompanyByID(_ context.Context, id string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

// UpdateCompany replaces a company's mutable fields.
func (s *Store) UpdateCompany(_ context.Context, company *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.companies[company.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.companyNameTaken(company.Name, company.ID) {
		return repository.ErrConflict
	}
	company.CreatedAt = existing.CreatedAt
	company.CreatedBy = existing.CreatedBy
	company.UpdatedAt = s.now()
	s.companies[company.ID] = *company
	return nil
}

// DeleteCompany removes a company that has no jobs.
func (s *Store) DeleteCompany(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.companies[id]; !ok {
		return repository.ErrNotFound
	}
	for _, j := range s.jobs {
		if j.CompanyID == id {
			return repository.ErrConflict
		}
	}
	delete(s.companies, id)
	return nil
}

// ListCompanies pages through companies ordered by name.
func (s *Store) ListCompanies(_ context.Context, filter domain.CompanyFilter) ([]domain.Company, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Company, 0, len(s.companies))
	for _, c := range s.companies {
		if matches(filter.Query, c.Name, c.Industry, c.Location) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	total := len(out)
	return page(out, filter.Limit, filter.Offset), total, nil
}

func (s *Store) companyNameTaken(name, exceptID string) bool {
	for _, c := range s.companies {
		if c.ID != exceptID && strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

func matches(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func newer(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID > bID
	}
	return a.After(b)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
