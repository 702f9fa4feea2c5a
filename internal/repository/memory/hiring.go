package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
)

// CreateJob inserts a job for an existing company.
func (s *Store) CreateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	company, ok := s.companies[job.CompanyID]
	if !ok {
		return repository.ErrInvalidArgument
	}
	job.CompanyName = company.Name
	s.jobs[job.ID] = *job
	return nil
}

// GetJobByID fetches a job with its company name.
func (s *Store) GetJobByID(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	j.CompanyName = s.companies[j.CompanyID].Name
	return &j, nil
}

// UpdateJob replaces a job's mutable fields.
func (s *Store) UpdateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.jobs[job.ID]
	if !ok {
		return repository.ErrNotFound
	}
	company, ok := s.companies[job.CompanyID]
	if !ok {
		return repository.ErrInvalidArgument
	}
	job.CompanyName = company.Name
	job.CreatedAt = existing.CreatedAt
	job.CreatedBy = existing.CreatedBy
	job.UpdatedAt = s.now()
	s.jobs[job.ID] = *job
	return nil
}

// UpdateJobStatus sets a job's status.
func (s *Store) UpdateJobStatus(_ context.Context, id, status string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	j.Status = status
	j.UpdatedAt = s.now()
	s.jobs[id] = j
	j.CompanyName = s.companies[j.CompanyID].Name
	return &j, nil
}

// DeleteJob removes a job and its applications.
func (s *Store) DeleteJob(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.jobs, id)
	for appID, a := range s.applications {
		if a.JobID == id {
			s.dropApplication(appID)
		}
	}
	return nil
}

// ListJobs pages through jobs, newest first.
func (s *Store) ListJobs(_ context.Context, filter domain.JobFilter) ([]domain.Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		if filter.CompanyID != "" && j.CompanyID != filter.CompanyID {
			continue
		}
		if filter.WorkMode != "" && j.WorkMode != filter.WorkMode {
			continue
		}
		j.CompanyName = s.companies[j.CompanyID].Name
		if !matches(filter.Query, j.Title, j.Description, j.Location, j.CompanyName) {
			continue
		}
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return newer(out[i].CreatedAt, out[k].CreatedAt, out[i].ID, out[k].ID) })
	total := len(out)
	return page(out, filter.Limit, filter.Offset), total, nil
}

// CreateCandidate inserts a candidate; email and linked user are unique.
func (s *Store) CreateCandidate(_ context.Context, candidate *domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.candidateTaken(candidate, "") {
		return repository.ErrConflict
	}
	s.candidates[candidate.ID] = storedCandidate(*candidate)
	return nil
}

// GetCandidateByID fetches a candidate.
func (s *Store) GetCandidateByID(_ context.Context, id string) (*domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCandidate(c), nil
}

// GetCandidateByUserID fetches the profile linked to a user.
func (s *Store) GetCandidateByUserID(_ context.Context, userID string) (*domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.candidates {
		if c.UserID != nil && *c.UserID == userID {
			return cloneCandidate(c), nil
		}
	}
	return nil, repository.ErrNotFound
}

// UpdateCandidate replaces a candidate's mutable fields.
func (s *Store) UpdateCandidate(_ context.Context, candidate *domain.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.candidates[candidate.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.candidateTaken(candidate, candidate.ID) {
		return repository.ErrConflict
	}
	candidate.CreatedAt = existing.CreatedAt
	candidate.UpdatedAt = s.now()
	s.candidates[candidate.ID] = storedCandidate(*candidate)
	return nil
}

// DeleteCandidate removes a candidate and their applications.
func (s *Store) DeleteCandidate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.candidates, id)
	for appID, a := range s.applications {
		if a.CandidateID == id {
			s.dropApplication(appID)
		}
	}
	return nil
}

// ListCandidates pages through candidates, newest first.
func (s *Store) ListCandidates(_ context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		if filter.Skill != "" && !hasSkill(c.Skills, filter.Skill) {
			continue
		}
		if !matches(filter.Query, c.FirstName, c.LastName, c.Email, c.Headline, c.Location) {
			continue
		}
		out = append(out, *cloneCandidate(c))
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	total := len(out)
	return page(out, filter.Limit, filter.Offset), total, nil
}

func (s *Store) candidateTaken(candidate *domain.Candidate, exceptID string) bool {
	for _, c := range s.candidates {
		if c.ID == exceptID {
			continue
		}
		if strings.EqualFold(c.Email, candidate.Email) {
			return true
		}
		if c.UserID != nil && candidate.UserID != nil && *c.UserID == *candidate.UserID {
			return true
		}
	}
	return false
}

// storedCandidate drops the plain phone so only ciphertext is kept, like the database.
func storedCandidate(c domain.Candidate) domain.Candidate {
	c.Phone = ""
	c.PhoneCipher = append([]byte(nil), c.PhoneCipher...)
	c.Skills = append([]string{}, c.Skills...)
	return c
}

func cloneCandidate(c domain.Candidate) *domain.Candidate {
	c.PhoneCipher = append([]byte(nil), c.PhoneCipher...)
	c.Skills = append([]string{}, c.Skills...)
	return &c
}

func hasSkill(skills []string, skill string) bool {
	for _, s := range skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

// CreateApplication inserts an application together with its first event.
func (s *Store) CreateApplication(_ context.Context, application *domain.Application, event *domain.ApplicationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[application.JobID]; !ok {
		return repository.ErrInvalidArgument
	}
	if _, ok := s.candidates[application.CandidateID]; !ok {
		return repository.ErrInvalidArgument
	}
	for _, a := range s.applications {
		if a.JobID == application.JobID && a.CandidateID == application.CandidateID {
			return repository.ErrConflict
		}
	}
	s.applications[application.ID] = *application
	if event != nil {
		s.events = append(s.events, *event)
	}
	s.decorate(application)
	return nil
}

// GetApplicationByID fetches an application with job title and candidate name.
func (s *Store) GetApplicationByID(_ context.Context, id string) (*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	s.decorate(&a)
	return &a, nil
}

// UpdateApplicationStatus applies a transition recorded by event.
func (s *Store) UpdateApplicationStatus(_ context.Context, event *domain.ApplicationEvent) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[event.ApplicationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if a.Status != event.FromStatus {
		return nil, repository.ErrConflict
	}
	a.Status = event.ToStatus
	a.UpdatedAt = event.CreatedAt
	s.applications[a.ID] = a
	s.events = append(s.events, *event)
	s.decorate(&a)
	return &a, nil
}

// DeleteApplication removes an application and its history.
func (s *Store) DeleteApplication(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[id]; !ok {
		return repository.ErrNotFound
	}
	s.dropApplication(id)
	return nil
}

// ListApplications pages through applications, newest first.
func (s *Store) ListApplications(_ context.Context, filter domain.ApplicationFilter) ([]domain.Application, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Application, 0, len(s.applications))
	for _, a := range s.applications {
		if filter.JobID != "" && a.JobID != filter.JobID {
			continue
		}
		if filter.CandidateID != "" && a.CandidateID != filter.CandidateID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		s.decorate(&a)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	total := len(out)
	return page(out, filter.Limit, filter.Offset), total, nil
}

// ListApplicationEvents returns an application's history, oldest first.
func (s *Store) ListApplicationEvents(_ context.Context, applicationID string) ([]domain.ApplicationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.applications[applicationID]; !ok {
		return nil, repository.ErrNotFound
	}
	out := make([]domain.ApplicationEvent, 0)
	for _, e := range s.events {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListRecentApplicationEvents returns the newest events across all applications.
func (s *Store) ListRecentApplicationEvents(_ context.Context, limit int) ([]domain.ApplicationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ApplicationEvent, 0, max(limit, 0))
	for i := len(s.events) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}

func (s *Store) decorate(a *domain.Application) {
	a.JobTitle = s.jobs[a.JobID].Title
	a.CandidateName = s.candidates[a.CandidateID].FullName()
}

func (s *Store) dropApplication(id string) {
	delete(s.applications, id)
	kept := s.events[:0]
	for _, e := range s.events {
		if e.ApplicationID != id {
			kept = append(kept, e)
		}
	}
	s.events = kept
}

// DashboardSummary counts entities by role and status.
func (s *Store) DashboardSummary(context.Context) (domain.DashboardSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := domain.DashboardSummary{
		UsersByRole:          make(map[string]int),
		Companies:            len(s.companies),
		JobsByStatus:         make(map[string]int),
		Candidates:           len(s.candidates),
		ApplicationsByStatus: make(map[string]int),
	}
	for _, u := range s.users {
		summary.UsersByRole[u.Role]++
	}
	for _, j := range s.jobs {
		summary.JobsByStatus[j.Status]++
	}
	for _, a := range s.applications {
		summary.ApplicationsByStatus[a.Status]++
	}
	return summary, nil
}

// CountApplicationsByBucket groups application creation times into buckets.
func (s *Store) CountApplicationsByBucket(_ context.Context, from, to time.Time, interval string) ([]domain.BucketCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[time.Time]int)
	for _, a := range s.applications {
		if a.CreatedAt.Before(from) || !a.CreatedAt.Before(to) {
			continue
		}
		counts[domain.BucketStart(a.CreatedAt, interval)]++
	}
	out := make([]domain.BucketCount, 0, len(counts))
	for start, n := range counts {
		out = append(out, domain.BucketCount{BucketStart: start, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.Before(out[j].BucketStart) })
	return out, nil
}
