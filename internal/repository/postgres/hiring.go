package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
)

const (
	jobColumns = `j.id, j.company_id, c.name, j.title, j.description, j.location, j.employment_type,
	j.work_mode, j.salary_min, j.salary_max, j.currency, j.status, j.created_by, j.created_at, j.updated_at`
	jobFrom            = ` FROM jobs j INNER JOIN companies c ON c.id = j.company_id`
	jobSelect          = `SELECT ` + jobColumns + jobFrom
	jobSelectWithTotal = `SELECT ` + jobColumns + `, COUNT(*) OVER()` + jobFrom
)

func scanJob(row pgx.Row, extra ...any) (*domain.Job, error) {
	var (
		j                             domain.Job
		location, currency, createdBy *string
	)
	dest := []any{&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.Description, &location, &j.EmploymentType,
		&j.WorkMode, &j.SalaryMin, &j.SalaryMax, &currency, &j.Status, &createdBy, &j.CreatedAt, &j.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	j.Location = deref(location)
	j.Currency = deref(currency)
	j.CreatedBy = deref(createdBy)
	return &j, nil
}

// CreateJob inserts a job. A missing company surfaces as ErrInvalidArgument.
func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) error {
	const query = `INSERT INTO jobs (id, company_id, title, description, location, employment_type, work_mode,
			salary_min, salary_max, currency, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.CompanyID,
		job.Title,
		job.Description,
		nilIfEmpty(job.Location),
		job.EmploymentType,
		job.WorkMode,
		int64PtrToNil(job.SalaryMin),
		int64PtrToNil(job.SalaryMax),
		nilIfEmpty(job.Currency),
		job.Status,
		nilIfEmpty(job.CreatedBy),
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return r.pool.QueryRow(ctx, `SELECT name FROM companies WHERE id = $1`, job.CompanyID).Scan(&job.CompanyName)
}

// GetJobByID fetches a job with its company name.
func (r *Repository) GetJobByID(ctx context.Context, id string) (*domain.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return j, nil
}

// UpdateJob replaces a job's mutable fields.
func (r *Repository) UpdateJob(ctx context.Context, job *domain.Job) error {
	const query = `UPDATE jobs
		SET company_id = $2, title = $3, description = $4, location = $5, employment_type = $6, work_mode = $7,
			salary_min = $8, salary_max = $9, currency = $10, status = $11, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		job.ID,
		job.CompanyID,
		job.Title,
		job.Description,
		nilIfEmpty(job.Location),
		job.EmploymentType,
		job.WorkMode,
		int64PtrToNil(job.SalaryMin),
		int64PtrToNil(job.SalaryMax),
		nilIfEmpty(job.Currency),
		job.Status,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	updated, err := r.GetJobByID(ctx, job.ID)
	if err != nil {
		return err
	}
	*job = *updated
	return nil
}

// UpdateJobStatus sets a job's status.
func (r *Repository) UpdateJobStatus(ctx context.Context, id, status string) (*domain.Job, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return nil, translate(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return r.GetJobByID(ctx, id)
}

// DeleteJob removes a job; applications cascade.
func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListJobs returns a page of jobs, newest first.
func (r *Repository) ListJobs(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int, error) {
	const where = ` WHERE ($1 = '' OR j.status = $1)
		AND ($2 = '' OR j.company_id = $2)
		AND ($3 = '' OR j.work_mode = $3)
		AND ($4 = '' OR j.title ILIKE '%' || $4 || '%' OR j.description ILIKE '%' || $4 || '%'
			OR j.location ILIKE '%' || $4 || '%' OR c.name ILIKE '%' || $4 || '%')`
	query := jobSelectWithTotal + where + ` ORDER BY j.created_at DESC, j.id DESC LIMIT $5 OFFSET $6`
	rows, err := r.pool.Query(ctx, query, filter.Status, filter.CompanyID, filter.WorkMode, filter.Query, limitOrAll(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := make([]domain.Job, 0)
	total := 0
	for rows.Next() {
		j, err := scanJob(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(jobs) == 0 && filter.Offset > 0 {
		total, err = r.count(ctx, `SELECT COUNT(1)`+jobFrom+where,
			filter.Status, filter.CompanyID, filter.WorkMode, filter.Query)
	}
	return jobs, total, err
}

const candidateColumns = `id, user_id, first_name, last_name, email, phone_cipher, location, headline, resume_url,
	skills, years_experience, created_at, updated_at`

func scanCandidate(row pgx.Row, extra ...any) (*domain.Candidate, error) {
	var (
		c                             domain.Candidate
		location, headline, resumeURL *string
	)
	dest := []any{&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneCipher, &location, &headline, &resumeURL,
		&c.Skills, &c.YearsExperience, &c.CreatedAt, &c.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.Location = deref(location)
	c.Headline = deref(headline)
	c.ResumeURL = deref(resumeURL)
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return &c, nil
}

// CreateCandidate inserts a candidate. Only the encrypted phone is written.
func (r *Repository) CreateCandidate(ctx context.Context, candidate *domain.Candidate) error {
	const query = `INSERT INTO candidates (id, user_id, first_name, last_name, email, phone_cipher, location, headline,
			resume_url, skills, years_experience, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.pool.Exec(ctx, query,
		candidate.ID,
		stringPtrToNil(candidate.UserID),
		candidate.FirstName,
		candidate.LastName,
		candidate.Email,
		bytesToNil(candidate.PhoneCipher),
		nilIfEmpty(candidate.Location),
		nilIfEmpty(candidate.Headline),
		nilIfEmpty(candidate.ResumeURL),
		skillsOrEmpty(candidate.Skills),
		candidate.YearsExperience,
		candidate.CreatedAt,
		candidate.UpdatedAt,
	)
	return translate(err)
}

// GetCandidateByID fetches a candidate.
func (r *Repository) GetCandidateByID(ctx context.Context, id string) (*domain.Candidate, error) {
	c, err := scanCandidate(r.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// GetCandidateByUserID fetches the profile linked to a user account.
func (r *Repository) GetCandidateByUserID(ctx context.Context, userID string) (*domain.Candidate, error) {
	c, err := scanCandidate(r.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE user_id = $1`, userID))
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// UpdateCandidate replaces a candidate's mutable fields.
func (r *Repository) UpdateCandidate(ctx context.Context, candidate *domain.Candidate) error {
	const query = `UPDATE candidates
		SET first_name = $2, last_name = $3, email = $4, phone_cipher = $5, location = $6, headline = $7,
			resume_url = $8, skills = $9, years_experience = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		candidate.ID,
		candidate.FirstName,
		candidate.LastName,
		candidate.Email,
		bytesToNil(candidate.PhoneCipher),
		nilIfEmpty(candidate.Location),
		nilIfEmpty(candidate.Headline),
		nilIfEmpty(candidate.ResumeURL),
		skillsOrEmpty(candidate.Skills),
		candidate.YearsExperience,
	).Scan(&candidate.CreatedAt, &candidate.UpdatedAt)
	return translate(err)
}

// DeleteCandidate removes a candidate; applications cascade.
func (r *Repository) DeleteCandidate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListCandidates returns a page of candidates, newest first.
func (r *Repository) ListCandidates(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int, error) {
	const where = ` WHERE ($1 = '' OR EXISTS (SELECT 1 FROM unnest(skills) s WHERE lower(s) = lower($1)))
		AND ($2 = '' OR first_name ILIKE '%' || $2 || '%' OR last_name ILIKE '%' || $2 || '%'
			OR email ILIKE '%' || $2 || '%' OR headline ILIKE '%' || $2 || '%' OR location ILIKE '%' || $2 || '%')`
	query := `SELECT ` + candidateColumns + `, COUNT(*) OVER() FROM candidates` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, filter.Skill, filter.Query, limitOrAll(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	candidates := make([]domain.Candidate, 0)
	total := 0
	for rows.Next() {
		c, err := scanCandidate(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(candidates) == 0 && filter.Offset > 0 {
		total, err = r.count(ctx, `SELECT COUNT(1) FROM candidates`+where, filter.Skill, filter.Query)
	}
	return candidates, total, err
}

func bytesToNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func skillsOrEmpty(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return skills
}
