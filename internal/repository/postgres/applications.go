package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
)

const (
	applicationColumns = `a.id, a.job_id, j.title, a.candidate_id, k.first_name || ' ' || k.last_name, a.status,
	a.cover_letter, a.source, a.notes, a.created_at, a.updated_at`
	applicationFrom = ` FROM applications a
	INNER JOIN jobs j ON j.id = a.job_id
	INNER JOIN candidates k ON k.id = a.candidate_id`
)

func scanApplication(row pgx.Row, extra ...any) (*domain.Application, error) {
	var (
		a                          domain.Application
		coverLetter, source, notes *string
	)
	dest := []any{&a.ID, &a.JobID, &a.JobTitle, &a.CandidateID, &a.CandidateName, &a.Status,
		&coverLetter, &source, &notes, &a.CreatedAt, &a.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.CoverLetter = deref(coverLetter)
	a.Source = deref(source)
	a.Notes = deref(notes)
	return &a, nil
}

// CreateApplication inserts an application and its first history event in one transaction.
func (r *Repository) CreateApplication(ctx context.Context, application *domain.Application, event *domain.ApplicationEvent) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insert = `INSERT INTO applications (id, job_id, candidate_id, status, cover_letter, source, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := tx.Exec(ctx, insert,
		application.ID,
		application.JobID,
		application.CandidateID,
		application.Status,
		nilIfEmpty(application.CoverLetter),
		nilIfEmpty(application.Source),
		nilIfEmpty(application.Notes),
		application.CreatedAt,
		application.UpdatedAt,
	); err != nil {
		return translate(err)
	}
	if event != nil {
		if err := insertEvent(ctx, tx, event); err != nil {
			return err
		}
	}
	if err := tx.QueryRow(ctx,
		`SELECT j.title, k.first_name || ' ' || k.last_name FROM jobs j, candidates k WHERE j.id = $1 AND k.id = $2`,
		application.JobID, application.CandidateID,
	).Scan(&application.JobTitle, &application.CandidateName); err != nil {
		return fmt.Errorf("load application labels: %w", err)
	}
	return tx.Commit(ctx)
}

// GetApplicationByID fetches an application with job title and candidate name.
func (r *Repository) GetApplicationByID(ctx context.Context, id string) (*domain.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx, `SELECT `+applicationColumns+applicationFrom+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

// UpdateApplicationStatus performs a compare-and-set on the status and records the event.
func (r *Repository) UpdateApplicationStatus(ctx context.Context, event *domain.ApplicationEvent) (*domain.Application, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const update = `UPDATE applications
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`
	tag, err := tx.Exec(ctx, update, event.ApplicationID, event.FromStatus, event.ToStatus, event.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, event.ApplicationID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, repository.ErrNotFound
		}
		return nil, repository.ErrConflict
	}
	if err := insertEvent(ctx, tx, event); err != nil {
		return nil, err
	}
	a, err := scanApplication(tx.QueryRow(ctx, `SELECT `+applicationColumns+applicationFrom+` WHERE a.id = $1`, event.ApplicationID))
	if err != nil {
		return nil, translate(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, event *domain.ApplicationEvent) error {
	const query = `INSERT INTO application_events (id, application_id, from_status, to_status, note, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.Exec(ctx, query,
		event.ID,
		event.ApplicationID,
		nilIfEmpty(event.FromStatus),
		event.ToStatus,
		nilIfEmpty(event.Note),
		nilIfEmpty(event.ActorID),
		event.CreatedAt,
	)
	return translate(err)
}

// DeleteApplication removes an application; its events cascade.
func (r *Repository) DeleteApplication(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListApplications returns a page of applications, newest first.
func (r *Repository) ListApplications(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, int, error) {
	const where = ` WHERE ($1 = '' OR a.job_id = $1)
		AND ($2 = '' OR a.candidate_id = $2)
		AND ($3 = '' OR a.status = $3)`
	query := `SELECT ` + applicationColumns + `, COUNT(*) OVER()` + applicationFrom + where +
		` ORDER BY a.created_at DESC, a.id DESC LIMIT $4 OFFSET $5`
	rows, err := r.pool.Query(ctx, query, filter.JobID, filter.CandidateID, filter.Status, limitOrAll(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := make([]domain.Application, 0)
	total := 0
	for rows.Next() {
		a, err := scanApplication(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(apps) == 0 && filter.Offset > 0 {
		total, err = r.count(ctx, `SELECT COUNT(1) FROM applications a`+where, filter.JobID, filter.CandidateID, filter.Status)
	}
	return apps, total, err
}

const eventColumns = `id, application_id, from_status, to_status, note, actor_id, created_at`

func (r *Repository) queryEvents(ctx context.Context, query string, args ...any) ([]domain.ApplicationEvent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.ApplicationEvent, 0)
	for rows.Next() {
		var (
			e                       domain.ApplicationEvent
			fromStatus, note, actor *string
		)
		if err := rows.Scan(&e.ID, &e.ApplicationID, &fromStatus, &e.ToStatus, &note, &actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.FromStatus = deref(fromStatus)
		e.Note = deref(note)
		e.ActorID = deref(actor)
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListApplicationEvents returns an application's status history, oldest first.
func (r *Repository) ListApplicationEvents(ctx context.Context, applicationID string) ([]domain.ApplicationEvent, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, applicationID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrNotFound
	}
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM application_events
		WHERE application_id = $1 ORDER BY created_at ASC, id ASC`, applicationID)
}

// ListRecentApplicationEvents returns the newest events across all applications.
func (r *Repository) ListRecentApplicationEvents(ctx context.Context, limit int) ([]domain.ApplicationEvent, error) {
	return r.queryEvents(ctx, `SELECT `+eventColumns+` FROM application_events
		ORDER BY created_at DESC, id DESC LIMIT $1`, limitOrAll(limit))
}

// DashboardSummary counts entities by role and status.
func (r *Repository) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	summary := domain.DashboardSummary{
		UsersByRole:          make(map[string]int),
		JobsByStatus:         make(map[string]int),
		ApplicationsByStatus: make(map[string]int),
	}
	groups := []struct {
		query string
		into  map[string]int
	}{
		{`SELECT role, COUNT(1) FROM users GROUP BY role`, summary.UsersByRole},
		{`SELECT status, COUNT(1) FROM jobs GROUP BY status`, summary.JobsByStatus},
		{`SELECT status, COUNT(1) FROM applications GROUP BY status`, summary.ApplicationsByStatus},
	}
	for _, g := range groups {
		if err := r.groupCount(ctx, g.query, g.into); err != nil {
			return summary, err
		}
	}
	const totals = `SELECT (SELECT COUNT(1) FROM companies), (SELECT COUNT(1) FROM candidates)`
	if err := r.pool.QueryRow(ctx, totals).Scan(&summary.Companies, &summary.Candidates); err != nil {
		return summary, err
	}
	return summary, nil
}

func (r *Repository) groupCount(ctx context.Context, query string, into map[string]int) error {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

// CountApplicationsByBucket groups application creation times with date_trunc in UTC.
func (r *Repository) CountApplicationsByBucket(ctx context.Context, from, to time.Time, interval string) ([]domain.BucketCount, error) {
	switch interval {
	case domain.IntervalDay, domain.IntervalWeek, domain.IntervalMonth:
	default:
		return nil, repository.ErrInvalidArgument
	}
	const query = `SELECT date_trunc($1, created_at AT TIME ZONE 'UTC') AS bucket, COUNT(1)
		FROM applications
		WHERE created_at >= $2 AND created_at < $3
		GROUP BY bucket
		ORDER BY bucket`
	rows, err := r.pool.Query(ctx, query, interval, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]domain.BucketCount, 0)
	for rows.Next() {
		var (
			start time.Time
			n     int
		)
		if err := rows.Scan(&start, &n); err != nil {
			return nil, err
		}
		buckets = append(buckets, domain.BucketCount{
			BucketStart: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
			Count:       n,
		})
	}
	return buckets, rows.Err()
}
