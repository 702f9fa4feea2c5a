package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository        = (*Repository)(nil)
	_ repository.CompanyRepository     = (*Repository)(nil)
	_ repository.JobRepository         = (*Repository)(nil)
	_ repository.CandidateRepository   = (*Repository)(nil)
	_ repository.ApplicationRepository = (*Repository)(nil)
	_ repository.DashboardRepository   = (*Repository)(nil)
	_ repository.Pinger                = (*Repository)(nil)
)

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const userColumns = `id, name, email, password_hash, role, email_verified_at, created_at, updated_at`

func scanUser(row pgx.Row, extra ...any) (*domain.User, error) {
	var u domain.User
	dest := []any{&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `INSERT INTO users (id, name, email, password_hash, role, email_verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, timePtrToNil(user.EmailVerifiedAt), user.CreatedAt, user.UpdatedAt)
	return translate(err)
}

// GetUserByEmail fetches a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// UpdateUserPassword replaces the stored password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id string, hash []byte) error {
	const query = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, hash)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkEmailVerified stamps the verification time.
func (r *Repository) MarkEmailVerified(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET email_verified_at = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateUserRole changes the user's role and returns the updated row.
func (r *Repository) UpdateUserRole(ctx context.Context, id, role string) (*domain.User, error) {
	const query = `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, query, id, role))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// ListUsers returns a page of users with the total match count.
func (r *Repository) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, int, error) {
	const query = `SELECT ` + userColumns + `, COUNT(*) OVER()
		FROM users
		WHERE ($1 = '' OR role = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, filter.Role, filter.Query, limitOrAll(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	total := 0
	for rows.Next() {
		u, err := scanUser(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(users) == 0 && filter.Offset > 0 {
		total, err = r.count(ctx, `SELECT COUNT(1) FROM users
			WHERE ($1 = '' OR role = $1)
			  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')`, filter.Role, filter.Query)
	}
	return users, total, err
}

const companyColumns = `id, name, website, industry, size, location, description, created_by, created_at, updated_at`

func scanCompany(row pgx.Row, extra ...any) (*domain.Company, error) {
	var (
		c                                                      domain.Company
		website, industry, size, location, description, owner *string
	)
	dest := []any{&c.ID, &c.Name, &website, &industry, &size, &location, &description, &owner, &c.CreatedAt, &c.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.Website = deref(website)
	c.Industry = deref(industry)
	c.Size = deref(size)
	c.Location = deref(location)
	c.Description = deref(description)
	c.CreatedBy = deref(owner)
	return &c, nil
}

// CreateCompany inserts a company.
func (r *Repository) CreateCompany(ctx context.Context, company *domain.Company) error {
	const query = `INSERT INTO companies (id, name, website, industry, size, location, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		company.ID,
		company.Name,
		nilIfEmpty(company.Website),
		nilIfEmpty(company.Industry),
		nilIfEmpty(company.Size),
		nilIfEmpty(company.Location),
		nilIfEmpty(company.Description),
		nilIfEmpty(company.CreatedBy),
		company.CreatedAt,
		company.UpdatedAt,
	)
	return translate(err)
}

// GetCompanyByID fetches a company.
func (r *Repository) GetCompanyByID(ctx context.Context, id string) (*domain.Company, error) {
	const query = `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	c, err := scanCompany(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// UpdateCompany replaces a company's mutable fields.
func (r *Repository) UpdateCompany(ctx context.Context, company *domain.Company) error {
	const query = `UPDATE companies
		SET name = $2, website = $3, industry = $4, size = $5, location = $6, description = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + companyColumns
	updated, err := scanCompany(r.pool.QueryRow(ctx, query,
		company.ID,
		company.Name,
		nilIfEmpty(company.Website),
		nilIfEmpty(company.Industry),
		nilIfEmpty(company.Size),
		nilIfEmpty(company.Location),
		nilIfEmpty(company.Description),
	))
	if err != nil {
		return translate(err)
	}
	*company = *updated
	return nil
}

// DeleteCompany removes a company. Companies referenced by jobs cannot be removed.
func (r *Repository) DeleteCompany(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == "23503" {
			return repository.ErrConflict
		}
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListCompanies returns a page of companies ordered by name.
func (r *Repository) ListCompanies(ctx context.Context, filter domain.CompanyFilter) ([]domain.Company, int, error) {
	const where = `WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR industry ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')`
	const query = `SELECT ` + companyColumns + `, COUNT(*) OVER() FROM companies ` + where + `
		ORDER BY lower(name) ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, filter.Query, limitOrAll(filter.Limit), filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	companies := make([]domain.Company, 0)
	total := 0
	for rows.Next() {
		c, err := scanCompany(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(companies) == 0 && filter.Offset > 0 {
		total, err = r.count(ctx, `SELECT COUNT(1) FROM companies `+where, filter.Query)
	}
	return companies, total, err
}

func (r *Repository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	switch pgCode(err) {
	case "23505":
		return repository.ErrConflict
	case "23503", "23514", "22P02":
		return repository.ErrInvalidArgument
	}
	return err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

func nilIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func timePtrToNil(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func int64PtrToNil(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtrToNil(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
