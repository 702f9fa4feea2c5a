package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/alemt19/ats-sub001/db"
)

// Runner applies the goose migrations of the ATS schema.
type Runner struct {
	dsn        string
	migrations fs.FS
	source     string
	log        *slog.Logger
}

// New returns a migration runner. When dir exists on disk its files are used,
// otherwise the migrations embedded in the binary are.
func New(dsn, dir string, log *slog.Logger) (Runner, error) {
	if dsn == "" {
		return Runner{}, errors.New("empty database dsn")
	}
	if log == nil {
		log = slog.Default()
	}
	r := Runner{dsn: dsn, log: log}
	if info, err := os.Stat(dir); dir != "" && err == nil && info.IsDir() {
		r.migrations, r.source = os.DirFS(dir), dir
		return r, nil
	}
	sub, err := fs.Sub(db.Migrations, "migrations")
	if err != nil {
		return Runner{}, fmt.Errorf("locate embedded migrations: %w", err)
	}
	r.migrations, r.source = sub, "embedded"
	return r, nil
}

// Ensure applies pending migrations.
func (r Runner) Ensure(ctx context.Context) error {
	return r.withProvider(func(p *goose.Provider) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		r.log.Info("applying migrations", "source", r.source)
		results, err := p.Up(runCtx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		for _, res := range results {
			r.log.Info("migration applied", "version", res.Source.Version, "file", res.Source.Path, "duration", res.Duration)
		}
		r.log.Info("migrations up to date", "applied", len(results))
		return nil
	})
}

// Status reports applied and pending migrations.
func (r Runner) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	var statuses []*goose.MigrationStatus
	err := r.withProvider(func(p *goose.Provider) error {
		var err error
		statuses, err = p.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return nil
	})
	return statuses, err
}

// Down rolls back migrations either to the previous version or a specific target version.
func (r Runner) Down(ctx context.Context, targetVersion int64) error {
	return r.withProvider(func(p *goose.Provider) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if targetVersion > 0 {
			r.log.Info("rolling back migrations", "target", targetVersion)
			if _, err := p.DownTo(runCtx, targetVersion); err != nil {
				return fmt.Errorf("rollback to version %d: %w", targetVersion, err)
			}
		} else {
			r.log.Info("rolling back latest migration")
			if _, err := p.Down(runCtx); err != nil {
				return fmt.Errorf("rollback latest migration: %w", err)
			}
		}

		r.log.Info("rollback complete")
		return nil
	})
}

func (r Runner) withProvider(fn func(*goose.Provider) error) error {
	sqlDB, err := sql.Open("pgx", r.dsn)
	if err != nil {
		return fmt.Errorf("open sql connection: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("ping sql connection: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, r.migrations)
	if err != nil {
		return fmt.Errorf("configure goose: %w", err)
	}
	return fn(provider)
}
