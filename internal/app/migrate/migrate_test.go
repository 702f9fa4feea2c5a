package migrate

import (
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFallsBackToEmbeddedMigrations(t *testing.T) {
	r, err := New("postgres://localhost/ats", filepath.Join(t.TempDir(), "missing"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if r.source != "embedded" {
		t.Fatalf("expected embedded source, got %q", r.source)
	}
	entries, err := fs.ReadDir(r.migrations, ".")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected embedded migration files")
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".sql") {
			t.Fatalf("unexpected file %s", e.Name())
		}
	}
}

func TestNewPrefersDirectoryOnDisk(t *testing.T) {
	dir := t.TempDir()
	r, err := New("postgres://localhost/ats", dir, nil)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if r.source != dir {
		t.Fatalf("expected %s, got %s", dir, r.source)
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New("", "", nil); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
