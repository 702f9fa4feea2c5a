package company

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/repository/memory"
	"github.com/alemt19/ats-sub001/internal/schema"
)

func newService() (Service, *memory.Store) {
	store := memory.New()
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestCreateTrimsAndRejectsDuplicates(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	created, err := svc.Create(ctx, "admin", schema.CompanyInput{Name: "  Acme  ", Industry: " Software "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Acme" || created.Industry != "Software" || created.CreatedBy != "admin" {
		t.Fatalf("unexpected company: %+v", created)
	}
	_, err = svc.Create(ctx, "admin", schema.CompanyInput{Name: "acme"})
	if !errors.Is(err, errNameTaken) {
		t.Fatalf("expected name taken, got %v", err)
	}
}

func TestUpdateMissingCompany(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Update(context.Background(), "missing", schema.CompanyInput{Name: "Acme"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteCompanyWithJobs(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	created, err := svc.Create(ctx, "admin", schema.CompanyInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateJob(ctx, &domain.Job{ID: "j1", CompanyID: created.ID, Title: "Engineer", Status: domain.JobStatusDraft}); err != nil {
		t.Fatalf("create job: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := store.DeleteJob(ctx, "j1"); err != nil {
		t.Fatalf("delete job: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListSearchesByName(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	for _, name := range []string{"Acme", "Globex", "Initech"} {
		if _, err := svc.Create(ctx, "admin", schema.CompanyInput{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	list, total, err := svc.List(ctx, domain.CompanyFilter{Query: "glob"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].Name != "Globex" {
		t.Fatalf("unexpected result: total=%d list=%+v", total, list)
	}
}
