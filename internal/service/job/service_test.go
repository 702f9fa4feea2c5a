package job

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/repository/memory"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/validation"
)

const companyID = "0b6c7f3e-8d1a-4e57-9f6b-2a4d8c1e5f01"

func newService(t *testing.T) Service {
	t.Helper()
	store := memory.New()
	if err := store.CreateCompany(context.Background(), &domain.Company{ID: companyID, Name: "Acme"}); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func input(status string) schema.JobInput {
	return schema.JobInput{
		CompanyID:      companyID,
		Title:          " Backend Engineer ",
		Description:    "Build and run the services behind our hiring platform.",
		EmploymentType: "full_time",
		WorkMode:       "remote",
		Currency:       "usd",
		Status:         status,
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	svc := newService(t)
	job, err := svc.Create(context.Background(), "recruiter", input(""))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != domain.JobStatusDraft || job.Title != "Backend Engineer" || job.Currency != "USD" {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestCreateWithUnknownCompany(t *testing.T) {
	svc := newService(t)
	in := input("")
	in.CompanyID = "0b6c7f3e-8d1a-4e57-9f6b-2a4d8c1e5fff"
	_, err := svc.Create(context.Background(), "recruiter", in)
	var verr *validation.Errors
	if !errors.As(err, &verr) || verr.Fields[0].Field != "company_id" {
		t.Fatalf("expected company_id field error, got %v", err)
	}
}

func TestNonStaffOnlySeeOpenJobs(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	draft, err := svc.Create(ctx, "recruiter", input(""))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	open, err := svc.Create(ctx, "recruiter", input(domain.JobStatusOpen))
	if err != nil {
		t.Fatalf("create open: %v", err)
	}
	candidate := &domain.User{ID: "c", Role: domain.RoleCandidate}
	recruiter := &domain.User{ID: "r", Role: domain.RoleRecruiter}

	if _, err := svc.Get(ctx, nil, draft.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("anonymous viewer saw a draft: %v", err)
	}
	if _, err := svc.Get(ctx, candidate, open.ID); err != nil {
		t.Fatalf("candidate get open job: %v", err)
	}
	if _, err := svc.Get(ctx, recruiter, draft.ID); err != nil {
		t.Fatalf("recruiter get draft: %v", err)
	}

	_, total, err := svc.List(ctx, candidate, domain.JobFilter{})
	if err != nil || total != 1 {
		t.Fatalf("candidate list: total=%d err=%v", total, err)
	}
	list, total, err := svc.List(ctx, nil, domain.JobFilter{Status: domain.JobStatusDraft})
	if err != nil || total != 0 || len(list) != 0 {
		t.Fatalf("anonymous draft list: total=%d err=%v", total, err)
	}
	_, total, err = svc.List(ctx, recruiter, domain.JobFilter{})
	if err != nil || total != 2 {
		t.Fatalf("recruiter list: total=%d err=%v", total, err)
	}
}

func TestUpdateKeepsStatusAndUpdateStatusChangesIt(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, "recruiter", input(domain.JobStatusOpen))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	in := input("")
	in.Title = "Staff Engineer"
	updated, err := svc.Update(ctx, created.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.JobStatusOpen || updated.Title != "Staff Engineer" {
		t.Fatalf("unexpected job after update: %+v", updated)
	}
	closed, err := svc.UpdateStatus(ctx, created.ID, domain.JobStatusClosed)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if closed.Status != domain.JobStatusClosed {
		t.Fatalf("expected closed, got %s", closed.Status)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, created.ID, domain.JobStatusOpen); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
