package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/repository/memory"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/validation"
	"github.com/alemt19/ats-sub001/internal/ws"
)

type capturePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
}

func (c *capturePublisher) Publish(topic string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload)
}

func (c *capturePublisher) last(t *testing.T) Activity {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.payloads) == 0 {
		t.Fatal("nothing published")
	}
	if got := c.topics[len(c.topics)-1]; got != ws.TopicActivity {
		t.Fatalf("expected topic %q, got %q", ws.TopicActivity, got)
	}
	var activity Activity
	if err := json.Unmarshal(c.payloads[len(c.payloads)-1], &activity); err != nil {
		t.Fatalf("decode activity: %v", err)
	}
	return activity
}

type fixture struct {
	svc       Service
	store     *memory.Store
	pub       *capturePublisher
	candidate *domain.User
	recruiter *domain.User
}

const (
	companyID   = "5f0c5a0e-7b43-4c1e-9d8a-4f1f6a3b2c01"
	openJobID   = "5f0c5a0e-7b43-4c1e-9d8a-4f1f6a3b2c02"
	closedJobID = "5f0c5a0e-7b43-4c1e-9d8a-4f1f6a3b2c03"
	profileID   = "5f0c5a0e-7b43-4c1e-9d8a-4f1f6a3b2c04"
	otherID     = "5f0c5a0e-7b43-4c1e-9d8a-4f1f6a3b2c05"
)

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	pub := &capturePublisher{}
	candidate := &domain.User{ID: "user-candidate", Role: domain.RoleCandidate}
	recruiter := &domain.User{ID: "user-recruiter", Role: domain.RoleRecruiter}

	if err := store.CreateCompany(ctx, &domain.Company{ID: companyID, Name: "Acme"}); err != nil {
		t.Fatalf("create company: %v", err)
	}
	for id, status := range map[string]string{openJobID: domain.JobStatusOpen, closedJobID: domain.JobStatusClosed} {
		if err := store.CreateJob(ctx, &domain.Job{ID: id, CompanyID: companyID, Title: "Backend Engineer", Status: status}); err != nil {
			t.Fatalf("create job: %v", err)
		}
	}
	userID := candidate.ID
	if err := store.CreateCandidate(ctx, &domain.Candidate{ID: profileID, UserID: &userID, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}); err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	if err := store.CreateCandidate(ctx, &domain.Candidate{ID: otherID, FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"}); err != nil {
		t.Fatalf("create candidate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fixture{
		svc:       New(store, store, store, pub, logger),
		store:     store,
		pub:       pub,
		candidate: candidate,
		recruiter: recruiter,
	}
}

func TestApplyPublishesActivity(t *testing.T) {
	f := newFixture(t)
	app, err := f.svc.Apply(context.Background(), f.candidate, openJobID, schema.ApplyInput{CoverLetter: "  hello  "})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if app.Status != domain.ApplicationApplied || app.Source != sourceCareerSite || app.CoverLetter != "hello" {
		t.Fatalf("unexpected application: %+v", app)
	}
	activity := f.pub.last(t)
	if activity.Type != "application.created" || activity.JobTitle != "Backend Engineer" || activity.CandidateName != "Ada Lovelace" {
		t.Fatalf("unexpected activity: %+v", activity)
	}
	if activity.Event.ToStatus != domain.ApplicationApplied || activity.Event.FromStatus != "" {
		t.Fatalf("unexpected event: %+v", activity.Event)
	}
}

func TestApplyTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Apply(ctx, f.candidate, openJobID, schema.ApplyInput{}); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	_, err := f.svc.Apply(ctx, f.candidate, openJobID, schema.ApplyInput{})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyToClosedJobIsRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Apply(context.Background(), f.candidate, closedJobID, schema.ApplyInput{})
	if !errors.Is(err, errJobClosed) {
		t.Fatalf("expected closed job error, got %v", err)
	}
}

func TestApplyWithoutProfile(t *testing.T) {
	f := newFixture(t)
	stranger := &domain.User{ID: "nobody", Role: domain.RoleCandidate}
	_, err := f.svc.Apply(context.Background(), stranger, openJobID, schema.ApplyInput{})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateReportsUnknownReferencesAsFieldErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.recruiter.ID, schema.ApplicationInput{JobID: "5f0c5a0e-7b43-4c1e-9d8a-4f1f6a3b2cff", CandidateID: otherID})
	var verr *validation.Errors
	if !errors.As(err, &verr) || verr.Fields[0].Field != "job_id" {
		t.Fatalf("expected job_id field error, got %v", err)
	}
	_, err = f.svc.Create(ctx, f.recruiter.ID, schema.ApplicationInput{JobID: openJobID, CandidateID: "5f0c5a0e-7b43-4c1e-9d8a-4f1f6a3b2cff"})
	if !errors.As(err, &verr) || verr.Fields[0].Field != "candidate_id" {
		t.Fatalf("expected candidate_id field error, got %v", err)
	}

	app, err := f.svc.Create(ctx, f.recruiter.ID, schema.ApplicationInput{JobID: openJobID, CandidateID: otherID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if app.Source != "other" {
		t.Fatalf("expected default source, got %q", app.Source)
	}
}

func TestUpdateStatusFollowsPipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, f.recruiter.ID, schema.ApplicationInput{JobID: openJobID, CandidateID: otherID, Source: "referral"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.svc.UpdateStatus(ctx, f.recruiter.ID, app.ID, schema.ApplicationStatusInput{Status: domain.ApplicationInterview, Note: "strong CV"})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.ApplicationInterview {
		t.Fatalf("expected interview, got %s", updated.Status)
	}
	activity := f.pub.last(t)
	if activity.Type != "application.status_changed" || activity.Event.FromStatus != domain.ApplicationApplied {
		t.Fatalf("unexpected activity: %+v", activity)
	}

	_, err = f.svc.UpdateStatus(ctx, f.recruiter.ID, app.ID, schema.ApplicationStatusInput{Status: domain.ApplicationScreening})
	if apperr.KindOf(err) != apperr.KindUnprocessable {
		t.Fatalf("expected unprocessable for backward move, got %v", err)
	}

	history, err := f.svc.History(ctx, f.recruiter, app.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[1].Note != "strong CV" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestWithdrawOnlyOwnApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine, err := f.svc.Apply(ctx, f.candidate, openJobID, schema.ApplyInput{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	theirs, err := f.svc.Create(ctx, f.recruiter.ID, schema.ApplicationInput{JobID: openJobID, CandidateID: otherID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Withdraw(ctx, f.candidate, theirs.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for foreign application, got %v", err)
	}
	withdrawn, err := f.svc.Withdraw(ctx, f.candidate, mine.ID)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if withdrawn.Status != domain.ApplicationWithdrawn {
		t.Fatalf("expected withdrawn, got %s", withdrawn.Status)
	}
	if _, err := f.svc.Withdraw(ctx, f.candidate, mine.ID); apperr.KindOf(err) != apperr.KindUnprocessable {
		t.Fatalf("expected unprocessable on second withdraw, got %v", err)
	}
}

func TestCandidatesOnlySeeTheirApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Apply(ctx, f.candidate, openJobID, schema.ApplyInput{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	theirs, err := f.svc.Create(ctx, f.recruiter.ID, schema.ApplicationInput{JobID: openJobID, CandidateID: otherID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, total, err := f.svc.List(ctx, f.candidate, domain.ApplicationFilter{CandidateID: otherID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].CandidateID != profileID {
		t.Fatalf("candidate saw foreign applications: %+v", list)
	}
	_, total, err = f.svc.List(ctx, f.recruiter, domain.ApplicationFilter{})
	if err != nil || total != 2 {
		t.Fatalf("recruiter list: total=%d err=%v", total, err)
	}
	if _, err := f.svc.Get(ctx, f.candidate, theirs.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	stranger := &domain.User{ID: "nobody", Role: domain.RoleCandidate}
	list, total, err = f.svc.List(ctx, stranger, domain.ApplicationFilter{})
	if err != nil || total != 0 || len(list) != 0 {
		t.Fatalf("expected empty list without profile, got %d %v", total, err)
	}
}

func TestDeleteRemovesHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, err := f.svc.Create(ctx, f.recruiter.ID, schema.ApplicationInput{JobID: openJobID, CandidateID: otherID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.svc.Delete(ctx, app.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.recruiter, app.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	events, err := f.svc.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected history to be gone, got %d events", len(events))
	}
}

func TestCandidatesDoNotSeeRecruiterNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app, err := f.svc.Apply(ctx, f.candidate, openJobID, schema.ApplyInput{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.recruiter.ID, app.ID, schema.ApplicationStatusInput{Status: domain.ApplicationInterview, Note: "salary ask too high"}); err != nil {
		t.Fatalf("update status: %v", err)
	}

	staffView, err := f.svc.Get(ctx, f.recruiter, app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if staffView.Notes != "" {
		t.Fatalf("status note leaked into application notes: %q", staffView.Notes)
	}
	staffHistory, err := f.svc.History(ctx, f.recruiter, app.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if last := staffHistory[len(staffHistory)-1]; last.Note != "salary ask too high" || last.ActorID != f.recruiter.ID {
		t.Fatalf("staff lost the note: %+v", last)
	}

	noted := &domain.Application{ID: "5f0c5a0e-7b43-4c1e-9d8a-4f1f6a3b2c10", JobID: closedJobID, CandidateID: profileID, Status: domain.ApplicationApplied, Notes: "internal"}
	if err := f.store.CreateApplication(ctx, noted, nil); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	own, err := f.svc.Get(ctx, f.candidate, noted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if own.Notes != "" {
		t.Fatalf("candidate saw notes: %q", own.Notes)
	}
	if staff, err := f.svc.Get(ctx, f.recruiter, noted.ID); err != nil || staff.Notes != "internal" {
		t.Fatalf("staff lost notes: %+v %v", staff, err)
	}
	list, _, err := f.svc.List(ctx, f.candidate, domain.ApplicationFilter{})
	if err != nil || len(list) != 2 || list[0].Notes != "" || list[1].Notes != "" {
		t.Fatalf("candidate list leaked notes: %+v %v", list, err)
	}
	history, err := f.svc.History(ctx, f.candidate, app.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, event := range history {
		if event.Note != "" || event.ActorID != "" {
			t.Fatalf("candidate saw recruiter detail: %+v", event)
		}
	}
}
