package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/internal/validation"
	"github.com/alemt19/ats-sub001/internal/ws"
)

var (
	errJobClosed   = apperr.New(apperr.KindUnprocessable, "job is not accepting applications")
	errDuplicate   = apperr.New(apperr.KindConflict, "candidate has already applied to this job")
	errNoProfile   = apperr.New(apperr.KindNotFound, "create your candidate profile before applying")
	errStaleStatus = apperr.New(apperr.KindConflict, "application was changed by someone else, reload and retry")
)

// sourceCareerSite marks applications candidates file themselves.
const sourceCareerSite = "career_site"

// Publisher receives activity payloads; the websocket hub implements it.
type Publisher interface {
	Publish(topic string, payload []byte)
}

// Activity is the payload broadcast for every status change.
type Activity struct {
	Type          string                  `json:"type"`
	Event         domain.ApplicationEvent `json:"event"`
	JobID         string                  `json:"job_id"`
	JobTitle      string                  `json:"job_title"`
	CandidateID   string                  `json:"candidate_id"`
	CandidateName string                  `json:"candidate_name"`
}

// Service runs the hiring pipeline.
type Service struct {
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
	candidates   repository.CandidateRepository
	publisher    Publisher
	logger       *slog.Logger
}

// New returns an application service. publisher may be nil.
func New(applications repository.ApplicationRepository, jobs repository.JobRepository, candidates repository.CandidateRepository, publisher Publisher, logger *slog.Logger) Service {
	return Service{applications: applications, jobs: jobs, candidates: candidates, publisher: publisher, logger: logger}
}

// Create files an application on behalf of a candidate.
func (s Service) Create(ctx context.Context, actorID string, in schema.ApplicationInput) (*domain.Application, error) {
	job, err := s.jobs.GetJobByID(ctx, in.JobID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, validation.Field("job_id", "exists", "does not reference an existing job")
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.candidates.GetCandidateByID(ctx, in.CandidateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validation.Field("candidate_id", "exists", "does not reference an existing candidate")
		}
		return nil, err
	}
	source := in.Source
	if source == "" {
		source = "other"
	}
	return s.file(ctx, actorID, job, in.CandidateID, in.CoverLetter, source)
}

// Apply files an application for the signed-in candidate.
func (s Service) Apply(ctx context.Context, user *domain.User, jobID string, in schema.ApplyInput) (*domain.Application, error) {
	profile, err := s.candidates.GetCandidateByUserID(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNoProfile
	}
	if err != nil {
		return nil, err
	}
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.file(ctx, user.ID, job, profile.ID, in.CoverLetter, sourceCareerSite)
}

func (s Service) file(ctx context.Context, actorID string, job *domain.Job, candidateID, coverLetter, source string) (*domain.Application, error) {
	if !job.Open() {
		return nil, errJobClosed
	}
	now := time.Now().UTC()
	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		CandidateID: candidateID,
		Status:      domain.ApplicationApplied,
		CoverLetter: strings.TrimSpace(coverLetter),
		Source:      source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	event := &domain.ApplicationEvent{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		ToStatus:      domain.ApplicationApplied,
		ActorID:       actorID,
		CreatedAt:     now,
	}
	if err := s.applications.CreateApplication(ctx, app, event); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, errDuplicate
		case errors.Is(err, repository.ErrInvalidArgument):
			return nil, errJobClosed
		}
		return nil, err
	}
	s.logger.Info("application created", "application_id", app.ID, "job_id", app.JobID, "candidate_id", app.CandidateID)
	s.publish("application.created", *event, app)
	return app, nil
}

// UpdateStatus moves an application along the pipeline.
func (s Service) UpdateStatus(ctx context.Context, actorID, id string, in schema.ApplicationStatusInput) (*domain.Application, error) {
	app, err := s.applications.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, actorID, app, in.Status, strings.TrimSpace(in.Note))
}

// Withdraw lets a candidate pull out of one of their own applications.
func (s Service) Withdraw(ctx context.Context, user *domain.User, id string) (*domain.Application, error) {
	app, err := s.owned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, user.ID, app, domain.ApplicationWithdrawn, "")
}

func (s Service) transition(ctx context.Context, actorID string, app *domain.Application, to, note string) (*domain.Application, error) {
	if !domain.CanTransition(app.Status, to) {
		return nil, apperr.Newf(apperr.KindUnprocessable, "cannot move application from %s to %s", app.Status, to)
	}
	event := &domain.ApplicationEvent{
		ID:            uuid.NewString(),
		ApplicationID: app.ID,
		FromStatus:    app.Status,
		ToStatus:      to,
		Note:          note,
		ActorID:       actorID,
		CreatedAt:     time.Now().UTC(),
	}
	updated, err := s.applications.UpdateApplicationStatus(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errStaleStatus
		}
		return nil, err
	}
	s.logger.Info("application status changed", "application_id", app.ID, "from", event.FromStatus, "to", to, "actor", actorID)
	s.publish("application.status_changed", *event, updated)
	return updated, nil
}

// Get returns an application. Candidates only see their own.
func (s Service) Get(ctx context.Context, viewer *domain.User, id string) (*domain.Application, error) {
	if viewer.IsStaff() {
		return s.applications.GetApplicationByID(ctx, id)
	}
	app, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	app.Notes = ""
	return app, nil
}

// History returns the status changes of an application, oldest first.
func (s Service) History(ctx context.Context, viewer *domain.User, id string) ([]domain.ApplicationEvent, error) {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return nil, err
	}
	events, err := s.applications.ListApplicationEvents(ctx, id)
	if err != nil || viewer.IsStaff() {
		return events, err
	}
	// Notes and actors belong to the hiring team.
	for i := range events {
		events[i].Note = ""
		events[i].ActorID = ""
	}
	return events, nil
}

// List pages through applications. Candidates only see their own.
func (s Service) List(ctx context.Context, viewer *domain.User, filter domain.ApplicationFilter) ([]domain.Application, int, error) {
	if !viewer.IsStaff() {
		profile, err := s.candidates.GetCandidateByUserID(ctx, viewer.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.Application{}, 0, nil
		}
		if err != nil {
			return nil, 0, err
		}
		filter.CandidateID = profile.ID
		apps, total, err := s.applications.ListApplications(ctx, filter)
		for i := range apps {
			apps[i].Notes = ""
		}
		return apps, total, err
	}
	return s.applications.ListApplications(ctx, filter)
}

// Delete removes an application and its history.
func (s Service) Delete(ctx context.Context, id string) error {
	if err := s.applications.DeleteApplication(ctx, id); err != nil {
		return err
	}
	s.logger.Info("application deleted", "application_id", id)
	return nil
}

// Recent returns the newest pipeline events across all applications.
func (s Service) Recent(ctx context.Context, limit int) ([]domain.ApplicationEvent, error) {
	return s.applications.ListRecentApplicationEvents(ctx, limit)
}

func (s Service) owned(ctx context.Context, user *domain.User, id string) (*domain.Application, error) {
	app, err := s.applications.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := s.candidates.GetCandidateByUserID(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if app.CandidateID != profile.ID {
		return nil, repository.ErrNotFound
	}
	return app, nil
}

func (s Service) publish(kind string, event domain.ApplicationEvent, app *domain.Application) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(Activity{
		Type:          kind,
		Event:         event,
		JobID:         app.JobID,
		JobTitle:      app.JobTitle,
		CandidateID:   app.CandidateID,
		CandidateName: app.CandidateName,
	})
	if err != nil {
		s.logger.Error("encode activity", "error", err)
		return
	}
	s.publisher.Publish(ws.TopicActivity, payload)
}
