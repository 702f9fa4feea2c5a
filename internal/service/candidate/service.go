package candidate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/pkg/crypto"
	"github.com/alemt19/ats-sub001/pkg/mask"
)

var errEmailTaken = apperr.New(apperr.KindConflict, "a candidate with this email already exists")

// Service manages candidate profiles. Phone numbers are sealed before they
// reach the repository.
type Service struct {
	candidates repository.CandidateRepository
	sealer     *crypto.Sealer
	logger     *slog.Logger
}

// New returns a candidate service.
func New(candidates repository.CandidateRepository, sealer *crypto.Sealer, logger *slog.Logger) Service {
	return Service{candidates: candidates, sealer: sealer, logger: logger}
}

// Create stores a profile that is not linked to any account.
func (s Service) Create(ctx context.Context, in schema.CandidateInput) (*domain.Candidate, error) {
	return s.create(ctx, nil, in)
}

func (s Service) create(ctx context.Context, userID *string, in schema.CandidateInput) (*domain.Candidate, error) {
	now := time.Now().UTC()
	c := apply(&domain.Candidate{ID: uuid.NewString(), UserID: userID, CreatedAt: now, UpdatedAt: now}, in)
	if err := s.seal(c); err != nil {
		return nil, err
	}
	if err := s.candidates.CreateCandidate(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errEmailTaken
		}
		return nil, err
	}
	s.logger.Info("candidate created", "candidate_id", c.ID)
	return c, nil
}

// Get returns a profile with the phone number in clear.
func (s Service) Get(ctx context.Context, id string) (*domain.Candidate, error) {
	c, err := s.candidates.GetCandidateByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, s.open(c)
}

// Update replaces a profile's fields.
func (s Service) Update(ctx context.Context, id string, in schema.CandidateInput) (*domain.Candidate, error) {
	current, err := s.candidates.GetCandidateByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c := apply(&domain.Candidate{ID: id, UserID: current.UserID}, in)
	if err := s.seal(c); err != nil {
		return nil, err
	}
	if err := s.candidates.UpdateCandidate(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errEmailTaken
		}
		return nil, err
	}
	return c, nil
}

// Delete removes a profile and its applications.
func (s Service) Delete(ctx context.Context, id string) error {
	if err := s.candidates.DeleteCandidate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("candidate deleted", "candidate_id", id)
	return nil
}

// List pages through profiles; phone numbers are masked.
func (s Service) List(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int, error) {
	list, total, err := s.candidates.ListCandidates(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		if err := s.open(&list[i]); err != nil {
			return nil, 0, err
		}
		list[i].Phone = mask.Phone(list[i].Phone)
	}
	return list, total, nil
}

// Mine returns the profile linked to userID.
func (s Service) Mine(ctx context.Context, userID string) (*domain.Candidate, error) {
	c, err := s.candidates.GetCandidateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c, s.open(c)
}

// UpsertMine creates or replaces the profile linked to user.
func (s Service) UpsertMine(ctx context.Context, user *domain.User, in schema.CandidateInput) (*domain.Candidate, bool, error) {
	current, err := s.candidates.GetCandidateByUserID(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		userID := user.ID
		c, err := s.create(ctx, &userID, in)
		return c, true, err
	}
	if err != nil {
		return nil, false, err
	}
	c, err := s.Update(ctx, current.ID, in)
	return c, false, err
}

func (s Service) seal(c *domain.Candidate) error {
	if c.Phone == "" {
		c.PhoneCipher = nil
		return nil
	}
	sealed, err := s.sealer.Seal(c.Phone)
	if err != nil {
		return fmt.Errorf("seal phone: %w", err)
	}
	c.PhoneCipher = sealed
	return nil
}

func (s Service) open(c *domain.Candidate) error {
	if len(c.PhoneCipher) == 0 {
		return nil
	}
	phone, err := s.sealer.Open(c.PhoneCipher)
	if err != nil {
		return fmt.Errorf("open phone: %w", err)
	}
	c.Phone = phone
	return nil
}

func apply(c *domain.Candidate, in schema.CandidateInput) *domain.Candidate {
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.Location = strings.TrimSpace(in.Location)
	c.Headline = strings.TrimSpace(in.Headline)
	c.ResumeURL = strings.TrimSpace(in.ResumeURL)
	c.YearsExperience = in.YearsExperience
	c.Skills = make([]string, 0, len(in.Skills))
	for _, skill := range in.Skills {
		c.Skills = append(c.Skills, strings.TrimSpace(skill))
	}
	return c
}
