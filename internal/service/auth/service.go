package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/alemt19/ats-sub001/internal/apperr"
	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/mailer"
	"github.com/alemt19/ats-sub001/internal/otp"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/pkg/config"
	"github.com/alemt19/ats-sub001/pkg/crypto"
	jwtpkg "github.com/alemt19/ats-sub001/pkg/jwt"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid email or password")
	ErrInvalidToken       = apperr.New(apperr.KindUnauthorized, "invalid or expired token")
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "email already registered")
	ErrEmailNotVerified   = apperr.New(apperr.KindForbidden, "email address not verified")
	ErrAlreadyVerified    = apperr.New(apperr.KindConflict, "email already verified")
	ErrCurrentPassword    = apperr.New(apperr.KindInvalid, "current password is incorrect")
)

// Service handles authentication workflows.
type Service struct {
	users  repository.UserRepository
	codes  *otp.Manager
	mail   mailer.Mailer
	logger *slog.Logger
	cfg    config.APIConfig
	// pending tracks codes still being delivered after the request returned.
	pending *sync.WaitGroup
}

// deliveryTimeout bounds a background code delivery.
const deliveryTimeout = 30 * time.Second

// New constructs a Service.
func New(users repository.UserRepository, codes *otp.Manager, mail mailer.Mailer, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, codes: codes, mail: mail, logger: logger, cfg: cfg, pending: &sync.WaitGroup{}}
}

// Wait blocks until background code deliveries have finished.
func (s Service) Wait() {
	s.pending.Wait()
}

// background runs fn after the request returns, on a context that outlives
// the request but not deliveryTimeout.
func (s Service) background(ctx context.Context, fn func(context.Context)) {
	s.pending.Add(1)
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// Register creates a recruiter or candidate account and sends a verification code.
func (s Service) Register(ctx context.Context, in schema.RegisterInput) (*domain.User, TokenPair, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleCandidate
	}
	user, err := s.createUser(ctx, in.Name, in.Email, in.Password, role, nil)
	if err != nil {
		return nil, TokenPair{}, err
	}
	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	recipient := *user
	s.background(ctx, func(ctx context.Context) {
		if _, err := s.sendVerification(ctx, &recipient); err != nil {
			s.logger.Warn("verification email not sent", "user_id", recipient.ID, "error", err)
		}
	})
	return user, tokens, nil
}

// CreateAdmin provisions an administrator whose email counts as verified.
func (s Service) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	now := time.Now().UTC()
	user, err := s.createUser(ctx, name, email, password, domain.RoleAdmin, &now)
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin created", "user_id", user.ID)
	return user, nil
}

func (s Service) createUser(ctx context.Context, name, email, password, role string, verifiedAt *time.Time) (*domain.User, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(name),
		Email:           normalizeEmail(email),
		PasswordHash:    hash,
		Role:            role,
		EmailVerifiedAt: verifiedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and returns tokens.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			s.logger.Warn("login failed", "user_id", user.ID)
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}
	if s.cfg.RequireVerifiedEmail && !user.Verified() {
		return nil, TokenPair{}, ErrEmailNotVerified
	}
	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, tokens, nil
}

// Refresh exchanges a refresh token for a new pair. The role is re-read so
// promotions take effect on the next refresh.
func (s Service) Refresh(ctx context.Context, refreshToken string) (*domain.User, TokenPair, error) {
	claims, err := jwtpkg.ParseFor(strings.TrimSpace(refreshToken), s.cfg.JWTSecret, jwtpkg.PurposeRefresh)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidToken
		}
		return nil, TokenPair{}, err
	}
	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, tokens, nil
}

// Authorize validates a bearer token and returns the associated user and claims.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, *jwtpkg.Claims, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, nil, apperr.New(apperr.KindUnauthorized, "token required")
	}
	claims, err := jwtpkg.ParseFor(trimmed, s.cfg.JWTSecret, jwtpkg.PurposeAccess)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Me returns the signed-in user.
func (s Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ChangePassword rotates the password after checking the current one.
func (s Service) ChangePassword(ctx context.Context, userID string, in schema.ChangePasswordInput) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := crypto.ComparePassword(user.PasswordHash, in.CurrentPassword); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return ErrCurrentPassword
		}
		return err
	}
	hash, err := crypto.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

func (s Service) issueTokens(user *domain.User) (TokenPair, error) {
	access, err := jwtpkg.GenerateToken(user.ID, user.Role, jwtpkg.PurposeAccess, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := jwtpkg.GenerateToken(user.ID, user.Role, jwtpkg.PurposeRefresh, s.cfg.JWTSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTokenTTL / time.Second),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
