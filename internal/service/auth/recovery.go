package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/mailer"
	"github.com/alemt19/ats-sub001/internal/otp"
	"github.com/alemt19/ats-sub001/internal/repository"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/pkg/crypto"
	jwtpkg "github.com/alemt19/ats-sub001/pkg/jwt"
	"github.com/alemt19/ats-sub001/pkg/mask"
)

// CodeSent describes where a one-time code went without revealing the address.
type CodeSent struct {
	Destination string `json:"destination"`
	// ExpiresIn is the code lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// ResetToken authorizes a single password reset.
type ResetToken struct {
	ResetToken string `json:"reset_token"`
	ExpiresIn  int64  `json:"expires_in"`
}

// RequestEmailVerification sends a fresh verification code to the signed-in user.
func (s Service) RequestEmailVerification(ctx context.Context, userID string) (CodeSent, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return CodeSent{}, err
	}
	if user.Verified() {
		return CodeSent{}, ErrAlreadyVerified
	}
	return s.sendVerification(ctx, user)
}

func (s Service) sendVerification(ctx context.Context, user *domain.User) (CodeSent, error) {
	code, err := s.codes.Issue(ctx, otp.PurposeVerifyEmail, user.Email)
	if err != nil {
		return CodeSent{}, err
	}
	if err := s.mail.Send(ctx, mailer.VerificationMessage(user.Email, user.Name, code.Value, s.codes.TTL())); err != nil {
		return CodeSent{}, fmt.Errorf("send verification: %w", err)
	}
	return CodeSent{Destination: mask.Email(user.Email), ExpiresIn: int64(s.codes.TTL() / time.Second)}, nil
}

// VerifyEmail confirms the address with a code.
func (s Service) VerifyEmail(ctx context.Context, in schema.VerifyEmailInput) (*domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, otp.ErrExpired
		}
		return nil, err
	}
	if user.Verified() {
		return nil, ErrAlreadyVerified
	}
	if err := s.codes.Verify(ctx, otp.PurposeVerifyEmail, user.Email, in.Code); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.users.MarkEmailVerified(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.EmailVerifiedAt = &now
	s.logger.Info("email verified", "user_id", user.ID)
	return user, nil
}

// ForgotPassword sends a recovery code when the account exists. The answer is
// the same either way so callers cannot probe for registered addresses.
func (s Service) ForgotPassword(ctx context.Context, in schema.ForgotPasswordInput) (CodeSent, error) {
	email := normalizeEmail(in.Email)
	sent := CodeSent{Destination: mask.Email(email), ExpiresIn: int64(s.codes.TTL() / time.Second)}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Info("password recovery for unknown email", "email", sent.Destination)
		return sent, nil
	}
	if err != nil {
		return CodeSent{}, err
	}
	// Known addresses must not answer slower than unknown ones, so the code is
	// issued and mailed after the response.
	s.background(ctx, func(ctx context.Context) {
		code, err := s.codes.Issue(ctx, otp.PurposeResetPassword, user.Email)
		if err != nil {
			s.logger.Warn("recovery code not issued", "user_id", user.ID, "error", err)
			return
		}
		if err := s.mail.Send(ctx, mailer.PasswordResetMessage(user.Email, user.Name, code.Value, s.codes.TTL())); err != nil {
			s.logger.Warn("recovery email not sent", "user_id", user.ID, "error", err)
		}
	})
	return sent, nil
}

// VerifyResetCode trades a recovery code for a short-lived reset token.
func (s Service) VerifyResetCode(ctx context.Context, in schema.VerifyResetCodeInput) (ResetToken, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ResetToken{}, otp.ErrExpired
		}
		return ResetToken{}, err
	}
	if err := s.codes.Verify(ctx, otp.PurposeResetPassword, user.Email, in.Code); err != nil {
		return ResetToken{}, err
	}
	token, err := jwtpkg.GenerateTokenWithID(user.ID, "", jwtpkg.PurposeReset, passwordFingerprint(user.PasswordHash), s.cfg.JWTSecret, s.cfg.ResetTokenTTL)
	if err != nil {
		return ResetToken{}, err
	}
	return ResetToken{ResetToken: token, ExpiresIn: int64(s.cfg.ResetTokenTTL / time.Second)}, nil
}

// ResetPassword sets a new password. The token is bound to the password hash
// it was issued against, so it stops working after one successful reset.
func (s Service) ResetPassword(ctx context.Context, in schema.ResetPasswordInput) error {
	claims, err := jwtpkg.ParseFor(in.ResetToken, s.cfg.JWTSecret, jwtpkg.PurposeReset)
	if err != nil {
		return ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if claims.ID != passwordFingerprint(user.PasswordHash) {
		return ErrInvalidToken
	}
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.logger.Info("password reset", "user_id", user.ID)
	return nil
}

func passwordFingerprint(hash []byte) string {
	sum := sha256.Sum256(hash)
	return hex.EncodeToString(sum[:8])
}
