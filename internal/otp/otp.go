// Package otp issues and checks short numeric one-time codes for email
// verification and password recovery.
package otp

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/alemt19/ats-sub001/internal/apperr"
)

// Purposes separate code namespaces so a verification code cannot reset a password.
const (
	PurposeVerifyEmail   = "verify_email"
	PurposeResetPassword = "reset_password"
)

var (
	// ErrExpired is returned when no live code exists for the subject.
	ErrExpired = apperr.New(apperr.KindInvalid, "code expired or not found")
	// ErrInvalidCode is returned when the code does not match.
	ErrInvalidCode = apperr.New(apperr.KindInvalid, "invalid code")
	// ErrTooManyAttempts is returned once the attempt budget is spent; the code is discarded.
	ErrTooManyAttempts = apperr.New(apperr.KindRateLimited, "too many attempts, request a new code")
)

// Record is what a Store keeps for one outstanding code. Only the HMAC of the code is stored.
type Record struct {
	Hash      string    `json:"hash"`
	Attempts  int       `json:"attempts"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists records until their expiry.
type Store interface {
	// Get returns ErrRecordNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) (Record, error)
	Put(ctx context.Context, key string, rec Record, ttl time.Duration) error
	// Attempt increments the attempt counter and returns the updated record in
	// one atomic step, without extending the record's lifetime.
	Attempt(ctx context.Context, key string) (Record, error)
	// Delete returns ErrRecordNotFound when nothing was stored under key.
	Delete(ctx context.Context, key string) error
}

// ErrRecordNotFound is returned by stores for missing or expired keys.
var ErrRecordNotFound = errors.New("otp: record not found")

// Config tunes a Manager.
type Config struct {
	Secret         string
	Length         int
	TTL            time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

// Code is an issued one-time code.
type Code struct {
	Value     string
	ExpiresAt time.Time
}

// Manager issues and verifies codes.
type Manager struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// NewManager validates cfg and returns a Manager.
func NewManager(store Store, cfg Config) (*Manager, error) {
	if store == nil {
		return nil, errors.New("otp: store required")
	}
	if cfg.Secret == "" {
		return nil, errors.New("otp: secret required")
	}
	if cfg.Length <= 0 {
		cfg.Length = 6
	}
	if cfg.Length > 12 {
		return nil, fmt.Errorf("otp: length %d too long", cfg.Length)
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Manager{store: store, cfg: cfg, now: time.Now}, nil
}

// Length is the number of digits in issued codes.
func (m *Manager) Length() int {
	return m.cfg.Length
}

// TTL is how long issued codes stay valid.
func (m *Manager) TTL() time.Duration {
	return m.cfg.TTL
}

// Issue creates a new code for subject, replacing any previous one. Requests
// inside the resend cooldown are refused with a retry hint.
func (m *Manager) Issue(ctx context.Context, purpose, subject string) (Code, error) {
	key := storeKey(purpose, subject)
	now := m.now()
	if m.cfg.ResendCooldown > 0 {
		prev, err := m.store.Get(ctx, key)
		switch {
		case err == nil:
			if wait := prev.IssuedAt.Add(m.cfg.ResendCooldown).Sub(now); wait > 0 {
				return Code{}, apperr.RateLimited("please wait before requesting another code", int((wait+time.Second-1)/time.Second))
			}
		case !errors.Is(err, ErrRecordNotFound):
			return Code{}, fmt.Errorf("otp: load previous code: %w", err)
		}
	}

	value, err := randomDigits(m.cfg.Length)
	if err != nil {
		return Code{}, err
	}
	rec := Record{
		Hash:      m.hash(key, value),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}
	if err := m.store.Put(ctx, key, rec, m.cfg.TTL); err != nil {
		return Code{}, fmt.Errorf("otp: store code: %w", err)
	}
	return Code{Value: value, ExpiresAt: rec.ExpiresAt}, nil
}

// Verify consumes the code for subject. Codes are single use; every check,
// right or wrong, spends one attempt before the code is compared.
func (m *Manager) Verify(ctx context.Context, purpose, subject, code string) error {
	key := storeKey(purpose, subject)
	rec, err := m.store.Attempt(ctx, key)
	if errors.Is(err, ErrRecordNotFound) {
		return ErrExpired
	}
	if err != nil {
		return fmt.Errorf("otp: record attempt: %w", err)
	}
	if !m.now().Before(rec.ExpiresAt) {
		_ = m.store.Delete(ctx, key)
		return ErrExpired
	}
	if rec.Attempts > m.cfg.MaxAttempts {
		_ = m.store.Delete(ctx, key)
		return ErrTooManyAttempts
	}
	if !hmac.Equal([]byte(rec.Hash), []byte(m.hash(key, strings.TrimSpace(code)))) {
		if rec.Attempts >= m.cfg.MaxAttempts {
			_ = m.store.Delete(ctx, key)
			return ErrTooManyAttempts
		}
		return ErrInvalidCode
	}
	// Only the caller that removes the record wins a concurrent race.
	if err := m.store.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return ErrExpired
		}
		return fmt.Errorf("otp: consume code: %w", err)
	}
	return nil
}

func (m *Manager) hash(key, code string) string {
	mac := hmac.New(sha256.New, []byte(m.cfg.Secret))
	mac.Write([]byte(key))
	mac.Write([]byte{0})
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

func storeKey(purpose, subject string) string {
	return purpose + ":" + strings.ToLower(strings.TrimSpace(subject))
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("otp: generate code: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
