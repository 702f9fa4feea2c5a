package otp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alemt19/ats-sub001/internal/apperr"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager(t *testing.T, cfg Config) (*Manager, *MemoryStore, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = c.now
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	m, err := NewManager(store, cfg)
	require.NoError(t, err)
	m.now = c.now
	return m, store, c
}

func TestIssueAndVerifyIsSingleUse(t *testing.T) {
	m, store, _ := newTestManager(t, Config{Length: 6})
	ctx := context.Background()

	code, err := m.Issue(ctx, PurposeVerifyEmail, "Jane@Example.com")
	require.NoError(t, err)
	require.Len(t, code.Value, 6)

	rec, err := store.Get(ctx, storeKey(PurposeVerifyEmail, "jane@example.com"))
	require.NoError(t, err)
	require.NotContains(t, rec.Hash, code.Value)

	require.NoError(t, m.Verify(ctx, PurposeVerifyEmail, "jane@example.com", code.Value))
	require.ErrorIs(t, m.Verify(ctx, PurposeVerifyEmail, "jane@example.com", code.Value), ErrExpired)
}

func TestVerifyIsScopedByPurpose(t *testing.T) {
	m, _, _ := newTestManager(t, Config{})
	ctx := context.Background()

	code, err := m.Issue(ctx, PurposeVerifyEmail, "jane@example.com")
	require.NoError(t, err)
	require.ErrorIs(t, m.Verify(ctx, PurposeResetPassword, "jane@example.com", code.Value), ErrExpired)
}

func TestVerifyExpiredCode(t *testing.T) {
	m, _, c := newTestManager(t, Config{TTL: time.Minute})
	ctx := context.Background()

	code, err := m.Issue(ctx, PurposeResetPassword, "jane@example.com")
	require.NoError(t, err)
	c.t = c.t.Add(2 * time.Minute)
	require.ErrorIs(t, m.Verify(ctx, PurposeResetPassword, "jane@example.com", code.Value), ErrExpired)
}

func TestVerifyCountsAttempts(t *testing.T) {
	m, _, _ := newTestManager(t, Config{Length: 4, MaxAttempts: 3})
	ctx := context.Background()

	code, err := m.Issue(ctx, PurposeVerifyEmail, "jane@example.com")
	require.NoError(t, err)
	wrong := "0000"
	if code.Value == wrong {
		wrong = "1111"
	}

	require.ErrorIs(t, m.Verify(ctx, PurposeVerifyEmail, "jane@example.com", wrong), ErrInvalidCode)
	require.ErrorIs(t, m.Verify(ctx, PurposeVerifyEmail, "jane@example.com", wrong), ErrInvalidCode)
	require.ErrorIs(t, m.Verify(ctx, PurposeVerifyEmail, "jane@example.com", wrong), ErrTooManyAttempts)
	// the record is gone, so even the right code fails now
	require.ErrorIs(t, m.Verify(ctx, PurposeVerifyEmail, "jane@example.com", code.Value), ErrExpired)
}

func TestIssueRespectsResendCooldown(t *testing.T) {
	m, _, c := newTestManager(t, Config{ResendCooldown: time.Minute})
	ctx := context.Background()

	_, err := m.Issue(ctx, PurposeVerifyEmail, "jane@example.com")
	require.NoError(t, err)

	c.t = c.t.Add(20 * time.Second)
	_, err = m.Issue(ctx, PurposeVerifyEmail, "jane@example.com")
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	require.Equal(t, apperr.KindRateLimited, appErr.Kind)
	require.Equal(t, 40, appErr.RetryAfter)

	c.t = c.t.Add(41 * time.Second)
	_, err = m.Issue(ctx, PurposeVerifyEmail, "jane@example.com")
	require.NoError(t, err)
}

func TestNewManagerValidatesConfig(t *testing.T) {
	_, err := NewManager(nil, Config{Secret: "x"})
	require.Error(t, err)
	_, err = NewManager(NewMemoryStore(), Config{})
	require.Error(t, err)
	_, err = NewManager(NewMemoryStore(), Config{Secret: "x", Length: 20})
	require.Error(t, err)
}

func TestMemoryStoreMissingKeys(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Attempt(context.Background(), "nope")
	require.True(t, errors.Is(err, ErrRecordNotFound))
	require.ErrorIs(t, s.Delete(context.Background(), "nope"), ErrRecordNotFound)
}

// slowStore delays every answer like a network round trip would.
type slowStore struct {
	Store
	delay time.Duration
}

func (s slowStore) Attempt(ctx context.Context, key string) (Record, error) {
	rec, err := s.Store.Attempt(ctx, key)
	time.Sleep(s.delay)
	return rec, err
}

func TestConcurrentVerifyHonoursAttemptBudget(t *testing.T) {
	const maxAttempts = 5
	store := slowStore{Store: NewMemoryStore(), delay: time.Millisecond}
	m, err := NewManager(store, Config{Secret: "test-secret", Length: 6, MaxAttempts: maxAttempts})
	require.NoError(t, err)
	ctx := context.Background()

	code, err := m.Issue(ctx, PurposeResetPassword, "jane@example.com")
	require.NoError(t, err)
	wrong := "000000"
	if code.Value == wrong {
		wrong = "111111"
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		kinds = map[error]int{}
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Verify(ctx, PurposeResetPassword, "jane@example.com", wrong)
			mu.Lock()
			kinds[err]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, maxAttempts-1, kinds[ErrInvalidCode], "kinds=%v", kinds)
	require.Equal(t, 200, kinds[ErrInvalidCode]+kinds[ErrTooManyAttempts]+kinds[ErrExpired])
	require.ErrorIs(t, m.Verify(ctx, PurposeResetPassword, "jane@example.com", code.Value), ErrExpired)
}

func TestConcurrentCorrectCodeIsConsumedOnce(t *testing.T) {
	m, _, _ := newTestManager(t, Config{MaxAttempts: 50})
	ctx := context.Background()
	code, err := m.Issue(ctx, PurposeVerifyEmail, "jane@example.com")
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Verify(ctx, PurposeVerifyEmail, "jane@example.com", code.Value) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, ok)
}
