package apperr

import (
	"errors"
	"fmt"
	"testing"
)

var errSample = New(KindConflict, "email already registered")

func TestSentinelMatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("register: %w", errSample)
	if !errors.Is(wrapped, errSample) {
		t.Fatalf("expected wrapped error to match sentinel")
	}
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("unexpected kind %v", KindOf(wrapped))
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Fatalf("plain errors must be internal")
	}
}

func TestRateLimitedCarriesRetryAfter(t *testing.T) {
	err := RateLimited("slow down", 42)
	got, ok := As(fmt.Errorf("wrap: %w", err))
	if !ok || got.RetryAfter != 42 || got.Kind != KindRateLimited {
		t.Fatalf("unexpected error %+v", got)
	}
}
