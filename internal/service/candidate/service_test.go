package candidate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alemt19/ats-sub001/internal/domain"
	"github.com/alemt19/ats-sub001/internal/repository/memory"
	"github.com/alemt19/ats-sub001/internal/schema"
	"github.com/alemt19/ats-sub001/pkg/crypto"
)

func newService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	sealer, err := crypto.NewSealer("test-key")
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	store := memory.New()
	return New(store, sealer, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func profile(email string) schema.CandidateInput {
	return schema.CandidateInput{
		FirstName:       " Ada ",
		LastName:        "Lovelace",
		Email:           email,
		Phone:           "+15551234567",
		Skills:          []string{" go ", "sql"},
		YearsExperience: 7,
	}
}

func TestPhoneIsSealedAtRest(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, profile("Ada@Example.com"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "ada@example.com" || created.FirstName != "Ada" || created.Skills[0] != "go" {
		t.Fatalf("input not normalized: %+v", created)
	}

	raw, err := store.GetCandidateByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if raw.Phone != "" || len(raw.PhoneCipher) == 0 {
		t.Fatalf("phone stored in clear: %+v", raw)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phone != "+15551234567" {
		t.Fatalf("expected decrypted phone, got %q", got.Phone)
	}

	list, _, err := svc.List(ctx, domain.CandidateFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Phone == "+15551234567" || list[0].Phone == "" {
		t.Fatalf("expected masked phone in list, got %q", list[0].Phone)
	}
}

func TestDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Create(ctx, profile("ada@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, profile("ADA@example.com")); !errors.Is(err, errEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestUpsertMine(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	user := &domain.User{ID: "u1", Role: domain.RoleCandidate}

	first, created, err := svc.UpsertMine(ctx, user, profile("ada@example.com"))
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}
	in := profile("ada@example.com")
	in.Headline = "Analyst"
	in.Phone = ""
	second, created, err := svc.UpsertMine(ctx, user, in)
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}
	if second.ID != first.ID || second.UserID == nil || *second.UserID != "u1" {
		t.Fatalf("profile not updated in place: %+v", second)
	}
	mine, err := svc.Mine(ctx, "u1")
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if mine.Headline != "Analyst" || mine.Phone != "" {
		t.Fatalf("unexpected profile: %+v", mine)
	}
}
