package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirpyerre/admin-console/internal/core/domain"
)

func TestSessionStore_PutGetDelete(t *testing.T) {
	store := NewSessionStore(time.Hour)
	ctx := context.Background()

	session := &domain.Session{
		AccessToken: "acc",
		User:        domain.UserInfo{ID: 1, Username: "admin"},
	}
	if err := store.Put(ctx, "sid", session); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := store.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.AccessToken != "acc" || got.User.Username != "admin" {
		t.Fatalf("unexpected session %+v", got)
	}

	// The store hands out copies, mutating one must not leak back.
	got.AccessToken = "mutated"
	again, _ := store.Get(ctx, "sid")
	if again.AccessToken != "acc" {
		t.Fatalf("stored session was mutated through a returned copy")
	}

	if err := store.Delete(ctx, "sid"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Get(ctx, "sid"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestSessionStore_UnknownSid(t *testing.T) {
	store := NewSessionStore(time.Hour)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionStore_ExpiresAfterTTL(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)
	ctx := context.Background()

	_ = store.Put(ctx, "sid", &domain.Session{AccessToken: "acc"})
	time.Sleep(25 * time.Millisecond)

	if _, err := store.Get(ctx, "sid"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected the entry to expire, got %v", err)
	}
}

func TestSessionStore_ZeroTTLNeverExpires(t *testing.T) {
	store := NewSessionStore(0)
	ctx := context.Background()

	_ = store.Put(ctx, "sid", &domain.Session{AccessToken: "acc"})
	if _, err := store.Get(ctx, "sid"); err != nil {
		t.Fatalf("entry without TTL must survive: %v", err)
	}
}
