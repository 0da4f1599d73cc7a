package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHydrateRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := NewStore(dir)
	store.Hydrate()
	if store.LoggedIn() {
		t.Fatal("fresh store should be logged out")
	}
	if !store.Hydrated() {
		t.Fatal("Hydrated should be true after Hydrate")
	}

	store.Login("tok-123", Identity{ID: 7, Name: "Ana", Email: "ana@example.com"})

	// A second store over the same dir simulates a restart.
	restarted := NewStore(dir)
	restarted.Hydrate()
	if !restarted.LoggedIn() {
		t.Fatal("expected restarted store to be logged in")
	}
	if got := restarted.Token(); got != "tok-123" {
		t.Errorf("expected token tok-123, got %q", got)
	}
	id := restarted.Identity()
	if id == nil || id.ID != 7 || id.Email != "ana@example.com" {
		t.Errorf("unexpected identity after hydrate: %+v", id)
	}
}

func TestHydrateMalformedState(t *testing.T) {
	cases := []struct {
		name  string
		token string
		user  string
	}{
		{"corrupt user json", "tok", "{not json"},
		{"empty token", "", `{"id":7,"nome":"Ana","email":"a@b.c"}`},
		{"user missing id", "tok", `{"nome":"Ana"}`},
		{"user wrong type", "tok", `"just a string"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "token"), []byte(tc.token), 0600); err != nil {
				t.Fatalf("failed to seed token: %v", err)
			}
			if err := os.WriteFile(filepath.Join(dir, "user"), []byte(tc.user), 0600); err != nil {
				t.Fatalf("failed to seed user: %v", err)
			}

			store := NewStore(dir)
			store.Hydrate()

			if store.LoggedIn() {
				t.Error("malformed persisted state should degrade to logged out")
			}
			if store.Token() != "" {
				t.Error("token should be cleared alongside identity")
			}
			// Fail safe clears the files too.
			if _, err := os.Stat(filepath.Join(dir, "token")); !os.IsNotExist(err) {
				t.Error("token file should be removed")
			}
			if _, err := os.Stat(filepath.Join(dir, "user")); !os.IsNotExist(err) {
				t.Error("user file should be removed")
			}
		})
	}
}

func TestHydrateMissingEntry(t *testing.T) {
	dir := t.TempDir()
	// Token present, user absent: both must clear together.
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("tok"), 0600); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}

	store := NewStore(dir)
	store.Hydrate()

	if store.LoggedIn() || store.Token() != "" {
		t.Error("identity and credential must be set or cleared together")
	}
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	store.Hydrate()

	store.Login("tok", Identity{ID: 1, Name: "Ana", Email: "a@b.c"})
	store.Logout()

	if store.LoggedIn() || store.Token() != "" {
		t.Error("logout should return the store to logged-out state")
	}
	if _, err := os.Stat(filepath.Join(dir, "token")); !os.IsNotExist(err) {
		t.Error("token entry should be absent after logout")
	}
	if _, err := os.Stat(filepath.Join(dir, "user")); !os.IsNotExist(err) {
		t.Error("user entry should be absent after logout")
	}

	// Idempotent: a second logout is a no-op.
	store.Logout()
	if store.LoggedIn() {
		t.Error("repeated logout should remain logged out")
	}
}

func TestUserID(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Hydrate()

	if _, ok := store.UserID(); ok {
		t.Error("UserID should report not ok when logged out")
	}

	store.Login("tok", Identity{ID: 42, Name: "Ana", Email: "a@b.c"})
	id, ok := store.UserID()
	if !ok || id != 42 {
		t.Errorf("expected (42, true), got (%d, %v)", id, ok)
	}
}
