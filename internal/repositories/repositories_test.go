package repositories

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/overlay"
	"github.com/desertthunder/spotilytics/internal/services"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		record := &models.SessionRecord{Name: "default", UserID: "alice"}

		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if record.ID() == "" {
			t.Error("session ID should be set after creation")
		}

		got, err := repo.Get(record.ID())
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.Name != "default" || got.UserID != "alice" || got.ExpiresAt != nil {
			t.Errorf("unexpected session %+v", got)
		}
	})

	t.Run("Duplicate Name", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		repo.Create(&models.SessionRecord{Name: "work"})
		if err := repo.Create(&models.SessionRecord{Name: "work"}); err == nil {
			t.Error("expected unique name violation")
		}
	})

	t.Run("Update And GetByName", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		record := &models.SessionRecord{Name: "default"}
		repo.Create(record)

		expires := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		record.AccessToken = "a"
		record.RefreshToken = "r"
		record.ExpiresAt = &expires
		if err := repo.Update(record); err != nil {
			t.Fatalf("failed to update session: %v", err)
		}

		got, err := repo.GetByName("default")
		if err != nil {
			t.Fatalf("failed to get session by name: %v", err)
		}
		if got.AccessToken != "a" || got.RefreshToken != "r" {
			t.Errorf("tokens not persisted: %+v", got)
		}
		if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
			t.Errorf("expected expiry %v, got %v", expires, got.ExpiresAt)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		if _, err := repo.GetByName("missing"); !errors.Is(err, shared.ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
		if err := repo.Delete("missing"); err == nil {
			t.Error("deleting a missing session should fail")
		}
		if err := repo.Update(&models.SessionRecord{RecordID: "missing", Name: "x"}); err == nil {
			t.Error("updating a missing session should fail")
		}
	})

	t.Run("List And Delete", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		repo.Create(&models.SessionRecord{Name: "b", UserID: "bob"})
		a := &models.SessionRecord{Name: "a", UserID: "alice"}
		repo.Create(a)

		all, err := repo.List(nil)
		if err != nil || len(all) != 2 || all[0].Name != "a" {
			t.Fatalf("unexpected list %v %v", all, err)
		}
		filtered, _ := repo.List(map[string]any{"user_id": "bob"})
		if len(filtered) != 1 || filtered[0].Name != "b" {
			t.Errorf("unexpected filtered list %v", filtered)
		}

		if err := repo.Delete(a.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if all, _ := repo.List(nil); len(all) != 1 {
			t.Errorf("expected 1 session left, got %d", len(all))
		}
	})
}

func TestPersistentSession(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)

	session, err := OpenSession(repo, "")
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	if session.Name() != DefaultProfile {
		t.Errorf("expected default profile, got %s", session.Name())
	}

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if err := session.SetCredentials(services.Credentials{AccessToken: "a", RefreshToken: "r", ExpiresAt: expires}); err != nil {
		t.Fatalf("failed to set credentials: %v", err)
	}
	if err := session.SetUserID("alice"); err != nil {
		t.Fatalf("failed to set user id: %v", err)
	}

	t.Run("Survives Reopen", func(t *testing.T) {
		reopened, err := OpenSession(repo, DefaultProfile)
		if err != nil {
			t.Fatalf("failed to reopen session: %v", err)
		}
		creds := reopened.Credentials()
		if creds.AccessToken != "a" || creds.RefreshToken != "r" || !creds.ExpiresAt.Equal(expires) {
			t.Errorf("unexpected credentials %+v", creds)
		}
		if reopened.UserID() != "alice" {
			t.Errorf("expected alice, got %s", reopened.UserID())
		}
	})

	t.Run("Sees Tokens Written Elsewhere", func(t *testing.T) {
		other, err := OpenSession(repo, DefaultProfile)
		if err != nil {
			t.Fatalf("failed to open second handle: %v", err)
		}
		if err := other.SetCredentials(services.Credentials{AccessToken: "b", RefreshToken: "r2", ExpiresAt: expires}); err != nil {
			t.Fatalf("failed to set credentials: %v", err)
		}
		if creds := session.Credentials(); creds.AccessToken != "b" || creds.RefreshToken != "r2" {
			t.Errorf("expected refreshed tokens from the other handle, got %+v", creds)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		if err := session.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		reopened, _ := OpenSession(repo, DefaultProfile)
		if reopened.Credentials() != (services.Credentials{}) || reopened.UserID() != "" {
			t.Errorf("session should be empty after clear: %+v", reopened.Credentials())
		}
	})
}

func TestPersistentSessionPurge(t *testing.T) {
	repo := NewSessionRepository(setupTestDB(t))
	work, err := OpenSession(repo, "work")
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	work.SetCredentials(services.Credentials{AccessToken: "a", RefreshToken: "r"})
	if _, err := OpenSession(repo, DefaultProfile); err != nil {
		t.Fatalf("failed to open default session: %v", err)
	}

	if err := work.Purge(); err != nil {
		t.Fatalf("failed to purge: %v", err)
	}
	if work.Credentials() != (services.Credentials{}) {
		t.Errorf("purged session should be empty, got %+v", work.Credentials())
	}
	if _, err := repo.GetByName("work"); !errors.Is(err, shared.ErrSessionNotFound) {
		t.Errorf("expected purged row to be gone, got %v", err)
	}
	all, _ := repo.List(nil)
	if len(all) != 1 || all[0].Name != DefaultProfile {
		t.Errorf("other profiles must survive, got %+v", all)
	}
	if err := work.Purge(); err == nil {
		t.Error("purging twice should fail")
	}
}

func TestHiddenRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Cap And Order", func(t *testing.T) {
		repo := NewHiddenRepository(setupTestDB(t))
		for _, id := range []string{"a", "b", "c", "d", "e"} {
			ok, err := repo.Add(ctx, "u", "short_term", id, overlay.MaxHidden)
			if err != nil || !ok {
				t.Fatalf("add %s: ok=%v err=%v", id, ok, err)
			}
		}

		ok, err := repo.Add(ctx, "u", "short_term", "f", overlay.MaxHidden)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("sixth add should be rejected")
		}
		if ok, _ := repo.Add(ctx, "u", "short_term", "c", overlay.MaxHidden); !ok {
			t.Error("re-adding a member should succeed on a full set")
		}

		ids, _ := repo.Hidden(ctx, "u", "short_term")
		if !slices.Equal(ids, []string{"a", "b", "c", "d", "e"}) {
			t.Errorf("unexpected ids %v", ids)
		}
	})

	t.Run("Remove Keeps Order", func(t *testing.T) {
		repo := NewHiddenRepository(setupTestDB(t))
		for _, id := range []string{"a", "b", "c"} {
			repo.Add(ctx, "u", "long_term", id, overlay.MaxHidden)
		}
		if err := repo.Remove(ctx, "u", "long_term", "b"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if err := repo.Remove(ctx, "u", "long_term", "zzz"); err != nil {
			t.Errorf("removing an absent id should succeed: %v", err)
		}
		repo.Add(ctx, "u", "long_term", "d", overlay.MaxHidden)

		ids, _ := repo.Hidden(ctx, "u", "long_term")
		if !slices.Equal(ids, []string{"a", "c", "d"}) {
			t.Errorf("unexpected ids %v", ids)
		}
	})

	t.Run("Empty Set", func(t *testing.T) {
		repo := NewHiddenRepository(setupTestDB(t))
		ids, err := repo.Hidden(ctx, "nobody", "short_term")
		if err != nil || ids == nil || len(ids) != 0 {
			t.Errorf("expected empty non-nil slice, got %v %v", ids, err)
		}
	})

	t.Run("Concurrent Adds Respect Cap", func(t *testing.T) {
		repo := NewHiddenRepository(setupTestDB(t))
		var wg sync.WaitGroup
		for i := range 12 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				repo.Add(ctx, "u", "medium_term", string(rune('a'+i)), overlay.MaxHidden)
			}()
		}
		wg.Wait()

		ids, _ := repo.Hidden(ctx, "u", "medium_term")
		if len(ids) != overlay.MaxHidden {
			t.Errorf("expected %d ids, got %d", overlay.MaxHidden, len(ids))
		}
	})

	t.Run("Through Overlay", func(t *testing.T) {
		o := overlay.New(NewHiddenRepository(setupTestDB(t)), shared.NewLogger(io.Discard))
		o.Hide(ctx, "u", models.ShortTerm, "t1")
		o.Hide(ctx, "u", models.ShortTerm, "t2")
		o.Unhide(ctx, "u", models.ShortTerm, "t1")

		ids, err := o.Hidden(ctx, "u", models.ShortTerm)
		if err != nil || !slices.Equal(ids, []string{"t2"}) {
			t.Errorf("unexpected ids %v %v", ids, err)
		}
	})

}
