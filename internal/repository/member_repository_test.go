package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/crewhq/meetup-backend/internal/database"
	"github.com/crewhq/meetup-backend/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createMember(t *testing.T, repo *MemberRepo, username string) string {
	t.Helper()
	m := &model.Member{
		ID:           uuid.NewString(),
		Username:     username,
		Nickname:     username,
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC().Unix(),
	}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("create member: %v", err)
	}
	return m.ID
}

func TestMemberCreateAndFetch(t *testing.T) {
	db := newTestDB(t)
	repo := NewMemberRepo(db)
	ctx := context.Background()

	id := createMember(t, repo, "Alice")

	// Usernames are normalized to lowercase.
	m, err := repo.GetByUsername(ctx, "  ALICE ")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if m.ID != id {
		t.Fatalf("id mismatch: %s vs %s", m.ID, id)
	}

	p, err := repo.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Reputation != model.InitialReputation {
		t.Fatalf("initial reputation: expected %.1f, got %.1f", model.InitialReputation, p.Reputation)
	}
}

func TestMemberDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewMemberRepo(db)

	createMember(t, repo, "alice")
	m := &model.Member{
		ID:           uuid.NewString(),
		Username:     "ALICE", // normalizes to the same name
		Nickname:     "other",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC().Unix(),
	}
	err := repo.Create(context.Background(), m)
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
	// The failed insert must not have left a dangling profile row.
	if _, err := repo.GetProfile(context.Background(), m.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound for orphan profile, got %v", err)
	}
}

func TestMemberMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewMemberRepo(db)

	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if _, err := repo.GetByUsername(context.Background(), "nope"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

// applyDelta runs ApplyReputationDeltaTx inside its own transaction.
func applyDelta(t *testing.T, db *sql.DB, repo *MemberRepo, memberID string, delta float64) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.ApplyReputationDeltaTx(ctx, tx, memberID, delta, time.Now().UTC().Unix()); err != nil {
		tx.Rollback()
		t.Fatalf("apply delta: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestReputationClamp(t *testing.T) {
	db := newTestDB(t)
	repo := NewMemberRepo(db)
	ctx := context.Background()

	id := createMember(t, repo, "alice")

	t.Run("floor", func(t *testing.T) {
		// 36.5 - 40 would be negative; the clamp floors it at 0.
		applyDelta(t, db, repo, id, -40)
		p, err := repo.GetProfile(ctx, id)
		if err != nil {
			t.Fatalf("get profile: %v", err)
		}
		if p.Reputation != 0 {
			t.Fatalf("expected floor at 0, got %.1f", p.Reputation)
		}
	})

	t.Run("ceiling", func(t *testing.T) {
		applyDelta(t, db, repo, id, 250)
		p, err := repo.GetProfile(ctx, id)
		if err != nil {
			t.Fatalf("get profile: %v", err)
		}
		if p.Reputation != 100 {
			t.Fatalf("expected ceiling at 100, got %.1f", p.Reputation)
		}
	})

	t.Run("missing member", func(t *testing.T) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		defer tx.Rollback()
		err = repo.ApplyReputationDeltaTx(ctx, tx, "nope", 1, time.Now().UTC().Unix())
		if !errors.Is(err, ErrMemberNotFound) {
			t.Fatalf("expected ErrMemberNotFound, got %v", err)
		}
	})
}
