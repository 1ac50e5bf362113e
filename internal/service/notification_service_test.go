package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crewhq/meetup-backend/internal/model"
	"github.com/crewhq/meetup-backend/internal/repository"
)

func TestNotificationInbox(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	guest := env.newMember(t, "guest")
	meetup := env.newMeetup(t, author, 3)
	if _, err := env.roomSvc.Join(ctx, meetup.RoomID, guest); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, _, err := env.meetupSvc.Complete(ctx, meetup.ID, author); err != nil {
		t.Fatalf("complete: %v", err)
	}

	t.Run("unread count", func(t *testing.T) {
		count, err := env.notifSvc.UnreadCount(ctx, guest)
		if err != nil {
			t.Fatalf("unread count: %v", err)
		}
		if count != 1 {
			t.Fatalf("unread: expected 1, got %d", count)
		}
	})

	t.Run("mark read", func(t *testing.T) {
		items, err := env.notifSvc.List(ctx, guest)
		if err != nil || len(items) != 1 {
			t.Fatalf("list: %v (%d items)", err, len(items))
		}
		if err := env.notifSvc.MarkRead(ctx, items[0].ID, guest); err != nil {
			t.Fatalf("mark read: %v", err)
		}
		count, err := env.notifSvc.UnreadCount(ctx, guest)
		if err != nil {
			t.Fatalf("unread count: %v", err)
		}
		if count != 0 {
			t.Fatalf("unread after read: expected 0, got %d", count)
		}
	})

	t.Run("evaluated flag tracks submission", func(t *testing.T) {
		items, err := env.notifSvc.List(ctx, guest)
		if err != nil || len(items) != 1 {
			t.Fatalf("list: %v (%d items)", err, len(items))
		}
		if items[0].Evaluated {
			t.Fatalf("evaluated before submitting ratings")
		}
		err = env.evalSvc.Submit(ctx, meetup.ID, guest, []RatingInput{
			{TargetID: author, Kind: model.RatingGood},
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		items, err = env.notifSvc.List(ctx, guest)
		if err != nil || len(items) != 1 {
			t.Fatalf("list: %v (%d items)", err, len(items))
		}
		if !items[0].Evaluated {
			t.Fatalf("not marked evaluated after submitting ratings")
		}
	})

	t.Run("mark read enforces recipient", func(t *testing.T) {
		items, err := env.notifSvc.List(ctx, author)
		if err != nil || len(items) != 1 {
			t.Fatalf("list: %v (%d items)", err, len(items))
		}
		err = env.notifSvc.MarkRead(ctx, items[0].ID, guest)
		if !errors.Is(err, repository.ErrNotificationNotFound) {
			t.Fatalf("expected ErrNotificationNotFound, got %v", err)
		}
	})
}

func TestNotificationCleanup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	guest := env.newMember(t, "guest")
	meetup := env.newMeetup(t, author, 3)
	if _, err := env.roomSvc.Join(ctx, meetup.RoomID, guest); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, _, err := env.meetupSvc.Complete(ctx, meetup.ID, author); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Fresh rows survive.
	removed, err := env.notifSvc.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 0 {
		t.Fatalf("cleanup of fresh rows: expected 0 removed, got %d", removed)
	}

	// Age every row past the retention window, then they go away.
	cutoff := time.Now().UTC().Add(-NotificationRetention - time.Hour).Unix()
	if _, err := env.db.Exec(`UPDATE notifications SET created_at = ?`, cutoff); err != nil {
		t.Fatalf("age rows: %v", err)
	}
	removed, err = env.notifSvc.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("cleanup: expected 2 removed, got %d", removed)
	}

	items, err := env.notifSvc.List(ctx, guest)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("inbox after cleanup: expected empty, got %d", len(items))
	}
}
