package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/crewhq/meetup-backend/internal/database"
	"github.com/crewhq/meetup-backend/internal/model"
	"github.com/crewhq/meetup-backend/internal/repository"
)

// testEnv bundles a fresh sqlite database with every repository and
// service wired against it. Each test gets its own database file under
// t.TempDir, so tests never see each other's rows.
type testEnv struct {
	db *sql.DB

	members       *repository.MemberRepo
	rooms         *repository.RoomRepo
	meetups       *repository.MeetupRepo
	evaluations   *repository.EvaluationRepo
	notifications *repository.NotificationRepo

	roomSvc   *RoomService
	meetupSvc *MeetupService
	evalSvc   *EvaluationService
	notifSvc  *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{
		db:            db,
		members:       repository.NewMemberRepo(db),
		rooms:         repository.NewRoomRepo(db),
		meetups:       repository.NewMeetupRepo(db),
		evaluations:   repository.NewEvaluationRepo(db),
		notifications: repository.NewNotificationRepo(db),
	}
	env.roomSvc = NewRoomService(db, env.rooms, env.meetups)
	env.meetupSvc = NewMeetupService(db, env.meetups, env.rooms, env.notifications, false)
	env.evalSvc = NewEvaluationService(db, env.meetups, env.rooms, env.evaluations, env.members)
	env.notifSvc = NewNotificationService(env.notifications)
	return env
}

// newMember registers a member directly through the repository and
// returns its id.
func (env *testEnv) newMember(t *testing.T, username string) string {
	t.Helper()
	m := &model.Member{
		ID:           uuid.NewString(),
		Username:     username,
		Nickname:     username,
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC().Unix(),
	}
	if err := env.members.Create(context.Background(), m); err != nil {
		t.Fatalf("create member %s: %v", username, err)
	}
	return m.ID
}

// newMeetup creates a meetup with the given author and capacity and
// returns it. The author is seated automatically.
func (env *testEnv) newMeetup(t *testing.T, authorID string, capacity int) *model.Meetup {
	t.Helper()
	meetup, err := env.meetupSvc.Create(context.Background(), authorID, CreateMeetupInput{
		Title:    "evening run",
		Content:  "5k around the park",
		Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("create meetup: %v", err)
	}
	return meetup
}

// setReputation forces a member's score to an exact value, bypassing the
// delta path. Only for arranging clamp scenarios.
func (env *testEnv) setReputation(t *testing.T, memberID string, value float64) {
	t.Helper()
	_, err := env.db.Exec(`UPDATE profiles SET reputation = ? WHERE member_id = ?`, value, memberID)
	if err != nil {
		t.Fatalf("set reputation: %v", err)
	}
}

// reputation reads a member's current reputation.
func (env *testEnv) reputation(t *testing.T, memberID string) float64 {
	t.Helper()
	p, err := env.members.GetProfile(context.Background(), memberID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	return p.Reputation
}
