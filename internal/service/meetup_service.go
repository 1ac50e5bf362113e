package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewhq/meetup-backend/internal/model"
	"github.com/crewhq/meetup-backend/internal/queue"
	"github.com/crewhq/meetup-backend/internal/repository"
)

// MeetupService owns the meetup lifecycle. Creating a meetup also creates
// its backing room and seats the author; completing it is a one-way
// transition that fans an evaluation request out to every participant
// exactly once.
type MeetupService struct {
	db            *sql.DB
	meetups       *repository.MeetupRepo
	rooms         *repository.RoomRepo
	notifications *repository.NotificationRepo
	publishEvents bool
}

// NewMeetupService wires a MeetupService. When publishEvents is true a
// MeetupCompletedEvent is published to the broker after each completion
// commits; publishing is best-effort and never fails the request.
func NewMeetupService(db *sql.DB, meetups *repository.MeetupRepo, rooms *repository.RoomRepo,
	notifications *repository.NotificationRepo, publishEvents bool) *MeetupService {
	return &MeetupService{
		db:            db,
		meetups:       meetups,
		rooms:         rooms,
		notifications: notifications,
		publishEvents: publishEvents,
	}
}

// CreateMeetupInput carries the author-supplied fields of a new meetup.
type CreateMeetupInput struct {
	Title        string
	Content      string
	MeetingPlace string
	Latitude     *float64
	Longitude    *float64
	Deadline     int64
	Capacity     int
}

// Create opens a new meetup: one GROUP room sized to the requested
// capacity, one OPEN meetup backed by it, and the author seated as the
// first participant. All three writes share a transaction.
func (s *MeetupService) Create(ctx context.Context, authorID string, in CreateMeetupInput) (*model.Meetup, error) {
	if in.Capacity < model.MinGroupCapacity {
		return nil, repository.ErrInvalidCapacity
	}
	now := time.Now().UTC().Unix()

	room := &model.Room{
		ID:        uuid.NewString(),
		Name:      in.Title,
		Kind:      model.RoomKindGroup,
		Capacity:  in.Capacity,
		Occupancy: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	meetup := &model.Meetup{
		ID:           uuid.NewString(),
		RoomID:       room.ID,
		AuthorID:     authorID,
		Title:        in.Title,
		Content:      in.Content,
		MeetingPlace: in.MeetingPlace,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Deadline:     in.Deadline,
		Status:       model.MeetupStatusOpen,
		CreatedAt:    now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := s.rooms.CreateTx(ctx, tx, room); err != nil {
		return nil, err
	}
	if err := s.meetups.CreateTx(ctx, tx, meetup); err != nil {
		return nil, err
	}
	// The author takes the first slot.
	if err := s.rooms.IncrementOccupancyTx(ctx, tx, room.ID, now); err != nil {
		return nil, err
	}
	if err := s.rooms.AddMemberTx(ctx, tx, room.ID, authorID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return meetup, nil
}

// Get returns one meetup by id.
func (s *MeetupService) Get(ctx context.Context, meetupID string) (*model.Meetup, error) {
	return s.meetups.GetByID(ctx, meetupID)
}

// List returns meetups newest first. Limit is clamped to a sane page size.
func (s *MeetupService) List(ctx context.Context, limit, offset int) ([]model.Meetup, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.meetups.List(ctx, limit, offset)
}

// Participants returns the ids of everyone currently in the meetup's room.
func (s *MeetupService) Participants(ctx context.Context, meetupID string) ([]string, error) {
	meetup, err := s.meetups.GetByID(ctx, meetupID)
	if err != nil {
		return nil, err
	}
	return s.rooms.ListMembers(ctx, meetup.RoomID)
}

// Complete moves a meetup from OPEN to COMPLETED. Only the author may
// call it. The first successful call owns the transition and writes one
// EVALUATION_REQUEST notification per participant in the same
// transaction; every later call (including concurrent ones) is an
// idempotent no-op reporting completedNow=false. Notifications are never
// written outside the owning call, which is what makes the fan-out
// exactly-once.
func (s *MeetupService) Complete(ctx context.Context, meetupID, actorID string) (meetup *model.Meetup, completedNow bool, err error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	meetup, err = s.meetups.GetByIDTx(ctx, tx, meetupID)
	if err != nil {
		return nil, false, err
	}
	if meetup.AuthorID != actorID {
		return nil, false, repository.ErrForbidden
	}

	won, err := s.meetups.MarkCompletedTx(ctx, tx, meetupID)
	if err != nil {
		return nil, false, err
	}
	var participants []string
	if won {
		participants, err = s.rooms.ListMembersTx(ctx, tx, meetup.RoomID)
		if err != nil {
			return nil, false, err
		}
		for _, memberID := range participants {
			n := &model.Notification{
				ID:          uuid.NewString(),
				RecipientID: memberID,
				Kind:        model.NotificationEvaluationRequest,
				Title:       "Rate your meetup",
				Content:     fmt.Sprintf("%q has finished. Please rate the other participants.", meetup.Title),
				MeetupID:    meetup.ID,
				Read:        false,
				CreatedAt:   now.Unix(),
			}
			if err := s.notifications.InsertTx(ctx, tx, n); err != nil {
				return nil, false, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	committed = true
	meetup.Status = model.MeetupStatusCompleted

	if won && s.publishEvents {
		ev := queue.MeetupCompletedEvent{
			MeetupID:     meetup.ID,
			RoomID:       meetup.RoomID,
			AuthorID:     meetup.AuthorID,
			Title:        meetup.Title,
			Participants: participants,
			CompletedAt:  now.Format(time.RFC3339),
		}
		// Best-effort: the completion already committed, the broker just
		// mirrors it.
		if perr := PublishMeetupCompleted(ctx, ev); perr != nil {
			slog.Warn("meetup completed event not published", "meetup_id", meetup.ID, "error", perr)
		}
	}
	return meetup, won, nil
}

// Delete removes a meetup together with its evaluations and the
// notifications referencing it. Only the author may delete. The backing
// room and its roster go away only when cascadeRoom is set; otherwise
// the room survives as a plain chat room.
func (s *MeetupService) Delete(ctx context.Context, meetupID, actorID string, cascadeRoom bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	meetup, err := s.meetups.GetByIDTx(ctx, tx, meetupID)
	if err != nil {
		return err
	}
	if meetup.AuthorID != actorID {
		return repository.ErrForbidden
	}

	if err := s.meetups.DeleteTx(ctx, tx, meetupID); err != nil {
		return err
	}
	if cascadeRoom {
		if err := s.rooms.DeleteTx(ctx, tx, meetup.RoomID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
