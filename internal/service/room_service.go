package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/crewhq/meetup-backend/internal/model"
	"github.com/crewhq/meetup-backend/internal/repository"
)

// RoomService owns admission into rooms. A join is two writes inside one
// transaction: a conditional occupancy increment that can only succeed
// while a slot is free, and a membership insert whose primary key rejects
// duplicates. Whichever of the two fails rolls the other back, so
// occupancy and the roster can never disagree.
type RoomService struct {
	db      *sql.DB
	rooms   *repository.RoomRepo
	meetups *repository.MeetupRepo
}

// NewRoomService wires a RoomService.
func NewRoomService(db *sql.DB, rooms *repository.RoomRepo, meetups *repository.MeetupRepo) *RoomService {
	return &RoomService{db: db, rooms: rooms, meetups: meetups}
}

// Get returns the current room snapshot.
func (s *RoomService) Get(ctx context.Context, roomID string) (*model.Room, error) {
	return s.rooms.GetByID(ctx, roomID)
}

// Members returns the room's roster in join order.
func (s *RoomService) Members(ctx context.Context, roomID string) ([]string, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.rooms.ListMembers(ctx, roomID)
}

// Join admits a member into a room. Re-joining a room the member is
// already in is a no-op that returns the current snapshot; a full room
// returns repository.ErrRoomFull and changes nothing.
func (s *RoomService) Join(ctx context.Context, roomID, memberID string) (*model.Room, error) {
	now := time.Now().UTC().Unix()

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

	already, err := s.rooms.IsMemberTx(ctx, tx, roomID, memberID)
	if err != nil {
		return nil, err
	}
	if already {
		room, err := s.rooms.GetByIDTx(ctx, tx, roomID)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return room, nil
	}

	if err := s.rooms.IncrementOccupancyTx(ctx, tx, roomID, now); err != nil {
		if errors.Is(err, repository.ErrRoomFull) {
			// Distinguish a genuinely full room from one that does not exist.
			if _, gerr := s.rooms.GetByIDTx(ctx, tx, roomID); gerr != nil {
				return nil, gerr
			}
		}
		return nil, err
	}
	if err := s.rooms.AddMemberTx(ctx, tx, roomID, memberID, now); err != nil {
		if errors.Is(err, repository.ErrDuplicateMembership) {
			// A concurrent join by the same member won the race. Roll back
			// our increment and report the state the winner produced.
			tx.Rollback()
			committed = true // rollback done, skip the deferred one
			return s.rooms.GetByID(ctx, roomID)
		}
		return nil, err
	}

	room, err := s.rooms.GetByIDTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return room, nil
}

// Leave releases a member's slot. Leaving a room the member is not in is
// a no-op returning the current snapshot.
func (s *RoomService) Leave(ctx context.Context, roomID, memberID string) (*model.Room, error) {
	now := time.Now().UTC().Unix()

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

	removed, err := s.rooms.RemoveMemberTx(ctx, tx, roomID, memberID)
	if err != nil {
		return nil, err
	}
	if removed {
		if err := s.rooms.DecrementOccupancyTx(ctx, tx, roomID, now); err != nil {
			return nil, err
		}
	}

	room, err := s.rooms.GetByIDTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return room, nil
}

// UpdateCapacity resizes a GROUP room. Only the author of the meetup
// backing the room may resize it, the new capacity must respect the
// GROUP floor, and it may never drop below the current occupancy.
// DIRECT rooms are fixed at two and cannot be resized.
func (s *RoomService) UpdateCapacity(ctx context.Context, roomID, actorID string, capacity int) (*model.Room, error) {
	if capacity < model.MinGroupCapacity {
		return nil, repository.ErrInvalidCapacity
	}
	now := time.Now().UTC().Unix()

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

	room, err := s.rooms.GetByIDTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Kind == model.RoomKindDirect {
		return nil, repository.ErrForbidden
	}
	meetup, err := s.meetups.GetByRoomIDTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if meetup.AuthorID != actorID {
		return nil, repository.ErrForbidden
	}

	if err := s.rooms.UpdateCapacityTx(ctx, tx, roomID, capacity, now); err != nil {
		return nil, err
	}

	room, err = s.rooms.GetByIDTx(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return room, nil
}

// CreateDirect opens a one-on-one room between two members and seats
// both. Used for private conversations spun off a meetup.
func (s *RoomService) CreateDirect(ctx context.Context, memberA, memberB string) (*model.Room, error) {
	if memberA == memberB {
		return nil, repository.ErrForbidden
	}
	now := time.Now().UTC().Unix()
	room := &model.Room{
		ID:        uuid.NewString(),
		Name:      "direct",
		Kind:      model.RoomKindDirect,
		Capacity:  model.DirectRoomCapacity,
		Occupancy: 0,
		CreatedAt: now,
		UpdatedAt: now,
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
	for _, memberID := range []string{memberA, memberB} {
		if err := s.rooms.IncrementOccupancyTx(ctx, tx, room.ID, now); err != nil {
			return nil, err
		}
		if err := s.rooms.AddMemberTx(ctx, tx, room.ID, memberID, now); err != nil {
			return nil, err
		}
	}

	room, err = s.rooms.GetByIDTx(ctx, tx, room.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return room, nil
}

// DeleteDirect closes a DIRECT room. Either participant may close it;
// GROUP rooms live and die with their meetup and cannot be deleted here.
func (s *RoomService) DeleteDirect(ctx context.Context, roomID, actorID string) error {
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

	room, err := s.rooms.GetByIDTx(ctx, tx, roomID)
	if err != nil {
		return err
	}
	if room.Kind != model.RoomKindDirect {
		return repository.ErrForbidden
	}
	member, err := s.rooms.IsMemberTx(ctx, tx, roomID, actorID)
	if err != nil {
		return err
	}
	if !member {
		return repository.ErrForbidden
	}

	if err := s.rooms.DeleteTx(ctx, tx, roomID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
