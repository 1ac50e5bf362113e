package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crewhq/meetup-backend/internal/model"
)

// RoomRepo provides CRUD operations for rooms and their membership
// rows. Occupancy is stored denormalized on the rooms table and is
// only ever changed through the conditional updates below, so it can
// never drift past capacity no matter how many joins race.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// CreateTx inserts a room within the scope of an existing transaction.
// The caller must commit or rollback the transaction.
func (r *RoomRepo) CreateTx(ctx context.Context, tx *sql.Tx, room *model.Room) error {
	const q = `INSERT INTO rooms (id, name, kind, capacity, occupancy, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		room.ID, room.Name, room.Kind, room.Capacity, room.Occupancy,
		room.CreatedAt, room.UpdatedAt)
	return err
}

// GetByID fetches a room by id. Returns ErrRoomNotFound when no such
// room exists.
func (r *RoomRepo) GetByID(ctx context.Context, id string) (*model.Room, error) {
	return getRoom(ctx, r.db, id)
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *RoomRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Room, error) {
	return getRoom(ctx, tx, id)
}

// querier is the subset of *sql.DB and *sql.Tx the read helpers need.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func getRoom(ctx context.Context, q querier, id string) (*model.Room, error) {
	const sel = `SELECT id, name, kind, capacity, occupancy, created_at, updated_at
	             FROM rooms WHERE id = ?`
	var room model.Room
	err := q.QueryRowContext(ctx, sel, id).Scan(
		&room.ID, &room.Name, &room.Kind, &room.Capacity, &room.Occupancy,
		&room.CreatedAt, &room.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// IncrementOccupancyTx bumps a room's occupancy by one, but only while
// there is still a free slot. The guard lives in the WHERE clause so the
// check and the increment are a single atomic statement; when zero rows
// are affected the room was full (or missing) at the moment the update
// ran and ErrRoomFull is returned.
func (r *RoomRepo) IncrementOccupancyTx(ctx context.Context, tx *sql.Tx, roomID string, now int64) error {
	const q = `UPDATE rooms SET occupancy = occupancy + 1, updated_at = ?
	           WHERE id = ? AND occupancy < capacity`
	res, err := tx.ExecContext(ctx, q, now, roomID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomFull
	}
	return nil
}

// DecrementOccupancyTx lowers a room's occupancy by one, guarded so it
// can never go negative even if a stray double-leave slips through.
func (r *RoomRepo) DecrementOccupancyTx(ctx context.Context, tx *sql.Tx, roomID string, now int64) error {
	const q = `UPDATE rooms SET occupancy = occupancy - 1, updated_at = ?
	           WHERE id = ? AND occupancy > 0`
	_, err := tx.ExecContext(ctx, q, now, roomID)
	return err
}

// ErrDuplicateMembership signals that a join raced with itself and the
// membership row already exists. The composite primary key rejects the
// insert; callers decide whether that is an error or an idempotent
// no-op.
var ErrDuplicateMembership = errors.New("member already in room")

// AddMemberTx inserts a membership row. Returns ErrDuplicateMembership
// when the member already holds a slot and ErrMemberNotFound when the
// member id references nobody, so callers do not have to sniff driver
// errors themselves.
func (r *RoomRepo) AddMemberTx(ctx context.Context, tx *sql.Tx, roomID, memberID string, now int64) error {
	const q = `INSERT INTO room_members (room_id, member_id, joined_at) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, roomID, memberID, now); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMembership
		}
		if isForeignKeyViolation(err) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}

// RemoveMemberTx deletes a membership row and reports whether one
// existed.
func (r *RoomRepo) RemoveMemberTx(ctx context.Context, tx *sql.Tx, roomID, memberID string) (bool, error) {
	const q = `DELETE FROM room_members WHERE room_id = ? AND member_id = ?`
	res, err := tx.ExecContext(ctx, q, roomID, memberID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsMember reports whether the member currently holds a slot in the room.
func (r *RoomRepo) IsMember(ctx context.Context, roomID, memberID string) (bool, error) {
	return isMember(ctx, r.db, roomID, memberID)
}

// IsMemberTx is IsMember inside an existing transaction.
func (r *RoomRepo) IsMemberTx(ctx context.Context, tx *sql.Tx, roomID, memberID string) (bool, error) {
	return isMember(ctx, tx, roomID, memberID)
}

func isMember(ctx context.Context, q querier, roomID, memberID string) (bool, error) {
	const sel = `SELECT 1 FROM room_members WHERE room_id = ? AND member_id = ?`
	var one int
	err := q.QueryRowContext(ctx, sel, roomID, memberID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListMembers returns the ids of every member in the room ordered by
// join time, oldest first. Deterministic ordering keeps fan-out and
// evaluation target handling stable.
func (r *RoomRepo) ListMembers(ctx context.Context, roomID string) ([]string, error) {
	return listMembers(ctx, r.db, roomID)
}

// ListMembersTx is ListMembers inside an existing transaction.
func (r *RoomRepo) ListMembersTx(ctx context.Context, tx *sql.Tx, roomID string) ([]string, error) {
	return listMembers(ctx, tx, roomID)
}

func listMembers(ctx context.Context, q querier, roomID string) ([]string, error) {
	const sel = `SELECT member_id FROM room_members WHERE room_id = ?
	             ORDER BY joined_at, member_id`
	rows, err := q.QueryContext(ctx, sel, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateCapacityTx changes a room's capacity, refusing to shrink it
// below the current occupancy. The guard is part of the statement so a
// concurrent join cannot squeeze in between a read and the write. When
// zero rows are affected the caller must distinguish a missing room
// from a too-small capacity, which is why the current row is re-read.
func (r *RoomRepo) UpdateCapacityTx(ctx context.Context, tx *sql.Tx, roomID string, capacity int, now int64) error {
	const q = `UPDATE rooms SET capacity = ?, updated_at = ?
	           WHERE id = ? AND occupancy <= ?`
	res, err := tx.ExecContext(ctx, q, capacity, now, roomID, capacity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := getRoom(ctx, tx, roomID); err != nil {
			return err
		}
		return ErrCapacityBelowOccupancy
	}
	return nil
}

// DeleteTx removes the room and its membership rows.
func (r *RoomRepo) DeleteTx(ctx context.Context, tx *sql.Tx, roomID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM room_members WHERE room_id = ?`, roomID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, roomID)
	return err
}
