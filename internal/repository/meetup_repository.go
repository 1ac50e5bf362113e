package repository

import (
	"context"
	"database/sql"

	"github.com/crewhq/meetup-backend/internal/model"
)

// MeetupRepo provides CRUD operations for meetups. A meetup's status
// only ever moves one way, OPEN to COMPLETED, and the transition is
// expressed as a conditional update so exactly one caller can own it.
type MeetupRepo struct {
	db *sql.DB
}

// NewMeetupRepo returns a new MeetupRepo bound to the given database.
func NewMeetupRepo(db *sql.DB) *MeetupRepo { return &MeetupRepo{db: db} }

// CreateTx inserts a meetup within the scope of an existing transaction.
func (r *MeetupRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Meetup) error {
	const q = `INSERT INTO meetups
	           (id, room_id, author_id, title, content, meeting_place, latitude, longitude, deadline, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		m.ID, m.RoomID, m.AuthorID, m.Title, m.Content, m.MeetingPlace,
		m.Latitude, m.Longitude, m.Deadline, m.Status, m.CreatedAt)
	return err
}

// GetByID fetches a meetup by id. Returns ErrMeetupNotFound when no
// such meetup exists.
func (r *MeetupRepo) GetByID(ctx context.Context, id string) (*model.Meetup, error) {
	return getMeetup(ctx, r.db, id)
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *MeetupRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Meetup, error) {
	return getMeetup(ctx, tx, id)
}

func getMeetup(ctx context.Context, q querier, id string) (*model.Meetup, error) {
	const sel = `SELECT id, room_id, author_id, title, content, meeting_place,
	                    latitude, longitude, deadline, status, created_at
	             FROM meetups WHERE id = ?`
	var m model.Meetup
	var lat, lng sql.NullFloat64
	err := q.QueryRowContext(ctx, sel, id).Scan(
		&m.ID, &m.RoomID, &m.AuthorID, &m.Title, &m.Content, &m.MeetingPlace,
		&lat, &lng, &m.Deadline, &m.Status, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMeetupNotFound
	}
	if err != nil {
		return nil, err
	}
	if lat.Valid {
		v := lat.Float64
		m.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		m.Longitude = &v
	}
	return &m, nil
}

// GetByRoomIDTx fetches the meetup backing a room, if any. A room holds
// at most one meetup (the column is unique); sql.ErrNoRows from the
// underlying query is surfaced as ErrMeetupNotFound.
func (r *MeetupRepo) GetByRoomIDTx(ctx context.Context, tx *sql.Tx, roomID string) (*model.Meetup, error) {
	const sel = `SELECT id FROM meetups WHERE room_id = ?`
	var id string
	err := tx.QueryRowContext(ctx, sel, roomID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrMeetupNotFound
	}
	if err != nil {
		return nil, err
	}
	return getMeetup(ctx, tx, id)
}

// MarkCompletedTx flips an OPEN meetup to COMPLETED. The status check
// lives in the WHERE clause, so out of any number of concurrent callers
// exactly one sees a row affected and owns the transition; everyone
// else observes completed=false and must treat the call as an
// idempotent repeat.
func (r *MeetupRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, meetupID string) (bool, error) {
	const q = `UPDATE meetups SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.MeetupStatusCompleted, meetupID, model.MeetupStatusOpen)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteTx removes a meetup together with its evaluations and the
// notifications that reference it. Room rows are handled separately by
// the caller because a meetup owns its room one-to-one.
func (r *MeetupRepo) DeleteTx(ctx context.Context, tx *sql.Tx, meetupID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM evaluations WHERE meetup_id = ?`, meetupID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE meetup_id = ?`, meetupID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM meetups WHERE id = ?`, meetupID)
	return err
}

// List returns meetups ordered newest first with simple offset paging.
func (r *MeetupRepo) List(ctx context.Context, limit, offset int) ([]model.Meetup, error) {
	const sel = `SELECT id, room_id, author_id, title, content, meeting_place,
	                    latitude, longitude, deadline, status, created_at
	             FROM meetups ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, sel, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Meetup, 0)
	for rows.Next() {
		var m model.Meetup
		var lat, lng sql.NullFloat64
		if err := rows.Scan(
			&m.ID, &m.RoomID, &m.AuthorID, &m.Title, &m.Content, &m.MeetingPlace,
			&lat, &lng, &m.Deadline, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		if lat.Valid {
			v := lat.Float64
			m.Latitude = &v
		}
		if lng.Valid {
			v := lng.Float64
			m.Longitude = &v
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
