package repository

import (
	"context"
	"database/sql"

	"github.com/crewhq/meetup-backend/internal/model"
)

// NotificationRepo stores per-member notifications. The table carries a
// UNIQUE constraint over (recipient_id, meetup_id, kind) as a backstop
// for the exactly-once fan-out: even if a completion somehow fanned out
// twice, the second batch of inserts would not land.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// InsertTx stores one notification row. Duplicate fan-out rows are
// silently skipped; everything else is an error.
func (r *NotificationRepo) InsertTx(ctx context.Context, tx *sql.Tx, n *model.Notification) error {
	const q = `INSERT INTO notifications (id, recipient_id, kind, title, content, meetup_id, is_read, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q,
		n.ID, n.RecipientID, n.Kind, n.Title, n.Content, n.MeetupID, n.Read, n.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

// ListByRecipient returns a member's notifications, newest first. Each
// row is annotated with whether the recipient already submitted their
// ratings for the referenced meetup, so clients can grey out requests
// that were acted on.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID string) ([]model.Notification, error) {
	const sel = `SELECT n.id, n.recipient_id, n.kind, n.title, n.content, n.meetup_id, n.is_read, n.created_at,
	                    EXISTS(SELECT 1 FROM evaluations e
	                           WHERE e.meetup_id = n.meetup_id AND e.evaluator_id = n.recipient_id)
	             FROM notifications n WHERE n.recipient_id = ?
	             ORDER BY n.created_at DESC, n.id`
	rows, err := r.db.QueryContext(ctx, sel, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Title, &n.Content,
			&n.MeetupID, &n.Read, &n.CreatedAt, &n.Evaluated); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read. The recipient id is part of
// the WHERE clause so a member cannot touch someone else's rows; a
// miss on either condition comes back as ErrNotificationNotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	const q = `UPDATE notifications SET is_read = TRUE WHERE id = ? AND recipient_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, recipientID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// UnreadCount returns how many unread notifications the member has.
func (r *NotificationRepo) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	const sel = `SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = FALSE`
	var count int
	err := r.db.QueryRowContext(ctx, sel, recipientID).Scan(&count)
	return count, err
}

// DeleteOlderThan removes notifications created before the cutoff and
// returns the number of rows removed. Used by the periodic cleanup job.
func (r *NotificationRepo) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	const q = `DELETE FROM notifications WHERE created_at < ?`
	res, err := r.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
