package repository

import (
	"context"
	"database/sql"

	"github.com/crewhq/meetup-backend/internal/model"
)

// EvaluationRepo stores peer ratings. The table carries a UNIQUE
// constraint over (meetup_id, evaluator_id, evaluated_id), so a
// duplicate submission that slips past the existence check still
// cannot land twice.
type EvaluationRepo struct {
	db *sql.DB
}

// NewEvaluationRepo returns a new EvaluationRepo bound to the given database.
func NewEvaluationRepo(db *sql.DB) *EvaluationRepo { return &EvaluationRepo{db: db} }

// HasEvaluatedTx reports whether the evaluator has already submitted
// any rating for this meetup. Submissions are all-or-nothing per
// evaluator, so one existing row means the whole submission happened.
func (r *EvaluationRepo) HasEvaluatedTx(ctx context.Context, tx *sql.Tx, meetupID, evaluatorID string) (bool, error) {
	const sel = `SELECT 1 FROM evaluations WHERE meetup_id = ? AND evaluator_id = ? LIMIT 1`
	var one int
	err := tx.QueryRowContext(ctx, sel, meetupID, evaluatorID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertTx stores a single rating row. A unique violation is mapped to
// ErrAlreadyEvaluated so racing duplicate submissions fail cleanly.
func (r *EvaluationRepo) InsertTx(ctx context.Context, tx *sql.Tx, e *model.Evaluation) error {
	const q = `INSERT INTO evaluations (id, meetup_id, evaluator_id, evaluated_id, kind, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q,
		e.ID, e.MeetupID, e.EvaluatorID, e.EvaluatedID, e.Kind, e.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyEvaluated
		}
		return err
	}
	return nil
}

// ListReceived returns the ratings a member has received, newest first.
// Evaluator ids are included in the rows but the model hides them from
// JSON so ratings stay anonymous at the API surface.
func (r *EvaluationRepo) ListReceived(ctx context.Context, evaluatedID string) ([]model.Evaluation, error) {
	const sel = `SELECT id, meetup_id, evaluator_id, evaluated_id, kind, created_at
	             FROM evaluations WHERE evaluated_id = ?
	             ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, sel, evaluatedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Evaluation, 0)
	for rows.Next() {
		var e model.Evaluation
		if err := rows.Scan(&e.ID, &e.MeetupID, &e.EvaluatorID, &e.EvaluatedID, &e.Kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
