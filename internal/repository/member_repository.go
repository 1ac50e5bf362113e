package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/crewhq/meetup-backend/internal/model"
)

// MemberRepo manages member accounts and their profiles. A profile row
// is created alongside the member so reputation updates never have to
// deal with a missing row.
type MemberRepo struct{ DB *sql.DB }

// NewMemberRepo returns a new MemberRepo bound to the given database.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// Create inserts a member and their initial profile in one transaction.
// Usernames are normalized to lowercase before storage. Returns
// ErrUsernameExists when the username is taken.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	m.Username = strings.ToLower(strings.TrimSpace(m.Username))
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	const insMember = `INSERT INTO members (id, username, nickname, password_hash, created_at)
	                   VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insMember,
		m.ID, m.Username, m.Nickname, m.PasswordHash, m.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameExists
		}
		return err
	}

	const insProfile = `INSERT INTO profiles (member_id, avatar_url, reputation, updated_at)
	                    VALUES (?, '', ?, ?)`
	if _, err := tx.ExecContext(ctx, insProfile, m.ID, model.InitialReputation, m.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByUsername fetches a member by normalized username. Returns
// ErrMemberNotFound when no such member exists.
func (r *MemberRepo) GetByUsername(ctx context.Context, username string) (*model.Member, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	const sel = `SELECT id, username, nickname, password_hash, created_at
	             FROM members WHERE username = ? LIMIT 1`
	var m model.Member
	err := r.DB.QueryRowContext(ctx, sel, username).Scan(
		&m.ID, &m.Username, &m.Nickname, &m.PasswordHash, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	const sel = `SELECT id, username, nickname, password_hash, created_at
	             FROM members WHERE id = ? LIMIT 1`
	var m model.Member
	err := r.DB.QueryRowContext(ctx, sel, id).Scan(
		&m.ID, &m.Username, &m.Nickname, &m.PasswordHash, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetProfile fetches a member's profile.
func (r *MemberRepo) GetProfile(ctx context.Context, memberID string) (*model.Profile, error) {
	const sel = `SELECT member_id, avatar_url, reputation, updated_at
	             FROM profiles WHERE member_id = ? LIMIT 1`
	var p model.Profile
	err := r.DB.QueryRowContext(ctx, sel, memberID).Scan(
		&p.MemberID, &p.AvatarURL, &p.Reputation, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyReputationDeltaTx shifts a member's reputation by delta and
// clamps the result into [0, 100]. The shift and the clamp are separate
// statements but run inside the caller's transaction, so no other
// reader ever observes an out-of-range value. Neither supported driver
// offers a portable single-statement clamp, hence the three updates.
func (r *MemberRepo) ApplyReputationDeltaTx(ctx context.Context, tx *sql.Tx, memberID string, delta float64, now int64) error {
	if delta != 0 {
		const shift = `UPDATE profiles SET reputation = reputation + ?, updated_at = ?
		               WHERE member_id = ?`
		res, err := tx.ExecContext(ctx, shift, delta, now, memberID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrMemberNotFound
		}
	}
	const floor = `UPDATE profiles SET reputation = 0 WHERE member_id = ? AND reputation < 0`
	if _, err := tx.ExecContext(ctx, floor, memberID); err != nil {
		return err
	}
	const ceiling = `UPDATE profiles SET reputation = 100 WHERE member_id = ? AND reputation > 100`
	_, err := tx.ExecContext(ctx, ceiling, memberID)
	return err
}
