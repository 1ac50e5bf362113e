package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/crewhq/meetup-backend/internal/model"
	"github.com/crewhq/meetup-backend/internal/repository"
)

// EvaluationService owns the peer rating ledger. A member submits all of
// their ratings for a meetup at once; the submission is all-or-nothing
// and can happen at most once per (meetup, evaluator). Each accepted
// rating shifts the target's reputation by the kind's fixed delta,
// clamped into [0, 100].
type EvaluationService struct {
	db          *sql.DB
	meetups     *repository.MeetupRepo
	rooms       *repository.RoomRepo
	evaluations *repository.EvaluationRepo
	members     *repository.MemberRepo
}

// NewEvaluationService wires an EvaluationService.
func NewEvaluationService(db *sql.DB, meetups *repository.MeetupRepo, rooms *repository.RoomRepo,
	evaluations *repository.EvaluationRepo, members *repository.MemberRepo) *EvaluationService {
	return &EvaluationService{
		db:          db,
		meetups:     meetups,
		rooms:       rooms,
		evaluations: evaluations,
		members:     members,
	}
}

// RatingInput is one rating inside a submission.
type RatingInput struct {
	TargetID string           `json:"target_id"`
	Kind     model.RatingKind `json:"kind"`
}

// Submit records the evaluator's ratings for a completed meetup and
// applies the reputation deltas. Rules, in the order they are checked:
//
//   - the meetup must exist and be COMPLETED; an OPEN meetup behaves
//     exactly like a missing one so callers cannot probe lifecycle state
//   - the evaluator must be on the meetup's roster
//   - the evaluator must not have submitted for this meetup before
//   - every rating must use a known kind, name a distinct roster member,
//     and never the evaluator themselves
//
// The whole submission commits or none of it does.
func (s *EvaluationService) Submit(ctx context.Context, meetupID, evaluatorID string, ratings []RatingInput) error {
	now := time.Now().UTC().Unix()

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
	if meetup.Status != model.MeetupStatusCompleted {
		return repository.ErrMeetupNotFound
	}

	roster, err := s.rooms.ListMembersTx(ctx, tx, meetup.RoomID)
	if err != nil {
		return err
	}
	onRoster := make(map[string]bool, len(roster))
	for _, id := range roster {
		onRoster[id] = true
	}
	if !onRoster[evaluatorID] {
		return repository.ErrNotParticipant
	}

	already, err := s.evaluations.HasEvaluatedTx(ctx, tx, meetupID, evaluatorID)
	if err != nil {
		return err
	}
	if already {
		return repository.ErrAlreadyEvaluated
	}

	seen := make(map[string]bool, len(ratings))
	for _, r := range ratings {
		if _, ok := r.Kind.Delta(); !ok {
			return repository.ErrInvalidRating
		}
		if r.TargetID == evaluatorID {
			return repository.ErrSelfEvaluation
		}
		if !onRoster[r.TargetID] {
			return repository.ErrNotParticipant
		}
		if seen[r.TargetID] {
			return repository.ErrInvalidRating
		}
		seen[r.TargetID] = true
	}

	// Apply in target order so two concurrent submissions touch profile
	// rows in the same sequence and cannot deadlock each other.
	sorted := make([]RatingInput, len(ratings))
	copy(sorted, ratings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TargetID < sorted[j].TargetID })

	for _, r := range sorted {
		delta, _ := r.Kind.Delta()
		e := &model.Evaluation{
			ID:          uuid.NewString(),
			MeetupID:    meetupID,
			EvaluatorID: evaluatorID,
			EvaluatedID: r.TargetID,
			Kind:        r.Kind,
			CreatedAt:   now,
		}
		if err := s.evaluations.InsertTx(ctx, tx, e); err != nil {
			return err
		}
		if err := s.members.ApplyReputationDeltaTx(ctx, tx, r.TargetID, delta, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListReceived returns the ratings a member has received, newest first.
// Evaluator identities never leave the storage layer.
func (s *EvaluationService) ListReceived(ctx context.Context, memberID string) ([]model.Evaluation, error) {
	return s.evaluations.ListReceived(ctx, memberID)
}
