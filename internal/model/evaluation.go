package model

// RatingKind is the grade one participant gives another after a meetup
// completes.  Each kind carries a fixed reputation delta.
type RatingKind string

const (
	RatingExcellent RatingKind = "EXCELLENT"
	RatingGood      RatingKind = "GOOD"
	RatingNeutral   RatingKind = "NEUTRAL"
	RatingBad       RatingKind = "BAD"
	RatingTerrible  RatingKind = "TERRIBLE"
)

// ratingDeltas maps each kind to the signed reputation change it applies.
var ratingDeltas = map[RatingKind]float64{
	RatingExcellent: 2.0,
	RatingGood:      1.0,
	RatingNeutral:   0.0,
	RatingBad:       -1.0,
	RatingTerrible:  -2.0,
}

// Delta returns the reputation change for the kind and whether the kind is
// one of the five known grades.
func (k RatingKind) Delta() (float64, bool) {
	d, ok := ratingDeltas[k]
	return d, ok
}

// Evaluation is one rating of one participant by another for a specific
// meetup.  At most one row exists per (meetup, evaluator, evaluated)
// triple; evaluator and evaluated are always distinct members of the
// meetup's room.  Rows are written once and never updated.
type Evaluation struct {
	ID          string     `json:"id"`
	MeetupID    string     `json:"meetup_id"`
	EvaluatorID string     `json:"-"` // never exposed: evaluations are anonymous
	EvaluatedID string     `json:"evaluated_id"`
	Kind        RatingKind `json:"kind"`
	CreatedAt   int64      `json:"created_at"`
}
