package model

// NotificationKind identifies what a notification is about.  This
// subsystem only ever produces EVALUATION_REQUEST rows; there is
// deliberately no "you received a rating" kind, so a member can never tell
// who rated them or when.
type NotificationKind string

const (
	NotificationEvaluationRequest NotificationKind = "EVALUATION_REQUEST"
)

// Notification is a persisted message for one member.  Rows are produced
// exactly once per (recipient, meetup) by the completion fan-out and read
// by the delivery surface; this subsystem never pushes them anywhere.
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Content     string           `json:"content"`
	MeetupID    string           `json:"meetup_id"`
	Read        bool             `json:"read"`
	CreatedAt   int64            `json:"created_at"`

	// Evaluated is derived on read: whether the recipient has already
	// submitted their ratings for the referenced meetup.
	Evaluated bool `json:"evaluated"`
}
