// Package queue defines message payloads exchanged over the message broker.
package queue

// MeetupCompletedEvent is published after a meetup's completion commits.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database. The
// notification rows themselves are written transactionally with the
// completion; this event is auxiliary.
type MeetupCompletedEvent struct {
	MeetupID     string   `json:"meetup_id"`
	RoomID       string   `json:"room_id"`
	AuthorID     string   `json:"author_id"`
	Title        string   `json:"title"`
	Participants []string `json:"participants"`
	CompletedAt  string   `json:"completed_at"`
}
