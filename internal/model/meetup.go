package model

// MeetupStatus is the lifecycle state of a meetup.  The only transition is
// OPEN -> COMPLETED and it is never reversed.
type MeetupStatus string

const (
	MeetupStatusOpen      MeetupStatus = "OPEN"
	MeetupStatusCompleted MeetupStatus = "COMPLETED"
)

// Meetup represents a group event backed by exactly one room.  The room is
// referenced by id only; there is no in-memory pointer between the two.
//
// Fields:
//  ID           – UUID primary key.
//  RoomID       – the backing room (1:1, unique).
//  AuthorID     – member who created the meetup; only the author may
//                 complete or delete it.
//  Title        – headline shown in listings.
//  Content      – free-form description.
//  MeetingPlace – human readable location name.
//  Latitude     – optional map coordinate (nil when not provided).
//  Longitude    – optional map coordinate (nil when not provided).
//  Deadline     – unix seconds after which joining is pointless; informational.
//  Status       – OPEN or COMPLETED.
//  CreatedAt    – unix seconds of creation.
type Meetup struct {
	ID           string       `json:"id"`
	RoomID       string       `json:"room_id"`
	AuthorID     string       `json:"author_id"`
	Title        string       `json:"title"`
	Content      string       `json:"content"`
	MeetingPlace string       `json:"meeting_place"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	Deadline     int64        `json:"deadline"`
	Status       MeetupStatus `json:"status"`
	CreatedAt    int64        `json:"created_at"`
}
