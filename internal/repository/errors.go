// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current member is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrRoomFull signals that an admission cannot proceed
// because the room already holds as many members as its capacity
// allows.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrRoomFull is returned when a join would push a room's occupancy
// past its capacity. Handlers should translate this into an HTTP 409
// response.
var ErrRoomFull = errors.New("room is full")

// ErrRoomNotFound is returned when the referenced room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrMeetupNotFound is returned when the referenced meetup does not
// exist, or when an operation requires the meetup to be in a state it
// is not in and the caller should not learn more than that.
var ErrMeetupNotFound = errors.New("meetup not found")

// ErrMemberNotFound is returned when the referenced member does not exist.
var ErrMemberNotFound = errors.New("member not found")

// ErrNotificationNotFound is returned when a notification does not exist
// or does not belong to the requesting member.
var ErrNotificationNotFound = errors.New("notification not found")

// ErrCapacityBelowOccupancy is returned when a capacity update would
// set the limit below the number of members currently in the room.
var ErrCapacityBelowOccupancy = errors.New("capacity below current occupancy")

// ErrInvalidCapacity is returned when a requested capacity is below the
// floor for the room kind.
var ErrInvalidCapacity = errors.New("invalid capacity")

// ErrSelfEvaluation is returned when a member tries to rate themselves.
var ErrSelfEvaluation = errors.New("cannot evaluate yourself")

// ErrAlreadyEvaluated is returned when a member submits a second set of
// ratings for the same meetup. The first submission is the one that
// counts.
var ErrAlreadyEvaluated = errors.New("already evaluated this meetup")

// ErrNotParticipant is returned when an evaluation names a target who
// was not in the meetup's room, or when the evaluator themselves was
// not a participant.
var ErrNotParticipant = errors.New("not a participant of this meetup")

// ErrInvalidRating is returned when a submission carries an unknown
// rating kind or names the same target twice.
var ErrInvalidRating = errors.New("invalid rating")

// ErrUsernameExists is returned on registration when the username is
// already taken.
var ErrUsernameExists = errors.New("username already exists")

// isUniqueViolation reports whether err is a unique constraint failure
// from either supported driver. MySQL exposes error number 1062; the
// sqlite driver only exposes the message text.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint")
}

// isForeignKeyViolation reports whether err is a foreign key failure
// from either supported driver. MySQL exposes error number 1452.
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1452
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint")
}
