package handler

// errors.go centralizes the translation from repository sentinel errors
// to HTTP responses so every handler maps the same failure to the same
// status code. Unmatched errors become a generic 500 so internals never
// leak to clients.

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crewhq/meetup-backend/internal/repository"
)

// respondError writes the JSON error response matching err.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrMeetupNotFound),
		errors.Is(err, repository.ErrMemberNotFound),
		errors.Is(err, repository.ErrNotificationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrRoomFull),
		errors.Is(err, repository.ErrAlreadyEvaluated),
		errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrCapacityBelowOccupancy),
		errors.Is(err, repository.ErrInvalidCapacity),
		errors.Is(err, repository.ErrSelfEvaluation),
		errors.Is(err, repository.ErrNotParticipant),
		errors.Is(err, repository.ErrInvalidRating):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
