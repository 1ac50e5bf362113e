package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crewhq/meetup-backend/internal/service"
)

// MeetupHandler exposes the meetup lifecycle over HTTP.
type MeetupHandler struct {
	Meetups *service.MeetupService
}

func NewMeetupHandler(m *service.MeetupService) *MeetupHandler {
	return &MeetupHandler{Meetups: m}
}

type createMeetupReq struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	MeetingPlace string   `json:"meeting_place"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Deadline     int64    `json:"deadline"`
	Capacity     int      `json:"capacity"`
}

// Create opens a new meetup with the caller as author and first
// participant.
func (h *MeetupHandler) Create(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)
	var req createMeetupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	meetup, err := h.Meetups.Create(ctx, memberID, service.CreateMeetupInput{
		Title:        req.Title,
		Content:      req.Content,
		MeetingPlace: req.MeetingPlace,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Deadline:     req.Deadline,
		Capacity:     req.Capacity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, meetup)
}

// Get returns one meetup.
func (h *MeetupHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	meetup, err := h.Meetups.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, meetup)
}

// List returns meetups newest first. Supports ?limit= and ?offset=.
func (h *MeetupHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	meetups, err := h.Meetups.List(ctx, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"meetups": meetups})
}

// Participants returns the roster of the meetup's room.
func (h *MeetupHandler) Participants(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Meetups.Participants(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"participants": ids})
}

// Complete marks the meetup COMPLETED. Repeating the call is harmless;
// the response reports whether this request performed the transition.
func (h *MeetupHandler) Complete(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	meetup, completedNow, err := h.Meetups.Complete(ctx, c.Param("id"), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"meetup":        meetup,
		"completed_now": completedNow,
	})
}

// Delete removes the meetup, its evaluations and its notifications,
// optionally cascading to the backing room.
func (h *MeetupHandler) Delete(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)
	// ?cascade_room=true also removes the backing room and its roster;
	// by default the room survives as a plain chat room.
	cascadeRoom, _ := strconv.ParseBool(c.QueryParam("cascade_room"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Meetups.Delete(ctx, c.Param("id"), memberID, cascadeRoom); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
