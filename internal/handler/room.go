package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crewhq/meetup-backend/internal/service"
)

// RoomHandler exposes room admission over HTTP.
type RoomHandler struct {
	Rooms *service.RoomService
}

func NewRoomHandler(r *service.RoomService) *RoomHandler {
	return &RoomHandler{Rooms: r}
}

// Get returns the room snapshot including current occupancy.
func (h *RoomHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Members returns the room's roster in join order.
func (h *RoomHandler) Members(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids, err := h.Rooms.Members(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"members": ids})
}

// Join admits the caller into the room. Joining a room you are already
// in returns 200 with the unchanged snapshot; a full room returns 409.
func (h *RoomHandler) Join(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.Join(ctx, c.Param("id"), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// Leave releases the caller's slot. Leaving a room you are not in is a
// no-op.
func (h *RoomHandler) Leave(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.Leave(ctx, c.Param("id"), memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

type updateCapacityReq struct {
	Capacity int `json:"capacity"`
}

// UpdateCapacity resizes a GROUP room. Author only; shrinking below the
// current occupancy is rejected.
func (h *RoomHandler) UpdateCapacity(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)
	var req updateCapacityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.UpdateCapacity(ctx, c.Param("id"), memberID, req.Capacity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

type createDirectReq struct {
	MemberID string `json:"member_id"`
}

// CreateDirect opens a one-on-one room between the caller and another
// member.
func (h *RoomHandler) CreateDirect(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)
	var req createDirectReq
	if err := c.Bind(&req); err != nil || req.MemberID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "member_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.CreateDirect(ctx, memberID, req.MemberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Delete closes a DIRECT room the caller is part of. GROUP rooms are
// removed through their meetup instead.
func (h *RoomHandler) Delete(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.DeleteDirect(ctx, c.Param("id"), memberID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
