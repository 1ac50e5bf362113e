package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crewhq/meetup-backend/internal/service"
)

// EvaluationHandler exposes peer rating submission and retrieval.
type EvaluationHandler struct {
	Evaluations *service.EvaluationService
}

func NewEvaluationHandler(e *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{Evaluations: e}
}

type submitEvaluationsReq struct {
	Ratings []service.RatingInput `json:"ratings"`
}

// Submit records the caller's ratings for a completed meetup. The whole
// submission is accepted or rejected as one unit and can happen at most
// once per caller per meetup.
func (h *EvaluationHandler) Submit(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)
	var req submitEvaluationsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Ratings) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ratings required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Evaluations.Submit(ctx, c.Param("id"), memberID, req.Ratings); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// ListReceived returns the ratings the caller has received. Evaluator
// identities are never included.
func (h *EvaluationHandler) ListReceived(c echo.Context) error {
	memberID, _ := c.Get("member_id").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	evals, err := h.Evaluations.ListReceived(ctx, memberID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"evaluations": evals})
}
