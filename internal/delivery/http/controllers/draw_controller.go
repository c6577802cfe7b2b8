package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"giftr/internal/delivery/http/helpers"
	"giftr/internal/delivery/http/middleware"
	"giftr/internal/domain"
)

type DrawController struct {
	Logger  *slog.Logger
	Service domain.DrawService
}

func NewDrawController(logger *slog.Logger, svc domain.DrawService) *DrawController {
	return &DrawController{
		Logger:  logger,
		Service: svc,
	}
}

// RunDrawSuccessResponse is the success response envelope for POST /events/{eventID}/draw (200).
type RunDrawSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RunDraw godoc
// @Summary Run the draw
// @Description Assigns every accepted participant a recipient in a single secret cycle and marks the event drawn. Only the organizer can run the draw; it runs at most once per event and needs at least 2 accepted participants.
// @Tags draw
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RunDrawSuccessResponse "data contains the drawn event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already drawn)"
// @Failure 422 {object} helpers.APIResponse "error.code: bad_request (fewer than 2 accepted participants)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/draw [post]
func (c *DrawController) RunDraw(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Service.Draw(r.Context(), eventID, userID)
	if err != nil {
		c.writeDrawError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// RunScheduledDraw godoc
// @Summary Run a scheduled draw (scheduler callback)
// @Description Invoked by the external scheduler when an event's scheduled draw time arrives. Authenticated with the callback token, not a user session.
// @Tags draw
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RunDrawSuccessResponse "data contains the drawn event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already drawn)"
// @Failure 422 {object} helpers.APIResponse "error.code: bad_request (fewer than 2 accepted participants)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /internal/events/{eventID}/draw [post]
func (c *DrawController) RunScheduledDraw(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.RunScheduledDraw(r.Context(), eventID)
	if err != nil {
		c.writeDrawError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

func (c *DrawController) writeDrawError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrEventAlreadyDrawn):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event already drawn")
	case errors.Is(err, domain.ErrInsufficientParticipants):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
