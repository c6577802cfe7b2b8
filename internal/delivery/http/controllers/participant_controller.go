package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"giftr/internal/delivery/http/helpers"
	"giftr/internal/delivery/http/middleware"
	"giftr/internal/domain"
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

type ParticipantController struct {
	Logger  *slog.Logger
	Service domain.ParticipantService
}

func NewParticipantController(logger *slog.Logger, svc domain.ParticipantService) *ParticipantController {
	return &ParticipantController{
		Logger:  logger,
		Service: svc,
	}
}

// writeParticipantError maps domain errors shared by participant endpoints.
func (c *ParticipantController) writeParticipantError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrEventAlreadyDrawn):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event already drawn")
	case errors.Is(err, domain.ErrAlreadyParticipant):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "already a participant")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// InviteParticipantRequest is the request body for POST /events/{eventID}/participants.
type InviteParticipantRequest struct {
	Email string `json:"email"`
}

// Validate implements Validator.
func (i InviteParticipantRequest) Validate() []string {
	var errs []string
	if i.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(strings.TrimSpace(i.Email)) {
		errs = append(errs, "email must be a valid email address")
	}
	return errs
}

// InviteParticipantSuccessResponse is the success response envelope for POST /events/{eventID}/participants (201).
type InviteParticipantSuccessResponse struct {
	Data  *domain.Participant `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// Invite godoc
// @Summary Invite a participant by email
// @Description Invites a user to the event by email and sends an invitation email. Only the organizer can invite. Unknown emails get a placeholder account claimed on signup. Rejected once the event is drawn.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body InviteParticipantRequest true "Invitee email"
// @Success 201 {object} controllers.InviteParticipantSuccessResponse "data contains the pending participant"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already participant or drawn)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants [post]
func (c *ParticipantController) Invite(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req InviteParticipantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	participant, err := c.Service.Invite(r.Context(), eventID, userID, req.Email)
	if err != nil {
		c.writeParticipantError(w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, participant)
}

// Join godoc
// @Summary Join an event
// @Description Adds the authenticated user to the event as an accepted participant. Rejected once the event is drawn.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.InviteParticipantSuccessResponse "data contains the participant"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already participant or drawn)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants/me [post]
func (c *ParticipantController) Join(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	participant, err := c.Service.Join(r.Context(), eventID, userID)
	if err != nil {
		c.writeParticipantError(w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, participant)
}

// RespondInvitationRequest is the request body for PATCH /events/{eventID}/participants/me.
type RespondInvitationRequest struct {
	Accept *bool `json:"accept"`
}

// Validate implements Validator.
func (rr RespondInvitationRequest) Validate() []string {
	if rr.Accept == nil {
		return []string{"accept is required"}
	}
	return nil
}

// Respond godoc
// @Summary Accept or decline an invitation
// @Description Moves the caller's pending invitation to accepted or declined. Rejected once the event is drawn.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RespondInvitationRequest true "accept: true or false"
// @Success 200 {object} controllers.InviteParticipantSuccessResponse "data contains the updated participant"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not pending)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already drawn)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants/me [patch]
func (c *ParticipantController) Respond(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req RespondInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	participant, err := c.Service.Respond(r.Context(), eventID, userID, *req.Accept)
	if err != nil {
		c.writeParticipantError(w, r, err, "invitation not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// RemoveParticipantResponse is the data payload for participant removal endpoints (200).
type RemoveParticipantResponse struct {
	Status string `json:"status"`
}

// RemoveParticipantSuccessResponse is the success response envelope for participant removal endpoints (200).
type RemoveParticipantSuccessResponse struct {
	Data  RemoveParticipantResponse `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// Leave godoc
// @Summary Leave an event
// @Description Removes the caller's participation. Rejected once the event is drawn.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RemoveParticipantSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already drawn)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants/me [delete]
func (c *ParticipantController) Leave(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Leave(r.Context(), eventID, userID); err != nil {
		c.writeParticipantError(w, r, err, "participation not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RemoveParticipantResponse{Status: "removed"})
}

// Remove godoc
// @Summary Remove a participant
// @Description Removes a participant from the event. Only the organizer can remove. Rejected once the event is drawn.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param participantID path string true "Participant ID (UUID)"
// @Success 200 {object} controllers.RemoveParticipantSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already drawn)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants/{participantID} [delete]
func (c *ParticipantController) Remove(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	participantID, ok := pathUUID(w, r, "participantID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Remove(r.Context(), eventID, participantID, userID); err != nil {
		c.writeParticipantError(w, r, err, "event or participant not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RemoveParticipantResponse{Status: "removed"})
}

// ListParticipantsSuccessResponse is the success response envelope for GET /events/{eventID}/participants (200).
type ListParticipantsSuccessResponse struct {
	Data  []*domain.ParticipantWithUser `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// List godoc
// @Summary List participants of an event
// @Description Returns the event's participants with their user profiles. Only the organizer and participants can list.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListParticipantsSuccessResponse "data is an array of participants"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/participants [get]
func (c *ParticipantController) List(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	participants, err := c.Service.ListParticipants(r.Context(), eventID, userID)
	if err != nil {
		c.writeParticipantError(w, r, err, "event not found")
		return
	}
	if participants == nil {
		participants = []*domain.ParticipantWithUser{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, participants)
}

// GetMyAssignmentSuccessResponse is the success response envelope for GET /events/{eventID}/recipient (200).
type GetMyAssignmentSuccessResponse struct {
	Data  *domain.AssignmentReveal `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// GetMyAssignment godoc
// @Summary Reveal the caller's gift recipient
// @Description Returns the participant the caller gives to, with that recipient's wishlist. Only available after the draw has run.
// @Tags draw
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetMyAssignmentSuccessResponse "data contains recipient and wishlist"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a participant)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no assignment)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (draw has not run)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/recipient [get]
func (c *ParticipantController) GetMyAssignment(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	reveal, err := c.Service.GetMyAssignment(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotDrawn) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "draw has not run yet")
			return
		}
		c.writeParticipantError(w, r, err, "no assignment for this participant")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reveal)
}
