package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"giftr/internal/delivery/http/helpers"
	"giftr/internal/delivery/http/middleware"
	"giftr/internal/domain"
)

type WishlistController struct {
	Logger  *slog.Logger
	Service domain.WishlistService
}

func NewWishlistController(logger *slog.Logger, svc domain.WishlistService) *WishlistController {
	return &WishlistController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *WishlistController) writeWishlistError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// AddWishlistItemRequest is the request body for POST /events/{eventID}/wishlist.
type AddWishlistItemRequest struct {
	Name  string  `json:"name"`
	Link  string  `json:"link"`
	Notes *string `json:"notes"`
}

// Validate implements Validator.
func (a AddWishlistItemRequest) Validate() []string {
	if strings.TrimSpace(a.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// WishlistItemSuccessResponse is the success response envelope for wishlist item endpoints.
type WishlistItemSuccessResponse struct {
	Data  *domain.WishlistItem `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// AddItem godoc
// @Summary Add a wishlist item
// @Description Adds a gift idea to the caller's wishlist for the event. Only participants of the event can build a wishlist.
// @Tags wishlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AddWishlistItemRequest true "Item data"
// @Success 201 {object} controllers.WishlistItemSuccessResponse "data contains the created item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a participant)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/wishlist [post]
func (c *WishlistController) AddItem(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req AddWishlistItemRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	item, err := c.Service.AddItem(r.Context(), eventID, userID, req.Name, req.Link, req.Notes)
	if err != nil {
		c.writeWishlistError(w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, item)
}

// ListWishlistSuccessResponse is the success response envelope for GET /events/{eventID}/wishlist (200).
type ListWishlistSuccessResponse struct {
	Data  []*domain.WishlistItem `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListMyItems godoc
// @Summary List the caller's wishlist
// @Description Returns the caller's own wishlist items for the event.
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListWishlistSuccessResponse "data is an array of items"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a participant)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/wishlist [get]
func (c *WishlistController) ListMyItems(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	items, err := c.Service.ListMyItems(r.Context(), eventID, userID)
	if err != nil {
		c.writeWishlistError(w, r, err, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// UpdateWishlistItemRequest is the request body for PATCH /events/{eventID}/wishlist/{itemID}.
// All fields are optional; omitted fields are unchanged.
type UpdateWishlistItemRequest struct {
	Name  *string `json:"name"`
	Link  *string `json:"link"`
	Notes *string `json:"notes"`
}

// Validate implements Validator.
func (u UpdateWishlistItemRequest) Validate() []string {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return []string{"name cannot be empty"}
	}
	return nil
}

// UpdateItem godoc
// @Summary Update a wishlist item
// @Description Updates one of the caller's wishlist items. Optional fields omitted from body are unchanged.
// @Tags wishlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param itemID path string true "Item ID (UUID)"
// @Param body body UpdateWishlistItemRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.WishlistItemSuccessResponse "data contains the updated item"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/wishlist/{itemID} [patch]
func (c *WishlistController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}
	var req UpdateWishlistItemRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	item, err := c.Service.UpdateItem(r.Context(), eventID, itemID, userID, req.Name, req.Link, req.Notes)
	if err != nil {
		c.writeWishlistError(w, r, err, "item not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, item)
}

// DeleteWishlistItemResponse is the data payload for DELETE /events/{eventID}/wishlist/{itemID} (200).
type DeleteWishlistItemResponse struct {
	Status string `json:"status"`
}

// DeleteWishlistItemSuccessResponse is the success response envelope for DELETE /events/{eventID}/wishlist/{itemID} (200).
type DeleteWishlistItemSuccessResponse struct {
	Data  DeleteWishlistItemResponse `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// DeleteItem godoc
// @Summary Delete a wishlist item
// @Description Deletes one of the caller's wishlist items.
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param itemID path string true "Item ID (UUID)"
// @Success 200 {object} controllers.DeleteWishlistItemSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/wishlist/{itemID} [delete]
func (c *WishlistController) DeleteItem(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteItem(r.Context(), eventID, itemID, userID); err != nil {
		c.writeWishlistError(w, r, err, "item not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteWishlistItemResponse{Status: "deleted"})
}
