package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"giftr/internal/delivery/http/helpers"
	"giftr/internal/domain"
)

const webhookSignatureHeader = "X-Webhook-Signature"

// webhookMaxBodyBytes caps webhook payload size.
const webhookMaxBodyBytes = 1 << 20

type WebhookController struct {
	Logger  *slog.Logger
	Service domain.UserService
	Secret  string
}

func NewWebhookController(logger *slog.Logger, svc domain.UserService, secret string) *WebhookController {
	return &WebhookController{
		Logger:  logger,
		Service: svc,
		Secret:  secret,
	}
}

// IdentityWebhookRequest is the payload delivered by the identity provider.
type IdentityWebhookRequest struct {
	Type string `json:"type"`
	Data struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"data"`
}

// WebhookAckResponse is the data payload for POST /webhooks/identity (200).
type WebhookAckResponse struct {
	Status string `json:"status"`
}

// WebhookAckSuccessResponse is the success response envelope for POST /webhooks/identity (200).
type WebhookAckSuccessResponse struct {
	Data  WebhookAckResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// HandleIdentityEvent godoc
// @Summary Identity provider webhook
// @Description Receives user lifecycle events from the identity provider and mirrors them locally. The request body is authenticated with an HMAC-SHA256 signature in the X-Webhook-Signature header.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "Hex HMAC-SHA256 of the raw body"
// @Param body body IdentityWebhookRequest true "Event payload"
// @Success 200 {object} controllers.WebhookAckSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (bad signature)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /webhooks/identity [post]
func (c *WebhookController) HandleIdentityEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, webhookMaxBodyBytes))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "cannot read body")
		return
	}
	if !c.verifySignature(body, r.Header.Get(webhookSignatureHeader)) {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid signature")
		return
	}

	var payload IdentityWebhookRequest
	if err := json.Unmarshal(body, &payload); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid JSON payload")
		return
	}

	switch payload.Type {
	case "user.created", "user.updated":
		if _, err := c.Service.SyncFromProvider(r.Context(), payload.Data.ID, payload.Data.Email, payload.Data.Name); err != nil {
			c.writeWebhookError(w, r, err)
			return
		}
	case "user.deleted":
		if err := c.Service.RemoveFromProvider(r.Context(), payload.Data.ID); err != nil {
			c.writeWebhookError(w, r, err)
			return
		}
	default:
		// Unknown event types are acknowledged so the provider stops retrying.
		c.Logger.WarnContext(r.Context(), "ignoring unknown webhook event", "type", payload.Type)
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, WebhookAckResponse{Status: "ok"})
}

func (c *WebhookController) verifySignature(body []byte, signature string) bool {
	if c.Secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.Secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *WebhookController) writeWebhookError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	c.Logger.ErrorContext(r.Context(), "webhook processing failed", "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
}
