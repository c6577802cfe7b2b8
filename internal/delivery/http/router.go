package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"giftr/internal/delivery/http/controllers"
	"giftr/internal/delivery/http/helpers"
)

// Middleware wraps a handler, typically to enforce authentication.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// NewRouter initializes the HTTP router with all application routes.
// requireAuth guards user-facing routes; requireCallback guards the internal
// route invoked by the draw scheduler. The identity webhook authenticates
// itself with a body signature and is registered bare.
func NewRouter(
	eventController *controllers.EventController,
	participantController *controllers.ParticipantController,
	drawController *controllers.DrawController,
	wishlistController *controllers.WishlistController,
	webhookController *controllers.WebhookController,
	requireAuth Middleware,
	requireCallback Middleware,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/me", requireAuth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(eventController.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))
	mux.HandleFunc("PUT /events/{eventID}/draw/schedule", requireAuth(eventController.ScheduleDraw))
	mux.HandleFunc("DELETE /events/{eventID}/draw/schedule", requireAuth(eventController.CancelScheduledDraw))

	// Participants
	mux.HandleFunc("POST /events/{eventID}/participants", requireAuth(participantController.Invite))
	mux.HandleFunc("GET /events/{eventID}/participants", requireAuth(participantController.List))
	mux.HandleFunc("POST /events/{eventID}/participants/me", requireAuth(participantController.Join))
	mux.HandleFunc("PATCH /events/{eventID}/participants/me", requireAuth(participantController.Respond))
	mux.HandleFunc("DELETE /events/{eventID}/participants/me", requireAuth(participantController.Leave))
	mux.HandleFunc("DELETE /events/{eventID}/participants/{participantID}", requireAuth(participantController.Remove))

	// Draw
	mux.HandleFunc("POST /events/{eventID}/draw", requireAuth(drawController.RunDraw))
	mux.HandleFunc("GET /events/{eventID}/recipient", requireAuth(participantController.GetMyAssignment))
	mux.HandleFunc("POST /internal/events/{eventID}/draw", requireCallback(drawController.RunScheduledDraw))

	// Wishlist
	mux.HandleFunc("POST /events/{eventID}/wishlist", requireAuth(wishlistController.AddItem))
	mux.HandleFunc("GET /events/{eventID}/wishlist", requireAuth(wishlistController.ListMyItems))
	mux.HandleFunc("PATCH /events/{eventID}/wishlist/{itemID}", requireAuth(wishlistController.UpdateItem))
	mux.HandleFunc("DELETE /events/{eventID}/wishlist/{itemID}", requireAuth(wishlistController.DeleteItem))

	// Identity provider webhook
	mux.HandleFunc("POST /webhooks/identity", webhookController.HandleIdentityEvent)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
