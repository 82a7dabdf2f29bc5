package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "chatvote/docs"
	"chatvote/internal/delivery/http/controllers"
	"chatvote/internal/delivery/http/middleware"
	"chatvote/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Everything except /health and /swagger/ requires a Bearer actor token.
func NewRouter(
	verifier domain.TokenVerifier,
	events *controllers.EventController,
	votes *controllers.VoteController,
	pending *controllers.PendingController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Events
	mux.HandleFunc("POST /events", auth(events.CreateEvent))
	mux.HandleFunc("GET /events", auth(events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(events.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}/capacity", auth(events.SetCapacity))
	mux.HandleFunc("POST /events/{eventID}/close", auth(events.CloseEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(events.DeleteEvent))

	// Votes
	mux.HandleFunc("POST /events/{eventID}/votes", auth(votes.CastVote))
	mux.HandleFunc("PUT /events/{eventID}/votes/{participantID}", auth(votes.AdminSetVote))
	mux.HandleFunc("DELETE /events/{eventID}/votes/{participantID}", auth(votes.RemoveParticipant))

	// Pending admin operations
	mux.HandleFunc("POST /events/{eventID}/pending", auth(pending.BeginPending))
	mux.HandleFunc("POST /pending/reply", auth(pending.Reply))
	mux.HandleFunc("DELETE /pending", auth(pending.CancelPending))

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
