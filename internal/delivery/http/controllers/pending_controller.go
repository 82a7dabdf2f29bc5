package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"chatvote/internal/delivery/http/helpers"
	"chatvote/internal/delivery/http/middleware"
	"chatvote/internal/domain"
)

// PendingController correlates an admin's free-standing follow-up reply
// (new capacity value, guest count for a picked participant) with the
// action that requested it.
type PendingController struct {
	Logger   *slog.Logger
	Service  domain.AttendanceService
	Sessions domain.AdminSessionStore
}

func NewPendingController(logger *slog.Logger, svc domain.AttendanceService, sessions domain.AdminSessionStore) *PendingController {
	return &PendingController{
		Logger:   logger,
		Service:  svc,
		Sessions: sessions,
	}
}

// BeginPendingRequest is the request body for POST /events/{eventID}/pending.
type BeginPendingRequest struct {
	Mode                string `json:"mode"`
	TargetParticipantID string `json:"target_participant_id"`
	OriginMessageRef    string `json:"origin_message_ref"`
}

// Validate implements helpers.Validator.
func (r *BeginPendingRequest) Validate() []string {
	switch domain.PendingMode(r.Mode) {
	case domain.PendingCapacity:
		return nil
	case domain.PendingVote:
		if r.TargetParticipantID == "" {
			return []string{"target_participant_id is required for mode vote"}
		}
		return nil
	default:
		return []string{"mode must be capacity or vote"}
	}
}

// BeginPending godoc
// @Summary Begin a multi-step admin operation
// @Description Records what the acting admin's next free-text reply means. Starting a new operation overwrites any previous pending one for the actor.
// @Tags pending
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body controllers.BeginPendingRequest true "Operation to start"
// @Success 200 {object} helpers.APIResponse{data=domain.PendingAction}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/pending [post]
func (c *PendingController) BeginPending(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	var req BeginPendingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actorID, _, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	// The admin check runs up front so a non-admin cannot park a pending
	// action; the engine re-validates when the reply is applied.
	view, err := c.Service.GetEventView(r.Context(), eventID, actorID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if !view.IsAdmin {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, domain.ErrNotAuthorized.Error())
		return
	}

	action := domain.PendingAction{
		EventID:             eventID,
		Mode:                domain.PendingMode(req.Mode),
		TargetParticipantID: req.TargetParticipantID,
		OriginMessageRef:    req.OriginMessageRef,
	}
	c.Sessions.Begin(actorID, action)
	helpers.WriteJSONSuccess(w, http.StatusOK, action)
}

// PendingReplyRequest is the request body for POST /pending/reply.
type PendingReplyRequest struct {
	Value string `json:"value"`
}

// Validate implements helpers.Validator.
func (r *PendingReplyRequest) Validate() []string {
	if strings.TrimSpace(r.Value) == "" {
		return []string{"value is required"}
	}
	return nil
}

// Reply godoc
// @Summary Resolve the actor's pending operation with a follow-up value
// @Description Consumes the pending operation exactly once and applies the value: an integer capacity for mode capacity, or a guest count ("out" to remove) for mode vote. A malformed value still consumes the operation; the flow must be restarted.
// @Tags pending
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.PendingReplyRequest true "Follow-up value"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no pending operation)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /pending/reply [post]
func (c *PendingController) Reply(w http.ResponseWriter, r *http.Request) {
	var req PendingReplyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actorID, _, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	action, ok := c.Sessions.Take(actorID)
	if !ok {
		writeDomainError(c.Logger, w, r, domain.ErrNoPendingAction)
		return
	}

	value := strings.TrimSpace(req.Value)
	switch action.Mode {
	case domain.PendingCapacity:
		capacity, err := strconv.Atoi(value)
		if err != nil {
			writeDomainError(c.Logger, w, r, domain.ErrInvalidCapacity)
			return
		}
		event, err := c.Service.SetCapacity(r.Context(), action.EventID, actorID, capacity)
		if err != nil {
			writeDomainError(c.Logger, w, r, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, event)

	case domain.PendingVote:
		ballot := domain.LeaveBallot()
		if value != "out" && value != "leave" {
			guests, err := strconv.Atoi(value)
			if err != nil {
				writeDomainError(c.Logger, w, r, domain.ErrInvalidGuestCount)
				return
			}
			ballot = domain.GuestBallot(guests)
		}
		result, err := c.Service.AdminSetVote(r.Context(), action.EventID, actorID, action.TargetParticipantID, "", ballot)
		if err != nil {
			writeDomainError(c.Logger, w, r, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, VoteOutcome{Changed: true, Result: result})

	default:
		c.Logger.ErrorContext(r.Context(), "unknown pending mode", "mode", action.Mode)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// CancelPending godoc
// @Summary Cancel the actor's pending operation
// @Description Clears any pending multi-step admin operation without acting on it. Succeeds whether or not one exists.
// @Tags pending
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /pending [delete]
func (c *PendingController) CancelPending(w http.ResponseWriter, r *http.Request) {
	actorID, _, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	c.Sessions.Cancel(actorID)
	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}
