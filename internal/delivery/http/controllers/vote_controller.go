package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"chatvote/internal/delivery/http/helpers"
	"chatvote/internal/delivery/http/middleware"
	"chatvote/internal/domain"
)

type VoteController struct {
	Logger  *slog.Logger
	Service domain.AttendanceService
}

func NewVoteController(logger *slog.Logger, svc domain.AttendanceService) *VoteController {
	return &VoteController{
		Logger:  logger,
		Service: svc,
	}
}

// CastVoteRequest is the request body for POST /events/{eventID}/votes.
// Either leave is true, or guests carries the participant's guest count.
type CastVoteRequest struct {
	Guests *int `json:"guests"`
	Leave  bool `json:"leave"`
}

// Validate implements helpers.Validator.
func (r *CastVoteRequest) Validate() []string {
	if r.Leave && r.Guests != nil {
		return []string{"guests and leave are mutually exclusive"}
	}
	if !r.Leave && r.Guests == nil {
		return []string{"guests is required unless leave is true"}
	}
	return nil
}

func (r *CastVoteRequest) ballot() domain.Ballot {
	if r.Leave {
		return domain.LeaveBallot()
	}
	return domain.GuestBallot(*r.Guests)
}

// VoteOutcome is the success payload for vote mutations. Changed is false
// when the vote already held the requested guest count; the caller may then
// skip a render refresh.
// swagger:model VoteOutcome
type VoteOutcome struct {
	Changed bool               `json:"changed"`
	Result  *domain.VoteResult `json:"result,omitempty"`
}

// CastVote godoc
// @Summary Cast or withdraw the calling actor's vote
// @Description Declares attendance with a guest count, or leaves the event. The capacity check and the write happen in one transaction; concurrent voters cannot jointly overflow capacity. A vote identical to the current one reports changed=false.
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body controllers.CastVoteRequest true "Guest count or leave"
// @Success 200 {object} helpers.APIResponse{data=controllers.VoteOutcome}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (closed, full, or not participating)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/votes [post]
func (c *VoteController) CastVote(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	var req CastVoteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actorID, displayName, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.CastVote(r.Context(), eventID, actorID, displayName, req.ballot())
	if err != nil {
		if errors.Is(err, domain.ErrNoChange) {
			helpers.WriteJSONSuccess(w, http.StatusOK, VoteOutcome{Changed: false})
			return
		}
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, VoteOutcome{Changed: true, Result: result})
}

// AdminSetVoteRequest is the request body for PUT /events/{eventID}/votes/{participantID}.
type AdminSetVoteRequest struct {
	Guests      *int   `json:"guests"`
	Leave       bool   `json:"leave"`
	DisplayName string `json:"display_name"`
}

// Validate implements helpers.Validator.
func (r *AdminSetVoteRequest) Validate() []string {
	if r.Leave && r.Guests != nil {
		return []string{"guests and leave are mutually exclusive"}
	}
	if !r.Leave && r.Guests == nil {
		return []string{"guests is required unless leave is true"}
	}
	return nil
}

func (r *AdminSetVoteRequest) ballot() domain.Ballot {
	if r.Leave {
		return domain.LeaveBallot()
	}
	return domain.GuestBallot(*r.Guests)
}

// AdminSetVote godoc
// @Summary Set a participant's vote on the admin's authority
// @Description Upserts or removes the target participant's vote. Capacity is not enforced on this path, and a closed event does not block the edit. display_name lets an admin enter a participant who has never voted.
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param participantID path string true "Target participant ID"
// @Param body body controllers.AdminSetVoteRequest true "Guest count or leave"
// @Success 200 {object} helpers.APIResponse{data=controllers.VoteOutcome}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/votes/{participantID} [put]
func (c *VoteController) AdminSetVote(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	participantID := r.PathValue("participantID")
	var req AdminSetVoteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actorID, _, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.AdminSetVote(r.Context(), eventID, actorID, participantID, req.DisplayName, req.ballot())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, VoteOutcome{Changed: true, Result: result})
}

// RemoveParticipant godoc
// @Summary Remove a participant's vote
// @Description Drops the target participant's vote on the admin's authority.
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param participantID path string true "Target participant ID"
// @Success 200 {object} helpers.APIResponse{data=controllers.VoteOutcome}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/votes/{participantID} [delete]
func (c *VoteController) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	participantID := r.PathValue("participantID")

	actorID, _, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	result, err := c.Service.RemoveParticipant(r.Context(), eventID, actorID, participantID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, VoteOutcome{Changed: true, Result: result})
}
