package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"chatvote/internal/delivery/http/helpers"
	"chatvote/internal/domain"
)

// writeDomainError maps a domain sentinel to its HTTP representation.
// Anything that is not a sentinel is an unexpected storage or
// infrastructure failure: logged and answered with a generic 500.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrInvalidCapacity),
		errors.Is(err, domain.ErrInvalidGuestCount):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrNoPendingAction):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrNotAuthorized):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrEventClosed),
		errors.Is(err, domain.ErrNotParticipating),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrCapacityBelowCurrent):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
