package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/federation-core/internal/service"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteError(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteError(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	WriteError(w, http.StatusConflict, msg)
}

// StatusFor maps a service error onto the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrBracketNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrCompetitionNotFound),
		errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, service.ErrClubNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrEmptyParticipantSet),
		errors.Is(err, service.ErrMatchNotReady),
		errors.Is(err, service.ErrInvalidWinner),
		errors.Is(err, service.ErrInvalidScore):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMatchAlreadyCompleted),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError reports err with the status StatusFor picks. Internal errors keep
// their detail in the log only.
func ServiceError(w http.ResponseWriter, msg string, err error) {
	switch StatusFor(err) {
	case http.StatusNotFound:
		NotFound(w, err.Error(), err)
	case http.StatusBadRequest:
		BadRequest(w, err.Error(), err)
	case http.StatusConflict:
		Conflict(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}
