package service

import (
	"errors"
	"net/http"
)

var (
	ErrDecisionNotFound   = errors.New("decision not found")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrQueryLogNotFound   = errors.New("query log not found")
	ErrInvalidTransition  = errors.New("decision cannot move to the requested status")
	ErrBackfillRunning    = errors.New("backfill already in progress")
	ErrBackfillNotRunning = errors.New("no backfill in progress")
	ErrInvalidAction      = errors.New("unknown confirmation action")
	ErrInvalidCategory    = errors.New("category is not recognised")
	ErrChannelExists      = errors.New("channel already monitored")
)

// HTTPStatus maps the sentinel errors above onto response codes.
func HTTPStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, ErrDecisionNotFound),
		errors.Is(err, ErrWorkspaceNotFound),
		errors.Is(err, ErrChannelNotFound),
		errors.Is(err, ErrQueryLogNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrBackfillRunning),
		errors.Is(err, ErrBackfillNotRunning),
		errors.Is(err, ErrChannelExists):
		return http.StatusConflict, true
	case errors.Is(err, ErrInvalidAction),
		errors.Is(err, ErrInvalidCategory):
		return http.StatusBadRequest, true
	}
	return 0, false
}
