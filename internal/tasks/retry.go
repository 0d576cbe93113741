package tasks

import (
	"errors"
	"strings"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
)

// transientMarkers identify integration failures worth retrying. An
// upstream rejecting the request outright will reject it again; these
// conditions pass with time.
var transientMarkers = []string{"timeout", "connection", "rate_limit", "deadlock"}

// ShouldRetry decides whether a failed task goes back to pending.
// The retry budget is checked first and wins over everything else.
func ShouldRetry(err error, retryCount, maxRetries int) bool {
	if retryCount >= maxRetries {
		return false
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		// Unclassified failure: assume transient.
		return true
	}

	switch appErr.Kind {
	case apperror.KindValidation,
		apperror.KindNotFound,
		apperror.KindAuthentication,
		apperror.KindAuthorization,
		apperror.KindConflict:
		// Deterministic failures; re-running cannot change the input.
		return false
	case apperror.KindIntegration:
		msg := strings.ToLower(appErr.Error())
		for _, marker := range transientMarkers {
			if strings.Contains(msg, marker) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
