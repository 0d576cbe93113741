package tasks_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/tasks"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		retryCount int
		maxRetries int
		want       bool
	}{
		{
			name:       "budget exhausted wins over transient error",
			err:        apperror.Integration("resend", "EMAIL_SEND_FAILED", "dial timeout"),
			retryCount: 3,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "validation never retries",
			err:        apperror.Validation(apperror.CodeValidationError, "bad payload"),
			retryCount: 0,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "not found never retries",
			err:        apperror.NotFound(apperror.CodeUserNotFound, "user gone"),
			retryCount: 0,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "authentication never retries",
			err:        apperror.Authentication(apperror.CodeAuthFailed, "token expired"),
			retryCount: 0,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "authorization never retries",
			err:        apperror.Authorization(apperror.CodePermissionDenied, "not allowed"),
			retryCount: 0,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "conflict never retries",
			err:        apperror.Conflict(apperror.CodeUserAlreadyExists, "duplicate"),
			retryCount: 0,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "integration timeout retries",
			err:        apperror.Integration("resend", "EMAIL_SEND_FAILED", "dial timeout"),
			retryCount: 1,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "integration connection failure retries",
			err:        apperror.Integration("postgres", "QUERY_FAILED", "connection refused"),
			retryCount: 0,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "integration rate limit retries",
			err:        apperror.Integration("resend", "RATE_LIMITED", "too many requests"),
			retryCount: 0,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "integration deadlock retries",
			err:        apperror.Integration("postgres", "QUERY_FAILED", "deadlock detected"),
			retryCount: 0,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "integration hard rejection does not retry",
			err:        apperror.Integration("resend", "EMAIL_SEND_FAILED", "invalid recipient address"),
			retryCount: 0,
			maxRetries: 3,
			want:       false,
		},
		{
			name:       "internal error retries",
			err:        apperror.Internal(errors.New("nil map write")),
			retryCount: 0,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "plain error retries",
			err:        errors.New("something broke"),
			retryCount: 0,
			maxRetries: 3,
			want:       true,
		},
		{
			name:       "wrapped app error is still classified",
			err:        fmt.Errorf("handler: %w", apperror.Validation(apperror.CodeValidationError, "bad payload")),
			retryCount: 0,
			maxRetries: 3,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tasks.ShouldRetry(tt.err, tt.retryCount, tt.maxRetries)
			if got != tt.want {
				t.Errorf("ShouldRetry(%v, %d, %d) = %v, want %v", tt.err, tt.retryCount, tt.maxRetries, got, tt.want)
			}
		})
	}
}
