// Package respond renders the two wire envelopes every endpoint uses:
// a success body with the payload, and the error body produced by
// apperror. Handlers never hand-pick HTTP statuses for failures; the
// status always mirrors the app error.
package respond

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/reqctx"
)

func success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success":     true,
		"message":     message,
		"data":        data,
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"status_code": status,
	})
}

func OK(c *gin.Context, message string, data any) {
	success(c, http.StatusOK, message, data)
}

func Created(c *gin.Context, message string, data any) {
	success(c, http.StatusCreated, message, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error renders err as the error envelope. The request's identifiers
// are merged into the error context before rendering so the envelope
// and the logs can be correlated.
func Error(c *gin.Context, logger *slog.Logger, err error) {
	ctx := c.Request.Context()
	appErr := apperror.From(err).WithContext(apperror.Context{
		RequestID: reqctx.RequestID(ctx),
		UserID:    reqctx.UserID(ctx),
		Endpoint:  endpoint(c),
		Method:    c.Request.Method,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})

	if appErr.Status >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed",
			"endpoint", endpoint(c),
			"method", c.Request.Method,
			"status", appErr.Status,
			"code", appErr.Code,
			"error", appErr,
		)
	}

	c.JSON(appErr.Status, appErr.Envelope())
}

// BindError translates a gin binding failure into a validation app
// error. The raw binding message is kept for logs but clients only see
// a neutral user message.
func BindError(c *gin.Context, logger *slog.Logger, err error) {
	Error(c, logger, apperror.Validation(apperror.CodeInvalidRequest, "request body rejected").
		WithUserMessage("Invalid request body").
		WithCause(err))
}

func endpoint(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return c.Request.URL.Path
}
