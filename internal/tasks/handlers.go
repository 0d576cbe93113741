package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/apperror"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/domain"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/email"
	"github.com/ANG-KUNG-TANG/Taunggyi-City-Church-sub000/internal/repository"
)

// RegisterBuiltins wires the standard handlers into the registry.
func RegisterBuiltins(r *Registry, audits repository.AuditRepository, sender email.Sender, appBaseURL string) {
	r.Register(TaskAuditRecord, AuditRecordHandler(audits))
	r.Register(TaskEmailWelcome, WelcomeEmailHandler(sender))
	r.Register(TaskEmailPasswordReset, PasswordResetEmailHandler(sender, appBaseURL))
}

func AuditRecordHandler(audits repository.AuditRepository) Handler {
	return func(ctx context.Context, task *domain.Task) error {
		var p AuditPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			// Malformed payloads never fix themselves; fail permanently.
			return apperror.Validation(apperror.CodeInvalidRequest, fmt.Sprintf("malformed audit payload: %v", err))
		}

		metadata, _ := json.Marshal(map[string]string{"operation_id": p.OperationID})
		return audits.Record(ctx, &domain.AuditRecord{
			Operation:  p.Operation,
			ActorID:    p.ActorID,
			Outcome:    p.Outcome,
			ErrorCode:  p.ErrorCode,
			DurationMS: p.DurationMS,
			Metadata:   metadata,
		})
	}
}

func WelcomeEmailHandler(sender email.Sender) Handler {
	return func(ctx context.Context, task *domain.Task) error {
		var p WelcomeEmailPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return apperror.Validation(apperror.CodeInvalidRequest, fmt.Sprintf("malformed welcome payload: %v", err))
		}

		subject, body := email.Welcome(p.FirstName)
		if err := sender.Send(ctx, p.Email, subject, body); err != nil {
			return apperror.Integration("email", apperror.CodeEmailFailed, err.Error())
		}
		return nil
	}
}

func PasswordResetEmailHandler(sender email.Sender, appBaseURL string) Handler {
	return func(ctx context.Context, task *domain.Task) error {
		var p PasswordResetEmailPayload
		if err := json.Unmarshal(task.Payload, &p); err != nil {
			return apperror.Validation(apperror.CodeInvalidRequest, fmt.Sprintf("malformed reset payload: %v", err))
		}

		resetURL := fmt.Sprintf("%s/reset-password?token=%s", appBaseURL, p.ResetToken)
		subject, body := email.PasswordReset(p.FirstName, resetURL)
		if err := sender.Send(ctx, p.Email, subject, body); err != nil {
			return apperror.Integration("email", apperror.CodeEmailFailed, err.Error())
		}
		return nil
	}
}
