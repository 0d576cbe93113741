package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("email (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// ResendSender sends emails via the Resend API. Used in staging and
// production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Welcome renders the email sent after registration.
func Welcome(firstName string) (subject, body string) {
	subject = "Welcome to Taunggyi City Church"
	body = fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created. You can now register for events,
		share prayer requests and follow our sermons online.</p>
		<p>We are glad to have you with us.</p>
	`, firstName)
	return subject, body
}

// PasswordReset renders the reset email. The link embeds a short-lived
// single-use token.
func PasswordReset(firstName, resetURL string) (subject, body string) {
	subject = "Reset your password"
	body = fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>We received a request to reset your password. The link below is
		valid for 30 minutes and can be used once:</p>
		<p><a href="%s">Reset password</a></p>
		<p>If you did not request this, you can ignore this email.</p>
	`, firstName, resetURL)
	return subject, body
}
