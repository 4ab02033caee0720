package mailer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myriadhero/tea-shop/internal/config"
)

// Log writes outgoing mail to the logger instead of sending it. Used when
// SMTP is not configured.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Send(ctx context.Context, e Email) error {
	if err := e.validate(); err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail not sent (no smtp host)",
		"to", strings.Join(e.AllRecipients(), ","),
		"subject", e.Subject,
		"text_len", len(e.TextBody),
		"html_len", len(e.HTMLBody),
	)
	return nil
}

// New picks the SMTP mailer when a host is configured and Log otherwise.
func New(cfg config.SMTPConfig, logger *slog.Logger) Service {
	if cfg.Host == "" {
		return Log{Logger: logger}
	}
	return NewSMTPMailer(cfg)
}
