// Package email delivers operator alerts for extraction failures and
// out-of-range clinical values. Delivery is best effort; a failed send
// is logged and never fails the operation that triggered it.
package email

import (
	"context"
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/pkg/logger"
)

type Notifier interface {
	SendExtractionFailed(ctx context.Context, exam *model.Exam) error
	SendValueAlert(ctx context.Context, exam *model.Exam, values []model.ExtractedValue) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Enabled reports whether the configuration is complete enough to
// deliver mail. Callers fall back to the noop notifier otherwise.
func (c Config) Enabled() bool {
	return c.Host != "" && c.From != "" && len(c.To) > 0
}

type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     []string
	logger *logger.Logger
}

func NewSMTPNotifier(cfg Config, log *logger.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.To,
		logger: log.WithComponent("email"),
	}
}

func (n *SMTPNotifier) SendExtractionFailed(ctx context.Context, exam *model.Exam) error {
	subject := fmt.Sprintf("Falha na extração do exame #%d", exam.ID)
	var body strings.Builder
	fmt.Fprintf(&body, "A extração do arquivo %s falhou.\n\n", exam.OriginalFilename)
	if exam.ProcessingError != "" {
		fmt.Fprintf(&body, "Erro: %s\n", exam.ProcessingError)
	}
	fmt.Fprintf(&body, "Paciente: %d\n", exam.PatientID)
	return n.send(ctx, subject, body.String())
}

func (n *SMTPNotifier) SendValueAlert(ctx context.Context, exam *model.Exam, values []model.ExtractedValue) error {
	subject := fmt.Sprintf("Valores alterados no exame #%d", exam.ID)
	var body strings.Builder
	fmt.Fprintf(&body, "O exame %s retornou valores fora da referência:\n\n", exam.OriginalFilename)
	for _, v := range values {
		fmt.Fprintf(&body, "  %s: %s %s (referência: %s)\n", v.Name, v.Value, v.Unit, v.ReferenceRange)
	}
	return n.send(ctx, subject, body.String())
}

func (n *SMTPNotifier) send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		n.logger.Error(err, "failed to send alert email", "subject", subject)
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	n.logger.Info("alert email sent", "subject", subject)
	return nil
}

// NoopNotifier is used when SMTP is not configured.
type NoopNotifier struct{}

func (NoopNotifier) SendExtractionFailed(context.Context, *model.Exam) error { return nil }

func (NoopNotifier) SendValueAlert(context.Context, *model.Exam, []model.ExtractedValue) error {
	return nil
}
