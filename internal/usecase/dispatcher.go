package usecase

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"ColdMailer/internal/domain"
	"ColdMailer/internal/ports"
)

// Dispatcher renders a drafted body to HTML, submits it and records the lead.
type Dispatcher struct {
	mailer   ports.Mailer
	recorder *Recorder
	logger   *slog.Logger
}

// NewDispatcher wires the provider and the recorder.
func NewDispatcher(mailer ports.Mailer, recorder *Recorder, log *slog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, recorder: recorder, logger: log}
}

// Dispatch sends the email and then records the lead whatever status the
// provider answered with. Only a transport or store failure returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, to, subject, body string, lead domain.Lead) (domain.SendReceipt, error) {
	receipt, err := d.mailer.Send(ctx, domain.Email{
		To:      to,
		Subject: subject,
		HTML:    RenderHTML(body),
	})
	if err != nil {
		return receipt, fmt.Errorf("send email to %s: %w", to, err)
	}
	d.info("email submitted", "email", to, "status", receipt.StatusCode)

	if err := d.recorder.Record(ctx, lead); err != nil {
		return receipt, err
	}
	d.info("outreach logged", "email", lead.Email, "status", receipt.StatusCode)

	return receipt, nil
}

// RenderHTML escapes the text, turns blank-line separated blocks into
// paragraphs and single newlines into line breaks.
func RenderHTML(body string) string {
	escaped := html.EscapeString(body)

	var b strings.Builder
	for _, para := range strings.Split(escaped, "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

func (d *Dispatcher) info(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Info(msg, args...)
	}
}
