package worker

import (
	"context"
	"encoding/json"
	"errors"

	"modapos/internal/infra"

	"github.com/rs/zerolog/log"
)

type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// ReceiptMailer is satisfied by *infra.Mailer.
type ReceiptMailer interface {
	SendReceipt(to, subject, body, pdfPath string) error
}

// EmailWorker sends receipt emails through the SMTP circuit breaker.
type EmailWorker struct {
	mailer ReceiptMailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer ReceiptMailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends one email. Invalid payloads are dropped (retrying cannot fix
// them); SMTP failures are returned so the pool retries.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	send := func() error {
		return w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	}
	var err error
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Str("to", payload.ToEmail).Msg("email_worker: smtp circuit open")
		} else {
			log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		}
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: receipt sent")
	return nil
}
