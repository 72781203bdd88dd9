package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"modapos/internal/infra"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// MaxReceiptRetries is how many times the maintenance cron re-renders a
// failed receipt before dead-lettering it.
const MaxReceiptRetries = 5

// ReceiptJobPayload identifies the document to render. Exactly one of
// OrderID / ConditionalID is set.
type ReceiptJobPayload struct {
	Kind          string `json:"kind"`
	OrderID       string `json:"order_id,omitempty"`
	ConditionalID string `json:"conditional_id,omitempty"`
}

// EmailEnqueuer is satisfied by *Dispatcher.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// renderFunc matches infra.GenerateReceiptPDF.
type renderFunc func(doc infra.ReceiptDocument, storeName, storagePath string) (string, error)

// ReceiptWorker renders order and conditional receipts to PDF, records them
// as Receipt rows and, when the customer has an email, queues the email.
type ReceiptWorker struct {
	orders       repository.OrderRepository
	conditionals repository.ConditionalRepository
	receipts     repository.ReceiptRepository
	emails       EmailEnqueuer
	storeName    string
	storagePath  string
	loc          *time.Location
	render       renderFunc
	now          func() time.Time
}

func NewReceiptWorker(
	orders repository.OrderRepository,
	conditionals repository.ConditionalRepository,
	receipts repository.ReceiptRepository,
	emails EmailEnqueuer,
	storeName, storagePath string,
	loc *time.Location,
) *ReceiptWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &ReceiptWorker{
		orders:       orders,
		conditionals: conditionals,
		receipts:     receipts,
		emails:       emails,
		storeName:    storeName,
		storagePath:  storagePath,
		loc:          loc,
		render:       infra.GenerateReceiptPDF,
		now:          time.Now,
	}
}

// Process handles a receipt job. Rendering failures are recorded on the
// receipt and left to the maintenance cron, so only bookkeeping errors are
// returned to the pool.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}

	rc, err := w.findOrCreate(ctx, payload)
	if err != nil {
		return err
	}
	if rc == nil || rc.Status == model.ReceiptIssued {
		return nil
	}
	return w.Issue(ctx, rc)
}

func (w *ReceiptWorker) findOrCreate(ctx context.Context, p ReceiptJobPayload) (*model.Receipt, error) {
	var (
		existing *model.Receipt
		err      error
		rc       = &model.Receipt{Kind: p.Kind, Status: model.ReceiptPending}
	)
	switch p.Kind {
	case model.ReceiptOrder:
		id, perr := uuid.Parse(p.OrderID)
		if perr != nil {
			log.Error().Str("order_id", p.OrderID).Msg("receipt_worker: invalid order_id")
			return nil, nil
		}
		existing, err = w.receipts.FindByOrderID(ctx, id)
		rc.OrderID = &id
	case model.ReceiptConditional:
		id, perr := uuid.Parse(p.ConditionalID)
		if perr != nil {
			log.Error().Str("conditional_id", p.ConditionalID).Msg("receipt_worker: invalid conditional_id")
			return nil, nil
		}
		existing, err = w.receipts.FindByConditionalID(ctx, id)
		rc.ConditionalID = &id
	default:
		log.Error().Str("kind", p.Kind).Msg("receipt_worker: unknown receipt kind")
		return nil, nil
	}

	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := w.receipts.Create(ctx, rc); err != nil {
		return nil, err
	}
	return rc, nil
}

// Issue renders rc and records the outcome. Used both for fresh jobs and by
// the maintenance cron for receipts in error.
func (w *ReceiptWorker) Issue(ctx context.Context, rc *model.Receipt) error {
	doc, email, err := w.document(ctx, rc)
	if err == nil {
		var path string
		err = withRetry(ctx, 3, func(attempt int) error {
			p, rerr := w.render(doc, w.storeName, w.storagePath)
			if rerr != nil {
				log.Warn().Err(rerr).Int("attempt", attempt+1).Str("receipt_id", rc.ID.String()).
					Msg("receipt_worker: render attempt failed")
				return rerr
			}
			path = p
			return nil
		})
		if err == nil {
			return w.markIssued(ctx, rc, path, doc, email)
		}
	}
	return w.markFailed(ctx, rc, err)
}

func (w *ReceiptWorker) markIssued(ctx context.Context, rc *model.Receipt, path string, doc infra.ReceiptDocument, email *string) error {
	rel, err := filepath.Rel(w.storagePath, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rc.Status = model.ReceiptIssued
	rc.PDFPath = &rel
	rc.NextRetryAt = nil
	rc.LastError = nil
	if err := w.receipts.Update(ctx, rc); err != nil {
		return err
	}
	log.Info().Str("receipt_id", rc.ID.String()).Str("pdf", rel).Msg("receipt_worker: receipt issued")

	if email == nil || *email == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: *email,
		Subject: fmt.Sprintf("%s - %s %s", w.storeName, doc.Title, doc.Number),
		Body: fmt.Sprintf("Olá %s,\n\nSegue em anexo o seu comprovante.\nTotal: R$ %s\n\n%s",
			doc.CustomerName, doc.Total.StringFixed(2), w.storeName),
		PDFPath: path,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("receipt_id", rc.ID.String()).Msg("receipt_worker: failed to enqueue email")
	}
	return nil
}

func (w *ReceiptWorker) markFailed(ctx context.Context, rc *model.Receipt, cause error) error {
	msg := cause.Error()
	next := w.now().Add(retryBackoff(rc.RetryCount + 1))
	rc.Status = model.ReceiptError
	rc.RetryCount++
	rc.LastError = &msg
	rc.NextRetryAt = &next
	log.Error().Err(cause).Str("receipt_id", rc.ID.String()).Int("retry_count", rc.RetryCount).
		Msg("receipt_worker: receipt failed")
	return w.receipts.Update(ctx, rc)
}

func (w *ReceiptWorker) document(ctx context.Context, rc *model.Receipt) (infra.ReceiptDocument, *string, error) {
	switch {
	case rc.OrderID != nil:
		o, err := w.orders.FindByID(ctx, *rc.OrderID)
		if err != nil {
			return infra.ReceiptDocument{}, nil, fmt.Errorf("load order: %w", err)
		}
		return orderDocument(o, w.loc), o.CustomerEmail, nil
	case rc.ConditionalID != nil:
		c, err := w.conditionals.FindByID(ctx, *rc.ConditionalID)
		if err != nil {
			return infra.ReceiptDocument{}, nil, fmt.Errorf("load conditional: %w", err)
		}
		return conditionalDocument(c, w.loc), c.CustomerEmail, nil
	default:
		return infra.ReceiptDocument{}, nil, errors.New("receipt has no document reference")
	}
}

func orderDocument(o *model.Order, loc *time.Location) infra.ReceiptDocument {
	lines := make([]infra.ReceiptLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, infra.ReceiptLine{
			Name:     it.ProductName,
			Variant:  variant(it.Size, it.Color),
			Quantity: it.Quantity,
			Total:    it.TotalPrice,
		})
	}
	return infra.ReceiptDocument{
		FileName:      "order_" + o.OrderNumber + ".pdf",
		Title:         "Comprovante de venda",
		Number:        o.OrderNumber,
		IssuedAt:      o.CreatedAt.In(loc),
		CustomerName:  o.CustomerName,
		Lines:         lines,
		Total:         o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		Footer:        "Obrigado pela preferência!",
	}
}

func conditionalDocument(c *model.Conditional, loc *time.Location) infra.ReceiptDocument {
	lines := make([]infra.ReceiptLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, infra.ReceiptLine{
			Name:     it.ProductName,
			Variant:  variant(it.Size, it.Color),
			Quantity: it.Quantity,
			Total:    model.LineTotal(it.UnitPrice, it.Quantity),
		})
	}
	due := c.DueDate.In(loc)
	return infra.ReceiptDocument{
		FileName:     "conditional_" + c.ID.String() + ".pdf",
		Title:        "Comprovante de condicional",
		Number:       strings.ToUpper(c.ID.String()[:8]),
		IssuedAt:     c.CreatedAt.In(loc),
		CustomerName: c.CustomerName,
		Lines:        lines,
		Total:        c.TotalValue,
		DueDate:      &due,
		Footer:       "Peças sob condicional. Devolver até a data indicada.",
	}
}

func variant(size, color *string) string {
	var parts []string
	if size != nil && *size != "" {
		parts = append(parts, *size)
	}
	if color != nil && *color != "" {
		parts = append(parts, *color)
	}
	return strings.Join(parts, " / ")
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// (immediate, 1s, 2s, ...). Returns nil on the first success, the last error
// otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// retryBackoff is the delay before the cron retries a receipt for the n-th
// time: 1m, 2m, 4m, ... capped at 1h.
func retryBackoff(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := time.Minute << uint(n-1)
	if d > time.Hour || d <= 0 {
		return time.Hour
	}
	return d
}
