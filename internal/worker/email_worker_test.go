package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"modapos/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	sent []string
	err  error
}

func (m *stubMailer) SendReceipt(to, _, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func emailJob(t *testing.T, to string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(EmailJobPayload{ToEmail: to, Subject: "Comprovante", Body: "Olá"})
	require.NoError(t, err)
	return raw
}

func TestEmailWorker_Sends(t *testing.T) {
	m := &stubMailer{}
	w := NewEmailWorker(m, nil)

	require.NoError(t, w.Process(context.Background(), emailJob(t, "ana@example.com")))
	assert.Equal(t, []string{"ana@example.com"}, m.sent)

	// Empty recipient and garbage are dropped, not retried.
	assert.NoError(t, w.Process(context.Background(), emailJob(t, "")))
	assert.NoError(t, w.Process(context.Background(), json.RawMessage(`[`)))
	assert.Len(t, m.sent, 1)
}

func TestEmailWorker_BreakerOpensAfterFailures(t *testing.T) {
	m := &stubMailer{err: errors.New("smtp: connection refused")}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		Name: "smtp", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Hour,
	})
	w := NewEmailWorker(m, cb)

	for i := 0; i < 2; i++ {
		err := w.Process(context.Background(), emailJob(t, "ana@example.com"))
		require.Error(t, err)
		assert.False(t, errors.Is(err, infra.ErrCircuitOpen))
	}
	err := w.Process(context.Background(), emailJob(t, "ana@example.com"))
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.Equal(t, infra.CBOpen, cb.State())
}
