package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipts = "jobs:receipts"
	QueueEmail    = "jobs:email"

	JobReceipt = "receipt"
	JobEmail   = "email"

	// maxJobAttempts bounds in-queue retries before a job goes to the DLQ.
	maxJobAttempts = 3
)

var queueByType = map[string]string{
	JobReceipt: QueueReceipts,
	JobEmail:   QueueEmail,
}

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error makes the pool retry
// the job, up to maxJobAttempts, then dead-letter it.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt asks the pool to render (and possibly mail) a receipt.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, payload ReceiptJobPayload) error {
	return d.enqueue(ctx, Job{Type: JobReceipt}, payload)
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, Job{Type: JobEmail}, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, job Job, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job.Payload = data
	return d.push(ctx, job)
}

func (d *Dispatcher) push(ctx context.Context, job Job) error {
	queue, ok := queueByType[job.Type]
	if !ok {
		return errors.New("worker: unknown job type " + job.Type)
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool runs goroutines that consume every queue with a registered handler.
type Pool struct {
	rdb        *redis.Client
	dispatcher *Dispatcher
	handlers   map[string]Handler
	wg         sync.WaitGroup
}

func NewPool(rdb *redis.Client, dispatcher *Dispatcher) *Pool {
	return &Pool{rdb: rdb, dispatcher: dispatcher, handlers: make(map[string]Handler)}
}

// Handle registers h for a job type. Must be called before Start.
func (p *Pool) Handle(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, so idle
// workers cost nothing. They exit when ctx is cancelled; use Wait to join.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	queues := make([]string, 0, len(p.handlers))
	for jobType := range p.handlers {
		queues = append(queues, queueByType[jobType])
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id, queues)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
		}
		// Blocking pop, waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: brpop failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("worker: failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "unknown", json.RawMessage(raw), "malformed envelope", 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler registered", job.Attempts)
		return
	}

	job.Attempts++
	err := h(ctx, job.Payload)
	if err == nil {
		return
	}
	if job.Attempts >= maxJobAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("worker: job failed, requeueing")
	if perr := p.dispatcher.push(ctx, job); perr != nil {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "requeue failed: "+perr.Error(), job.Attempts)
	}
}
