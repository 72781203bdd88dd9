package worker

// maintenance_cron.go runs periodic housekeeping:
//   - persists active → overdue for conditionals past their due date, so the
//     stored status converges on the derived one
//   - re-renders receipts stuck in error, dead-lettering the hopeless ones

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"modapos/internal/infra"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const receiptRetryBatch = 10

// ReceiptIssuer is satisfied by *ReceiptWorker.
type ReceiptIssuer interface {
	Issue(ctx context.Context, rc *model.Receipt) error
}

// CacheInvalidator is satisfied by *infra.Cache.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, prefixes ...string)
}

type MaintenanceConfig struct {
	Interval     time.Duration
	Conditionals repository.ConditionalRepository
	Receipts     repository.ReceiptRepository
	Issuer       ReceiptIssuer
	Cache        CacheInvalidator
	RDB          *redis.Client
	Now          func() time.Time
}

// StartMaintenanceCron ticks every cfg.Interval until ctx is cancelled. The
// returned WaitGroup is done once the goroutine has exited.
func StartMaintenanceCron(ctx context.Context, cfg MaintenanceConfig) *sync.WaitGroup {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("maintenance_cron: started")
		RunMaintenance(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("maintenance_cron: shutting down")
				return
			case <-ticker.C:
				RunMaintenance(ctx, cfg)
			}
		}
	}()
	return &wg
}

// RunMaintenance performs a single tick.
func RunMaintenance(ctx context.Context, cfg MaintenanceConfig) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	now := cfg.Now()

	if cfg.Conditionals != nil {
		n, err := cfg.Conditionals.MarkOverdue(ctx, now)
		if err != nil {
			log.Error().Err(err).Msg("maintenance_cron: overdue sweep failed")
		} else if n > 0 {
			log.Info().Int64("count", n).Msg("maintenance_cron: conditionals marked overdue")
			if cfg.Cache != nil {
				cfg.Cache.Invalidate(ctx, infra.CacheConditionals, infra.CacheDashboard)
			}
		}
	}

	if cfg.Receipts != nil && cfg.Issuer != nil {
		retryReceipts(ctx, cfg, now)
	}
}

func retryReceipts(ctx context.Context, cfg MaintenanceConfig, now time.Time) {
	receipts, err := cfg.Receipts.ListPendingRetries(ctx, now, MaxReceiptRetries, receiptRetryBatch)
	if err != nil {
		log.Error().Err(err).Msg("maintenance_cron: failed to query receipt retries")
		return
	}
	for i := range receipts {
		rc := &receipts[i]
		if err := cfg.Issuer.Issue(ctx, rc); err != nil {
			log.Error().Err(err).Str("receipt_id", rc.ID.String()).Msg("maintenance_cron: receipt update failed")
			continue
		}
		if rc.Status == model.ReceiptError && rc.RetryCount >= MaxReceiptRetries {
			rc.NextRetryAt = nil
			if err := cfg.Receipts.Update(ctx, rc); err != nil {
				log.Error().Err(err).Str("receipt_id", rc.ID.String()).Msg("maintenance_cron: receipt update failed")
			}
			if cfg.RDB != nil {
				payload, _ := json.Marshal(receiptPayload(rc))
				reason := fmt.Sprintf("max retries (%d) exceeded", MaxReceiptRetries)
				if rc.LastError != nil {
					reason += ": " + *rc.LastError
				}
				SendToDLQ(ctx, cfg.RDB, QueueReceipts, JobReceipt, payload, reason, rc.RetryCount)
			}
		}
	}
}

func receiptPayload(rc *model.Receipt) ReceiptJobPayload {
	p := ReceiptJobPayload{Kind: rc.Kind}
	if rc.OrderID != nil {
		p.OrderID = rc.OrderID.String()
	}
	if rc.ConditionalID != nil {
		p.ConditionalID = rc.ConditionalID.String()
	}
	return p
}
