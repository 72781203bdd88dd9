package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"modapos/internal/apierror"
	"modapos/internal/infra"
	"modapos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var monitoredQueues = []string{worker.QueueReceipts, worker.QueueEmail}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// Breaker states and dead letter counts are informational and never flip the
// status code.
func Health(db *gorm.DB, rdb *redis.Client, breakers ...*infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		cbs := make(gin.H, len(breakers))
		for _, cb := range breakers {
			cbs[cb.Name()] = cb.State().String()
		}

		dlq := gin.H{}
		if redisStatus == "connected" {
			for _, q := range monitoredQueues {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
		}

		c.JSON(status, gin.H{
			"ok":               status == http.StatusOK,
			"db":               dbStatus,
			"redis":            redisStatus,
			"circuit_breakers": cbs,
			"dead_letters":     dlq,
		})
	}
}

// DeadLetters lists the most recent parked jobs of one queue
// (?queue=jobs:email&limit=20).
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue := c.DefaultQuery("queue", worker.QueueReceipts)
		known := false
		for _, q := range monitoredQueues {
			known = known || q == queue
		}
		if !known {
			c.JSON(http.StatusBadRequest, apierror.New("unknown queue"))
			return
		}
		limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
		if err != nil || limit < 1 || limit > 200 {
			c.JSON(http.StatusBadRequest, apierror.New("limit must be between 1 and 200"))
			return
		}
		entries, err := worker.PeekDLQ(c.Request.Context(), rdb, queue, limit)
		if err != nil {
			respondError(c, apierror.Transient("dead letter queue unavailable", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"queue": queue, "data": entries})
	}
}
