package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
)

const (
	defaultBatchSize = 50
	defaultPoll      = 500 * time.Millisecond
	defaultAttempts  = 10
	publishTimeout   = 15 * time.Second
	maxBackoff       = 10 * time.Second
	maxJitter        = 250 * time.Millisecond
)

type txRunner interface {
	Ping(ctx context.Context) error
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type transport interface {
	Ping(ctx context.Context) error
	Publish(ctx context.Context, topic string, msg pubsub.Message) pubsub.Result
}

type outboxRows interface {
	Claim(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(tx *gorm.DB, id uuid.UUID, at time.Time) error
	RecordFailure(tx *gorm.DB, id uuid.UUID, cause error) error
	Park(tx *gorm.DB, id uuid.UUID, cause error, ceiling int) error
}

type deadLetters interface {
	Insert(tx *gorm.DB, entry models.OutboxDLQ) error
}

type resolver interface {
	Resolve(models.OutboxEvent) (*registry.Resolved, error)
}

type RelayParams struct {
	Config      config.OutboxConfig
	Logger      *logger.Logger
	DB          txRunner
	Transport   transport
	Rows        outboxRows
	DeadLetters deadLetters
	Registry    resolver
	Metrics     *metrics.OutboxMetrics
}

// Relay drains outbox_events onto Pub/Sub. Rows are claimed inside one
// transaction per batch; each row ends the batch published, scheduled for
// retry, or dead-lettered.
type Relay struct {
	logg        *logger.Logger
	db          txRunner
	transport   transport
	rows        outboxRows
	dlq         deadLetters
	registry    resolver
	metrics     *metrics.OutboxMetrics
	batchSize   int
	maxAttempts int
	poll        time.Duration
	now         func() time.Time
}

func NewRelay(p RelayParams) (*Relay, error) {
	switch {
	case p.Logger == nil:
		return nil, errors.New("logger is required")
	case p.DB == nil:
		return nil, errors.New("database client is required")
	case p.Transport == nil:
		return nil, errors.New("pubsub transport is required")
	case p.Rows == nil:
		return nil, errors.New("outbox repository is required")
	case p.DeadLetters == nil:
		return nil, errors.New("dlq repository is required")
	case p.Registry == nil:
		return nil, errors.New("event registry is required")
	}

	r := &Relay{
		logg:        p.Logger,
		db:          p.DB,
		transport:   p.Transport,
		rows:        p.Rows,
		dlq:         p.DeadLetters,
		registry:    p.Registry,
		metrics:     p.Metrics,
		batchSize:   p.Config.BatchSize,
		maxAttempts: p.Config.MaxAttempts,
		poll:        time.Duration(p.Config.PollIntervalMS) * time.Millisecond,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = defaultAttempts
	}
	if r.poll <= 0 {
		r.poll = defaultPoll
	}
	return r, nil
}

// Run polls until ctx ends. A full batch polls again at once; batch errors
// back off exponentially up to maxBackoff.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	if err := r.transport.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub ping: %w", err)
	}

	wait := r.poll
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		claimed, err := r.relayBatch(ctx)
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox batch failed", err)
			wait = min(wait*2, maxBackoff)
		case claimed >= r.batchSize:
			wait = r.poll
			continue
		default:
			wait = r.poll
		}
		if err := sleep(ctx, wait+rand.N(maxJitter)); err != nil {
			return err
		}
	}
}

type inflight struct {
	row      models.OutboxEvent
	resolved *registry.Resolved
	result   pubsub.Result
	err      error
}

// relayBatch returns how many rows it claimed.
func (r *Relay) relayBatch(ctx context.Context) (int, error) {
	claimed := 0
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.rows.Claim(tx, r.batchSize, r.maxAttempts)
		if err != nil {
			return fmt.Errorf("claim outbox rows: %w", err)
		}
		claimed = len(rows)
		if claimed == 0 {
			return nil
		}
		r.metrics.ObserveBatch(claimed)

		publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		// queue every publish first so the client batches them, then settle
		batch := make([]inflight, len(rows))
		for i, row := range rows {
			batch[i].row = row
			batch[i].resolved, batch[i].err = r.registry.Resolve(row)
			if batch[i].err == nil {
				batch[i].result = r.transport.Publish(publishCtx, batch[i].resolved.Route.Topic, message(row, batch[i].resolved))
			}
		}
		for _, item := range batch {
			if item.result != nil {
				_, item.err = item.result.Get(publishCtx)
			}
			if err := r.settle(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

func (r *Relay) settle(ctx context.Context, tx *gorm.DB, item inflight) error {
	row := item.row
	logCtx := r.logg.WithFields(ctx, map[string]any{
		"outbox_id":     row.ID.String(),
		"event_type":    row.EventType,
		"aggregate_id":  row.AggregateID.String(),
		"attempt_count": row.AttemptCount,
	})
	if item.resolved != nil {
		logCtx = r.logg.WithFields(logCtx, map[string]any{
			"event_id": item.resolved.Envelope.EventID,
			"topic":    item.resolved.Route.Topic,
		})
	}

	switch {
	case item.err == nil:
		if err := r.rows.MarkPublished(tx, row.ID, r.now()); err != nil {
			return fmt.Errorf("mark %s published: %w", row.ID, err)
		}
		r.metrics.Relayed(string(row.EventType), metrics.RelayPublished)
		r.metrics.ObserveLag(row.CreatedAt, r.now())
		r.logg.Info(logCtx, "outbox event published")
		return nil

	case errors.Is(item.err, registry.ErrPermanent):
		return r.deadLetter(logCtx, tx, row, enums.OutboxDLQReasonNonRetryable, item.err)

	case row.AttemptCount+1 >= r.maxAttempts:
		return r.deadLetter(logCtx, tx, row, enums.OutboxDLQReasonMaxAttempts, fmt.Errorf("gave up after %d attempts: %w", row.AttemptCount+1, item.err))
	}

	if err := r.rows.RecordFailure(tx, row.ID, item.err); err != nil {
		return fmt.Errorf("mark %s failed: %w", row.ID, err)
	}
	r.metrics.Relayed(string(row.EventType), metrics.RelayRetry)
	r.logg.Warn(r.logg.WithField(logCtx, "error", item.err.Error()), "outbox publish failed; will retry")
	return nil
}

func (r *Relay) deadLetter(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	entry := models.DeadLetterFor(row, reason, cause, r.now())
	if err := r.dlq.Insert(tx, entry); err != nil {
		return fmt.Errorf("dead-letter %s: %w", row.ID, err)
	}
	if err := r.rows.Park(tx, row.ID, cause, r.maxAttempts); err != nil {
		return fmt.Errorf("park %s: %w", row.ID, err)
	}
	r.metrics.Relayed(string(row.EventType), metrics.RelayDeadLetter)
	r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"error_reason": reason, "error": cause.Error()}), "outbox event dead-lettered")
	return nil
}

// message carries the stored envelope unchanged; attributes let subscribers
// filter without decoding. Events for one aggregate stay ordered.
func message(row models.OutboxEvent, resolved *registry.Resolved) pubsub.Message {
	return pubsub.Message{
		Data:        row.Payload,
		OrderingKey: row.AggregateID.String(),
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"version":        strconv.Itoa(resolved.Envelope.Version),
			"occurred_at":    resolved.Envelope.OccurredAt.Format(time.RFC3339Nano),
		},
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
