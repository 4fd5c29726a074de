package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PurgeFunc deletes rows older than cutoff inside tx and reports how many went.
type PurgeFunc func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)

type RetentionJobParams struct {
	Name      string
	Logger    *logger.Logger
	DB        txRunner
	Purge     PurgeFunc
	Retention time.Duration
}

// RetentionJob prunes one table down to a rolling window.
type RetentionJob struct {
	name      string
	logg      *logger.Logger
	db        txRunner
	purge     PurgeFunc
	retention time.Duration
	now       func() time.Time
}

func NewRetentionJob(params RetentionJobParams) (*RetentionJob, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("retention job name required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("%s: logger required", name)
	}
	if params.DB == nil {
		return nil, fmt.Errorf("%s: db required", name)
	}
	if params.Purge == nil {
		return nil, fmt.Errorf("%s: purge func required", name)
	}
	if params.Retention <= 0 {
		return nil, fmt.Errorf("%s: retention must be positive", name)
	}
	return &RetentionJob{
		name:      name,
		logg:      params.Logger,
		db:        params.DB,
		purge:     params.Purge,
		retention: params.Retention,
		now:       time.Now,
	}, nil
}

func (j *RetentionJob) Name() string { return j.name }

func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.purge(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s purge: %w", j.name, err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff.Format(time.RFC3339),
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "retention purge complete")
	return nil
}

// OutboxRetentionJob drops published events, and events parked at the
// attempt ceiling, once they age past retention.
func OutboxRetentionJob(logg *logger.Logger, db txRunner, repo *outbox.Repository, retention time.Duration, maxAttempts int) (*RetentionJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	return NewRetentionJob(RetentionJobParams{
		Name:   "outbox-retention",
		Logger: logg,
		DB:     db,
		Purge: func(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
			return repo.Purge(ctx, tx, cutoff, maxAttempts)
		},
		Retention: retention,
	})
}

// DLQRetentionJob drops dead letters once they age past retention.
func DLQRetentionJob(logg *logger.Logger, db txRunner, repo *outbox.DeadLetters, retention time.Duration) (*RetentionJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("dlq repository required")
	}
	return NewRetentionJob(RetentionJobParams{
		Name:      "outbox-dlq-retention",
		Logger:    logg,
		DB:        db,
		Purge:     repo.Prune,
		Retention: retention,
	})
}
