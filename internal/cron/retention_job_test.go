package cron

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
)

type gormTx struct {
	db *gorm.DB
}

func (g gormTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func seedEvent(t *testing.T, db *gorm.DB, createdAt time.Time, publishedAt *time.Time, attempts int) uuid.UUID {
	t.Helper()
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		CreatedAt:     createdAt,
		PublishedAt:   publishedAt,
		AttemptCount:  attempts,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event.ID
}

func TestOutboxRetentionJobKeepsRecentAndRetryableRows(t *testing.T) {
	db := dbtest.Open(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-45 * 24 * time.Hour)
	recent := now.Add(-24 * time.Hour)

	seedEvent(t, db, old, &old, 1)
	seedEvent(t, db, old, nil, 10)
	keepRecent := seedEvent(t, db, recent, &recent, 1)
	keepRetrying := seedEvent(t, db, old, nil, 3)

	job, err := OutboxRetentionJob(quietLogger(), gormTx{db}, outbox.NewRepository(db), 30*24*time.Hour, 10)
	if err != nil {
		t.Fatalf("build job: %v", err)
	}
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var remaining []models.OutboxEvent
	if err := db.Order("created_at ASC").Find(&remaining).Error; err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 rows left, got %d", len(remaining))
	}
	ids := map[uuid.UUID]bool{remaining[0].ID: true, remaining[1].ID: true}
	if !ids[keepRecent] || !ids[keepRetrying] {
		t.Fatalf("unexpected survivors: %v", ids)
	}
}

func TestDLQRetentionJobDropsOldDeadLetters(t *testing.T) {
	db := dbtest.Open(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := outbox.NewDeadLetters(db)

	for _, failedAt := range []time.Time{now.Add(-100 * 24 * time.Hour), now.Add(-time.Hour)} {
		entry := models.OutboxDLQ{
			EventID:       uuid.New(),
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{}`),
			ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
			AttemptCount:  10,
			FailedAt:      failedAt,
		}
		if err := repo.Insert(db, entry); err != nil {
			t.Fatalf("seed dlq: %v", err)
		}
	}

	job, err := DLQRetentionJob(quietLogger(), gormTx{db}, repo, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("build job: %v", err)
	}
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var count int64
	if err := db.Model(&models.OutboxDLQ{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 dead letter left, got %d", count)
	}
}

func TestRetentionJobWrapsPurgeErrors(t *testing.T) {
	job, err := NewRetentionJob(RetentionJobParams{
		Name:   "broken",
		Logger: quietLogger(),
		DB:     gormTx{dbtest.Open(t)},
		Purge: func(context.Context, *gorm.DB, time.Time) (int64, error) {
			return 0, errors.New("disk full")
		},
		Retention: time.Hour,
	})
	if err != nil {
		t.Fatalf("build job: %v", err)
	}

	err = job.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "broken purge") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewRetentionJobValidatesParams(t *testing.T) {
	purge := func(context.Context, *gorm.DB, time.Time) (int64, error) { return 0, nil }
	cases := map[string]RetentionJobParams{
		"name":      {Logger: quietLogger(), DB: gormTx{}, Purge: purge, Retention: time.Hour},
		"logger":    {Name: "x", DB: gormTx{}, Purge: purge, Retention: time.Hour},
		"db":        {Name: "x", Logger: quietLogger(), Purge: purge, Retention: time.Hour},
		"purge":     {Name: "x", Logger: quietLogger(), DB: gormTx{}, Retention: time.Hour},
		"retention": {Name: "x", Logger: quietLogger(), DB: gormTx{}, Purge: purge},
	}
	for field, params := range cases {
		if _, err := NewRetentionJob(params); err == nil {
			t.Fatalf("missing %s should fail", field)
		}
	}
}
