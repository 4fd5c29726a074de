package outbox

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// deadLetterMessageBytes caps error_message; publish errors can embed whole
// gRPC status payloads.
const deadLetterMessageBytes = 1024

// DeadLetters is the outbox_dlq table.
type DeadLetters struct {
	db *gorm.DB
}

func NewDeadLetters(conn *gorm.DB) *DeadLetters {
	return &DeadLetters{db: conn}
}

// Insert must run in the transaction that parks the source row.
func (d *DeadLetters) Insert(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("dead letter insert needs a transaction")
	}
	if entry.ErrorMessage != nil {
		clipped := clip(*entry.ErrorMessage, deadLetterMessageBytes)
		entry.ErrorMessage = &clipped
	}
	return tx.Create(&entry).Error
}

// Prune deletes entries parked before cutoff and reports how many went.
func (d *DeadLetters) Prune(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := d.db
	if tx != nil {
		conn = tx
	}
	res := conn.WithContext(ctx).Where("failed_at < ?", cutoff).Delete(&models.OutboxDLQ{})
	return res.RowsAffected, res.Error
}

// clip shortens s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
