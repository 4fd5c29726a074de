package outbox

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func deadLetter(failedAt time.Time, msg string) models.OutboxDLQ {
	return models.OutboxDLQ{
		EventID:       uuid.New(),
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &msg,
		AttemptCount:  10,
		FailedAt:      failedAt,
	}
}

func TestDeadLettersInsertClipsMessage(t *testing.T) {
	conn := dbtest.Open(t)
	store := NewDeadLetters(conn)

	entry := deadLetter(time.Now().UTC(), strings.Repeat("é", deadLetterMessageBytes))
	require.NoError(t, store.Insert(conn, entry))

	var stored models.OutboxDLQ
	require.NoError(t, conn.Where("event_id = ?", entry.EventID).First(&stored).Error)
	require.NotNil(t, stored.ErrorMessage)
	require.LessOrEqual(t, len(*stored.ErrorMessage), deadLetterMessageBytes)
	require.True(t, strings.HasPrefix(strings.Repeat("é", deadLetterMessageBytes), *stored.ErrorMessage))

	require.Error(t, store.Insert(nil, entry))
}

func TestDeadLettersPrune(t *testing.T) {
	conn := dbtest.Open(t)
	store := NewDeadLetters(conn)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(conn, deadLetter(now.Add(-48*time.Hour), "old")))
	require.NoError(t, store.Insert(conn, deadLetter(now, "fresh")))

	removed, err := store.Prune(context.Background(), nil, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestClip(t *testing.T) {
	require.Equal(t, "abc", clip("abc", 5))
	require.Equal(t, "ab", clip("abc", 2))
	require.Equal(t, "a", clip("aé", 2))
	require.Equal(t, "", clip("é", 1))
}
