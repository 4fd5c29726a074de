package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EnvelopeVersion is written on every new event. Consumers pick a payload
// decoder by (event type, version).
const EnvelopeVersion = 1

// ActorRef names who caused the event; guests carry no user id.
type ActorRef struct {
	UserID string `json:"userId,omitempty"`
	Guest  bool   `json:"guest,omitempty"`
}

// PayloadEnvelope wraps every payload stored in outbox_events.payload.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload and rejects envelopes that no
// consumer could use.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	switch {
	case env.Version <= 0:
		return env, fmt.Errorf("envelope version %d", env.Version)
	case env.EventID == "":
		return env, errors.New("envelope missing eventId")
	case !env.HasData():
		return env, errors.New("envelope missing data")
	}
	return env, nil
}

func (e PayloadEnvelope) HasData() bool {
	data := bytes.TrimSpace(e.Data)
	return len(data) > 0 && !bytes.Equal(data, []byte("null"))
}
