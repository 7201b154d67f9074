package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrQueueFull means the ingestion buffer is at capacity; the caller may retry.
var ErrQueueFull = errors.New("ingestion queue is full")

// Event is one accepted session activity, ready to be persisted.
type Event struct {
	ID            uuid.UUID
	SessionID     string
	Country       string
	FirstSeenDate time.Time
	EventDate     time.Time
	DeviceClass   string
	DedupeKey     string
	ReceivedAt    time.Time
}
