// Package worker consumes review notifications and forwards them to the administrator.
package worker

import (
	"sync/atomic"
	"time"
)

// Config holds the subscription receive settings.
type Config struct {
	// MaxOutstandingMessages bounds unacknowledged messages in flight.
	// Default: 10
	MaxOutstandingMessages int

	// MaxExtension is how long a message's ack deadline may be extended.
	// Default: 10 minutes
	MaxExtension time.Duration

	// HandleTimeout bounds the handling of a single message.
	// Default: 30 seconds
	HandleTimeout time.Duration
}

// DefaultConfig returns the default worker configuration.
func DefaultConfig() Config {
	return Config{
		MaxOutstandingMessages: 10,
		MaxExtension:           10 * time.Minute,
		HandleTimeout:          30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxOutstandingMessages == 0 {
		c.MaxOutstandingMessages = d.MaxOutstandingMessages
	}
	if c.MaxExtension == 0 {
		c.MaxExtension = d.MaxExtension
	}
	if c.HandleTimeout == 0 {
		c.HandleTimeout = d.HandleTimeout
	}
	return c
}

// Metrics tracks message handling counts.
type Metrics struct {
	Delivered atomic.Int64
	Failed    atomic.Int64
	Skipped   atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
}

// Snapshot returns the current counts.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Delivered: m.Delivered.Load(),
		Failed:    m.Failed.Load(),
		Skipped:   m.Skipped.Load(),
	}
}
