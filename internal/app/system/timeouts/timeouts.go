// Package timeouts holds the context deadlines used by handlers and startup.
//
//   - Ping: health checks
//   - Short: single-document reads and the sign-up insert
//   - Preload: the startup static-data preload, which may run the
//     database initializer (collections, indexes and seeding)
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing    = 2 * time.Second
	DefaultShort   = 5 * time.Second
	DefaultPreload = 60 * time.Second
)

var (
	mu      sync.RWMutex
	ping    = DefaultPing
	short   = DefaultShort
	preload = DefaultPreload
)

// Ping returns the health-check timeout.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single reads and writes.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Preload returns the timeout for the startup preload step.
func Preload() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return preload
}

// Config holds timeout overrides. Zero values keep the current value.
type Config struct {
	Ping    time.Duration
	Short   time.Duration
	Preload time.Duration
}

// Configure applies cfg. Call it from LoadConfig, before any handler runs.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Preload > 0 {
		preload = cfg.Preload
	}
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	preload = DefaultPreload
}

// Current returns the active values.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Preload: preload}
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when
// the deadline was what ended the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
