/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config holds the engine's runtime configuration: worker pool
// size, foreign I/O timeouts and scheduler backoff, assembled through the
// functional-options pattern.
package config

import (
	"time"

	"github.com/springql/springql-go/logger"
)

// Config is the autonomous executor's runtime configuration.
type Config struct {
	// NWorkerThreads is the number of OS threads (goroutines) running the
	// single-task-step worker loop.
	NWorkerThreads int
	// ForeignInputTimeout bounds a single source read; a read that does
	// not complete in time yields ForeignInputTimeout, handled in-worker.
	ForeignInputTimeout time.Duration
	// ConnectTimeout bounds establishing a foreign source/sink
	// connection, separate from the per-read timeout.
	ConnectTimeout time.Duration
	// SchedulerBackoff is how long a worker sleeps after finding no
	// runnable task, to avoid livelocking on an always-empty queue.
	SchedulerBackoff time.Duration
}

// DefaultConfig returns the engine's default configuration.
func DefaultConfig() Config {
	return Config{
		NWorkerThreads:       4,
		ForeignInputTimeout:  100 * time.Millisecond,
		ConnectTimeout:       1 * time.Second,
		SchedulerBackoff:     1 * time.Millisecond,
	}
}

// Option configures a Config.
type Option func(*Config)

// WithWorkerThreads sets the number of worker goroutines.
func WithWorkerThreads(n int) Option {
	return func(c *Config) { c.NWorkerThreads = n }
}

// WithForeignInputTimeout sets the per-read timeout on foreign sources.
func WithForeignInputTimeout(d time.Duration) Option {
	return func(c *Config) { c.ForeignInputTimeout = d }
}

// WithConnectTimeout sets the foreign connection-establishment timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) { c.ConnectTimeout = d }
}

// WithSchedulerBackoff sets how long an idle worker sleeps before retrying
// the scheduler.
func WithSchedulerBackoff(d time.Duration) Option {
	return func(c *Config) { c.SchedulerBackoff = d }
}

// WithLogLevel sets the engine's global default log level.
func WithLogLevel(level logger.Level) Option {
	return func(c *Config) { logger.GetDefault().SetLevel(level) }
}

// WithDiscardLog disables engine log output entirely.
func WithDiscardLog() Option {
	return func(c *Config) { logger.SetDefault(logger.NewDiscardLogger()) }
}

// WithHighPerformance favors throughput: more workers, less eager backoff,
// and a shorter foreign-input timeout so a stuck source doesn't stall a
// worker for long.
func WithHighPerformance() Option {
	return func(c *Config) {
		c.NWorkerThreads = 16
		c.SchedulerBackoff = 0
		c.ForeignInputTimeout = 20 * time.Millisecond
	}
}

// WithLowLatency favors responsiveness over raw throughput: few workers so
// each spends less time waiting for the scheduler's write lock, and a
// backoff short enough that an idle worker notices new work almost
// immediately.
func WithLowLatency() Option {
	return func(c *Config) {
		c.NWorkerThreads = 2
		c.SchedulerBackoff = 100 * time.Microsecond
		c.ForeignInputTimeout = 10 * time.Millisecond
	}
}

// WithZeroDataLoss favors durability of in-flight data over speed: a longer
// foreign-input and connect timeout so a slow-but-alive foreign endpoint is
// never prematurely abandoned.
func WithZeroDataLoss() Option {
	return func(c *Config) {
		c.ForeignInputTimeout = 5 * time.Second
		c.ConnectTimeout = 10 * time.Second
		c.SchedulerBackoff = 5 * time.Millisecond
	}
}

// New builds a Config starting from DefaultConfig and applying opts in
// order.
func New(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
