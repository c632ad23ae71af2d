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

package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.NWorkerThreads != 4 {
		t.Errorf("NWorkerThreads = %d, want 4", c.NWorkerThreads)
	}
	if c.ForeignInputTimeout != 100*time.Millisecond {
		t.Errorf("ForeignInputTimeout = %v, want 100ms", c.ForeignInputTimeout)
	}
	if c.ConnectTimeout != time.Second {
		t.Errorf("ConnectTimeout = %v, want 1s", c.ConnectTimeout)
	}
	if c.SchedulerBackoff != time.Millisecond {
		t.Errorf("SchedulerBackoff = %v, want 1ms", c.SchedulerBackoff)
	}
}

func TestNewAppliesOptionsOverDefaults(t *testing.T) {
	c := New(
		WithWorkerThreads(8),
		WithForeignInputTimeout(250*time.Millisecond),
		WithConnectTimeout(2*time.Second),
		WithSchedulerBackoff(5*time.Millisecond),
	)

	if c.NWorkerThreads != 8 {
		t.Errorf("NWorkerThreads = %d, want 8", c.NWorkerThreads)
	}
	if c.ForeignInputTimeout != 250*time.Millisecond {
		t.Errorf("ForeignInputTimeout = %v, want 250ms", c.ForeignInputTimeout)
	}
	if c.ConnectTimeout != 2*time.Second {
		t.Errorf("ConnectTimeout = %v, want 2s", c.ConnectTimeout)
	}
	if c.SchedulerBackoff != 5*time.Millisecond {
		t.Errorf("SchedulerBackoff = %v, want 5ms", c.SchedulerBackoff)
	}
}

func TestNewWithNoOptionsMatchesDefault(t *testing.T) {
	if got, want := New(), DefaultConfig(); got != want {
		t.Fatalf("New() = %+v, want %+v", got, want)
	}
}

func TestPerformancePresetsOverrideDefaults(t *testing.T) {
	hp := New(WithHighPerformance())
	if hp.NWorkerThreads != 16 {
		t.Errorf("WithHighPerformance: NWorkerThreads = %d, want 16", hp.NWorkerThreads)
	}

	ll := New(WithLowLatency())
	if ll.NWorkerThreads != 2 {
		t.Errorf("WithLowLatency: NWorkerThreads = %d, want 2", ll.NWorkerThreads)
	}

	zdl := New(WithZeroDataLoss())
	if zdl.ForeignInputTimeout != 5*time.Second {
		t.Errorf("WithZeroDataLoss: ForeignInputTimeout = %v, want 5s", zdl.ForeignInputTimeout)
	}
}

func TestLaterOptionWinsOverPreset(t *testing.T) {
	c := New(WithHighPerformance(), WithWorkerThreads(3))
	if c.NWorkerThreads != 3 {
		t.Errorf("NWorkerThreads = %d, want 3 (explicit option applied after preset)", c.NWorkerThreads)
	}
}
