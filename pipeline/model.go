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

// Package pipeline holds the authoritative, serializable model of the
// current topology: a DAG of streams connected by pump and foreign-server
// edges, plus the mutation protocol that keeps it live-updatable while
// workers execute against derived task-graph snapshots.
package pipeline

import (
	"github.com/springql/springql-go/pipeline/plan"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/window"
)

// StreamModel is a native stream created by CREATE STREAM: purely
// descriptive, never mutated after creation.
type StreamModel struct {
	Name  row.StreamName
	Shape *row.StreamShape
}

// ForeignStreamModel is a stream created by CREATE SOURCE STREAM / CREATE
// SINK STREAM: it has the same shape as a native stream but is bindable to
// a ServerModel.
type ForeignStreamModel struct {
	Name  row.StreamName
	Shape *row.StreamShape
}

// PumpState is the lifecycle state of a PumpModel.
type PumpState int

const (
	PumpStopped PumpState = iota
	PumpStarted
)

func (s PumpState) String() string {
	if s == PumpStarted {
		return "STARTED"
	}
	return "STOPPED"
}

// PumpModel is a running (or stopped) SQL query: CREATE PUMP ... AS INSERT
// INTO downstream SELECT ... FROM upstream. PumpModels are created Stopped,
// transitioned to Started by ALTER PUMP ... START, and removed by DROP PUMP.
type PumpModel struct {
	Name       row.PumpName
	State      PumpState
	Upstream   row.StreamName
	Downstream row.StreamName
	Plan       *plan.QueryPlan
	InsertAs   *plan.InsertAsPlan
	// Window is this pump's running aggregation state. Non-nil iff
	// Plan.Window is set; created once at DDL-application time and lives
	// for the pump's lifetime, since panes carry state across dispatches.
	Window *window.Engine
}

// Started returns a copy of the pump with State set to Started.
func (p PumpModel) Started() PumpModel {
	p.State = PumpStarted
	return p
}

// Stopped returns a copy of the pump with State set to Stopped.
func (p PumpModel) Stopped() PumpModel {
	p.State = PumpStopped
	return p
}

// ServerType names the kind of foreign-server edge.
type ServerType int

const (
	ServerSourceNet ServerType = iota
	ServerSinkNet
	ServerSinkInMemoryQueue
)

func (t ServerType) String() string {
	switch t {
	case ServerSourceNet:
		return "SOURCE NET_CLIENT"
	case ServerSinkNet:
		return "SINK NET_CLIENT"
	case ServerSinkInMemoryQueue:
		return "SINK IN_MEMORY_QUEUE"
	default:
		return "UNKNOWN"
	}
}

// IsSource reports whether the server type reads from a foreign system into
// the pipeline (as opposed to writing out to one).
func (t ServerType) IsSource() bool { return t == ServerSourceNet }

// Options is the case-insensitive key/string-value bag DDL hands to a
// server. Keys are normalized to upper-case on insert/lookup, matching the
// DDL surface's case-insensitive recognition of option keys.
type Options map[string]string

// NewOptions builds an Options bag from a plain map, normalizing keys.
func NewOptions(m map[string]string) Options {
	o := make(Options, len(m))
	for k, v := range m {
		o[normalizeOptionKey(k)] = v
	}
	return o
}

// Get looks up an option by case-insensitive key.
func (o Options) Get(key string) (string, bool) {
	v, ok := o[normalizeOptionKey(key)]
	return v, ok
}

func normalizeOptionKey(key string) string {
	out := make([]byte, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// ServerModel describes a foreign source or sink server attached to one
// foreign stream. ServerState is derived, not stored here -- see
// Graph.SourceServerState.
type ServerModel struct {
	Type           ServerType
	ForeignStream  row.StreamName
	Options        Options
}
