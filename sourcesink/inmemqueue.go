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

package sourcesink

import (
	"context"
	"sync"

	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/springqlerr"
)

// InMemoryQueueSink is a SinkConn that buffers rows in-process instead of
// serializing them out over a socket -- how an embedder reads query results
// out of the pipeline without a network hop, matching NAME-addressed
// IN_MEMORY_QUEUE sinks from the DDL surface.
type InMemoryQueueSink struct {
	name string

	mu   sync.Mutex
	rows []*row.Row
}

// NewInMemoryQueueSink creates a named in-memory queue sink.
func NewInMemoryQueueSink(name string) *InMemoryQueueSink {
	return &InMemoryQueueSink{name: name}
}

// ParseInMemoryQueueOptions validates a ServerModel's Options against the
// IN_MEMORY_QUEUE recognized-key set: NAME.
func ParseInMemoryQueueOptions(opts pipeline.Options) (name string, err error) {
	name, ok := opts.Get("NAME")
	if !ok {
		return "", springqlerr.New(springqlerr.InvalidOption, "IN_MEMORY_QUEUE sink requires NAME option")
	}
	return name, nil
}

// WriteRow appends r to the queue. Never blocks: the queue grows as needed,
// matching the row repository's own unbounded-queue design (bounded-queue
// backpressure is the Unavailable error kind's reserved follow-on concern).
func (q *InMemoryQueueSink) WriteRow(_ context.Context, r *row.Row) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.rows = append(q.rows, r)
	return nil
}

// Close is a no-op: there is no underlying connection to release.
func (q *InMemoryQueueSink) Close() error { return nil }

// Pop removes and returns the oldest buffered row, for an embedder draining
// query results out of the queue.
func (q *InMemoryQueueSink) Pop() (*row.Row, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.rows) == 0 {
		return nil, false
	}
	r := q.rows[0]
	q.rows = q.rows[1:]
	return r, true
}

// Len reports the number of rows currently buffered.
func (q *InMemoryQueueSink) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.rows)
}

// Name returns the queue's NAME, as declared in DDL options.
func (q *InMemoryQueueSink) Name() string { return q.name }
