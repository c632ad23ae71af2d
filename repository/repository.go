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

// Package repository mediates row hand-off between producer and downstream
// consumer tasks: conceptually a map from TaskId to an inbox FIFO queue.
// Multiple producers and exactly one consumer may operate on any one
// queue concurrently; ordering is FIFO within one queue, with no ordering
// guaranteed across queues.
package repository

import (
	"sync"

	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/row"
)

// inbox is one task's FIFO queue of in-flight rows. It is a plain
// mutex-guarded slice read from a head index, whose backing array is
// dropped once fully drained; growth is unbounded (no queue-full
// error), since spec's bounded-queue backpressure is explicitly a
// follow-on concern (Unavailable is reserved for it, unused today).
type inbox struct {
	mu   sync.Mutex
	data []*row.Row
	head int
}

func newInbox() *inbox {
	return &inbox{}
}

func (q *inbox) push(r *row.Row) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.data = append(q.data, r)
}

func (q *inbox) pop() (*row.Row, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.data) {
		return nil, false
	}
	r := q.data[q.head]
	q.data[q.head] = nil
	q.head++
	// Reclaim the backing array once it is fully drained, so a bursty
	// producer doesn't pin memory for a queue that is otherwise empty.
	if q.head == len(q.data) {
		q.data = nil
		q.head = 0
	}
	return r, true
}

func (q *inbox) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data) - q.head
}

func (q *inbox) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.data = nil
	q.head = 0
}

// Repository owns every task's inbox. The map of inboxes itself changes
// only under a pipeline write (new/removed tasks), which is rare; row
// traffic through an individual inbox is the hot path and takes only the
// map's read lock, plus that inbox's own mutex.
type Repository struct {
	mu      sync.RWMutex
	inboxes map[pipeline.TaskId]*inbox
}

// New creates an empty Repository.
func New() *Repository {
	return &Repository{inboxes: make(map[pipeline.TaskId]*inbox)}
}

// EnsureTask registers an inbox for id if one does not already exist. Called
// when the task graph is (re)computed, before any task can emit or collect.
func (r *Repository) EnsureTask(id pipeline.TaskId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inboxes[id]; !ok {
		r.inboxes[id] = newInbox()
	}
}

// RemoveTask drops id's inbox entirely, e.g. when a task graph
// recomputation removes that task.
func (r *Repository) RemoveTask(id pipeline.TaskId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inboxes, id)
}

// Emit enqueues row once per downstream task. A row fanning out to N
// downstream tasks is duplicated (each gets its own pointer into the same
// immutable Row) so no consumer observes another's dequeue.
func (r *Repository) Emit(rw *row.Row, downstream []pipeline.TaskId) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range downstream {
		if q, ok := r.inboxes[id]; ok {
			q.push(rw)
		}
	}
}

// CollectNext non-blockingly dequeues the next row for id, if any.
func (r *Repository) CollectNext(id pipeline.TaskId) (*row.Row, bool) {
	r.mu.RLock()
	q, ok := r.inboxes[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return q.pop()
}

// Len reports the current queue depth of id, used by the FlowEfficient
// scheduler to prefer the task whose downstream queue is shortest.
func (r *Repository) Len(id pipeline.TaskId) int {
	r.mu.RLock()
	q, ok := r.inboxes[id]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	return q.len()
}

// Reset clears the inboxes of every id in taskIds. Called under the
// pipeline write lock on topology change, so that a task that no longer
// exists (or whose upstream changed) does not keep serving stale rows.
func (r *Repository) Reset(taskIds []pipeline.TaskId) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range taskIds {
		if q, ok := r.inboxes[id]; ok {
			q.clear()
		}
	}
}
