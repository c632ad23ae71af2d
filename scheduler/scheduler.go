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

// Package scheduler picks the next runnable task from the current task
// graph. Reads are snapshot-based: a worker acquires a read handle for the
// duration of one task step; a topology update acquires the write lock,
// which waits for every in-flight read handle to release before installing
// the new task graph.
package scheduler

import (
	"sync"

	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/repository"
)

// Scheduler holds the currently-installed task graph and the row
// repository it schedules against. One Scheduler serves the whole
// autonomous executor.
type Scheduler struct {
	mu    sync.RWMutex
	graph *pipeline.TaskGraph
	repo  *repository.Repository
}

// New creates a Scheduler with an empty task graph.
func New(repo *repository.Repository) *Scheduler {
	return &Scheduler{graph: &pipeline.TaskGraph{}, repo: repo}
}

// ReadHandle is a snapshot-scoped lease on the scheduler's state, held for
// the duration of exactly one worker task step.
type ReadHandle struct {
	s     *Scheduler
	graph *pipeline.TaskGraph
}

// Acquire takes a read handle. The caller must call Release when its one
// task step is complete.
func (s *Scheduler) Acquire() *ReadHandle {
	s.mu.RLock()
	return &ReadHandle{s: s, graph: s.graph}
}

// Release gives up the read handle, allowing a pending writer to proceed.
func (h *ReadHandle) Release() {
	h.s.mu.RUnlock()
}

// Task returns the task graph node for id, as it stood when the handle was
// acquired.
func (h *ReadHandle) Task(id pipeline.TaskId) (*pipeline.Task, bool) {
	return h.graph.Get(id)
}

// Next implements the FlowEfficient strategy: among tasks whose inbox is
// non-empty, plus every source task (which has no inbox and reads from its
// foreign server instead), prefer the one whose downstream tasks' combined
// inbox depth is smallest (least backpressure downstream); ties break on
// the lexicographically smallest TaskId. Returns false if no task is
// runnable.
func (h *ReadHandle) Next() (pipeline.TaskId, bool) {
	var (
		best      pipeline.TaskId
		bestDepth = -1
		found     bool
	)
	// Ids() is already lexicographically sorted, so the first task seen at
	// the minimum depth is the lexicographically smallest: a strict "<"
	// comparison below gives the tie-break for free.
	for _, id := range h.graph.Ids() {
		t, _ := h.graph.Get(id)
		if t.Kind != pipeline.TaskSource && h.s.repo.Len(id) == 0 {
			continue
		}
		depth := downstreamDepth(h.s.repo, t)
		if !found || depth < bestDepth {
			best, bestDepth, found = id, depth, true
		}
	}
	return best, found
}

func downstreamDepth(repo *repository.Repository, t *pipeline.Task) int {
	depth := 0
	for _, d := range t.Downstream {
		depth += repo.Len(d)
	}
	return depth
}

// Update installs a newly computed task graph. It blocks until every
// currently-held read handle is released, then resets the repository
// queues of any task absent from (or replaced in) the new graph before
// making it visible to future Acquire calls -- guaranteeing no worker ever
// executes a task step against a (graph, repository) pair that does not
// match.
func (s *Scheduler) Update(newGraph *pipeline.TaskGraph) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.graph
	staleIds := changedOrRemovedIds(old, newGraph)
	for _, id := range staleIds {
		s.repo.Reset([]pipeline.TaskId{id})
	}
	for _, t := range newGraph.Tasks() {
		s.repo.EnsureTask(t.Id)
	}
	for _, id := range staleIdsNotIn(old, newGraph) {
		s.repo.RemoveTask(id)
	}

	s.graph = newGraph
}

// changedOrRemovedIds returns every TaskId present in old whose task either
// no longer exists in next, or exists with different upstream/downstream
// linkage (a topology change that could leave stale rows routed wrong).
func changedOrRemovedIds(old, next *pipeline.TaskGraph) []pipeline.TaskId {
	var out []pipeline.TaskId
	for _, t := range old.Tasks() {
		nt, ok := next.Get(t.Id)
		if !ok || !sameLinkage(t, nt) {
			out = append(out, t.Id)
		}
	}
	return out
}

// staleIdsNotIn returns every TaskId present in old but absent from next,
// i.e. tasks whose repository entry should be deleted outright rather than
// merely reset.
func staleIdsNotIn(old, next *pipeline.TaskGraph) []pipeline.TaskId {
	var out []pipeline.TaskId
	for _, t := range old.Tasks() {
		if _, ok := next.Get(t.Id); !ok {
			out = append(out, t.Id)
		}
	}
	return out
}

func sameLinkage(a, b *pipeline.Task) bool {
	if len(a.Upstream) != len(b.Upstream) || len(a.Downstream) != len(b.Downstream) {
		return false
	}
	for i := range a.Upstream {
		if a.Upstream[i] != b.Upstream[i] {
			return false
		}
	}
	for i := range a.Downstream {
		if a.Downstream[i] != b.Downstream[i] {
			return false
		}
	}
	return true
}
