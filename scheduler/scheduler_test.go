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

package scheduler

import (
	"testing"

	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/repository"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/testsupport"
)

// buildChain creates a -> p_ab -> b -> p_bc -> c, all stopped pumps (a
// pump's running state affects neither whether it projects a Task nor how
// that Task is linked).
func buildChain(t *testing.T) *pipeline.Graph {
	t.Helper()
	g := pipeline.NewGraph()
	for _, name := range []string{"a", "b", "c"} {
		if err := g.AddStream(pipeline.StreamModel{Name: row.StreamName(name), Shape: testsupport.TradeShape()}); err != nil {
			t.Fatalf("AddStream(%s): %v", name, err)
		}
	}
	if err := g.AddPump(pipeline.PumpModel{Name: "p_ab", Upstream: "a", Downstream: "b"}); err != nil {
		t.Fatalf("p_ab: %v", err)
	}
	if err := g.AddPump(pipeline.PumpModel{Name: "p_bc", Upstream: "b", Downstream: "c"}); err != nil {
		t.Fatalf("p_bc: %v", err)
	}
	return g
}

// Next never returns a task whose inbox is empty.
func TestNextSkipsEmptyInboxes(t *testing.T) {
	g := buildChain(t)
	repo := repository.New()
	sch := New(repo)
	sch.Update(g.ProjectTaskGraph())

	h := sch.Acquire()
	defer h.Release()

	if _, ok := h.Next(); ok {
		t.Fatal("expected no runnable task when every inbox is empty")
	}
}

// Among non-empty tasks, FlowEfficient prefers the one with the least
// downstream backpressure; ties break lexicographically on TaskId.
func TestNextPrefersLeastDownstreamDepth(t *testing.T) {
	g := buildChain(t)
	repo := repository.New()
	sch := New(repo)
	sch.Update(g.ProjectTaskGraph())

	pAB := pipeline.TaskId("Pump(p_ab)")
	pBC := pipeline.TaskId("Pump(p_bc)")

	rw := testsupport.Trade("2021-01-01 00:00:00.000000000", "ORCL", 10)
	// Both pumps become runnable. p_bc has no downstream task in this graph
	// (no Sink attached to "c"), so its downstream depth is always 0; p_ab's
	// downstream depth is p_bc's own queue length, which we set to 1.
	repo.EnsureTask(pAB)
	repo.EnsureTask(pBC)
	repo.Emit(rw, []pipeline.TaskId{pAB})
	repo.Emit(rw, []pipeline.TaskId{pBC})

	h := sch.Acquire()
	id, ok := h.Next()
	h.Release()
	if !ok {
		t.Fatal("expected a runnable task")
	}
	if id != pBC {
		t.Fatalf("expected %v (least downstream depth), got %v", pBC, id)
	}
}

// Update resets the inboxes of any task whose linkage changed, so stale
// rows don't get routed against new topology.
func TestUpdateResetsChangedLinkage(t *testing.T) {
	g := buildChain(t)
	repo := repository.New()
	sch := New(repo)
	sch.Update(g.ProjectTaskGraph())

	pAB := pipeline.TaskId("Pump(p_ab)")
	rw := testsupport.Trade("2021-01-01 00:00:00.000000000", "ORCL", 10)
	repo.Emit(rw, []pipeline.TaskId{pAB})
	if repo.Len(pAB) != 1 {
		t.Fatalf("expected 1 queued row before update, got %d", repo.Len(pAB))
	}

	// Retarget p_bc to read from a new stream "d" instead of "b": p_ab's
	// Downstream linkage set is unaffected, but to exercise the reset we
	// instead remove p_bc outright, which does change p_ab's linkage (it
	// loses its downstream consumer).
	if err := g.RemovePump("p_bc"); err != nil {
		t.Fatalf("RemovePump: %v", err)
	}
	sch.Update(g.ProjectTaskGraph())

	if repo.Len(pAB) != 0 {
		t.Fatalf("expected p_ab's inbox reset after its linkage changed, got %d", repo.Len(pAB))
	}
}

// Update removes the repository entry of a task that no longer exists in
// the new graph at all.
func TestUpdateRemovesDroppedTask(t *testing.T) {
	g := buildChain(t)
	repo := repository.New()
	sch := New(repo)
	sch.Update(g.ProjectTaskGraph())

	pBC := pipeline.TaskId("Pump(p_bc)")
	if repo.Len(pBC) != 0 {
		t.Fatalf("expected fresh task with empty inbox, got %d", repo.Len(pBC))
	}

	if err := g.RemovePump("p_bc"); err != nil {
		t.Fatalf("RemovePump: %v", err)
	}
	sch.Update(g.ProjectTaskGraph())

	h := sch.Acquire()
	_, ok := h.Task(pBC)
	h.Release()
	if ok {
		t.Fatal("expected p_bc's task to be gone after removal")
	}
}
