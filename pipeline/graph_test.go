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

package pipeline

import (
	"testing"

	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/testsupport"
)

func addTestStream(t *testing.T, g *Graph, name row.StreamName) {
	t.Helper()
	if err := g.AddStream(StreamModel{Name: name, Shape: testsupport.TradeShape()}); err != nil {
		t.Fatalf("AddStream(%s): %v", name, err)
	}
}

func addTestPump(t *testing.T, g *Graph, name row.PumpName, upstream, downstream row.StreamName) error {
	t.Helper()
	return g.AddPump(PumpModel{Name: name, Upstream: upstream, Downstream: downstream})
}

// A pump whose endpoints would close a cycle is rejected and the graph is
// left exactly as it was (spec §8 property 5).
func TestAddPumpRejectsCycle(t *testing.T) {
	g := NewGraph()
	addTestStream(t, g, "a")
	addTestStream(t, g, "b")
	addTestStream(t, g, "c")

	if err := addTestPump(t, g, "p_ab", "a", "b"); err != nil {
		t.Fatalf("a->b: %v", err)
	}
	if err := addTestPump(t, g, "p_bc", "b", "c"); err != nil {
		t.Fatalf("b->c: %v", err)
	}

	pumpsBefore := len(g.pumpsByName)

	err := addTestPump(t, g, "p_ca", "c", "a")
	if err == nil {
		t.Fatal("expected cycle-creating pump to be rejected")
	}

	if len(g.pumpsByName) != pumpsBefore {
		t.Fatalf("graph mutated despite rejected pump: had %d pumps, now %d", pumpsBefore, len(g.pumpsByName))
	}
	if _, ok := g.pumpsByName["p_ca"]; ok {
		t.Fatal("rejected pump was still added to the graph")
	}
}

// A self-loop pump (upstream == downstream) is rejected as a degenerate cycle.
func TestAddPumpRejectsSelfLoop(t *testing.T) {
	g := NewGraph()
	addTestStream(t, g, "a")

	if err := addTestPump(t, g, "p_aa", "a", "a"); err == nil {
		t.Fatal("expected self-loop pump to be rejected")
	}
}

// Pumps between streams with no existing path don't trip the cycle check.
func TestAddPumpAllowsDiamond(t *testing.T) {
	g := NewGraph()
	addTestStream(t, g, "a")
	addTestStream(t, g, "b")
	addTestStream(t, g, "c")
	addTestStream(t, g, "d")

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	must(addTestPump(t, g, "p_ab", "a", "b"))
	must(addTestPump(t, g, "p_ac", "a", "c"))
	must(addTestPump(t, g, "p_bd", "b", "d"))
	must(addTestPump(t, g, "p_cd", "c", "d"))
}

// AddPump on a nonexistent endpoint fails without touching the graph.
func TestAddPumpMissingEndpoint(t *testing.T) {
	g := NewGraph()
	addTestStream(t, g, "a")

	if err := addTestPump(t, g, "p", "a", "ghost"); err == nil {
		t.Fatal("expected error for nonexistent downstream stream")
	}
	if _, ok := g.pumpsByName["p"]; ok {
		t.Fatal("pump with missing endpoint was still added")
	}
}

// ProjectTaskGraph derives stable TaskIds from the edges themselves, so
// recomputing after an unrelated topology change preserves existing IDs
// (spec §8 property 6 / task-identity invariant).
func TestProjectTaskGraphStableIds(t *testing.T) {
	g := NewGraph()
	addTestStream(t, g, "a")
	addTestStream(t, g, "b")
	addTestStream(t, g, "c")
	if err := addTestPump(t, g, "p_ab", "a", "b"); err != nil {
		t.Fatalf("p_ab: %v", err)
	}

	before := g.ProjectTaskGraph()
	idsBefore := before.Ids()
	if len(idsBefore) == 0 {
		t.Fatal("expected at least one task before the unrelated mutation")
	}

	// An unrelated mutation (adding an unconnected stream) must not disturb
	// the TaskId derived from the untouched a->b pump edge.
	addTestStream(t, g, "d")
	after := g.ProjectTaskGraph()
	idsAfter := after.Ids()

	found := false
	for _, id := range idsAfter {
		if id == idsBefore[0] {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("TaskId %v from before did not survive recomputation: %v", idsBefore[0], idsAfter)
	}
}
