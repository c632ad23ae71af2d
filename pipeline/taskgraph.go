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
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/springql/springql-go/row"
)

// TaskId identifies one task in a TaskGraph. It is derived deterministically
// from the pipeline edge it projects from, so a task graph recomputed after
// an unrelated topology change keeps the same IDs for untouched edges --
// the scheduler's tie-break and the row repository's queue keys both depend
// on this stability.
type TaskId string

// TaskKind tags a TaskId's role.
type TaskKind int

const (
	TaskSource TaskKind = iota
	TaskPump
	TaskSink
)

func (k TaskKind) String() string {
	switch k {
	case TaskSource:
		return "Source"
	case TaskPump:
		return "Pump"
	case TaskSink:
		return "Sink"
	default:
		return "Unknown"
	}
}

// sourceTaskId derives the TaskId of the SourceTask serving a foreign
// stream's SourceNet edge.
func sourceTaskId(foreignStream row.StreamName) TaskId {
	return TaskId(fmt.Sprintf("Source(%s)", foreignStream))
}

// pumpTaskId derives the TaskId of the PumpTask projecting one pump.
func pumpTaskId(pumpName row.PumpName) TaskId {
	return TaskId(fmt.Sprintf("Pump(%s)", pumpName))
}

// sinkTaskId derives the TaskId of the SinkTask serving a foreign stream's
// Sink edge.
func sinkTaskId(foreignStream row.StreamName) TaskId {
	return TaskId(fmt.Sprintf("Sink(%s)", foreignStream))
}

// Task is one node of the TaskGraph: a SourceTask, PumpTask or SinkTask,
// with the upstream/downstream TaskIds the scheduler and row repository use
// to route rows.
type Task struct {
	Id         TaskId
	Kind       TaskKind
	Pump       *PumpModel  // set when Kind == TaskPump
	Server     *ServerModel // set when Kind == TaskSource || Kind == TaskSink
	Upstream   []TaskId
	Downstream []TaskId

	// InstanceId is a fresh random handle minted every time this task is
	// (re)projected -- a secondary diagnostic key for correlating log lines
	// and dumps against one particular run of a task, since TaskId itself is
	// stable across topology changes and so can't distinguish "the pump that
	// errored just now" from "the pump with the same name before a restart".
	InstanceId string
}

// TaskGraph is the runtime projection of a Graph used by the scheduler and
// row repository: one SourceTask per SourceNet edge, one PumpTask per pump,
// one SinkTask per SinkNet/SinkInMemoryQueue edge.
type TaskGraph struct {
	tasks map[TaskId]*Task
	order []TaskId // deterministic (sorted) iteration order
}

// Tasks returns every task in deterministic (lexicographic TaskId) order.
func (g *TaskGraph) Tasks() []*Task {
	out := make([]*Task, len(g.order))
	for i, id := range g.order {
		out[i] = g.tasks[id]
	}
	return out
}

// Get returns the task with the given id.
func (g *TaskGraph) Get(id TaskId) (*Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Ids returns every TaskId in deterministic order, the shape the scheduler
// iterates to apply its FlowEfficient + lexicographic tie-break policy.
func (g *TaskGraph) Ids() []TaskId {
	out := make([]TaskId, len(g.order))
	copy(out, g.order)
	return out
}

// ProjectTaskGraph computes the task graph of the current pipeline graph.
// Every pump edge projects to a PumpTask with the same linkage whether it
// is Started or Stopped, matching the "recomputed task graphs preserve IDs"
// requirement: starting a stopped pump must not change any other task's
// identity. PumpState is not consulted here or by the executor, so a
// Stopped pump's inbox still receives rows from its upstream tasks and the
// scheduler runs it like any other task.
func (g *Graph) ProjectTaskGraph() *TaskGraph {
	tg := &TaskGraph{tasks: make(map[TaskId]*Task)}

	for foreignStream, se := range g.sources {
		server := se.server
		id := sourceTaskId(foreignStream)
		tg.tasks[id] = &Task{Id: id, Kind: TaskSource, Server: &server, InstanceId: uuid.NewString()}
	}
	for foreignStream, se := range g.sinks {
		server := se.server
		id := sinkTaskId(foreignStream)
		tg.tasks[id] = &Task{Id: id, Kind: TaskSink, Server: &server, InstanceId: uuid.NewString()}
	}
	for _, e := range g.pumpsByName {
		pump := e.pump
		id := pumpTaskId(pump.Name)
		tg.tasks[id] = &Task{Id: id, Kind: TaskPump, Pump: &pump, InstanceId: uuid.NewString()}
	}

	for upstream, byDownstream := range g.pumpsByEndpoints {
		for _, edges := range byDownstream {
			for _, e := range edges {
				pid := pumpTaskId(e.pump.Name)
				g.linkTask(tg, upstream, pid)
				g.linkUpstreamFrom(tg, pid, e.pump.Downstream)
			}
		}
	}

	for id, t := range tg.tasks {
		sort.Slice(t.Upstream, func(i, j int) bool { return t.Upstream[i] < t.Upstream[j] })
		sort.Slice(t.Downstream, func(i, j int) bool { return t.Downstream[i] < t.Downstream[j] })
		tg.order = append(tg.order, id)
	}
	sort.Slice(tg.order, func(i, j int) bool { return tg.order[i] < tg.order[j] })

	return tg
}

// linkTask records downstreamId as a consumer of whatever task produces
// rows for upstreamStream (that stream's SourceTask, if any, is linked as
// producer; the reverse Downstream edge is recorded on it too).
func (g *Graph) linkTask(tg *TaskGraph, upstreamStream row.StreamName, downstreamId TaskId) {
	if _, ok := g.sources[upstreamStream]; ok {
		addEdge(tg, sourceTaskId(upstreamStream), downstreamId)
		return
	}
	// upstreamStream is fed by another pump (or has no producer yet, e.g. a
	// CREATE STREAM with no pump writing to it): find every pump whose
	// Downstream equals upstreamStream.
	for _, e := range g.pumpsByName {
		if e.pump.Downstream == upstreamStream {
			addEdge(tg, pumpTaskId(e.pump.Name), downstreamId)
		}
	}
}

// linkUpstreamFrom records every downstream consumer of pumpId's output
// stream: either the stream's Sink edge, or any pump reading from it.
func (g *Graph) linkUpstreamFrom(tg *TaskGraph, pumpId TaskId, downstreamStream row.StreamName) {
	if _, ok := g.sinks[downstreamStream]; ok {
		addEdge(tg, pumpId, sinkTaskId(downstreamStream))
	}
	for _, e := range g.pumpsByName {
		if e.pump.Upstream == downstreamStream {
			addEdge(tg, pumpId, pumpTaskId(e.pump.Name))
		}
	}
}

func addEdge(tg *TaskGraph, upstream, downstream TaskId) {
	u, ok := tg.tasks[upstream]
	if !ok {
		return
	}
	d, ok := tg.tasks[downstream]
	if !ok {
		return
	}
	if !containsId(u.Downstream, downstream) {
		u.Downstream = append(u.Downstream, downstream)
	}
	if !containsId(d.Upstream, upstream) {
		d.Upstream = append(d.Upstream, upstream)
	}
}

func containsId(ids []TaskId, id TaskId) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
