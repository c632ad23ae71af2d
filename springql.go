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

// Package springql is the embeddable streaming SQL engine's public entry
// point: it owns the pipeline graph and the autonomous executor together,
// wiring DDL-driven topology changes into the running task graph and
// dialing/registering the foreign connections a SOURCE/SINK server needs.
//
// Usage mirrors the functional-options engine-construction idiom this
// module's internal config package uses throughout:
//
//	p := springql.New(config.WithHighPerformance())
//	p.AddStream(pipeline.StreamModel{...})
//	p.AddForeignStream(pipeline.ForeignStreamModel{...})
//	p.AddServer(pipeline.ServerModel{...})
//	p.AddPump(pipeline.PumpModel{...})
//	p.StartPump("my_pump")
//	p.Start()
//	defer p.Stop()
package springql

import (
	"fmt"

	"github.com/springql/springql-go/config"
	"github.com/springql/springql-go/diag"
	"github.com/springql/springql-go/executor"
	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/sourcesink"
)

// Pipeline is one running (or not-yet-started) SpringQL pipeline: the
// authoritative topology (pipeline.Graph) plus the autonomous executor
// that schedules tasks against it, and the foreign connections bound to
// its SOURCE/SINK servers.
type Pipeline struct {
	cfg   config.Config
	graph *pipeline.Graph
	exec  *executor.Executor

	queues map[row.StreamName]*sourcesink.InMemoryQueueSink
}

// New creates an empty Pipeline (just the virtual root stream node) and its
// executor, applying opts over config.DefaultConfig.
func New(opts ...config.Option) *Pipeline {
	cfg := config.New(opts...)
	g := pipeline.NewGraph()
	return &Pipeline{
		cfg:    cfg,
		graph:  g,
		exec:   executor.New(cfg),
		queues: make(map[row.StreamName]*sourcesink.InMemoryQueueSink),
	}
}

// AddStream registers a native stream (CREATE STREAM).
func (p *Pipeline) AddStream(s pipeline.StreamModel) error {
	if err := p.graph.AddStream(s); err != nil {
		return err
	}
	p.exec.ApplyGraph(p.graph)
	return nil
}

// AddForeignStream registers a foreign stream (CREATE SOURCE/SINK STREAM),
// the attach point a later AddServer binds a live connection to.
func (p *Pipeline) AddForeignStream(s pipeline.ForeignStreamModel) error {
	if err := p.graph.AddForeignStream(s); err != nil {
		return err
	}
	p.exec.ApplyGraph(p.graph)
	return nil
}

// AddPump registers a pump edge (CREATE PUMP). The pump is created Stopped
// whatever State pm carries; StartPump transitions it to Started.
func (p *Pipeline) AddPump(pm pipeline.PumpModel) error {
	if err := p.graph.AddPump(pm.Stopped()); err != nil {
		return err
	}
	p.exec.ApplyGraph(p.graph)
	return nil
}

// RemovePump drops a pump edge (DROP PUMP).
func (p *Pipeline) RemovePump(name row.PumpName) error {
	if err := p.graph.RemovePump(name); err != nil {
		return err
	}
	p.exec.ApplyGraph(p.graph)
	return nil
}

// StartPump transitions a pump to Started (ALTER PUMP ... START).
func (p *Pipeline) StartPump(name row.PumpName) error {
	return p.setPumpState(name, true)
}

// StopPump transitions a pump to Stopped (ALTER PUMP ... STOP).
func (p *Pipeline) StopPump(name row.PumpName) error {
	return p.setPumpState(name, false)
}

func (p *Pipeline) setPumpState(name row.PumpName, started bool) error {
	pm, err := p.graph.GetPump(name)
	if err != nil {
		return err
	}
	if started {
		pm = pm.Started()
	} else {
		pm = pm.Stopped()
	}
	if err := p.graph.UpdatePump(pm); err != nil {
		return err
	}
	p.exec.ApplyGraph(p.graph)
	return nil
}

// AddServer attaches a foreign source or sink server to an already-declared
// foreign stream (CREATE SOURCE/SINK STREAM ... SERVER). For a NET_CLIENT
// server this dials the TCP connection immediately, bounded by the
// Pipeline's configured connect timeout; for an IN_MEMORY_QUEUE sink it
// creates the queue, retrievable afterwards via Queue.
func (p *Pipeline) AddServer(s pipeline.ServerModel) error {
	if err := p.graph.AddServer(s); err != nil {
		return err
	}
	p.exec.ApplyGraph(p.graph)

	switch s.Type {
	case pipeline.ServerSourceNet:
		shape, ok := p.graph.ForeignStreamShape(s.ForeignStream)
		if !ok {
			return fmt.Errorf("springql: foreign stream %q has no declared shape", s.ForeignStream)
		}
		addr, err := sourcesink.ParseNetClientOptions(s.Options)
		if err != nil {
			return err
		}
		conn, err := sourcesink.DialNetClient(addr, shape, p.cfg.ConnectTimeout)
		if err != nil {
			return err
		}
		id, ok := p.taskIdFor(pipeline.TaskSource, s.ForeignStream)
		if !ok {
			return fmt.Errorf("springql: no source task projected for foreign stream %q", s.ForeignStream)
		}
		p.exec.RegisterSource(id, conn)

	case pipeline.ServerSinkNet:
		shape, ok := p.graph.ForeignStreamShape(s.ForeignStream)
		if !ok {
			return fmt.Errorf("springql: foreign stream %q has no declared shape", s.ForeignStream)
		}
		addr, err := sourcesink.ParseNetClientOptions(s.Options)
		if err != nil {
			return err
		}
		conn, err := sourcesink.DialNetClient(addr, shape, p.cfg.ConnectTimeout)
		if err != nil {
			return err
		}
		id, ok := p.taskIdFor(pipeline.TaskSink, s.ForeignStream)
		if !ok {
			return fmt.Errorf("springql: no sink task projected for foreign stream %q", s.ForeignStream)
		}
		p.exec.RegisterSink(id, conn)

	case pipeline.ServerSinkInMemoryQueue:
		name, err := sourcesink.ParseInMemoryQueueOptions(s.Options)
		if err != nil {
			return err
		}
		q := sourcesink.NewInMemoryQueueSink(name)
		id, ok := p.taskIdFor(pipeline.TaskSink, s.ForeignStream)
		if !ok {
			return fmt.Errorf("springql: no sink task projected for foreign stream %q", s.ForeignStream)
		}
		p.exec.RegisterSink(id, q)
		p.queues[s.ForeignStream] = q
	}
	return nil
}

// taskIdFor finds the TaskId of the Source/Sink task currently projected for
// foreignStream -- derived fresh from the live graph rather than duplicating
// pipeline's private TaskId derivation.
func (p *Pipeline) taskIdFor(kind pipeline.TaskKind, foreignStream row.StreamName) (pipeline.TaskId, bool) {
	for _, t := range p.graph.ProjectTaskGraph().Tasks() {
		if t.Kind == kind && t.Server != nil && t.Server.ForeignStream == foreignStream {
			return t.Id, true
		}
	}
	return "", false
}

// Queue returns the IN_MEMORY_QUEUE sink bound to foreignStream, if any --
// the embedding-without-a-network-hop path described in §6.
func (p *Pipeline) Queue(foreignStream row.StreamName) (*sourcesink.InMemoryQueueSink, bool) {
	q, ok := p.queues[foreignStream]
	return q, ok
}

// SourceServerState derives a source server's running state (§4.2).
func (p *Pipeline) SourceServerState(foreignStream row.StreamName) pipeline.ServerState {
	return p.graph.SourceServerState(foreignStream)
}

// Dump renders the current pipeline topology as YAML, for diagnostics.
func (p *Pipeline) Dump() (string, error) {
	return diag.Dump(p.graph)
}

// Start launches the executor's worker pool against the current topology.
func (p *Pipeline) Start() {
	p.exec.Start()
}

// Stop signals every worker to exit after its current step and waits for
// them to finish.
func (p *Pipeline) Stop() {
	p.exec.Stop()
}

// Unhealthy reports whether a source or sink task has been marked
// unhealthy by a source or sink error other than ForeignInputTimeout
// (purely diagnostic; the executor keeps scheduling it).
func (p *Pipeline) Unhealthy(foreignStream row.StreamName, kind pipeline.TaskKind) bool {
	id, ok := p.taskIdFor(kind, foreignStream)
	if !ok {
		return false
	}
	return p.exec.Unhealthy(id)
}
