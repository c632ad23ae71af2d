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

// Package executor runs the autonomous worker pool: goroutines that pull a
// task from the scheduler, execute one step of it (source read, pump
// projection/window dispatch, or sink write), and loop -- plus the pipeline
// update protocol that swaps in a new task graph under the scheduler's
// write lock.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/springql/springql-go/config"
	"github.com/springql/springql-go/logger"
	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/pipeline/plan"
	"github.com/springql/springql-go/repository"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/scheduler"
	"github.com/springql/springql-go/springqlerr"
)

// SourceConn is a live connection a SourceTask reads rows from. Owned
// exclusively by the one SourceTask it's registered to -- never shared.
type SourceConn interface {
	ReadRow(ctx context.Context) (*row.Row, error)
	Close() error
}

// SinkConn is a live connection a SinkTask writes rows to. Owned
// exclusively by the one SinkTask it's registered to.
type SinkConn interface {
	WriteRow(ctx context.Context, r *row.Row) error
	Close() error
}

// Executor owns the worker pool, the scheduler and repository it schedules
// against, and the live source/sink connections registered per task.
type Executor struct {
	cfg  config.Config
	log  logger.Logger
	repo *repository.Repository
	sch  *scheduler.Scheduler

	connMu  sync.RWMutex
	sources map[pipeline.TaskId]SourceConn
	sinks   map[pipeline.TaskId]SinkConn

	unhealthyMu sync.Mutex
	unhealthy   map[pipeline.TaskId]bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates an Executor with an empty task graph; call ApplyGraph before
// Start to install the initial topology.
func New(cfg config.Config) *Executor {
	repo := repository.New()
	return &Executor{
		cfg:       cfg,
		log:       logger.GetDefault(),
		repo:      repo,
		sch:       scheduler.New(repo),
		sources:   make(map[pipeline.TaskId]SourceConn),
		sinks:     make(map[pipeline.TaskId]SinkConn),
		unhealthy: make(map[pipeline.TaskId]bool),
		stopCh:    make(chan struct{}),
	}
}

// RegisterSource attaches a live connection to a SourceTask.
func (e *Executor) RegisterSource(id pipeline.TaskId, conn SourceConn) {
	e.connMu.Lock()
	defer e.connMu.Unlock()
	e.sources[id] = conn
}

// RegisterSink attaches a live connection to a SinkTask.
func (e *Executor) RegisterSink(id pipeline.TaskId, conn SinkConn) {
	e.connMu.Lock()
	defer e.connMu.Unlock()
	e.sinks[id] = conn
}

// ApplyGraph is the pipeline update protocol's submitting-thread half:
// compute the new task graph from g, reset repository queues for
// removed/changed tasks, and install it. Scheduler.Update already blocks
// until any in-flight worker step releases its read handle, so no task
// executes against a mismatched (graph, repository) pair.
func (e *Executor) ApplyGraph(g *pipeline.Graph) {
	e.sch.Update(g.ProjectTaskGraph())
}

// Start launches cfg.NWorkerThreads worker goroutines.
func (e *Executor) Start() {
	for i := 0; i < e.cfg.NWorkerThreads; i++ {
		e.wg.Add(1)
		go e.workerLoop()
	}
}

// Stop signals every worker to exit after its current step and waits for
// them to finish.
func (e *Executor) Stop() {
	close(e.stopCh)
	e.wg.Wait()
}

// workerLoop is the worker thread's tight loop of single-task steps: no
// suspension point within a step except foreign I/O, bounded by configured
// timeouts.
func (e *Executor) workerLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		h := e.sch.Acquire()
		id, ok := h.Next()
		if !ok {
			h.Release()
			time.Sleep(e.cfg.SchedulerBackoff)
			continue
		}
		t, _ := h.Task(id)
		e.step(t)
		h.Release()
	}
}

func (e *Executor) step(t *pipeline.Task) {
	switch t.Kind {
	case pipeline.TaskSource:
		e.runSource(t)
	case pipeline.TaskPump:
		e.runPump(t)
	case pipeline.TaskSink:
		e.runSink(t)
	}
}

func (e *Executor) runSource(t *pipeline.Task) {
	e.connMu.RLock()
	conn, ok := e.sources[t.Id]
	e.connMu.RUnlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ForeignInputTimeout)
	defer cancel()

	r, err := conn.ReadRow(ctx)
	if err != nil {
		if springqlerr.IsRecoverable(err) {
			return // ForeignInputTimeout: handled in-worker, not surfaced
		}
		e.markUnhealthy(t.Id)
		e.log.Error("source task %s [%s]: %v", t.Id, t.InstanceId, err)
		return
	}
	if r == nil {
		return
	}
	e.repo.Emit(r, t.Downstream)
}

func (e *Executor) runPump(t *pipeline.Task) {
	r, ok := e.repo.CollectNext(t.Id)
	if !ok {
		return
	}
	p := t.Pump
	tuple := row.NewTuple(p.Upstream, r)

	passes, err := plan.PassesFilter(p.Plan, tuple)
	if err != nil {
		e.log.Error("pump task %s [%s]: filter: %v", t.Id, t.InstanceId, err)
		return
	}
	if !passes {
		return
	}

	if p.Plan.Window == nil {
		cols, err := plan.ProjectNonWindowed(p.Plan, tuple)
		if err != nil {
			e.log.Error("pump task %s [%s]: project: %v", t.Id, t.InstanceId, err)
			return
		}
		out, err := plan.BuildDownstreamRow(p.InsertAs, cols, r.ArrivedAt())
		if err != nil {
			e.log.Error("pump task %s [%s]: insert-as: %v", t.Id, t.InstanceId, err)
			return
		}
		e.repo.Emit(out, t.Downstream)
		return
	}

	outs, err := p.Window.DispatchAggregate(p.Plan.Resolver, tuple)
	if err != nil {
		e.log.Error("pump task %s [%s]: window dispatch: %v", t.Id, t.InstanceId, err)
		return
	}
	for _, o := range outs {
		cols, err := plan.ProjectWindowOutput(p.Plan, o)
		if err != nil {
			e.log.Error("pump task %s [%s]: window project: %v", t.Id, t.InstanceId, err)
			continue
		}
		out, err := plan.BuildDownstreamRow(p.InsertAs, cols, o.PaneEnd)
		if err != nil {
			e.log.Error("pump task %s [%s]: window insert-as: %v", t.Id, t.InstanceId, err)
			continue
		}
		e.repo.Emit(out, t.Downstream)
	}
}

func (e *Executor) runSink(t *pipeline.Task) {
	e.connMu.RLock()
	conn, ok := e.sinks[t.Id]
	e.connMu.RUnlock()
	if !ok {
		return
	}
	r, ok := e.repo.CollectNext(t.Id)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ForeignInputTimeout)
	defer cancel()
	if err := conn.WriteRow(ctx, r); err != nil {
		e.markUnhealthy(t.Id)
		e.log.Error("sink task %s [%s]: %v", t.Id, t.InstanceId, err)
	}
}

func (e *Executor) markUnhealthy(id pipeline.TaskId) {
	e.unhealthyMu.Lock()
	defer e.unhealthyMu.Unlock()
	e.unhealthy[id] = true
}

// Unhealthy reports whether a source or sink task has been marked unhealthy
// by a source or sink error other than ForeignInputTimeout (ForeignIo, or a
// decode error from a source read). The executor keeps scheduling it (spec: "the
// executor continues other tasks") -- this is purely diagnostic.
func (e *Executor) Unhealthy(id pipeline.TaskId) bool {
	e.unhealthyMu.Lock()
	defer e.unhealthyMu.Unlock()
	return e.unhealthy[id]
}
