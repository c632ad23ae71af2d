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

package window

import (
	"sort"
	"sync"

	"github.com/springql/springql-go/expr"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/sql"
)

// Engine is one pump's windowed grouped-aggregation state: a watermark plus
// its lazily-allocated panes. One Engine is created per windowed pump at DDL
// time and lives for the pump's lifetime; it is not safe to share across
// pumps.
type Engine struct {
	mu      sync.Mutex
	param   Parameter
	op      OperationParameter
	wm      *watermark
	panes   map[int64]*pane
}

// NewEngine creates a window engine for one GROUP BY aggregation pump.
func NewEngine(param Parameter, op OperationParameter) *Engine {
	return &Engine{
		param: param,
		op:    op,
		wm:    newWatermark(param.AllowedDelay()),
		panes: make(map[int64]*pane),
	}
}

// DispatchAggregate implements the §4.3 algorithm: drop tuples the
// watermark has already passed, merge the tuple into every pane whose
// interval contains its rowtime (lazily allocating panes as needed),
// advance the watermark, then close (emit and remove) every pane the new
// watermark has passed.
func (e *Engine) DispatchAggregate(resolver *expr.Resolver, tuple *row.Tuple) ([]GroupAggrOut, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rowtime := tuple.Rowtime

	if e.wm.isLate(rowtime) {
		return nil, nil
	}

	aggrExpr, err := resolver.AggrExprOf(e.op.Aggr)
	if err != nil {
		return nil, err
	}

	for _, startNano := range paneStartsContaining(e.param, rowtime) {
		p, ok := e.panes[startNano]
		if !ok {
			p = newPane(sql.FromUnixNano(startNano), sql.FromUnixNano(paneEnd(e.param, startNano)), aggrExpr.Function)
			e.panes[startNano] = p
		}
		groupBy, err := resolver.EvalValue(e.op.GroupBy, tuple)
		if err != nil {
			return nil, err
		}
		value, err := resolver.AggrExprInner(e.op.Aggr, tuple)
		if err != nil {
			return nil, err
		}
		if err := p.merge(groupBy, value); err != nil {
			return nil, err
		}
	}

	e.wm.advance(rowtime)

	return e.closeElapsedPanes(), nil
}

// closeElapsedPanes removes and emits every pane whose end has been passed
// by the current watermark. Closes are reported in pane-start order across
// panes, per spec (ordering within one pane's group outputs is unspecified).
func (e *Engine) closeElapsedPanes() []GroupAggrOut {
	wm := e.wm.value()
	var starts []int64
	for start, p := range e.panes {
		if !p.end.After(wm) {
			starts = append(starts, start)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var out []GroupAggrOut
	for _, start := range starts {
		p := e.panes[start]
		delete(e.panes, start)
		out = append(out, p.close(e.op.Aggr)...)
	}
	return out
}

// Watermark returns the engine's current watermark, exposed for tests that
// assert monotonicity (§8 property 1).
func (e *Engine) Watermark() sql.Timestamp {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wm.value()
}

// OpenPaneCount returns the number of currently-open (not yet closed) panes,
// exposed for tests asserting pane-close completeness (§8 property 3).
func (e *Engine) OpenPaneCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.panes)
}
