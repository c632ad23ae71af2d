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
	"github.com/springql/springql-go/expr"
	"github.com/springql/springql-go/sql"
)

// groupState is one group's accumulator plus the group-by value that
// produced it, so close() can report the value alongside the result without
// re-evaluating the group-by expression.
type groupState struct {
	groupBy sql.Value
	acc     *accumulator
}

// pane is a half-open time interval [start, end) with an independent
// aggregation state per group-by key.
type pane struct {
	start, end sql.Timestamp
	aggrFn     expr.AggregateFunction
	groups     map[string]*groupState
}

func newPane(start, end sql.Timestamp, aggrFn expr.AggregateFunction) *pane {
	return &pane{start: start, end: end, aggrFn: aggrFn, groups: make(map[string]*groupState)}
}

// contains reports whether rowtime falls in this pane's half-open interval.
func (p *pane) contains(rowtime sql.Timestamp) bool {
	return !rowtime.Before(p.start) && rowtime.Before(p.end)
}

// merge folds (groupBy, value) into this pane's accumulator for the group.
func (p *pane) merge(groupBy sql.Value, value sql.Value) error {
	key := groupBy.GroupKey()
	gs, ok := p.groups[key]
	if !ok {
		gs = &groupState{groupBy: groupBy, acc: newAccumulator(p.aggrFn)}
		p.groups[key] = gs
	}
	return gs.acc.add(value)
}

// GroupAggrOut is one closed pane's per-group aggregate result.
type GroupAggrOut struct {
	AggrLabel  expr.AggrExprLabel
	AggrResult sql.Value
	GroupBy    sql.Value
	PaneStart  sql.Timestamp
	PaneEnd    sql.Timestamp
}

// close finalizes every non-empty group in the pane and returns its outputs.
// An empty group emits nothing.
func (p *pane) close(aggrLabel expr.AggrExprLabel) []GroupAggrOut {
	out := make([]GroupAggrOut, 0, len(p.groups))
	for _, gs := range p.groups {
		if !gs.acc.hasContribution() {
			continue
		}
		out = append(out, GroupAggrOut{
			AggrLabel:  aggrLabel,
			AggrResult: gs.acc.finalize(),
			GroupBy:    gs.groupBy,
			PaneStart:  p.start,
			PaneEnd:    p.end,
		})
	}
	return out
}
