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

package plan

import (
	"fmt"

	"github.com/springql/springql-go/expr"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/sql"
	"github.com/springql/springql-go/window"
)

// PassesFilter evaluates the plan's optional WHERE clause against tuple. A
// plan with no Filter always passes.
func PassesFilter(p *QueryPlan, tuple *row.Tuple) (bool, error) {
	if p.Filter == nil {
		return true, nil
	}
	return expr.EvalFilter(p.Resolver, *p.Filter, tuple)
}

// ProjectNonWindowed evaluates every projection item of an unwindowed plan
// (plain SELECT/WHERE, no GROUP BY) against one tuple, producing one output
// column map.
func ProjectNonWindowed(p *QueryPlan, tuple *row.Tuple) (map[row.ColumnName]sql.Value, error) {
	if p.Window != nil {
		return nil, fmt.Errorf("plan: ProjectNonWindowed called on a windowed plan")
	}
	out := make(map[row.ColumnName]sql.Value, len(p.Projection))
	for _, item := range p.Projection {
		if item.IsAggregate {
			return nil, fmt.Errorf("plan: aggregate projection %q requires a window", item.OutputColumn)
		}
		v, err := p.Resolver.EvalValue(item.ValueLabel, tuple)
		if err != nil {
			return nil, err
		}
		out[item.OutputColumn] = v
	}
	return out, nil
}

// ProjectWindowOutput turns one GroupAggrOut (one group's closed-pane
// result) into an output column map, per the plan's projection list. A
// non-aggregate projection item must reference the same value expression as
// the window's GROUP BY clause -- the usual SQL functional-dependency
// requirement for non-aggregate columns in a grouped query -- since that is
// the only per-row value a closed pane still carries.
func ProjectWindowOutput(p *QueryPlan, out window.GroupAggrOut) (map[row.ColumnName]sql.Value, error) {
	if p.Window == nil {
		return nil, fmt.Errorf("plan: ProjectWindowOutput called on a non-windowed plan")
	}
	cols := make(map[row.ColumnName]sql.Value, len(p.Projection))
	for _, item := range p.Projection {
		switch {
		case item.IsAggregate:
			if item.AggrLabel != out.AggrLabel {
				return nil, fmt.Errorf("plan: projection %q references an unknown aggregate label", item.OutputColumn)
			}
			cols[item.OutputColumn] = out.AggrResult
		case item.IsPaneTime:
			switch item.PaneTimeEdge {
			case PaneEnd:
				cols[item.OutputColumn] = sql.NewTimestamp(out.PaneEnd)
			default:
				cols[item.OutputColumn] = sql.NewTimestamp(out.PaneStart)
			}
		default:
			if item.ValueLabel != p.Window.Operation.GroupBy {
				return nil, fmt.Errorf("plan: non-aggregate projection %q is not part of GROUP BY", item.OutputColumn)
			}
			cols[item.OutputColumn] = out.GroupBy
		}
	}
	return cols, nil
}

// BuildDownstreamRow maps a SELECT's evaluated output columns into a Row of
// the pump's downstream stream, per InsertAsPlan's column mapping.
func BuildDownstreamRow(insertAs *InsertAsPlan, selectOutput map[row.ColumnName]sql.Value, arrivedAt sql.Timestamp) (*row.Row, error) {
	values := make(map[row.ColumnName]sql.Value, len(insertAs.DownstreamShape.Columns))
	for _, col := range insertAs.DownstreamShape.Columns {
		sourceCol := col.Name
		if mapped, ok := insertAs.ColumnMapping[col.Name]; ok {
			sourceCol = mapped
		}
		v, ok := selectOutput[sourceCol]
		if !ok {
			if col.Nullable {
				v = sql.Null
			} else {
				return nil, fmt.Errorf("plan: SELECT output has no value for downstream column %q", col.Name)
			}
		}
		values[col.Name] = v
	}
	cols, err := row.NewColumns(insertAs.DownstreamShape, values)
	if err != nil {
		return nil, err
	}
	return row.NewRow(insertAs.DownstreamShape, cols, arrivedAt), nil
}
