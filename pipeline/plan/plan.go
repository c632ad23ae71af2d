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

// Package plan holds a pump's compiled query plan: the projection, optional
// filter and optional window dispatch a PumpTask runs against every row it
// collects from its upstream inbox, plus the InsertAsPlan that shapes a
// plan's output columns into a Row of the downstream stream.
package plan

import (
	"github.com/springql/springql-go/expr"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/window"
)

// PaneTimeEdge selects which edge of a closed pane's time range a
// pane-time projection item outputs.
type PaneTimeEdge int

const (
	PaneStart PaneTimeEdge = iota
	PaneEnd
)

// ProjectionItem is one SELECT list entry: a plain value expression, an
// aggregate expression, or the closed pane's start/end timestamp (only one
// of ValueLabel / AggrLabel / PaneTimeEdge applies, selected by IsAggregate /
// IsPaneTime), projected into OutputColumn. PaneTime is the closed-AST
// substitute for a FLOOR_TIME(ts)-style expression -- §4.1's fixed ValueExpr
// set has no node for deriving a column from the window itself, so a
// windowed pump that wants its output rowtime to be the pane boundary
// selects it this way instead.
type ProjectionItem struct {
	OutputColumn row.ColumnName
	ValueLabel   expr.ValueExprLabel
	AggrLabel    expr.AggrExprLabel
	IsAggregate  bool
	IsPaneTime   bool
	PaneTimeEdge PaneTimeEdge
}

// WindowSpec is the windowing configuration of a GROUP BY ... WINDOW query:
// the window shape plus the grouped-aggregation operation it runs.
type WindowSpec struct {
	Parameter window.Parameter
	Operation window.OperationParameter
}

// QueryPlan is a pump's compiled SELECT: resolver-owned expressions plus the
// node sequence a PumpTask executes for each row.
//
//   - Filter, if set, is evaluated first; a row that fails it is dropped.
//   - Window, if set, routes the row through the window engine instead of a
//     plain per-row projection; the window's batch output (when panes close)
//     is what gets projected into output rows.
//   - Projection lists the SELECT columns, each either a plain ValueExpr or
//     (only valid when Window is set) an AggrExpr/GroupBy reference.
type QueryPlan struct {
	Resolver   *expr.Resolver
	Filter     *expr.ValueExprLabel
	Window     *WindowSpec
	Projection []ProjectionItem
}

// InsertAsPlan describes how the evaluated SELECT output columns populate
// the downstream stream's shape -- the "INSERT INTO downstream" side of
// CREATE PUMP ... AS INSERT INTO downstream SELECT ...
type InsertAsPlan struct {
	DownstreamShape *row.StreamShape
	// ColumnMapping maps a downstream column name to the SELECT output
	// column name that supplies its value. Identity (same name on both
	// sides) is the common case but aliases can diverge.
	ColumnMapping map[row.ColumnName]row.ColumnName
}
