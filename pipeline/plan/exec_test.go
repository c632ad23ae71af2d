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
	"testing"

	"github.com/springql/springql-go/expr"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/sql"
	"github.com/springql/springql-go/window"
)

func tickerShape(t *testing.T) *row.StreamShape {
	t.Helper()
	shape, err := row.NewStreamShape([]row.ColumnDataType{
		{Name: "ticker", Type: sql.TypeText, Nullable: false},
		{Name: "amount", Type: sql.TypeBigInt, Nullable: false},
		{Name: "note", Type: sql.TypeText, Nullable: true},
	}, "")
	if err != nil {
		t.Fatalf("NewStreamShape: %v", err)
	}
	return shape
}

func TestPassesFilterNoFilterAlwaysPasses(t *testing.T) {
	p := &QueryPlan{Resolver: expr.NewResolver()}
	ok, err := PassesFilter(p, &row.Tuple{Rowtime: sql.Now()})
	if err != nil {
		t.Fatalf("PassesFilter: %v", err)
	}
	if !ok {
		t.Fatal("expected a plan with no Filter to always pass")
	}
}

func TestPassesFilterEvaluatesWhereClause(t *testing.T) {
	r := expr.NewResolver()
	label := r.RegisterValueExpr(expr.BooleanValueExpr{Expr: &expr.BooleanExpr{
		Comparison: &expr.ComparisonNode{
			Op:    expr.CmpGt,
			Left:  expr.ColumnRef{Ref: row.ColumnReference{Stream: "t", Column: "amount"}},
			Right: expr.Constant{Value: sql.NewBigInt(100)},
		},
	}})
	p := &QueryPlan{Resolver: r, Filter: &label}

	tuple := &row.Tuple{Rowtime: sql.Now(), Values: map[row.ColumnReference]sql.Value{
		{Stream: "t", Column: "amount"}: sql.NewBigInt(50),
	}}
	ok, err := PassesFilter(p, tuple)
	if err != nil {
		t.Fatalf("PassesFilter: %v", err)
	}
	if ok {
		t.Fatal("expected amount=50 to fail amount > 100")
	}
}

func TestProjectNonWindowedRejectsAggregate(t *testing.T) {
	r := expr.NewResolver()
	aggrLabel := r.RegisterAggrExpr(expr.AggrExpr{Function: expr.AggrSum, Arg: expr.ColumnRef{Ref: row.ColumnReference{Column: "amount"}}})
	p := &QueryPlan{Resolver: r, Projection: []ProjectionItem{{OutputColumn: "total", AggrLabel: aggrLabel, IsAggregate: true}}}

	if _, err := ProjectNonWindowed(p, &row.Tuple{Rowtime: sql.Now()}); err == nil {
		t.Fatal("expected an aggregate projection item to be rejected without a window")
	}
}

func TestProjectNonWindowedRejectsWindowedPlan(t *testing.T) {
	r := expr.NewResolver()
	p := &QueryPlan{Resolver: r, Window: &WindowSpec{}}
	if _, err := ProjectNonWindowed(p, &row.Tuple{Rowtime: sql.Now()}); err == nil {
		t.Fatal("expected ProjectNonWindowed to reject a windowed plan")
	}
}

func TestProjectNonWindowedEvaluatesPlainColumns(t *testing.T) {
	r := expr.NewResolver()
	label := r.RegisterValueExpr(expr.ColumnRef{Ref: row.ColumnReference{Stream: "t", Column: "ticker"}})
	p := &QueryPlan{Resolver: r, Projection: []ProjectionItem{{OutputColumn: "sym", ValueLabel: label}}}

	tuple := &row.Tuple{Rowtime: sql.Now(), Values: map[row.ColumnReference]sql.Value{
		{Stream: "t", Column: "ticker"}: sql.NewText("ORCL"),
	}}
	out, err := ProjectNonWindowed(p, tuple)
	if err != nil {
		t.Fatalf("ProjectNonWindowed: %v", err)
	}
	got, err := out["sym"].AsText()
	if err != nil || got != "ORCL" {
		t.Fatalf("out[sym] = %v, %v; want ORCL", got, err)
	}
}

func TestProjectWindowOutputRejectsNonWindowedPlan(t *testing.T) {
	p := &QueryPlan{Resolver: expr.NewResolver()}
	if _, err := ProjectWindowOutput(p, window.GroupAggrOut{}); err == nil {
		t.Fatal("expected ProjectWindowOutput to reject a non-windowed plan")
	}
}

func TestProjectWindowOutputMapsAggregateAndGroupBy(t *testing.T) {
	r := expr.NewResolver()
	groupByLabel := r.RegisterValueExpr(expr.ColumnRef{Ref: row.ColumnReference{Column: "ticker"}})
	aggrLabel := r.RegisterAggrExpr(expr.AggrExpr{Function: expr.AggrAvg, Arg: expr.ColumnRef{Ref: row.ColumnReference{Column: "amount"}}})

	p := &QueryPlan{
		Resolver: r,
		Window:   &WindowSpec{Operation: window.OperationParameter{Aggr: aggrLabel, GroupBy: groupByLabel}},
		Projection: []ProjectionItem{
			{OutputColumn: "ticker", ValueLabel: groupByLabel},
			{OutputColumn: "avg_amount", AggrLabel: aggrLabel, IsAggregate: true},
		},
	}

	out := window.GroupAggrOut{
		AggrLabel:  aggrLabel,
		AggrResult: sql.NewFloat(15),
		GroupBy:    sql.NewText("ORCL"),
	}
	cols, err := ProjectWindowOutput(p, out)
	if err != nil {
		t.Fatalf("ProjectWindowOutput: %v", err)
	}
	ticker, _ := cols["ticker"].AsText()
	if ticker != "ORCL" {
		t.Fatalf("cols[ticker] = %q, want ORCL", ticker)
	}
	avg, _ := cols["avg_amount"].AsFloat64()
	if avg != 15 {
		t.Fatalf("cols[avg_amount] = %v, want 15", avg)
	}
}

func TestProjectWindowOutputMapsPaneStartAndEnd(t *testing.T) {
	r := expr.NewResolver()
	groupByLabel := r.RegisterValueExpr(expr.ColumnRef{Ref: row.ColumnReference{Column: "ticker"}})
	aggrLabel := r.RegisterAggrExpr(expr.AggrExpr{Function: expr.AggrAvg, Arg: expr.ColumnRef{Ref: row.ColumnReference{Column: "amount"}}})

	p := &QueryPlan{
		Resolver: r,
		Window:   &WindowSpec{Operation: window.OperationParameter{Aggr: aggrLabel, GroupBy: groupByLabel}},
		Projection: []ProjectionItem{
			{OutputColumn: "window_start", IsPaneTime: true, PaneTimeEdge: PaneStart},
			{OutputColumn: "window_end", IsPaneTime: true, PaneTimeEdge: PaneEnd},
		},
	}

	start, err := sql.ParseTimestamp("2021-01-01 00:00:00.000000000")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	end, err := sql.ParseTimestamp("2021-01-01 00:00:01.000000000")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	out := window.GroupAggrOut{AggrLabel: aggrLabel, PaneStart: start, PaneEnd: end}

	cols, err := ProjectWindowOutput(p, out)
	if err != nil {
		t.Fatalf("ProjectWindowOutput: %v", err)
	}
	gotStart, err := cols["window_start"].AsTimestamp()
	if err != nil || gotStart != start {
		t.Fatalf("cols[window_start] = %v, %v; want %v", gotStart, err, start)
	}
	gotEnd, err := cols["window_end"].AsTimestamp()
	if err != nil || gotEnd != end {
		t.Fatalf("cols[window_end] = %v, %v; want %v", gotEnd, err, end)
	}
}

func TestProjectWindowOutputRejectsNonGroupByColumn(t *testing.T) {
	r := expr.NewResolver()
	groupByLabel := r.RegisterValueExpr(expr.ColumnRef{Ref: row.ColumnReference{Column: "ticker"}})
	otherLabel := r.RegisterValueExpr(expr.ColumnRef{Ref: row.ColumnReference{Column: "note"}})
	aggrLabel := r.RegisterAggrExpr(expr.AggrExpr{Function: expr.AggrAvg, Arg: expr.ColumnRef{Ref: row.ColumnReference{Column: "amount"}}})

	p := &QueryPlan{
		Resolver: r,
		Window:   &WindowSpec{Operation: window.OperationParameter{Aggr: aggrLabel, GroupBy: groupByLabel}},
		Projection: []ProjectionItem{
			{OutputColumn: "note", ValueLabel: otherLabel},
		},
	}

	if _, err := ProjectWindowOutput(p, window.GroupAggrOut{AggrLabel: aggrLabel}); err == nil {
		t.Fatal("expected a non-aggregate projection outside GROUP BY to be rejected")
	}
}

func TestBuildDownstreamRowFillsNullableGap(t *testing.T) {
	shape := tickerShape(t)
	insertAs := &InsertAsPlan{DownstreamShape: shape, ColumnMapping: map[row.ColumnName]row.ColumnName{}}
	selectOutput := map[row.ColumnName]sql.Value{
		"ticker": sql.NewText("ORCL"),
		"amount": sql.NewBigInt(10),
	}
	r, err := BuildDownstreamRow(insertAs, selectOutput, sql.Now())
	if err != nil {
		t.Fatalf("BuildDownstreamRow: %v", err)
	}
	if !r.Columns()["note"].IsNull() {
		t.Fatal("expected missing nullable downstream column to default to NULL")
	}
}

func TestBuildDownstreamRowRejectsMissingNonNull(t *testing.T) {
	shape := tickerShape(t)
	insertAs := &InsertAsPlan{DownstreamShape: shape, ColumnMapping: map[row.ColumnName]row.ColumnName{}}
	selectOutput := map[row.ColumnName]sql.Value{"ticker": sql.NewText("ORCL")}
	if _, err := BuildDownstreamRow(insertAs, selectOutput, sql.Now()); err == nil {
		t.Fatal("expected a missing non-null downstream column to be rejected")
	}
}

func TestBuildDownstreamRowHonorsColumnMapping(t *testing.T) {
	shape := tickerShape(t)
	insertAs := &InsertAsPlan{
		DownstreamShape: shape,
		ColumnMapping:   map[row.ColumnName]row.ColumnName{"ticker": "sym"},
	}
	selectOutput := map[row.ColumnName]sql.Value{
		"sym":    sql.NewText("ORCL"),
		"amount": sql.NewBigInt(10),
	}
	r, err := BuildDownstreamRow(insertAs, selectOutput, sql.Now())
	if err != nil {
		t.Fatalf("BuildDownstreamRow: %v", err)
	}
	got, err := r.Columns()["ticker"].AsText()
	if err != nil || got != "ORCL" {
		t.Fatalf("r.Columns()[ticker] = %v, %v; want ORCL", got, err)
	}
}
