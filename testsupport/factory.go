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

// Package testsupport collects small factory helpers package tests use to
// build streams, tuples and expressions without repeating boilerplate.
package testsupport

import (
	"fmt"

	"github.com/springql/springql-go/expr"
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/sql"
)

// TradeShape returns the StreamShape of the spec's running example: a
// trade event with ts ROWTIME, ticker and amount.
func TradeShape() *row.StreamShape {
	shape, err := row.NewStreamShape([]row.ColumnDataType{
		{Name: "ts", Type: sql.TypeTimestamp, Nullable: false},
		{Name: "ticker", Type: sql.TypeText, Nullable: false},
		{Name: "amount", Type: sql.TypeFloat, Nullable: false},
	}, "ts")
	if err != nil {
		panic(err)
	}
	return shape
}

// Trade builds a trade Row at the given canonical timestamp.
func Trade(ts string, ticker string, amount float32) *row.Row {
	t, err := sql.ParseTimestamp(ts)
	if err != nil {
		panic(err)
	}
	shape := TradeShape()
	cols, err := row.NewColumns(shape, map[row.ColumnName]sql.Value{
		"ts":     sql.NewTimestamp(t),
		"ticker": sql.NewText(ticker),
		"amount": sql.NewFloat(amount),
	})
	if err != nil {
		panic(err)
	}
	return row.NewRow(shape, cols, t)
}

// Tuple flattens a Row into a Tuple under streamName, the shape Tuple
// evaluation expects.
func Tuple(streamName row.StreamName, r *row.Row) *row.Tuple {
	return row.NewTuple(streamName, r)
}

// ColRef builds a ColumnRef value expression for stream.column.
func ColRef(stream row.StreamName, column row.ColumnName) expr.ValueExpr {
	return expr.ColumnRef{Ref: row.ColumnReference{Stream: stream, Column: column}}
}

// IntConst builds a BIGINT constant value expression.
func IntConst(v int64) expr.ValueExpr {
	return expr.Constant{Value: sql.NewBigInt(v)}
}

// TextConst builds a TEXT constant value expression.
func TextConst(v string) expr.ValueExpr {
	return expr.Constant{Value: sql.NewText(v)}
}

// Eq builds an equality comparison value expression.
func Eq(left, right expr.ValueExpr) expr.ValueExpr {
	return expr.BooleanValueExpr{Expr: &expr.BooleanExpr{
		Comparison: &expr.ComparisonNode{Op: expr.CmpEq, Left: left, Right: right},
	}}
}

// MustTimestamp parses a canonical timestamp, panicking on error -- for use
// in table-driven test fixtures where the literal is known-good.
func MustTimestamp(s string) sql.Timestamp {
	ts, err := sql.ParseTimestamp(s)
	if err != nil {
		panic(fmt.Sprintf("testsupport: bad fixture timestamp %q: %v", s, err))
	}
	return ts
}
