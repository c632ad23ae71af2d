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

// Package expr holds the expression ASTs a (parser-owned, externally
// supplied) SELECT list is built from, and the Resolver that flattens a
// SELECT's value/aggregate expressions into dense label-indexed tables.
//
// The tree shapes mirror SpringQL's own: ValueExpr is a closed recursive sum
// type, BooleanExpr is generic over its operand expression type so the same
// comparison/logical/numerical node shapes serve both top-level WHERE
// predicates and nested boolean subexpressions, and AggrExpr pairs an
// aggregate function with its single inner ValueExpr argument.
package expr

import (
	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/sql"
)

// UnaryOp names the unary value operators.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
)

// ComparisonOp names the comparison operators of a BooleanExpr.
type ComparisonOp int

const (
	CmpEq ComparisonOp = iota
	CmpNotEq
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// LogicalOp names the logical connectives of a BooleanExpr.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
	LogicalNot
)

// NumericalOp names the arithmetic operators modeled as a BooleanExpr
// subtree that actually reduces to a non-boolean value (per spec: "numerical
// ops are modeled as a subtree that reduces to a non-boolean value").
type NumericalOp int

const (
	NumAdd NumericalOp = iota
	NumSub
	NumMul
	NumDiv
)

// ValueExpr is the closed AST for a value-producing expression.
type ValueExpr interface {
	isValueExpr()
}

// Constant is a literal SqlValue.
type Constant struct {
	Value sql.Value
}

// ColumnRef references a column, optionally qualified by stream.
type ColumnRef struct {
	Ref row.ColumnReference
}

// UnaryOperator applies a unary operator to an inner value expression.
type UnaryOperator struct {
	Op    UnaryOp
	Inner ValueExpr
}

// BooleanValueExpr wraps a BooleanExpr so it can appear where a ValueExpr is
// expected (numerical subtrees and boolean-producing subtrees both reduce to
// a value).
type BooleanValueExpr struct {
	Expr *BooleanExpr
}

func (Constant) isValueExpr()         {}
func (ColumnRef) isValueExpr()        {}
func (UnaryOperator) isValueExpr()    {}
func (BooleanValueExpr) isValueExpr() {}

// BooleanExpr is generic in spirit over its operand type; since Go has no
// ad hoc generics over a closed sum type here, operands are ValueExpr (which
// itself can hold a nested BooleanValueExpr), matching the spec's
// `BooleanExpr<ValueExpr>` instantiation used throughout WHERE clauses.
type BooleanExpr struct {
	// exactly one of Comparison, Logical, Numerical is set.
	Comparison *ComparisonNode
	Logical    *LogicalNode
	Numerical  *NumericalNode
}

type ComparisonNode struct {
	Op    ComparisonOp
	Left  ValueExpr
	Right ValueExpr
}

type LogicalNode struct {
	Op    LogicalOp
	Left  ValueExpr
	Right ValueExpr // unused when Op == LogicalNot
}

type NumericalNode struct {
	Op    NumericalOp
	Left  ValueExpr
	Right ValueExpr
}

// AggregateFunction names the five aggregate functions SELECT supports.
type AggregateFunction int

const (
	AggrAvg AggregateFunction = iota
	AggrSum
	AggrCount
	AggrMin
	AggrMax
)

func (f AggregateFunction) String() string {
	switch f {
	case AggrAvg:
		return "AVG"
	case AggrSum:
		return "SUM"
	case AggrCount:
		return "COUNT"
	case AggrMin:
		return "MIN"
	case AggrMax:
		return "MAX"
	default:
		return "UNKNOWN"
	}
}

// AggrExpr pairs an aggregate function with its inner value expression
// argument, e.g. AVG(amount). CountStar is set for COUNT(*), in which case
// Arg is ignored.
type AggrExpr struct {
	Function  AggregateFunction
	Arg       ValueExpr
	CountStar bool
}
