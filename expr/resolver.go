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

package expr

import (
	"fmt"
	"sync"

	"github.com/springql/springql-go/row"
	"github.com/springql/springql-go/sql"
)

// Resolver flattens a SELECT list's value and aggregate expressions into
// two dense label-indexed tables and owns the expression trees thereafter;
// callers refer to a registered expression by its ExprLabel only.
//
// One Resolver is created per pump's query plan at DDL-application time; it
// is never mutated concurrently with evaluation (evaluation runs on the
// owning PumpTask's single worker step), but registration can race a
// concurrent diagnostic read, so access is still guarded.
type Resolver struct {
	mu    sync.RWMutex
	gen   labelGenerator
	value map[ValueExprLabel]ValueExpr
	aggr  map[AggrExprLabel]AggrExpr
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		value: make(map[ValueExprLabel]ValueExpr),
		aggr:  make(map[AggrExprLabel]AggrExpr),
	}
}

// RegisterValueExpr registers a value expression tree and returns its label.
func (r *Resolver) RegisterValueExpr(e ValueExpr) ValueExprLabel {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.gen.value()
	r.value[l] = e
	return l
}

// RegisterAggrExpr registers an aggregate expression and returns its label.
func (r *Resolver) RegisterAggrExpr(e AggrExpr) AggrExprLabel {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.gen.aggr()
	r.aggr[l] = e
	return l
}

// AggrExprOf returns the aggregate function and inner expression registered
// under label.
func (r *Resolver) AggrExprOf(label AggrExprLabel) (AggrExpr, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.aggr[label]
	if !ok {
		return AggrExpr{}, fmt.Errorf("expr: unknown aggregate expression label %d", label)
	}
	return e, nil
}

// EvalValue evaluates the value expression registered under label against a
// Tuple (rowtime + stream-qualified columns).
func (r *Resolver) EvalValue(label ValueExprLabel, t *row.Tuple) (sql.Value, error) {
	r.mu.RLock()
	e, ok := r.value[label]
	r.mu.RUnlock()
	if !ok {
		return sql.Value{}, fmt.Errorf("expr: unknown value expression label %d", label)
	}
	return evalAgainstTuple(e, t)
}

// EvalValueWithColumnValues evaluates the value expression registered under
// label against a plain, unqualified column map -- used where there is no
// rowtime/stream-qualified context (e.g. evaluating a GROUP BY key against a
// just-finalized aggregate row).
func (r *Resolver) EvalValueWithColumnValues(label ValueExprLabel, cols map[row.ColumnName]sql.Value) (sql.Value, error) {
	r.mu.RLock()
	e, ok := r.value[label]
	r.mu.RUnlock()
	if !ok {
		return sql.Value{}, fmt.Errorf("expr: unknown value expression label %d", label)
	}
	return evalAgainstColumns(e, cols)
}

// AggrExprInner evaluates the inner value expression of an aggregate
// expression against a Tuple -- used by the window engine to obtain the
// per-row value to merge into a pane's accumulator.
func (r *Resolver) AggrExprInner(label AggrExprLabel, t *row.Tuple) (sql.Value, error) {
	a, err := r.AggrExprOf(label)
	if err != nil {
		return sql.Value{}, err
	}
	if a.CountStar {
		return sql.NewBigInt(1), nil
	}
	return evalAgainstTuple(a.Arg, t)
}

func evalAgainstTuple(e ValueExpr, t *row.Tuple) (sql.Value, error) {
	switch n := e.(type) {
	case Constant:
		return n.Value, nil
	case ColumnRef:
		v, ok := t.Get(n.Ref)
		if !ok {
			return sql.Value{}, fmt.Errorf("expr: column %s.%s not present in tuple", n.Ref.Stream, n.Ref.Column)
		}
		return v, nil
	case UnaryOperator:
		inner, err := evalAgainstTuple(n.Inner, t)
		if err != nil {
			return sql.Value{}, err
		}
		return applyUnary(n.Op, inner)
	case BooleanValueExpr:
		return evalBooleanAsValue(n.Expr, func(ve ValueExpr) (sql.Value, error) { return evalAgainstTuple(ve, t) })
	default:
		return sql.Value{}, fmt.Errorf("expr: unhandled ValueExpr node %T", e)
	}
}

func evalAgainstColumns(e ValueExpr, cols map[row.ColumnName]sql.Value) (sql.Value, error) {
	switch n := e.(type) {
	case Constant:
		return n.Value, nil
	case ColumnRef:
		v, ok := cols[n.Ref.Column]
		if !ok {
			return sql.Value{}, fmt.Errorf("expr: column %s not present", n.Ref.Column)
		}
		return v, nil
	case UnaryOperator:
		inner, err := evalAgainstColumns(n.Inner, cols)
		if err != nil {
			return sql.Value{}, err
		}
		return applyUnary(n.Op, inner)
	case BooleanValueExpr:
		return evalBooleanAsValue(n.Expr, func(ve ValueExpr) (sql.Value, error) { return evalAgainstColumns(ve, cols) })
	default:
		return sql.Value{}, fmt.Errorf("expr: unhandled ValueExpr node %T", e)
	}
}

func applyUnary(op UnaryOp, v sql.Value) (sql.Value, error) {
	switch op {
	case UnaryNeg:
		return sql.Neg(v)
	default:
		return sql.Value{}, fmt.Errorf("expr: unknown unary operator %d", op)
	}
}

// evalBooleanAsValue evaluates a BooleanExpr and returns its result as an
// sql.Value -- a Boolean for comparison/logical nodes, or a numeric value
// for a numerical subtree (per spec: numerical nodes "reduce to a
// non-boolean value").
func evalBooleanAsValue(b *BooleanExpr, evalOperand func(ValueExpr) (sql.Value, error)) (sql.Value, error) {
	switch {
	case b.Numerical != nil:
		left, err := evalOperand(b.Numerical.Left)
		if err != nil {
			return sql.Value{}, err
		}
		right, err := evalOperand(b.Numerical.Right)
		if err != nil {
			return sql.Value{}, err
		}
		switch b.Numerical.Op {
		case NumAdd:
			return sql.Add(left, right)
		case NumSub:
			return sql.Sub(left, right)
		case NumMul:
			return sql.Mul(left, right)
		case NumDiv:
			return sql.Div(left, right)
		default:
			return sql.Value{}, fmt.Errorf("expr: unknown numerical operator %d", b.Numerical.Op)
		}
	case b.Comparison != nil:
		return evalComparison(b.Comparison, evalOperand)
	case b.Logical != nil:
		return evalLogical(b.Logical, evalOperand)
	default:
		return sql.Value{}, fmt.Errorf("expr: empty BooleanExpr")
	}
}

func evalComparison(c *ComparisonNode, evalOperand func(ValueExpr) (sql.Value, error)) (sql.Value, error) {
	left, err := evalOperand(c.Left)
	if err != nil {
		return sql.Value{}, err
	}
	right, err := evalOperand(c.Right)
	if err != nil {
		return sql.Value{}, err
	}
	// Null propagation: any comparison with NULL yields NULL (three-valued
	// logic). SELECT / WHERE treats "NULL != true" as filter-false, which
	// the caller enforces by checking IsNull before acting on the result.
	if left.IsNull() || right.IsNull() {
		return sql.Null, nil
	}
	if c.Op == CmpEq || c.Op == CmpNotEq {
		eq, err := left.Equal(right)
		if err != nil {
			return sql.Value{}, fmt.Errorf("expr: %w", err)
		}
		if c.Op == CmpNotEq {
			eq = !eq
		}
		return sql.NewBoolean(eq), nil
	}
	cmp, err := left.Compare(right)
	if err != nil {
		return sql.Value{}, fmt.Errorf("expr: %w", err)
	}
	var result bool
	switch c.Op {
	case CmpLt:
		result = cmp < 0
	case CmpLe:
		result = cmp <= 0
	case CmpGt:
		result = cmp > 0
	case CmpGe:
		result = cmp >= 0
	default:
		return sql.Value{}, fmt.Errorf("expr: unknown comparison operator %d", c.Op)
	}
	return sql.NewBoolean(result), nil
}

func evalLogical(l *LogicalNode, evalOperand func(ValueExpr) (sql.Value, error)) (sql.Value, error) {
	left, err := evalOperand(l.Left)
	if err != nil {
		return sql.Value{}, err
	}
	if l.Op == LogicalNot {
		if left.IsNull() {
			return sql.Null, nil
		}
		b, err := left.AsBoolean()
		if err != nil {
			return sql.Value{}, fmt.Errorf("expr: NOT requires a boolean operand: %w", err)
		}
		return sql.NewBoolean(!b), nil
	}
	right, err := evalOperand(l.Right)
	if err != nil {
		return sql.Value{}, err
	}
	// Three-valued AND/OR: a NULL operand doesn't always force a NULL
	// result (false AND NULL = false; true OR NULL = true).
	leftB, leftNull := asTriBool(left)
	rightB, rightNull := asTriBool(right)
	switch l.Op {
	case LogicalAnd:
		if (!leftNull && !leftB) || (!rightNull && !rightB) {
			return sql.NewBoolean(false), nil
		}
		if leftNull || rightNull {
			return sql.Null, nil
		}
		return sql.NewBoolean(leftB && rightB), nil
	case LogicalOr:
		if (!leftNull && leftB) || (!rightNull && rightB) {
			return sql.NewBoolean(true), nil
		}
		if leftNull || rightNull {
			return sql.Null, nil
		}
		return sql.NewBoolean(leftB || rightB), nil
	default:
		return sql.Value{}, fmt.Errorf("expr: unknown logical operator %d", l.Op)
	}
}

func asTriBool(v sql.Value) (b bool, isNull bool) {
	if v.IsNull() {
		return false, true
	}
	b, _ = v.AsBoolean()
	return b, false
}

// EvalFilter evaluates a WHERE-clause boolean expression registered as a
// ValueExpr and returns whether the row passes the filter. Per spec, a NULL
// result filters the row out ("SELECT treats Null != true as filter-false").
func EvalFilter(r *Resolver, label ValueExprLabel, t *row.Tuple) (bool, error) {
	v, err := r.EvalValue(label, t)
	if err != nil {
		return false, err
	}
	if v.IsNull() {
		return false, nil
	}
	b, err := v.AsBoolean()
	if err != nil {
		return false, fmt.Errorf("expr: WHERE clause did not evaluate to boolean: %w", err)
	}
	return b, nil
}
