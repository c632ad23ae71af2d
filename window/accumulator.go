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

// accumulator is a pane's per-group, append-only aggregation state. It never
// stores the raw values it has seen -- only the running reduction -- so a
// pane's memory footprint is O(1) per group regardless of how many rows fall
// into it.
type accumulator struct {
	fn    expr.AggregateFunction
	count int64
	sum   float64
	typ   sql.Type // widened numeric type accumulated into sum, for Sum's finalize
	ext   sql.Value
	seen  bool // whether ext (Min/Max) has been initialized
}

func newAccumulator(fn expr.AggregateFunction) *accumulator {
	return &accumulator{fn: fn}
}

// add merges one value into the accumulator. Null inputs are skipped for
// Avg/Sum/Min/Max/Count(expr) -- Count(*) never hits that skip because its
// caller passes a non-null sentinel, never the evaluated argument (see
// Resolver.AggrExprInner).
func (a *accumulator) add(v sql.Value) error {
	if v.IsNull() {
		return nil
	}
	if a.fn == expr.AggrCount {
		a.count++
		return nil
	}
	switch a.fn {
	case expr.AggrAvg, expr.AggrSum:
		f, err := v.AsFloat64()
		if err != nil {
			return err
		}
		a.sum += f
		a.count++
		a.typ = widen(a.typ, v.Type())
	case expr.AggrMin:
		if !a.seen {
			a.ext, a.seen = v, true
			return nil
		}
		cmp, err := v.Compare(a.ext)
		if err != nil {
			return err
		}
		if cmp < 0 {
			a.ext = v
		}
	case expr.AggrMax:
		if !a.seen {
			a.ext, a.seen = v, true
			return nil
		}
		cmp, err := v.Compare(a.ext)
		if err != nil {
			return err
		}
		if cmp > 0 {
			a.ext = v
		}
	}
	return nil
}

// widen keeps the widest numeric type seen so Sum's finalize can return the
// correctly-widened variant, per SQL numeric promotion.
func widen(a, b sql.Type) sql.Type {
	rank := func(t sql.Type) int {
		switch t {
		case sql.TypeSmallInt:
			return 0
		case sql.TypeInteger:
			return 1
		case sql.TypeBigInt:
			return 2
		case sql.TypeFloat:
			return 3
		default:
			return -1
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

// hasContribution reports whether the group has received at least one
// contribution -- an empty group emits nothing per spec.
func (a *accumulator) hasContribution() bool {
	switch a.fn {
	case expr.AggrCount:
		return a.count > 0
	case expr.AggrMin, expr.AggrMax:
		return a.seen
	default:
		return a.count > 0
	}
}

// finalize produces the SqlValue aggregate result. Avg returns Float
// (sum/count), Count returns BigInt, Sum returns the widened numeric, Min/Max
// return the stored extremum.
func (a *accumulator) finalize() sql.Value {
	switch a.fn {
	case expr.AggrAvg:
		return sql.NewFloat(float32(a.sum / float64(a.count)))
	case expr.AggrSum:
		switch a.typ {
		case sql.TypeSmallInt:
			return sql.NewSmallInt(int16(a.sum))
		case sql.TypeInteger:
			return sql.NewInteger(int32(a.sum))
		case sql.TypeFloat:
			return sql.NewFloat(float32(a.sum))
		default:
			return sql.NewBigInt(int64(a.sum))
		}
	case expr.AggrCount:
		return sql.NewBigInt(a.count)
	case expr.AggrMin, expr.AggrMax:
		return a.ext
	default:
		return sql.Null
	}
}
