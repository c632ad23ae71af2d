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

package row

import (
	"fmt"

	"github.com/springql/springql-go/sql"
)

// Columns maps a ColumnName to its SqlValue, conforming to a StreamShape:
// every non-null column has a value, no extra columns are present, and the
// rowtime column (if declared) is materialized and non-null.
type Columns map[ColumnName]sql.Value

// NewColumns validates values against shape and builds a Columns map.
func NewColumns(shape *StreamShape, values map[ColumnName]sql.Value) (Columns, error) {
	out := make(Columns, len(shape.Columns))
	for _, c := range shape.Columns {
		v, present := values[c.Name]
		if !present {
			if !c.Nullable {
				return nil, fmt.Errorf("row: missing value for non-null column %q", c.Name)
			}
			v = sql.Null
		}
		if v.IsNull() && !c.Nullable {
			return nil, fmt.Errorf("row: column %q is non-null but got NULL", c.Name)
		}
		out[c.Name] = v
	}
	for name := range values {
		if _, declared := shape.Lookup(name); !declared {
			return nil, fmt.Errorf("row: column %q is not part of the stream shape", name)
		}
	}
	if rt, ok := shape.RowtimeColumn(); ok {
		if out[rt].IsNull() {
			return nil, fmt.Errorf("row: ROWTIME column %q must be materialized and non-null", rt)
		}
	}
	return out, nil
}

// Row is one immutable event: its materialized columns plus the time it
// arrived at the engine.
type Row struct {
	shape     *StreamShape
	columns   Columns
	arrivedAt sql.Timestamp
}

// NewRow constructs an immutable Row. arrivedAt is the wall-clock arrival
// time, used as rowtime when the shape declares no ROWTIME column.
func NewRow(shape *StreamShape, columns Columns, arrivedAt sql.Timestamp) *Row {
	return &Row{shape: shape, columns: columns, arrivedAt: arrivedAt}
}

// Shape returns the row's stream shape.
func (r *Row) Shape() *StreamShape { return r.shape }

// Get returns the value of a column by name.
func (r *Row) Get(name ColumnName) (sql.Value, bool) {
	v, ok := r.columns[name]
	return v, ok
}

// Columns returns the row's materialized column map. Callers must not
// mutate it -- rows are immutable once constructed.
func (r *Row) Columns() Columns { return r.columns }

// Rowtime returns the value of the shape's ROWTIME column if declared,
// otherwise the row's arrival time.
func (r *Row) Rowtime() sql.Timestamp {
	if name, ok := r.shape.RowtimeColumn(); ok {
		if v, ok := r.columns[name]; ok {
			if ts, err := v.AsTimestamp(); err == nil {
				return ts
			}
		}
	}
	return r.arrivedAt
}

// ArrivedAt returns the row's arrival time regardless of any declared
// ROWTIME column.
func (r *Row) ArrivedAt() sql.Timestamp { return r.arrivedAt }
