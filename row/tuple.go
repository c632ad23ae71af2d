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

import "github.com/springql/springql-go/sql"

// ColumnReference addresses a column by the stream it came from, so a Tuple
// can flatten columns from more than one stream (joins are not implemented
// yet, but the shape supports them).
type ColumnReference struct {
	Stream StreamName
	Column ColumnName
}

// Tuple is a flattened, multi-stream record a query plan evaluates
// expressions against: a rowtime plus a map keyed by (stream, column).
type Tuple struct {
	Rowtime sql.Timestamp
	Values  map[ColumnReference]sql.Value
}

// NewTuple builds a single-stream Tuple from one Row.
func NewTuple(stream StreamName, r *Row) *Tuple {
	values := make(map[ColumnReference]sql.Value, len(r.Columns()))
	for name, v := range r.Columns() {
		values[ColumnReference{Stream: stream, Column: name}] = v
	}
	return &Tuple{Rowtime: r.Rowtime(), Values: values}
}

// Get resolves a column reference. If stream is empty, Get matches on
// column name alone against whichever single stream populated the tuple --
// the common case before joins exist.
func (t *Tuple) Get(ref ColumnReference) (sql.Value, bool) {
	if ref.Stream != "" {
		v, ok := t.Values[ref]
		return v, ok
	}
	for cr, v := range t.Values {
		if cr.Column == ref.Column {
			return v, true
		}
	}
	return sql.Value{}, false
}
