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

// Package row defines column-addressed tuples: the shape of a stream, the
// materialized columns of one event, and the flattened Tuple a query plan
// evaluates expressions against.
package row

import (
	"fmt"

	"github.com/springql/springql-go/sql"
)

// ColumnName, StreamName and PumpName are opaque case-sensitive identifiers.
type (
	ColumnName string
	StreamName string
	PumpName   string
)

// VirtualRoot and VirtualLeaf name the two reserved anchor nodes of the
// pipeline graph: every source attaches from VirtualRoot, every sink
// attaches to a per-foreign-stream VirtualLeaf.
const VirtualRootName StreamName = "__virtual_root"

// VirtualLeafName builds the reserved virtual-leaf stream name bound to one
// foreign stream.
func VirtualLeafName(foreign StreamName) StreamName {
	return StreamName(fmt.Sprintf("__virtual_leaf(%s)", foreign))
}

// ColumnDataType describes one column of a stream shape.
type ColumnDataType struct {
	Name     ColumnName
	Type     sql.Type
	Nullable bool
}

// StreamShape is the ordered column list of a stream, with at most one
// column designated as ROWTIME.
type StreamShape struct {
	Columns   []ColumnDataType
	RowtimeAt int // index into Columns, or -1 if no ROWTIME column is declared
}

// NewStreamShape validates and builds a StreamShape. rowtimeColumn, if
// non-empty, must name a column that is non-null TIMESTAMP.
func NewStreamShape(columns []ColumnDataType, rowtimeColumn ColumnName) (*StreamShape, error) {
	idx := -1
	if rowtimeColumn != "" {
		for i, c := range columns {
			if c.Name == rowtimeColumn {
				if c.Type != sql.TypeTimestamp {
					return nil, fmt.Errorf("row: ROWTIME column %q must be TIMESTAMP, got %s", rowtimeColumn, c.Type)
				}
				if c.Nullable {
					return nil, fmt.Errorf("row: ROWTIME column %q must be non-null", rowtimeColumn)
				}
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, fmt.Errorf("row: ROWTIME column %q not found in shape", rowtimeColumn)
		}
	}
	return &StreamShape{Columns: columns, RowtimeAt: idx}, nil
}

// HasRowtime reports whether the shape declares a ROWTIME column.
func (s *StreamShape) HasRowtime() bool { return s.RowtimeAt >= 0 }

// RowtimeColumn returns the name of the declared ROWTIME column, if any.
func (s *StreamShape) RowtimeColumn() (ColumnName, bool) {
	if !s.HasRowtime() {
		return "", false
	}
	return s.Columns[s.RowtimeAt].Name, true
}

// Lookup returns the ColumnDataType for name, if the shape declares it.
func (s *StreamShape) Lookup(name ColumnName) (ColumnDataType, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDataType{}, false
}
