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
	"testing"

	"github.com/springql/springql-go/sql"
)

func TestNewStreamShapeRowtime(t *testing.T) {
	shape, err := NewStreamShape([]ColumnDataType{
		{Name: "ts", Type: sql.TypeTimestamp, Nullable: false},
		{Name: "ticker", Type: sql.TypeText, Nullable: false},
	}, "ts")
	if err != nil {
		t.Fatalf("NewStreamShape: %v", err)
	}
	if !shape.HasRowtime() {
		t.Fatal("expected HasRowtime to be true")
	}
	name, ok := shape.RowtimeColumn()
	if !ok || name != "ts" {
		t.Fatalf("RowtimeColumn() = %q, %v; want ts, true", name, ok)
	}
}

func TestNewStreamShapeNoRowtime(t *testing.T) {
	shape, err := NewStreamShape([]ColumnDataType{{Name: "x", Type: sql.TypeInteger}}, "")
	if err != nil {
		t.Fatalf("NewStreamShape: %v", err)
	}
	if shape.HasRowtime() {
		t.Fatal("expected HasRowtime to be false")
	}
}

func TestNewStreamShapeRowtimeMustBeTimestamp(t *testing.T) {
	_, err := NewStreamShape([]ColumnDataType{{Name: "x", Type: sql.TypeInteger}}, "x")
	if err == nil {
		t.Fatal("expected non-TIMESTAMP ROWTIME column to be rejected")
	}
}

func TestNewStreamShapeRowtimeMustBeNonNull(t *testing.T) {
	_, err := NewStreamShape([]ColumnDataType{{Name: "ts", Type: sql.TypeTimestamp, Nullable: true}}, "ts")
	if err == nil {
		t.Fatal("expected nullable ROWTIME column to be rejected")
	}
}

func TestNewStreamShapeRowtimeMustExist(t *testing.T) {
	_, err := NewStreamShape([]ColumnDataType{{Name: "x", Type: sql.TypeInteger}}, "ghost")
	if err == nil {
		t.Fatal("expected a ROWTIME reference to a nonexistent column to be rejected")
	}
}

func TestLookup(t *testing.T) {
	shape, err := NewStreamShape([]ColumnDataType{{Name: "x", Type: sql.TypeInteger}}, "")
	if err != nil {
		t.Fatalf("NewStreamShape: %v", err)
	}
	if _, ok := shape.Lookup("x"); !ok {
		t.Fatal("expected Lookup(x) to succeed")
	}
	if _, ok := shape.Lookup("y"); ok {
		t.Fatal("expected Lookup(y) to fail")
	}
}
