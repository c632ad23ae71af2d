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

package diag

import (
	"strings"
	"testing"

	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/testsupport"
)

func TestDumpRendersStreamsAndPumps(t *testing.T) {
	g := pipeline.NewGraph()
	shape := testsupport.TradeShape()
	if err := g.AddStream(pipeline.StreamModel{Name: "trade", Shape: shape}); err != nil {
		t.Fatalf("AddStream: %v", err)
	}
	if err := g.AddStream(pipeline.StreamModel{Name: "trade_avg", Shape: shape}); err != nil {
		t.Fatalf("AddStream: %v", err)
	}
	if err := g.AddPump(pipeline.PumpModel{Name: "p1", Upstream: "trade", Downstream: "trade_avg"}); err != nil {
		t.Fatalf("AddPump: %v", err)
	}

	out, err := Dump(g)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}

	for _, want := range []string{"name: trade", "name: trade_avg", "name: p1", "rowtime: true"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestDumpEmptyGraph(t *testing.T) {
	out, err := Dump(pipeline.NewGraph())
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty YAML document even for an empty graph")
	}
}
