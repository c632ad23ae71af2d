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

package pipeline

import (
	"sort"

	"github.com/springql/springql-go/row"
)

// Streams returns every native stream, sorted by name. Exposed for
// diagnostics/checkpointing -- the pipeline model is serializable even
// though no on-disk format is mandated.
func (g *Graph) Streams() []StreamModel {
	var out []StreamModel
	for _, n := range g.nodes {
		if n.kind == nodeNative {
			out = append(out, *n.stream)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ForeignStreams returns every foreign stream, sorted by name.
func (g *Graph) ForeignStreams() []ForeignStreamModel {
	var out []ForeignStreamModel
	for _, n := range g.nodes {
		if n.kind == nodeForeign {
			out = append(out, *n.foreign)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Pumps returns every pump, sorted by name.
func (g *Graph) Pumps() []PumpModel {
	out := make([]PumpModel, 0, len(g.pumpsByName))
	for _, e := range g.pumpsByName {
		out = append(out, e.pump)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Servers returns every source and sink server, sorted by foreign stream
// name then type.
func (g *Graph) Servers() []ServerModel {
	out := make([]ServerModel, 0, len(g.sources)+len(g.sinks))
	for _, e := range g.sources {
		out = append(out, e.server)
	}
	for _, e := range g.sinks {
		out = append(out, e.server)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ForeignStream != out[j].ForeignStream {
			return out[i].ForeignStream < out[j].ForeignStream
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// ForeignStreamShape returns the declared shape of a foreign stream, used
// by sourcesink connections to decode/encode wire rows.
func (g *Graph) ForeignStreamShape(name row.StreamName) (*row.StreamShape, bool) {
	n, ok := g.nodes[name]
	if !ok || n.kind != nodeForeign {
		return nil, false
	}
	return n.foreign.Shape, true
}
