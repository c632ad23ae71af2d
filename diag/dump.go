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

// Package diag renders a running pipeline's topology as YAML, for
// operators inspecting a live engine or diffing two snapshots. The
// pipeline model has no mandated on-disk format -- this is a read-only
// diagnostic view, not a checkpoint format.
package diag

import (
	"gopkg.in/yaml.v3"

	"github.com/springql/springql-go/pipeline"
	"github.com/springql/springql-go/row"
)

// streamDump is one native or foreign stream's diagnostic shape.
type streamDump struct {
	Name    string       `yaml:"name"`
	Foreign bool         `yaml:"foreign"`
	Columns []columnDump `yaml:"columns"`
}

type columnDump struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
	Rowtime  bool   `yaml:"rowtime,omitempty"`
}

type pumpDump struct {
	Name       string `yaml:"name"`
	State      string `yaml:"state"`
	Upstream   string `yaml:"upstream"`
	Downstream string `yaml:"downstream"`
	Windowed   bool   `yaml:"windowed"`
}

type serverDump struct {
	Type          string            `yaml:"type"`
	ForeignStream string            `yaml:"foreign_stream"`
	Options       map[string]string `yaml:"options,omitempty"`
}

// pipelineDump is the full diagnostic snapshot of a Graph.
type pipelineDump struct {
	Streams []streamDump `yaml:"streams"`
	Pumps   []pumpDump   `yaml:"pumps"`
	Servers []serverDump `yaml:"servers"`
}

// Dump renders g as a YAML document.
func Dump(g *pipeline.Graph) (string, error) {
	d := pipelineDump{}

	for _, s := range g.Streams() {
		d.Streams = append(d.Streams, streamDumpOf(s.Name, s.Shape, false))
	}
	for _, s := range g.ForeignStreams() {
		d.Streams = append(d.Streams, streamDumpOf(s.Name, s.Shape, true))
	}
	for _, p := range g.Pumps() {
		d.Pumps = append(d.Pumps, pumpDump{
			Name:       string(p.Name),
			State:      p.State.String(),
			Upstream:   string(p.Upstream),
			Downstream: string(p.Downstream),
			Windowed:   p.Window != nil,
		})
	}
	for _, s := range g.Servers() {
		var opts map[string]string
		if len(s.Options) > 0 {
			opts = make(map[string]string, len(s.Options))
			for k, v := range s.Options {
				opts[k] = v
			}
		}
		d.Servers = append(d.Servers, serverDump{
			Type:          s.Type.String(),
			ForeignStream: string(s.ForeignStream),
			Options:       opts,
		})
	}

	out, err := yaml.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func streamDumpOf(name row.StreamName, shape *row.StreamShape, foreign bool) streamDump {
	d := streamDump{Name: string(name), Foreign: foreign}
	rowtimeCol, hasRowtime := shape.RowtimeColumn()
	for _, c := range shape.Columns {
		d.Columns = append(d.Columns, columnDump{
			Name:     string(c.Name),
			Type:     c.Type.String(),
			Nullable: c.Nullable,
			Rowtime:  hasRowtime && c.Name == rowtimeCol,
		})
	}
	return d
}
