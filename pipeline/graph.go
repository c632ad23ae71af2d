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
	"fmt"

	"github.com/springql/springql-go/row"
)

// nodeKind tags a graph node's variant.
type nodeKind int

const (
	nodeNative nodeKind = iota
	nodeForeign
	nodeVirtualRoot
	nodeVirtualLeaf
)

// node is one StreamNode: a native stream, a foreign stream, the single
// virtual root, or a virtual leaf bound to one foreign stream.
type node struct {
	kind           nodeKind
	name           row.StreamName
	stream         *StreamModel        // set when kind == nodeNative
	foreign        *ForeignStreamModel // set when kind == nodeForeign
	parentForeign  row.StreamName      // set when kind == nodeVirtualLeaf
}

// pumpEdge is a Pump edge of the graph: the upstream/downstream stream names
// live on the PumpModel itself.
type pumpEdge struct {
	pump PumpModel
}

// serverEdge is a Source or Sink edge.
type serverEdge struct {
	server   ServerModel
	isSource bool // Source edge (from VirtualRoot) vs Sink edge (to a VirtualLeaf)
}

// Graph is the authoritative, serializable model of the current topology:
// a DAG of StreamNodes connected by pump and foreign-server edges. It is
// purely descriptive and holds no running state.
type Graph struct {
	nodes map[row.StreamName]*node
	// adjacency: upstream stream name -> downstream stream name -> pump edges
	// between them. Most pairs have at most one pump, but nothing in the
	// spec forbids two pumps between the same pair, so this is a slice.
	pumpsByEndpoints map[row.StreamName]map[row.StreamName][]*pumpEdge
	// pumpsByName indexes pump edges for get_pump/remove_pump.
	pumpsByName map[row.PumpName]*pumpEdge
	// sources indexes Source edges by the foreign stream they serve.
	sources map[row.StreamName]*serverEdge
	// sinks indexes Sink edges by the foreign stream they serve.
	sinks map[row.StreamName]*serverEdge
	// virtualLeafOf maps a foreign stream name to its bound virtual leaf
	// node name, created lazily the first time a Sink attaches to it.
	virtualLeafOf map[row.StreamName]row.StreamName
}

// NewGraph creates a Graph containing only the virtual root node.
func NewGraph() *Graph {
	g := &Graph{
		nodes:            make(map[row.StreamName]*node),
		pumpsByEndpoints: make(map[row.StreamName]map[row.StreamName][]*pumpEdge),
		pumpsByName:      make(map[row.PumpName]*pumpEdge),
		sources:          make(map[row.StreamName]*serverEdge),
		sinks:            make(map[row.StreamName]*serverEdge),
		virtualLeafOf:    make(map[row.StreamName]row.StreamName),
	}
	g.nodes[row.VirtualRootName] = &node{kind: nodeVirtualRoot, name: row.VirtualRootName}
	return g
}

// AddStream adds a native stream node created by CREATE STREAM.
func (g *Graph) AddStream(s StreamModel) error {
	if _, exists := g.nodes[s.Name]; exists {
		return fmt.Errorf("pipeline: Sql: stream %q already exists", s.Name)
	}
	g.nodes[s.Name] = &node{kind: nodeNative, name: s.Name, stream: &s}
	return nil
}

// AddForeignStream adds a foreign stream node created by CREATE SOURCE
// STREAM / CREATE SINK STREAM.
func (g *Graph) AddForeignStream(s ForeignStreamModel) error {
	if _, exists := g.nodes[s.Name]; exists {
		return fmt.Errorf("pipeline: Sql: stream %q already exists", s.Name)
	}
	g.nodes[s.Name] = &node{kind: nodeForeign, name: s.Name, foreign: &s}
	return nil
}

// GetPump returns the named pump.
func (g *Graph) GetPump(name row.PumpName) (PumpModel, error) {
	e, ok := g.pumpsByName[name]
	if !ok {
		return PumpModel{}, fmt.Errorf("pipeline: Sql: pump %q does not exist in pipeline", name)
	}
	return e.pump, nil
}

// AddPump adds a pump edge between two existing streams. It fails with an
// error if either endpoint is absent, or if the new edge would create a
// cycle in the stream DAG.
func (g *Graph) AddPump(p PumpModel) error {
	if _, ok := g.nodes[p.Upstream]; !ok {
		return fmt.Errorf("pipeline: Sql: upstream %q does not exist in pipeline", p.Upstream)
	}
	if _, ok := g.nodes[p.Downstream]; !ok {
		return fmt.Errorf("pipeline: Sql: downstream %q does not exist in pipeline", p.Downstream)
	}
	if _, exists := g.pumpsByName[p.Name]; exists {
		return fmt.Errorf("pipeline: Sql: pump %q already exists", p.Name)
	}
	if g.wouldCreateCycle(p.Upstream, p.Downstream) {
		return fmt.Errorf("pipeline: Sql: pump %q from %q to %q would create a cycle", p.Name, p.Upstream, p.Downstream)
	}

	e := &pumpEdge{pump: p}
	if g.pumpsByEndpoints[p.Upstream] == nil {
		g.pumpsByEndpoints[p.Upstream] = make(map[row.StreamName][]*pumpEdge)
	}
	g.pumpsByEndpoints[p.Upstream][p.Downstream] = append(g.pumpsByEndpoints[p.Upstream][p.Downstream], e)
	g.pumpsByName[p.Name] = e
	return nil
}

// RemovePump removes a pump edge by name. It does not remove the pump's
// endpoint streams.
func (g *Graph) RemovePump(name row.PumpName) error {
	e, ok := g.pumpsByName[name]
	if !ok {
		return fmt.Errorf("pipeline: Sql: pump %q does not exist in pipeline", name)
	}
	delete(g.pumpsByName, name)
	edges := g.pumpsByEndpoints[e.pump.Upstream][e.pump.Downstream]
	for i, other := range edges {
		if other == e {
			g.pumpsByEndpoints[e.pump.Upstream][e.pump.Downstream] = append(edges[:i], edges[i+1:]...)
			break
		}
	}
	return nil
}

// UpdatePump replaces the stored model for an existing pump (used by ALTER
// PUMP ... START/STOP, which transitions PumpState in place).
func (g *Graph) UpdatePump(p PumpModel) error {
	e, ok := g.pumpsByName[p.Name]
	if !ok {
		return fmt.Errorf("pipeline: Sql: pump %q does not exist in pipeline", p.Name)
	}
	e.pump = p
	return nil
}

// AddServer attaches a source or sink server. A SourceNet/source server
// edges from the virtual root to the foreign stream it feeds; a sink server
// edges from the foreign stream to a per-foreign-stream virtual leaf,
// created lazily on first attach.
func (g *Graph) AddServer(s ServerModel) error {
	if _, ok := g.nodes[s.ForeignStream]; !ok {
		return fmt.Errorf("pipeline: Sql: foreign stream %q does not exist in pipeline", s.ForeignStream)
	}
	if s.Type.IsSource() {
		g.sources[s.ForeignStream] = &serverEdge{server: s, isSource: true}
		return nil
	}
	leafName, ok := g.virtualLeafOf[s.ForeignStream]
	if !ok {
		leafName = row.VirtualLeafName(s.ForeignStream)
		g.virtualLeafOf[s.ForeignStream] = leafName
		g.nodes[leafName] = &node{kind: nodeVirtualLeaf, name: leafName, parentForeign: s.ForeignStream}
	}
	g.sinks[s.ForeignStream] = &serverEdge{server: s, isSource: false}
	return nil
}

// wouldCreateCycle reports whether adding an edge upstream->downstream would
// introduce a cycle, i.e. whether downstream can already reach upstream.
// Uses the visited/visiting traversal shape (iterative, explicit frontier)
// rather than recursion, so a long pipeline can't blow the call stack.
func (g *Graph) wouldCreateCycle(upstream, downstream row.StreamName) bool {
	if upstream == downstream {
		return true
	}
	visited := make(map[row.StreamName]bool)
	frontier := []row.StreamName{downstream}
	for len(frontier) > 0 {
		cur := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if cur == upstream {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for next := range g.pumpsByEndpoints[cur] {
			if len(g.pumpsByEndpoints[cur][next]) > 0 {
				frontier = append(frontier, next)
			}
		}
	}
	return false
}

// ServerState is the derived running state of a source server.
type ServerState int

const (
	ServerStopped ServerState = iota
	ServerStarted
)

func (s ServerState) String() string {
	if s == ServerStarted {
		return "STARTED"
	}
	return "STOPPED"
}

// SourceServerState derives whether the source serving foreignStream is
// Started: true iff some directed path of Started pumps leads from
// foreignStream to any Sink edge. Computed fresh by DFS on every call --
// there is no cached state to invalidate.
func (g *Graph) SourceServerState(foreignStream row.StreamName) ServerState {
	if g.hasStartedPathToSink(foreignStream, make(map[row.StreamName]bool)) {
		return ServerStarted
	}
	return ServerStopped
}

func (g *Graph) hasStartedPathToSink(streamName row.StreamName, visiting map[row.StreamName]bool) bool {
	if visiting[streamName] {
		return false // cycles are rejected at AddPump time, but guard defensively
	}
	visiting[streamName] = true
	defer delete(visiting, streamName)

	if _, ok := g.sinks[streamName]; ok {
		return true
	}
	for downstream, edges := range g.pumpsByEndpoints[streamName] {
		for _, e := range edges {
			if e.pump.State != PumpStarted {
				continue
			}
			if g.hasStartedPathToSink(downstream, visiting) {
				return true
			}
		}
	}
	return false
}
