// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

// Package graphs holds the host-side graph representation shared by the
// tutorials: a directed graph over dense integer node ids, stored as parallel
// edge-endpoint slices, with conversions to the tensors the computation
// graphs consume.
//
// The Graph itself carries only structure. Per-node and per-edge data
// (features, weights) attached for the duration of one forward computation
// live in a Frame, never in the Graph -- see frame.go.
package graphs

import (
	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

var (
	// ErrDimensionMismatch is returned when a feature tensor's width (or its
	// leading axis) does not agree with what the graph or layer expects.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUndefinedWeight is returned when an edge has no corresponding weight
	// entry.
	ErrUndefinedWeight = errors.New("undefined edge weight")

	// ErrEmptyNeighborhood is returned when a node with zero in-degree is
	// found and the caller asked for strict neighborhood handling. The
	// default policy is to treat the empty neighborhood's mean as the zero
	// vector instead -- see the sage package.
	ErrEmptyNeighborhood = errors.New("node has no incoming edges")
)

// Edge is a directed edge between two node ids.
type Edge struct {
	Source, Target int32
}

// Graph is a directed graph over nodes 0..NumNodes()-1. Edges are stored in
// insertion order as parallel source/target slices, ready to be handed to
// gather/scatter ops as index tensors.
type Graph struct {
	numNodes int32
	sources  []int32
	targets  []int32
}

// New creates an empty graph with the given number of nodes.
func New(numNodes int) *Graph {
	if numNodes <= 0 {
		Panicf("graphs.New(numNodes=%d): numNodes must be > 0", numNodes)
	}
	return &Graph{numNodes: int32(numNodes)}
}

// AddEdge adds the directed edge source→target. Both endpoints must already
// exist in the graph.
func (g *Graph) AddEdge(source, target int32) {
	if source < 0 || source >= g.numNodes {
		Panicf("AddEdge(%d, %d): source out of range, graph has %d nodes", source, target, g.numNodes)
	}
	if target < 0 || target >= g.numNodes {
		Panicf("AddEdge(%d, %d): target out of range, graph has %d nodes", source, target, g.numNodes)
	}
	g.sources = append(g.sources, source)
	g.targets = append(g.targets, target)
}

// AddEdges adds a batch of directed (source, target) pairs.
func (g *Graph) AddEdges(pairs [][2]int32) {
	for _, pair := range pairs {
		g.AddEdge(pair[0], pair[1])
	}
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return int(g.numNodes) }

// NumEdges returns the number of directed edges added so far.
func (g *Graph) NumEdges() int { return len(g.sources) }

// Edge returns the i-th edge, in insertion order.
func (g *Graph) Edge(i int) Edge {
	return Edge{Source: g.sources[i], Target: g.targets[i]}
}

// InDegrees returns the number of incoming edges per node.
func (g *Graph) InDegrees() []int32 {
	degrees := make([]int32, g.numNodes)
	for _, target := range g.targets {
		degrees[target]++
	}
	return degrees
}

// HasIsolatedTargets reports whether any node has zero in-degree.
func (g *Graph) HasIsolatedTargets() bool {
	for _, degree := range g.InDegrees() {
		if degree == 0 {
			return true
		}
	}
	return false
}

// EdgeSourcesTensor returns the edge sources shaped Int32[NumEdges]. The
// returned tensor owns a copy of the data, the graph is not aliased.
func (g *Graph) EdgeSourcesTensor() *tensors.Tensor {
	data := make([]int32, len(g.sources))
	copy(data, g.sources)
	return tensors.FromFlatDataAndDimensions(data, len(data))
}

// EdgeTargetsTensor returns the edge targets shaped Int32[NumEdges].
func (g *Graph) EdgeTargetsTensor() *tensors.Tensor {
	data := make([]int32, len(g.targets))
	copy(data, g.targets)
	return tensors.FromFlatDataAndDimensions(data, len(data))
}

// InDegreesTensor returns the per-node in-degrees shaped Float32[NumNodes, 1],
// the shape expected when scaling pooled messages.
func (g *Graph) InDegreesTensor() *tensors.Tensor {
	degrees := g.InDegrees()
	data := make([]float32, len(degrees))
	for i, d := range degrees {
		data[i] = float32(d)
	}
	return tensors.FromFlatDataAndDimensions(data, len(data), 1)
}

// WeightsTensor materializes a sparse edge→weight mapping into a dense tensor
// shaped Float32[NumEdges, 1], aligned with the edge insertion order.
//
// It fails with ErrUndefinedWeight if any edge of the graph has no entry in
// weights. Extra entries for non-existing edges are ignored.
func (g *Graph) WeightsTensor(weights map[Edge]float64) (*tensors.Tensor, error) {
	data := make([]float32, g.NumEdges())
	for i := range g.sources {
		edge := Edge{Source: g.sources[i], Target: g.targets[i]}
		w, found := weights[edge]
		if !found {
			return nil, errors.Wrapf(ErrUndefinedWeight, "edge (%d→%d)", edge.Source, edge.Target)
		}
		data[i] = float32(w)
	}
	return tensors.FromFlatDataAndDimensions(data, len(data), 1), nil
}

// OnesWeightsTensor returns a weight of 1 per edge, shaped Float32[NumEdges, 1].
// Handy for the tutorials where the graph is unweighted.
func (g *Graph) OnesWeightsTensor() *tensors.Tensor {
	data := make([]float32, g.NumEdges())
	for i := range data {
		data[i] = 1
	}
	return tensors.FromFlatDataAndDimensions(data, len(data), 1)
}
