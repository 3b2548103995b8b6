// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package graphs

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// Frame is a transient record of named per-node and per-edge tensors used
// during one forward computation.
//
// It plays the role DGL's `local_scope()` plays in the original tutorials:
// data attached to a Frame is scoped to the computation that owns the Frame
// and never mutates the shared Graph. The caller constructs it, hands it to
// the computation, and discards it on return.
type Frame struct {
	graph    *Graph
	nodeData map[string]*tensors.Tensor
	edgeData map[string]*tensors.Tensor
}

// NewFrame creates an empty Frame scoped to this graph.
func (g *Graph) NewFrame() *Frame {
	return &Frame{
		graph:    g,
		nodeData: make(map[string]*tensors.Tensor),
		edgeData: make(map[string]*tensors.Tensor),
	}
}

// Graph returns the graph this frame is scoped to.
func (f *Frame) Graph() *Graph { return f.graph }

// SetNodeData attaches a per-node tensor under name. The tensor's leading
// axis must equal the number of nodes, otherwise it fails with
// ErrDimensionMismatch.
func (f *Frame) SetNodeData(name string, t *tensors.Tensor) error {
	if t.Shape().Rank() < 1 || t.Shape().Dimensions[0] != f.graph.NumNodes() {
		return errors.Wrapf(ErrDimensionMismatch,
			"node data %q has shape %s, graph has %d nodes", name, t.Shape(), f.graph.NumNodes())
	}
	f.nodeData[name] = t
	return nil
}

// SetEdgeData attaches a per-edge tensor under name. The tensor's leading
// axis must equal the number of edges: fewer rows means some edge has no
// entry (ErrUndefinedWeight), more rows is a shape error
// (ErrDimensionMismatch).
func (f *Frame) SetEdgeData(name string, t *tensors.Tensor) error {
	rows := 0
	if t.Shape().Rank() >= 1 {
		rows = t.Shape().Dimensions[0]
	}
	if rows < f.graph.NumEdges() {
		return errors.Wrapf(ErrUndefinedWeight,
			"edge data %q has %d rows, graph has %d edges", name, rows, f.graph.NumEdges())
	}
	if rows > f.graph.NumEdges() {
		return errors.Wrapf(ErrDimensionMismatch,
			"edge data %q has %d rows, graph has %d edges", name, rows, f.graph.NumEdges())
	}
	f.edgeData[name] = t
	return nil
}

// NodeData returns the per-node tensor attached under name, or false if none.
func (f *Frame) NodeData(name string) (*tensors.Tensor, bool) {
	t, found := f.nodeData[name]
	return t, found
}

// EdgeData returns the per-edge tensor attached under name, or false if none.
func (f *Frame) EdgeData(name string) (*tensors.Tensor, bool) {
	t, found := f.edgeData[name]
	return t, found
}

// DetachNodeData removes the per-node tensor attached under name.
func (f *Frame) DetachNodeData(name string) { delete(f.nodeData, name) }

// DetachEdgeData removes the per-edge tensor attached under name.
func (f *Frame) DetachEdgeData(name string) { delete(f.edgeData, name) }
