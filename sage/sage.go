// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

// Package sage implements a GraphSAGE-style graph convolution whose neighbor
// aggregation is a weighted arithmetic mean: each incoming edge contributes
// the source node's feature vector scaled by the edge's scalar weight, the
// contributions are averaged per destination node, and the result is
// concatenated with the destination's own feature and passed through a learned
// linear projection followed by a rectifier.
//
// Nodes with no incoming edges aggregate to the zero vector: the mean of an
// empty neighborhood is not defined, and zero-filling lets isolated nodes fall
// back to their own feature alone. Callers that prefer to fail instead can set
// [ParamStrictNeighborhoods] (see Aggregate).
package sage

import (
	. "github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers"
	"github.com/gomlx/gomlx/pkg/ml/layers/activations"
	"github.com/pkg/errors"

	"github.com/dglai/dgl-winter-school/graphs"
)

// ParamStrictNeighborhoods is a context hyperparameter: if set to true,
// Aggregate fails with graphs.ErrEmptyNeighborhood when the graph has nodes
// with zero in-degree, instead of zero-filling their aggregated feature.
// The default is false.
var ParamStrictNeighborhoods = "sage_strict_neighborhoods"

// MessageFn computes the value sent along each edge. It receives the source
// node features, the edge data and the destination node features, all already
// gathered per edge (leading axis numEdges), and returns one message per edge.
//
// It must be a pure function of its inputs: no implicit graph state is
// threaded through.
type MessageFn func(source, edge, destination *Node) *Node

// WeightedMessage is the default MessageFn: the source feature scaled
// elementwise by the edge's scalar weight. The destination feature is unused.
func WeightedMessage(source, edge, destination *Node) *Node {
	return Mul(source, edge)
}

// Config is built with New and configures one convolution. Once finished
// being configured, call Done to apply it.
type Config struct {
	ctx                      *context.Context
	state                    *Node
	edgeWeights              *Node
	edgesSource, edgesTarget *Node
	outputDim                int
	messageFn                MessageFn
}

// New configures a weighted-mean graph convolution over the node states.
//
// Args:
//   - ctx: context where the projection weights are created (or reused).
//   - state: node features, shaped `[numNodes, featuresDim]`.
//   - edgeWeights: per-edge scalar weights, shaped `[numEdges, 1]` or `[numEdges]`.
//   - edgesSource, edgesTarget: the adjacency as parallel index tensors,
//     shaped `[numEdges]` or `[numEdges, 1]`, of an integer dtype.
//   - outputDim: width of the projected output state.
//
// The convolution is applied when Done is called, returning the new node
// states shaped `[numNodes, outputDim]`. The inputs are never mutated.
func New(ctx *context.Context, state, edgeWeights, edgesSource, edgesTarget *Node, outputDim int) *Config {
	return &Config{
		ctx:         ctx,
		state:       state,
		edgeWeights: edgeWeights,
		edgesSource: edgesSource,
		edgesTarget: edgesTarget,
		outputDim:   outputDim,
		messageFn:   WeightedMessage,
	}
}

// WithMessage replaces the default WeightedMessage by a custom message
// function.
func (c *Config) WithMessage(fn MessageFn) *Config {
	c.messageFn = fn
	return c
}

// Done applies the configured convolution and returns the new node states,
// shaped `[numNodes, outputDim]`.
func (c *Config) Done() *Node {
	state := c.state
	if state.Rank() != 2 {
		Panicf("sage: state must be shaped [numNodes, featuresDim], got %s", state.Shape())
	}
	numNodes := state.Shape().Dimensions[0]
	edgesSource, edgesTarget := normalizeEdgeIndices(c.edgesSource, c.edgesTarget)
	weights := normalizeWeights(c.edgeWeights, edgesSource.Shape().Dimensions[0])

	neighbors := neighborMean(state, weights, edgesSource, edgesTarget, numNodes, c.messageFn)
	combined := Concatenate([]*Node{state, neighbors}, -1)
	output := layers.DenseWithBias(c.ctx, combined, c.outputDim)
	return activations.Relu(output)
}

// WeightedNeighborMean returns, for every node, the weighted arithmetic mean
// of its incoming neighbors' features: mean over incoming edges (u→v) of
// `state[u] * weight[(u,v)]`. Nodes with no incoming edges get the zero
// vector.
//
// This is the aggregation at the heart of the convolution, without the
// learned projection. There are no training variables in it.
func WeightedNeighborMean(state, edgeWeights, edgesSource, edgesTarget *Node) *Node {
	if state.Rank() != 2 {
		Panicf("sage: state must be shaped [numNodes, featuresDim], got %s", state.Shape())
	}
	numNodes := state.Shape().Dimensions[0]
	edgesSource, edgesTarget = normalizeEdgeIndices(edgesSource, edgesTarget)
	weights := normalizeWeights(edgeWeights, edgesSource.Shape().Dimensions[0])
	return neighborMean(state, weights, edgesSource, edgesTarget, numNodes, WeightedMessage)
}

// neighborMean scatters one message per edge into its target node and divides
// by the per-target message count. The `MaxScalar(count, 1)` keeps the
// division defined for zero in-degree targets, which end up with the zero
// vector.
func neighborMean(state, weights, edgesSource, edgesTarget *Node, numNodes int, messageFn MessageFn) *Node {
	g := state.Graph()
	dtype := state.DType()
	numEdges := edgesSource.Shape().Dimensions[0]

	source := Gather(state, edgesSource)
	destination := Gather(state, edgesTarget)
	messages := messageFn(source, weights, destination)
	if messages.Rank() != 2 || messages.Shape().Dimensions[0] != numEdges {
		Panicf("sage: message function returned shape %s, want [numEdges=%d, messageDim]",
			messages.Shape(), numEdges)
	}

	summed := Scatter(edgesTarget, messages, shapes.Make(dtype, numNodes, messages.Shape().Dimensions[1]), false, false)
	ones := Ones(g, shapes.Make(dtype, numEdges, 1))
	counts := Scatter(edgesTarget, ones, shapes.Make(dtype, numNodes, 1), false, false)
	return Div(summed, MaxScalar(counts, 1))
}

// normalizeEdgeIndices accepts the adjacency as rank-1 or rank-2 index
// tensors and returns both shaped `[numEdges, 1]`.
func normalizeEdgeIndices(edgesSource, edgesTarget *Node) (src, tgt *Node) {
	if edgesSource == nil || edgesTarget == nil {
		Panicf("sage: edgesSource and edgesTarget must both be given")
	}
	if !edgesSource.Shape().Equal(edgesTarget.Shape()) {
		Panicf("sage: edgesSource (%s) and edgesTarget (%s) must have the same shape",
			edgesSource.Shape(), edgesTarget.Shape())
	}
	if edgesSource.Rank() == 1 {
		edgesSource = InsertAxes(edgesSource, -1)
		edgesTarget = InsertAxes(edgesTarget, -1)
	}
	if edgesSource.Rank() != 2 || edgesSource.Shape().Dimensions[1] != 1 {
		Panicf("sage: edge indices must be shaped [numEdges] or [numEdges, 1], got %s", edgesSource.Shape())
	}
	return edgesSource, edgesTarget
}

// normalizeWeights accepts `[numEdges]` or `[numEdges, 1]` weights and
// returns them shaped `[numEdges, 1]`, checking there is exactly one weight
// per edge.
func normalizeWeights(weights *Node, numEdges int) *Node {
	if weights == nil {
		panic(errors.Wrap(graphs.ErrUndefinedWeight, "sage: edgeWeights must be given"))
	}
	if weights.Rank() == 1 {
		weights = InsertAxes(weights, -1)
	}
	if weights.Rank() != 2 || weights.Shape().Dimensions[1] != 1 {
		panic(errors.Wrapf(graphs.ErrDimensionMismatch,
			"sage: edgeWeights must be shaped [numEdges] or [numEdges, 1], got %s", weights.Shape()))
	}
	rows := weights.Shape().Dimensions[0]
	if rows < numEdges {
		panic(errors.Wrapf(graphs.ErrUndefinedWeight,
			"sage: %d edge weights given for %d edges", rows, numEdges))
	}
	if rows > numEdges {
		panic(errors.Wrapf(graphs.ErrDimensionMismatch,
			"sage: %d edge weights given for %d edges", rows, numEdges))
	}
	return weights
}
