// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package sage

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/pkg/errors"

	"github.com/dglai/dgl-winter-school/graphs"
)

// Aggregate runs one forward computation of the convolution over the node
// features and edge weights attached to frame, and returns the new node
// representations shaped `[numNodes, outputDim]`.
//
// The frame must carry per-node features under featuresName (shaped
// `[numNodes, inputDim]`) and per-edge scalar weights under weightsName.
// The learned projection lives in ctx; inputDim is the feature width the
// layer is configured for, and a frame carrying features of any other width
// fails with graphs.ErrDimensionMismatch before anything is computed -- no
// partial result is ever returned.
//
// If the context parameter [ParamStrictNeighborhoods] is true and the graph
// has nodes with zero in-degree, Aggregate fails with
// graphs.ErrEmptyNeighborhood. Otherwise those nodes aggregate the zero
// vector (the documented default).
//
// The computation is a pure function of its inputs: the frame, the graph and
// the feature tensors are left untouched, and two calls with the same inputs
// and context variables produce identical outputs.
func Aggregate(backend backends.Backend, ctx *context.Context, frame *graphs.Frame,
	featuresName, weightsName string, inputDim, outputDim int) (*tensors.Tensor, error) {
	features, found := frame.NodeData(featuresName)
	if !found {
		return nil, errors.Errorf("no node data attached under %q", featuresName)
	}
	if features.Shape().Rank() != 2 || features.Shape().Dimensions[1] != inputDim {
		return nil, errors.Wrapf(graphs.ErrDimensionMismatch,
			"node features %q are shaped %s, layer is configured for width %d",
			featuresName, features.Shape(), inputDim)
	}
	weights, found := frame.EdgeData(weightsName)
	if !found {
		return nil, errors.Wrapf(graphs.ErrUndefinedWeight, "no edge data attached under %q", weightsName)
	}

	g := frame.Graph()
	if context.GetParamOr(ctx, ParamStrictNeighborhoods, false) {
		for node, degree := range g.InDegrees() {
			if degree == 0 {
				return nil, errors.Wrapf(graphs.ErrEmptyNeighborhood, "node %d", node)
			}
		}
	}

	var output *tensors.Tensor
	err := exceptions.TryCatch[error](func() {
		var execErr error
		output, execErr = context.ExecOnce(backend, ctx,
			func(ctx *context.Context, state, edgeWeights, edgesSource, edgesTarget *Node) *Node {
				return New(ctx, state, edgeWeights, edgesSource, edgesTarget, outputDim).Done()
			},
			features, weights, g.EdgeSourcesTensor(), g.EdgeTargetsTensor())
		if execErr != nil {
			panic(execErr)
		}
	})
	if err != nil {
		return nil, errors.WithMessage(err, "sage.Aggregate")
	}
	return output, nil
}
