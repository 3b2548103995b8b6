// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package karate

import (
	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/shapes"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/layers"
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/dglai/dgl-winter-school/sage"
)

// DType used by the model.
var DType = dtypes.Float32

var (
	// ParamEmbeddingDim is the width of the learned per-member embedding.
	ParamEmbeddingDim = "karate_embedding_dim"

	// ParamHiddenDim is the width of the hidden graph convolution layers.
	ParamHiddenDim = "karate_hidden_dim"
)

// getKarateVar retrieves the static (not-learnable) dataset variables, e.g.
// the friendship adjacency.
func getKarateVar(ctx *context.Context, g *graph.Graph, name string) *graph.Node {
	v := ctx.InspectVariable(KarateVariablesScope, name)
	if v == nil {
		Panicf("missing karate club dataset variable %q, call UploadKarateVariables() on the context first", name)
	}
	return v.ValueGraph(g)
}

// ModelGraph builds the classifier: a learned embedding per member, two
// weighted-mean graph convolutions over the friendship graph, and a linear
// readout to per-club logits.
//
// inputs[0] are the seed member indices, shaped `(Int32)[batchSize, 1]`; the
// output is their logits, shaped `[batchSize, NumClubs]`. The convolutions
// always run over all members, seeds only select which rows are returned, so
// predictions for every member come from the same forward pass.
func ModelGraph(ctx *context.Context, spec any, inputs []*graph.Node) []*graph.Node {
	seeds := inputs[0]
	g := seeds.Graph()
	edgesSource := getKarateVar(ctx, g, "edges_source")
	edgesTarget := getKarateVar(ctx, g, "edges_target")
	edgeWeights := getKarateVar(ctx, g, "edge_weights")

	embedDim := context.GetParamOr(ctx, ParamEmbeddingDim, 5)
	hiddenDim := context.GetParamOr(ctx, ParamHiddenDim, 16)

	// Members have no input features: their initial state is learned.
	members := graph.IotaFull(g, shapes.Make(dtypes.Int32, NumMembers))
	state := layers.Embedding(ctx.In("members"), members, DType, NumMembers, embedDim, false)

	state = sage.New(ctx.In("conv0"), state, edgeWeights, edgesSource, edgesTarget, hiddenDim).Done()
	state = sage.New(ctx.In("conv1"), state, edgeWeights, edgesSource, edgesTarget, hiddenDim).Done()
	logits := layers.DenseWithBias(ctx.In("readout"), state, NumClubs)

	// [batchSize, 1] indices over [NumMembers, NumClubs] logits.
	return []*graph.Node{graph.Gather(logits, seeds)}
}
