// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package graphs

import (
	"testing"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTriangle() *Graph {
	g := New(3)
	g.AddEdges([][2]int32{{0, 2}, {1, 2}, {2, 0}})
	return g
}

func TestGraphStructure(t *testing.T) {
	g := buildTriangle()
	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 3, g.NumEdges())
	assert.Equal(t, Edge{Source: 1, Target: 2}, g.Edge(1))
	assert.Equal(t, []int32{1, 0, 2}, g.InDegrees())
	assert.False(t, g.HasIsolatedTargets())

	lonely := New(2)
	lonely.AddEdge(0, 1)
	assert.True(t, lonely.HasIsolatedTargets())
}

func TestGraphEndpointValidation(t *testing.T) {
	g := New(2)
	require.Panics(t, func() { g.AddEdge(0, 2) })
	require.Panics(t, func() { g.AddEdge(-1, 0) })
	require.Panics(t, func() { New(0) })
}

func TestGraphTensors(t *testing.T) {
	g := buildTriangle()
	sources := g.EdgeSourcesTensor()
	require.Equal(t, dtypes.Int32, sources.DType())
	require.Equal(t, []int{3}, sources.Shape().Dimensions)

	degrees := g.InDegreesTensor()
	require.Equal(t, dtypes.Float32, degrees.DType())
	require.Equal(t, []int{3, 1}, degrees.Shape().Dimensions)
	require.NoError(t, tensors.ConstFlatData(degrees, func(flat []float32) {
		assert.Equal(t, []float32{1, 0, 2}, flat)
	}))
}

func TestWeightsTensor(t *testing.T) {
	g := buildTriangle()
	weights, err := g.WeightsTensor(map[Edge]float64{
		{Source: 0, Target: 2}: 0.5,
		{Source: 1, Target: 2}: 0.25,
		{Source: 2, Target: 0}: 1,
	})
	require.NoError(t, err)
	require.Equal(t, []int{3, 1}, weights.Shape().Dimensions)
	require.NoError(t, tensors.ConstFlatData(weights, func(flat []float32) {
		assert.Equal(t, []float32{0.5, 0.25, 1}, flat)
	}))

	_, err = g.WeightsTensor(map[Edge]float64{
		{Source: 0, Target: 2}: 0.5,
	})
	require.ErrorIs(t, err, ErrUndefinedWeight)
}

func TestFrame(t *testing.T) {
	g := buildTriangle()
	frame := g.NewFrame()

	features := tensors.FromValue([][]float32{{1, 0}, {0, 1}, {1, 1}})
	require.NoError(t, frame.SetNodeData("h", features))
	got, found := frame.NodeData("h")
	require.True(t, found)
	assert.Same(t, features, got)

	// Attaching to a frame leaves the graph untouched.
	assert.Equal(t, 3, g.NumEdges())

	frame.DetachNodeData("h")
	_, found = frame.NodeData("h")
	assert.False(t, found)
}

func TestFrameValidation(t *testing.T) {
	g := buildTriangle()
	frame := g.NewFrame()

	// Wrong number of node rows.
	err := frame.SetNodeData("h", tensors.FromValue([][]float32{{1}, {2}}))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	// Fewer edge rows than edges: some edge has no entry.
	err = frame.SetEdgeData("w", tensors.FromValue([][]float32{{1}, {1}}))
	require.ErrorIs(t, err, ErrUndefinedWeight)

	// More edge rows than edges.
	err = frame.SetEdgeData("w", tensors.FromValue([][]float32{{1}, {1}, {1}, {1}}))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	require.NoError(t, frame.SetEdgeData("w", g.OnesWeightsTensor()))
}
