// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package karate

import (
	"testing"

	_ "github.com/gomlx/gomlx/backends/default"
	"github.com/gomlx/gomlx/pkg/core/graph/graphtest"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraph(t *testing.T) {
	g := NewGraph()
	assert.Equal(t, NumMembers, g.NumNodes())
	assert.Equal(t, 2*NumFriendships, g.NumEdges())

	// Every member has at least one friend, so messages reach everyone.
	assert.False(t, g.HasIsolatedTargets())

	// The two leaders are the best-connected members.
	degrees := g.InDegrees()
	assert.Equal(t, int32(16), degrees[0])
	assert.Equal(t, int32(17), degrees[33])
}

func TestClubLabels(t *testing.T) {
	labels := ClubLabels()
	require.Equal(t, []int{NumMembers, 1}, labels.Shape().Dimensions)
	require.NoError(t, tensors.ConstFlatData(labels, func(flat []int32) {
		assert.Equal(t, int32(0), flat[0])  // The instructor is "Mr. Hi".
		assert.Equal(t, int32(1), flat[33]) // The president is "Officer".

		counts := [NumClubs]int{}
		for _, club := range flat {
			counts[club]++
		}
		assert.Equal(t, [NumClubs]int{17, 17}, counts)
	}))

	oneHot := OneHotClubLabels()
	require.Equal(t, []int{NumMembers, NumClubs}, oneHot.Shape().Dimensions)
	require.NoError(t, tensors.ConstFlatData(oneHot, func(flat []float32) {
		assert.Equal(t, []float32{1, 0}, flat[:2])
		assert.Equal(t, []float32{0, 1}, flat[len(flat)-2:])
	}))
}

func TestUploadKarateVariables(t *testing.T) {
	ctx := context.New()
	UploadKarateVariables(ctx)
	for _, name := range []string{"edges_source", "edges_target", "edge_weights", "clubs", "clubs_onehot"} {
		v := ctx.InspectVariable(KarateVariablesScope, name)
		require.NotNilf(t, v, "variable %q not uploaded", name)
		assert.False(t, v.Trainable)
	}
}

func TestTrainAndPredict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping training in short mode")
	}
	backend := graphtest.BuildTestBackend()
	ctx := CreateDefaultContext()

	require.NoError(t, Train(ctx, backend, 0))
	predictions, err := Predict(ctx, backend)
	require.NoError(t, err)
	require.Len(t, predictions, NumMembers)

	// The two training examples must be classified correctly, and the labels
	// must have propagated: with only two labeled members, anything well
	// above chance on the rest means the convolutions are doing the work.
	assert.Equal(t, int32(0), predictions[0])
	assert.Equal(t, int32(1), predictions[33])
	accuracy, err := Accuracy(predictions)
	require.NoError(t, err)
	assert.Greater(t, accuracy, 0.7)
}
