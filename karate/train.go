// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package karate

import (
	"fmt"

	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/pkg/core/graph"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/gomlx/gomlx/pkg/ml/datasets"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gomlx/pkg/ml/train/losses"
	"github.com/gomlx/gomlx/pkg/ml/train/metrics"
	"github.com/gomlx/gomlx/pkg/ml/train/optimizers"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// CreateDefaultContext sets the context with default hyperparameters to use
// with Train.
func CreateDefaultContext() *context.Context {
	ctx := context.New()
	ctx.ResetRNGState()
	ctx.SetParams(map[string]any{
		"train_steps": 200,

		ParamEmbeddingDim: 5,
		ParamHiddenDim:    16,

		// Two labeled examples only, so a plain Adam with a largish learning
		// rate converges in a couple hundred steps.
		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 0.01,
	})
	return ctx
}

// Train fits the club membership model with hyperparameters given in ctx,
// training only on the two faction leaders, and reports progress to stdout
// if verbosity >= 1.
//
// The trained weights are left in ctx, ready for Predict.
func Train(ctx *context.Context, backend backends.Backend, verbosity int) error {
	UploadKarateVariables(ctx)
	trainSteps := context.GetParamOr(ctx, "train_steps", 200)

	trainDS, err := newLeadersDataset(backend)
	if err != nil {
		return err
	}

	trainer := newTrainer(backend, ctx)
	loop := train.NewLoop(trainer)
	if verbosity >= 1 {
		commandline.AttachProgressBar(loop)
	}
	if _, err := loop.RunSteps(trainDS, trainSteps); err != nil {
		return errors.WithMessage(err, "while running training steps")
	}
	if verbosity >= 1 {
		fmt.Printf("\t[Step %d] median train step: %d microseconds\n",
			loop.LoopStep, loop.MedianTrainStepDuration().Microseconds())
	}
	return nil
}

// newLeadersDataset yields the two labeled members, as (member index, club
// label) pairs, looping forever.
func newLeadersDataset(backend backends.Backend) (train.Dataset, error) {
	seeds := tensors.FromFlatDataAndDimensions(LabeledMembers, len(LabeledMembers), 1)
	labels := tensors.FromFlatDataAndDimensions(LabeledClubs, len(LabeledClubs), 1)
	ds, err := datasets.InMemoryFromData(backend, "leaders",
		[]any{seeds}, []any{labels})
	if err != nil {
		return nil, errors.WithMessage(err, "while building the training dataset")
	}
	return ds.BatchSize(len(LabeledMembers), false).Infinite(true), nil
}

func newTrainer(backend backends.Backend, ctx *context.Context) *train.Trainer {
	// Multi-class classification on integer labels.
	lossFn := losses.SparseCategoricalCrossEntropyLogits

	meanAccuracyMetric := metrics.NewSparseCategoricalAccuracy("Mean Accuracy", "#acc")
	movingAccuracyMetric := metrics.NewMovingAverageSparseCategoricalAccuracy("Moving Average Accuracy", "~acc", 0.01)

	return train.NewTrainer(backend, ctx.In("model"), ModelGraph,
		lossFn,
		optimizers.FromContext(ctx),
		[]metrics.Interface{movingAccuracyMetric}, // trainMetrics
		[]metrics.Interface{meanAccuracyMetric})   // evalMetrics
}

// Predict returns the predicted faction of every member, in member order,
// using the weights trained into ctx by Train.
func Predict(ctx *context.Context, backend backends.Backend) ([]int32, error) {
	allMembers := tensors.FromFlatDataAndDimensions(xslices.Iota[int32](0, NumMembers), NumMembers, 1)
	output, err := context.ExecOnce(backend, ctx.In("model").Reuse(),
		func(ctx *context.Context, seeds *graph.Node) *graph.Node {
			logits := ModelGraph(ctx, nil, []*graph.Node{seeds})[0]
			return graph.ArgMax(logits, -1, dtypes.Int32)
		}, allMembers)
	if err != nil {
		return nil, errors.WithMessage(err, "while predicting club membership")
	}
	var predictions []int32
	if err := tensors.ConstFlatData(output, func(flat []int32) {
		predictions = append(predictions, flat...)
	}); err != nil {
		return nil, err
	}
	return predictions, nil
}

// Accuracy compares predictions (as returned by Predict) against the
// historical club split.
func Accuracy(predictions []int32) (float64, error) {
	if len(predictions) != NumMembers {
		return 0, errors.Errorf("got %d predictions, want %d", len(predictions), NumMembers)
	}
	clubs := parseClubs()
	correct := 0
	for member, club := range clubs {
		if predictions[member] == club {
			correct++
		}
	}
	return float64(correct) / float64(NumMembers), nil
}
