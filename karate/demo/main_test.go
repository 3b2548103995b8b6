// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"testing"

	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
	"k8s.io/klog/v2"

	"github.com/dglai/dgl-winter-school/karate"
)

var flagSettings *string

func init() {
	ctx := karate.CreateDefaultContext()
	flagSettings = commandline.CreateContextSettingsFlag(ctx, "")
	klog.InitFlags(nil)
	if _, found := os.LookupEnv(backends.ConfigEnvVar); !found {
		// For testing, we use the CPU backend (and avoid GPU if not explicitly requested).
		must.M(os.Setenv(backends.ConfigEnvVar, "xla:cpu"))
	}
}

func TestDemo(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testing in short mode")
	}

	ctx := karate.CreateDefaultContext()
	ctx.SetParam("train_steps", 10)
	must.M1(commandline.ParseContextSettings(ctx, *flagSettings))

	backend := backends.MustNew()
	require.NotPanics(t, func() {
		must.M(karate.Train(ctx, backend, 0))
		predictions := must.M1(karate.Predict(ctx, backend))
		require.Len(t, predictions, karate.NumMembers)
	})
}
