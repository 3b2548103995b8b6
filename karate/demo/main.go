// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

// Demo of semi-supervised node classification on Zachary's karate club:
// trains from the two faction leaders only and prints the predicted faction
// of every member.
package main

import (
	"flag"
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/ui/commandline"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	_ "github.com/gomlx/gomlx/backends/default"

	"github.com/dglai/dgl-winter-school/karate"
)

var flagVerbosity = flag.Int("verbosity", 1, "Level of verbosity, the higher the more verbose.")

func main() {
	ctx := karate.CreateDefaultContext()
	settings := commandline.CreateContextSettingsFlag(ctx, "")
	klog.InitFlags(nil)
	flag.Parse()
	must.M1(commandline.ParseContextSettings(ctx, *settings))

	backend := backends.MustNew()
	if *flagVerbosity >= 1 {
		fmt.Printf("Backend %q:\t%s\n", backend.Name(), backend.Description())
	}

	err := exceptions.TryCatch[error](func() {
		must.M(karate.Train(ctx, backend, *flagVerbosity))
		predictions := must.M1(karate.Predict(ctx, backend))
		accuracy := must.M1(karate.Accuracy(predictions))
		for member, club := range predictions {
			fmt.Printf("member %2d: %s\n", member, karate.ClubNames[club])
		}
		fmt.Printf("accuracy against the historical split: %.1f%%\n", 100*accuracy)
	})
	if err != nil {
		klog.Fatalf("Failed with error: %+v", err)
	}
}
