// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

// Package karate trains a node classifier on Zachary's karate club, the
// classic semi-supervised example: 34 club members, 78 friendships, and a
// club split into the instructor's faction ("Mr. Hi") and the president's
// faction ("Officer"). Only the two faction leaders are labeled; the model
// has to propagate those two labels through the friendship graph.
//
// The dataset is embedded, there is nothing to download.
package karate

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"strconv"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/context"
	"github.com/janpfeifer/must"

	"github.com/dglai/dgl-winter-school/graphs"
)

//go:embed data/nodes.csv
var nodesCSV []byte

//go:embed data/edges.csv
var edgesCSV []byte

const (
	// NumMembers is the number of club members (nodes).
	NumMembers = 34

	// NumFriendships is the number of friendships (undirected edges). The
	// graph built by NewGraph carries both directions of each.
	NumFriendships = 78

	// NumClubs is the number of factions members end up in.
	NumClubs = 2
)

// ClubNames indexes the faction names by label value.
var ClubNames = []string{"Mr. Hi", "Officer"}

var (
	// LabeledMembers are the only members whose faction is known at training
	// time: the instructor (member 0) and the club president (member 33).
	LabeledMembers = []int32{0, 33}

	// LabeledClubs are the corresponding faction labels.
	LabeledClubs = []int32{0, 1}
)

// KarateVariablesScope is the absolute scope where the frozen dataset
// variables are stored in the context.
const KarateVariablesScope = "/karate"

// NewGraph builds the friendship graph: 34 members, and both directions of
// each of the 78 friendships, so messages flow both ways.
func NewGraph() *graphs.Graph {
	g := graphs.New(NumMembers)
	for _, friendship := range parseEdges() {
		g.AddEdge(friendship[0], friendship[1])
		g.AddEdge(friendship[1], friendship[0])
	}
	return g
}

// ClubLabels returns the faction each member ended up in, shaped
// `(Int32)[NumMembers, 1]` with values indexing ClubNames.
func ClubLabels() *tensors.Tensor {
	return tensors.FromFlatDataAndDimensions(parseClubs(), NumMembers, 1)
}

// OneHotClubLabels returns the faction of each member one-hot encoded,
// shaped `(Float32)[NumMembers, NumClubs]`.
func OneHotClubLabels() *tensors.Tensor {
	flat := make([]float32, NumMembers*NumClubs)
	for member, club := range parseClubs() {
		flat[member*NumClubs+int(club)] = 1
	}
	return tensors.FromFlatDataAndDimensions(flat, NumMembers, NumClubs)
}

// UploadKarateVariables creates frozen (non-trainable) variables with the
// friendship graph and the club labels, under KarateVariablesScope, so models
// can read them from the context.
func UploadKarateVariables(ctx *context.Context) *context.Context {
	g := NewGraph()
	ctxKarate := ctx.InAbsPath(KarateVariablesScope)
	for name, value := range map[string]*tensors.Tensor{
		"edges_source": g.EdgeSourcesTensor(),
		"edges_target": g.EdgeTargetsTensor(),
		"edge_weights": g.OnesWeightsTensor(),
		"clubs":        ClubLabels(),
		"clubs_onehot": OneHotClubLabels(),
	} {
		v := ctxKarate.VariableWithValue(name, value)
		v.Trainable = false
	}
	return ctx
}

// parseEdges reads the embedded edges table, one friendship per row.
func parseEdges() [][2]int32 {
	rows := readEmbeddedCSV(edgesCSV)
	friendships := make([][2]int32, 0, len(rows))
	for _, row := range rows {
		friendships = append(friendships, [2]int32{atoi32(row[0]), atoi32(row[1])})
	}
	if len(friendships) != NumFriendships {
		exceptions.Panicf("embedded edges table has %d friendships, want %d", len(friendships), NumFriendships)
	}
	return friendships
}

// parseClubs reads the embedded nodes table into a label per member.
func parseClubs() []int32 {
	rows := readEmbeddedCSV(nodesCSV)
	if len(rows) != NumMembers {
		exceptions.Panicf("embedded nodes table has %d members, want %d", len(rows), NumMembers)
	}
	labels := make([]int32, NumMembers)
	for _, row := range rows {
		member := atoi32(row[0])
		switch row[1] {
		case ClubNames[0]:
			labels[member] = 0
		case ClubNames[1]:
			labels[member] = 1
		default:
			exceptions.Panicf("embedded nodes table has unknown club %q for member %d", row[1], member)
		}
	}
	return labels
}

// readEmbeddedCSV parses an embedded table, dropping the header row. The
// tables are compiled in, so a parse failure is a build defect and panics.
func readEmbeddedCSV(data []byte) [][]string {
	rows := must.M1(csv.NewReader(bytes.NewReader(data)).ReadAll())
	return rows[1:]
}

func atoi32(s string) int32 {
	return int32(must.M1(strconv.Atoi(s)))
}
