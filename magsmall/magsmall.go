// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

// Package magsmall prepares the small OGBN-MAG excerpt used by the large
// graph tutorial: a heterogeneous academic graph of papers, authors,
// institutions and fields of study.
//
// The raw excerpt keeps the original (sparse) OGB ids for authors,
// institutions and fields of study. Process reindexes those to dense ids,
// assigned in sorted order of the raw ids, and writes the result under
// `processed/`. Paper ids are already dense and are kept as they are.
package magsmall

import (
	"encoding/csv"
	"os"
	"path"
	"slices"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"k8s.io/klog/v2"

	"github.com/dglai/dgl-winter-school/graphs"
)

const (
	// DataSubdir is where the raw excerpt lives under the base directory,
	// ProcessedSubdir where Process writes its output.
	DataSubdir      = "data"
	ProcessedSubdir = "processed"

	NodeFeaturesFile      = "node-feat.csv"
	NodeLabelsFile        = "node-label.csv"
	WritesEdgesFile       = "author_write_paper_edge.csv"
	AffiliationEdgesFile  = "author_affiliated_with_institution_edge.csv"
	CitationEdgesFile     = "paper_cites_paper_edge.csv"
	FieldOfStudyEdgesFile = "paper_has_topic_field_of_study_edge.csv"
)

// Process reindexes the raw excerpt under `baseDir/data` and writes the
// dense-id version under `baseDir/processed`, replacing whatever was there.
//
// Authors are reindexed from the authorship file, institutions from the
// affiliation file and fields of study from the topic file. An affiliation
// whose author never wrote a paper is an error: the excerpt is expected to
// be self-consistent.
func Process(baseDir string) error {
	dataDir := path.Join(baseDir, DataSubdir)
	processedDir := path.Join(baseDir, ProcessedSubdir)

	writes, err := readEdgesCSV(path.Join(dataDir, WritesEdgesFile))
	if err != nil {
		return err
	}
	affiliations, err := readEdgesCSV(path.Join(dataDir, AffiliationEdgesFile))
	if err != nil {
		return err
	}
	topics, err := readEdgesCSV(path.Join(dataDir, FieldOfStudyEdgesFile))
	if err != nil {
		return err
	}

	authorIDs := denseIDs(column(writes, 0))
	institutionIDs := denseIDs(column(affiliations, 1))
	fieldIDs := denseIDs(column(topics, 1))
	klog.Infof("magsmall: %d authors, %d institutions, %d fields of study",
		len(authorIDs), len(institutionIDs), len(fieldIDs))

	if err := os.RemoveAll(processedDir); err != nil {
		return errors.Wrapf(err, "failed to clear %q", processedDir)
	}
	if err := os.MkdirAll(processedDir, 0777); err != nil {
		return errors.Wrapf(err, "failed to create %q", processedDir)
	}

	reindexed, err := reindexEdges(writes, authorIDs, nil)
	if err != nil {
		return errors.WithMessagef(err, "in %s", WritesEdgesFile)
	}
	if err := writeEdgesCSV(path.Join(processedDir, WritesEdgesFile), []string{"author", "paper"}, reindexed); err != nil {
		return err
	}

	reindexed, err = reindexEdges(affiliations, authorIDs, institutionIDs)
	if err != nil {
		return errors.WithMessagef(err, "in %s", AffiliationEdgesFile)
	}
	if err := writeEdgesCSV(path.Join(processedDir, AffiliationEdgesFile), []string{"author", "institution"}, reindexed); err != nil {
		return err
	}

	reindexed, err = reindexEdges(topics, nil, fieldIDs)
	if err != nil {
		return errors.WithMessagef(err, "in %s", FieldOfStudyEdgesFile)
	}
	if err := writeEdgesCSV(path.Join(processedDir, FieldOfStudyEdgesFile), []string{"paper", "field_of_study"}, reindexed); err != nil {
		return err
	}

	// Papers keep their ids: citations, features and labels pass through,
	// only the "id" header column is renamed to "paper".
	citations, err := readEdgesCSV(path.Join(dataDir, CitationEdgesFile))
	if err != nil {
		return err
	}
	if err := writeEdgesCSV(path.Join(processedDir, CitationEdgesFile), []string{"paper", "paper_cited"}, citations); err != nil {
		return err
	}
	for _, name := range []string{NodeFeaturesFile, NodeLabelsFile} {
		if err := renameIDColumn(path.Join(dataDir, name), path.Join(processedDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// CitationGraph loads the processed citation edges as a homogeneous graph
// over numPapers papers.
func CitationGraph(baseDir string, numPapers int) (*graphs.Graph, error) {
	citations, err := readEdgesCSV(path.Join(baseDir, ProcessedSubdir, CitationEdgesFile))
	if err != nil {
		return nil, err
	}
	g := graphs.New(numPapers)
	for _, edge := range citations {
		if edge[0] < 0 || edge[0] >= int64(numPapers) || edge[1] < 0 || edge[1] >= int64(numPapers) {
			return nil, errors.Wrapf(graphs.ErrDimensionMismatch,
				"citation (%d→%d) out of range for %d papers", edge[0], edge[1], numPapers)
		}
		g.AddEdge(int32(edge[0]), int32(edge[1]))
	}
	return g, nil
}

// denseIDs assigns dense ids to the given raw ids in sorted order, matching
// a sort-then-enumerate of the unique values.
func denseIDs(rawIDs []int64) map[int64]int64 {
	unique := make(map[int64]bool, len(rawIDs))
	for _, id := range rawIDs {
		unique[id] = true
	}
	sorted := maps.Keys(unique)
	slices.Sort(sorted)
	dense := make(map[int64]int64, len(sorted))
	for i, id := range sorted {
		dense[id] = int64(i)
	}
	return dense
}

func column(edges [][2]int64, i int) []int64 {
	values := make([]int64, len(edges))
	for j, edge := range edges {
		values[j] = edge[i]
	}
	return values
}

// reindexEdges maps each endpoint through its dense-id table; a nil table
// leaves that endpoint untouched. An id missing from its table is an error.
func reindexEdges(edges [][2]int64, sourceIDs, targetIDs map[int64]int64) ([][2]int64, error) {
	out := make([][2]int64, len(edges))
	for i, edge := range edges {
		source, target := edge[0], edge[1]
		if sourceIDs != nil {
			dense, found := sourceIDs[source]
			if !found {
				return nil, errors.Errorf("row %d: unknown source id %d", i+1, source)
			}
			source = dense
		}
		if targetIDs != nil {
			dense, found := targetIDs[target]
			if !found {
				return nil, errors.Errorf("row %d: unknown target id %d", i+1, target)
			}
			target = dense
		}
		out[i] = [2]int64{source, target}
	}
	return out, nil
}

// readEdgesCSV reads a two-column CSV of integer ids, dropping the header.
func readEdgesCSV(filePath string) ([][2]int64, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", filePath)
	}
	defer func() { _ = f.Close() }()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %q", filePath)
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("%q is empty, expected a header row", filePath)
	}
	edges := make([][2]int64, 0, len(rows)-1)
	for i, row := range rows[1:] {
		source, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%q row %d", filePath, i+2)
		}
		target, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%q row %d", filePath, i+2)
		}
		edges = append(edges, [2]int64{source, target})
	}
	return edges, nil
}

func writeEdgesCSV(filePath string, header []string, edges [][2]int64) error {
	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", filePath)
	}
	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write %q", filePath)
	}
	for _, edge := range edges {
		row := []string{strconv.FormatInt(edge[0], 10), strconv.FormatInt(edge[1], 10)}
		if err := writer.Write(row); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "failed to write %q", filePath)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write %q", filePath)
	}
	return errors.Wrapf(f.Close(), "failed to close %q", filePath)
}

// renameIDColumn copies a per-paper CSV, renaming the leading "id" header
// column to "paper".
func renameIDColumn(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open %q", srcPath)
	}
	defer func() { _ = src.Close() }()
	rows, err := csv.NewReader(src).ReadAll()
	if err != nil {
		return errors.Wrapf(err, "failed to parse %q", srcPath)
	}
	if len(rows) == 0 {
		return errors.Errorf("%q is empty, expected a header row", srcPath)
	}
	if rows[0][0] == "id" {
		rows[0][0] = "paper"
	}
	dst, err := os.Create(dstPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", dstPath)
	}
	writer := csv.NewWriter(dst)
	if err := writer.WriteAll(rows); err != nil {
		_ = dst.Close()
		return errors.Wrapf(err, "failed to write %q", dstPath)
	}
	return errors.Wrapf(dst.Close(), "failed to close %q", dstPath)
}
