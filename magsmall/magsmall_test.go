// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package magsmall

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFixture lays out a tiny raw excerpt: 3 papers, 2 authors (raw ids 900
// and 100), 1 institution (raw id 7000) and 2 fields of study (raw ids 42
// and 17).
func writeFixture(t *testing.T) string {
	baseDir := t.TempDir()
	dataDir := path.Join(baseDir, DataSubdir)
	require.NoError(t, os.MkdirAll(dataDir, 0777))
	files := map[string]string{
		NodeFeaturesFile:      "id,feat_0,feat_1\n0,0.1,0.2\n1,0.3,0.4\n2,0.5,0.6\n",
		NodeLabelsFile:        "id,label\n0,4\n1,2\n2,4\n",
		WritesEdgesFile:       "author,author.paper\n900,0\n900,1\n100,2\n",
		AffiliationEdgesFile:  "author,author.institution\n900,7000\n100,7000\n",
		CitationEdgesFile:     "paper,paper_cited\n0,1\n2,0\n",
		FieldOfStudyEdgesFile: "paper,field_of_study\n0,42\n1,17\n2,42\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(path.Join(dataDir, name), []byte(content), 0644))
	}
	return baseDir
}

func TestProcess(t *testing.T) {
	baseDir := writeFixture(t)
	require.NoError(t, Process(baseDir))
	processedDir := path.Join(baseDir, ProcessedSubdir)

	read := func(name string) string {
		content, err := os.ReadFile(path.Join(processedDir, name))
		require.NoError(t, err)
		return string(content)
	}

	// Authors reindexed in sorted raw-id order: 100→0, 900→1.
	assert.Equal(t, "author,paper\n1,0\n1,1\n0,2\n", read(WritesEdgesFile))
	assert.Equal(t, "author,institution\n1,0\n0,0\n", read(AffiliationEdgesFile))
	// Fields of study: 17→0, 42→1. Papers keep their ids.
	assert.Equal(t, "paper,field_of_study\n0,1\n1,0\n2,1\n", read(FieldOfStudyEdgesFile))
	assert.Equal(t, "paper,paper_cited\n0,1\n2,0\n", read(CitationEdgesFile))

	// Features and labels pass through with the "id" column renamed.
	assert.Equal(t, "paper,feat_0,feat_1\n0,0.1,0.2\n1,0.3,0.4\n2,0.5,0.6\n", read(NodeFeaturesFile))
	assert.Equal(t, "paper,label\n0,4\n1,2\n2,4\n", read(NodeLabelsFile))
}

func TestProcessIsIdempotent(t *testing.T) {
	baseDir := writeFixture(t)
	require.NoError(t, Process(baseDir))
	first, err := os.ReadFile(path.Join(baseDir, ProcessedSubdir, WritesEdgesFile))
	require.NoError(t, err)

	require.NoError(t, Process(baseDir))
	second, err := os.ReadFile(path.Join(baseDir, ProcessedSubdir, WritesEdgesFile))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcessUnknownAuthor(t *testing.T) {
	baseDir := writeFixture(t)
	dataDir := path.Join(baseDir, DataSubdir)
	// An affiliation for an author that never wrote a paper.
	require.NoError(t, os.WriteFile(path.Join(dataDir, AffiliationEdgesFile),
		[]byte("author,author.institution\n900,7000\n555,7000\n"), 0644))
	err := Process(baseDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "555")
}

func TestCitationGraph(t *testing.T) {
	baseDir := writeFixture(t)
	require.NoError(t, Process(baseDir))

	g, err := CitationGraph(baseDir, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())

	// Too few papers for the edge list.
	_, err = CitationGraph(baseDir, 2)
	require.Error(t, err)
}
