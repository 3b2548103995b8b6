// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

package drkg

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/dglai/dgl-winter-school/internal/downloader"
)

var (
	// TarURL is where the raw dataset tarball is published.
	TarURL = "https://s3.us-west-2.amazonaws.com/dgl-data/dataset/DRKG/drkg.tar.gz"

	// TarFile is the local tarball name, and UntarDir the directory the
	// tarball expands into under baseDir.
	TarFile  = "drkg.tar.gz"
	UntarDir = "drkg"

	// TriplesFile is the raw triples file inside UntarDir.
	TriplesFile = "drkg.tsv"
)

// Download fetches and expands the raw dataset under baseDir, if not there
// yet, and returns the path of the triples file. The expanded dataset takes
// ~1.4Gb of disk.
func Download(baseDir string) (string, error) {
	if err := os.MkdirAll(baseDir, 0777); err != nil && !os.IsExist(err) {
		return "", errors.Wrapf(err, "failed to create %q", baseDir)
	}
	if err := downloader.DownloadAndUntarIfMissing(TarURL, baseDir, TarFile, UntarDir, ""); err != nil {
		return "", err
	}
	return path.Join(baseDir, UntarDir, TriplesFile), nil
}

// Load downloads the dataset if missing and parses the triples file, with a
// progress bar on stderr while parsing.
func Load(baseDir string) (*KnowledgeGraph, error) {
	tsvPath, err := Download(baseDir)
	if err != nil {
		return nil, err
	}
	return ParseTriplesFile(tsvPath)
}

// ParseTriplesFile parses a triples file from disk, displaying progress over
// the file's bytes.
func ParseTriplesFile(filePath string) (*KnowledgeGraph, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open triples file %q", filePath)
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %q", filePath)
	}
	bar := progressbar.DefaultBytes(info.Size(), "parsing triples")
	defer func() { _ = bar.Close() }()
	kg, err := ParseTriples(io.TeeReader(f, bar))
	if err != nil {
		return nil, errors.WithMessagef(err, "while parsing %q", filePath)
	}
	return kg, nil
}
