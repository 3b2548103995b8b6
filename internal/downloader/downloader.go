// Copyright 2026 The DGL Winter School Authors. SPDX-License-Identifier: Apache-2.0

// Package downloader fetches and expands the raw dataset archives the
// tutorial packages consume.
package downloader

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// Download fetches url into filePath, creating the directory if needed, with
// a progress bar over the response body.
func Download(url, filePath string) error {
	filePath = fsutil.MustReplaceTildeInDir(filePath)
	if err := os.MkdirAll(path.Dir(filePath), 0777); err != nil && !os.IsExist(err) {
		return errors.Wrapf(err, "failed to create directory for %q", filePath)
	}
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", filePath)
	}
	resp, err := http.Get(url)
	if err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "failed to download %q", url)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		_ = file.Close()
		return errors.Errorf("failed to download %q: %s", url, resp.Status)
	}
	bar := progressbar.DefaultBytes(resp.ContentLength, path.Base(filePath))
	_, err = io.Copy(io.MultiWriter(file, bar), resp.Body)
	_ = bar.Close()
	fmt.Println()
	if err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "while downloading %q to %q", url, filePath)
	}
	return errors.Wrapf(file.Close(), "failed to close %q", filePath)
}

// DownloadIfMissing downloads url into filePath if it is not there yet. If
// checkHash is not empty, the file's SHA256 checksum is validated.
func DownloadIfMissing(url, filePath, checkHash string) error {
	filePath = fsutil.MustReplaceTildeInDir(filePath)
	if !fsutil.MustFileExists(filePath) {
		fmt.Printf("Downloading %s ...\n", url)
		if err := Download(url, filePath); err != nil {
			return err
		}
	}
	if checkHash == "" {
		return nil
	}
	return fsutil.ValidateChecksum(filePath, checkHash)
}

// Untar expands tarFile inside baseDir, picking decompression from the
// suffix: .gz/.tgz for gzip, .bz2 for bzip2.
func Untar(baseDir, tarFile string) error {
	baseDir = fsutil.MustReplaceTildeInDir(baseDir)
	compressionFlag := ""
	if strings.HasSuffix(tarFile, ".gz") || strings.HasSuffix(tarFile, ".tgz") {
		compressionFlag = "z"
	} else if strings.HasSuffix(tarFile, ".bz2") {
		compressionFlag = "j"
	}
	cmd := exec.Command("tar", fmt.Sprintf("x%sf", compressionFlag), tarFile)
	cmd.Dir = baseDir
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "failed to run %q", cmd)
	}
	return nil
}

// DownloadAndUntarIfMissing downloads tarFile from url and expands it under
// baseDir, skipping each step whose output already exists. targetUntarDir is
// the directory the tarball is expected to expand into; relative paths are
// taken under baseDir.
func DownloadAndUntarIfMissing(url, baseDir, tarFile, targetUntarDir, checkHash string) error {
	baseDir = fsutil.MustReplaceTildeInDir(baseDir)
	if !path.IsAbs(tarFile) {
		tarFile = path.Join(baseDir, tarFile)
	}
	if !path.IsAbs(targetUntarDir) {
		targetUntarDir = path.Join(baseDir, targetUntarDir)
	}
	if fsutil.MustFileExists(targetUntarDir) {
		return nil
	}
	if err := DownloadIfMissing(url, tarFile, checkHash); err != nil {
		return err
	}
	if err := Untar(baseDir, tarFile); err != nil {
		return err
	}
	if !fsutil.MustFileExists(targetUntarDir) {
		return errors.Errorf("expanded %q but did not get directory %q", tarFile, targetUntarDir)
	}
	return nil
}
