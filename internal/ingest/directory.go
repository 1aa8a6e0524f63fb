package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type FileResult struct {
	Path string
	Err  string
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// FindDocuments walks root and returns the processable documents in lexical
// order, skipping hidden entries if requested. Unreadable entries are reported
// in the failures and the walk continues.
func FindDocuments(ctx context.Context, root string, skipHidden bool) ([]string, []FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}

	var paths []string
	var failures []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			failures = append(failures, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, failures, stats, fmt.Errorf("walk: %w", err)
	}
	sort.Strings(paths)
	return paths, failures, stats, nil
}
