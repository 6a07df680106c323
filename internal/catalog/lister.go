// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"context"
	"io/fs"
	"os"
)

// Lister returns the file names found in a directory. Order is whatever the
// underlying store yields.
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func(ctx context.Context, dir string) ([]string, error)

// List calls f.
func (f ListerFunc) List(ctx context.Context, dir string) ([]string, error) {
	return f(ctx, dir)
}

// OSLister lists a directory on the local filesystem. Subdirectories are skipped.
type OSLister struct{}

// List implements Lister.
func (OSLister) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	return fileNames(entries), nil
}

// FSLister lists a directory inside an fs.FS, e.g. an embedded or in-memory tree.
type FSLister struct {
	FS fs.FS
}

// List implements Lister.
func (l FSLister) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(l.FS, dir)
	if err != nil {
		return nil, err
	}
	return fileNames(entries), nil
}

func fileNames(entries []fs.DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names
}
