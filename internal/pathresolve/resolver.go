// Package pathresolve flattens the configured watch list into the concrete
// set of files a backup cycle operates on.
package pathresolve

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type entryKind int

const (
	kindMissing entryKind = iota
	kindFile
	kindDirectory
)

// Resolver canonicalizes, deduplicates, and expands watch-list paths.
type Resolver struct {
	logger *slog.Logger
}

// New returns a resolver that reports dropped paths through logger.
func New(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger.With("component", "resolver")}
}

// Resolve turns the configured source paths into a sorted, deduplicated list
// of files. Duplicates collapse, missing paths are silently dropped, any path
// covered by a listed ancestor directory is dropped, and surviving
// directories expand recursively into the files they contain.
func (r *Resolver) Resolve(items []string) ([]string, error) {
	kinds := make(map[string]entryKind, len(items))
	for _, item := range items {
		canonical, err := Canonical(item)
		if err != nil {
			r.logger.Warn("dropping unresolvable path", "path", item, "error", err)
			continue
		}
		if _, seen := kinds[canonical]; seen {
			continue
		}
		kind := classify(canonical)
		if kind == kindMissing {
			r.logger.Debug("dropping missing path", "path", canonical)
			continue
		}
		kinds[canonical] = kind
	}

	// The ancestor always wins over any descendant, regardless of order.
	surviving := make(map[string]entryKind, len(kinds))
	for path, kind := range kinds {
		if ancestorOf(path, kinds) {
			r.logger.Debug("dropping path covered by ancestor", "path", path)
			continue
		}
		surviving[path] = kind
	}

	files := make(map[string]struct{})
	for path, kind := range surviving {
		switch kind {
		case kindFile:
			files[path] = struct{}{}
		case kindDirectory:
			if err := collectFiles(path, files, r.logger); err != nil {
				return nil, err
			}
		}
	}

	out := make([]string, 0, len(files))
	for path := range files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}

// Canonical resolves path to an absolute path with symlinks evaluated. Paths
// that do not exist resolve to their cleaned absolute form.
func Canonical(path string) (string, error) {
	absolute, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(absolute)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return absolute, nil
		}
		return "", fmt.Errorf("resolve symlinks for %q: %w", absolute, err)
	}
	return resolved, nil
}

func classify(path string) entryKind {
	info, err := os.Stat(path)
	if err != nil {
		return kindMissing
	}
	if info.IsDir() {
		return kindDirectory
	}
	if info.Mode().IsRegular() {
		return kindFile
	}
	return kindMissing
}

// ancestorOf reports whether any other path in set is a strict filesystem
// ancestor of path.
func ancestorOf(path string, set map[string]entryKind) bool {
	for other := range set {
		if other == path {
			continue
		}
		if IsAncestor(other, path) {
			return true
		}
	}
	return false
}

// IsAncestor reports whether ancestor is a strict path-component ancestor of
// path. The comparison is component-based, so /var/log is not an ancestor of
// /var/log2.
func IsAncestor(ancestor, path string) bool {
	if ancestor == path {
		return false
	}
	rel, err := filepath.Rel(ancestor, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func collectFiles(dir string, files map[string]struct{}, logger *slog.Logger) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files[path] = struct{}{}
		}
		return nil
	})
}
