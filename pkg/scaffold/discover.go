// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scaffold prepares a project directory from a template repository.
//
// It finds the files a render should touch, clones templates, strips their git
// metadata and installs dependencies. Clone and install run as a two stage Task
// whose typed outcomes are reported to the caller instead of failing the process.
package scaffold

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📄 SourceFile is a file found under a discovery root
type SourceFile struct {
	Root string // discovery root
	Path string // slash separated, relative to Root
	Size int64
	Mode fs.FileMode
}

// Abs returns the absolute path of the file
func (f SourceFile) Abs() string {
	return filepath.Join(f.Root, filepath.FromSlash(f.Path))
}

// Dir returns the directory of the file relative to Root
func (f SourceFile) Dir() string {
	return filepath.Dir(filepath.FromSlash(f.Path))
}

// Name returns the base name of the file
func (f SourceFile) Name() string {
	return filepath.Base(f.Path)
}

// DiscoverOptions filters discovered files
type DiscoverOptions struct {
	// Ignore holds globs matched against the relative path; a matching directory prunes everything below it
	Ignore []string
}

// 🔍 Discover returns the regular files under root matching pattern, sorted by path
func Discover(ctx context.Context, root, pattern string, opts DiscoverOptions) ([]SourceFile, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid glob %q", pattern)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("resolving root %s: %w", root, err)
	}

	ignored := func(p string) bool {
		for _, ig := range opts.Ignore {
			if ok, _ := doublestar.Match(ig, p); ok {
				return true
			}
		}
		return false
	}

	var files []SourceFile
	err = doublestar.GlobWalk(os.DirFS(abs), pattern, func(p string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || ignored(p) || ignoredParent(p, ignored) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return errors.Errorf("stat %s: %w", p, err)
		}
		files = append(files, SourceFile{Root: abs, Path: p, Size: info.Size(), Mode: info.Mode()})
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("discovering %s in %s: %w", pattern, abs, err)
	}

	slices.SortFunc(files, func(a, b SourceFile) int {
		if a.Path < b.Path {
			return -1
		}
		if a.Path > b.Path {
			return 1
		}
		return 0
	})

	zerolog.Ctx(ctx).Debug().Str("root", abs).Str("pattern", pattern).Int("files", len(files)).Msg("discovered files")
	return files, nil
}

func ignoredParent(p string, ignored func(string) bool) bool {
	for dir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(p))); dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(filepath.FromSlash(dir))) {
		if ignored(dir) {
			return true
		}
	}
	return false
}

// 🗑️ RemoveAll deletes path and everything below it. A missing path is not an error.
func RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// 🗑️ Remove deletes a single file or empty directory
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return errors.Errorf("removing %s: %w", path, err)
	}
	return nil
}
