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

package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/pkg/log"
	"github.com/walteh/taperoll/pkg/scaffold"
	"github.com/walteh/taperoll/pkg/status"
)

var (
	ErrCleanInPlace  = errors.Base("target directory is the source directory")
	ErrOutsideTarget = errors.Base("path is outside the target directory")
)

// 🧹 NewCleanOperation creates an operation that removes rendered files from the target directory.
// With paths, it removes exactly those (relative to the target directory) and everything below them.
func NewCleanOperation(opts Options, paths ...string) Operation {
	return &cleanOperation{
		BaseOperation: NewBaseOperation(opts),
		paths:         paths,
	}
}

type cleanOperation struct {
	BaseOperation
	paths []string
}

// 🏃 Execute runs the clean operation
func (op *cleanOperation) Execute(ctx context.Context) error {
	targets, err := op.targets(ctx)
	if err != nil {
		return err
	}

	op.StatusMgr.StartOperation(ctx, len(targets))
	defer op.StatusMgr.FinishOperation(ctx)

	for _, rel := range targets {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("cleaning: %w", err)
		}
		op.cleanFile(ctx, rel)
		op.StatusMgr.Advance(ctx)
	}

	return op.StatusMgr.Err()
}

// targets lists the slash-separated paths to remove, relative to the target directory
func (op *cleanOperation) targets(ctx context.Context) ([]string, error) {
	if len(op.paths) > 0 {
		out := make([]string, 0, len(op.paths))
		for _, p := range op.paths {
			rel := filepath.Clean(p)
			if filepath.IsAbs(rel) {
				r, err := filepath.Rel(op.targetDir(), rel)
				if err != nil {
					return nil, errors.Errorf("%w: %s", ErrOutsideTarget, p)
				}
				rel = r
			}
			if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return nil, errors.Errorf("%w: %s", ErrOutsideTarget, p)
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return out, nil
	}

	if filepath.Clean(op.sourceDir()) == filepath.Clean(op.targetDir()) {
		return nil, errors.WithStack(ErrCleanInPlace)
	}

	entries, err := op.plan(ctx)
	if err != nil {
		return nil, errors.Errorf("planning clean: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.file.Path)
	}
	return out, nil
}

// 🗑️ cleanFile removes one target and any directories it leaves empty
func (op *cleanOperation) cleanFile(ctx context.Context, rel string) {
	logger := zerolog.Ctx(ctx)
	path := filepath.Join(op.targetDir(), filepath.FromSlash(rel))

	if !exists(path) {
		logger.Debug().Str("path", path).Msg("nothing to clean")
		return
	}

	if err := scaffold.RemoveAll(path); err != nil {
		op.StatusMgr.TrackFile(ctx, rel, status.FileInfo{Status: status.StatusFailed, Error: err})
		op.console(ctx).LogFileOperation(ctx, log.FileOperation{
			Path:     rel,
			Kind:     "clean",
			Status:   status.StatusFailed.String(),
			IsFailed: true,
		})
		return
	}

	pruneEmpty(filepath.Dir(path), op.targetDir())

	op.StatusMgr.TrackFile(ctx, rel, status.FileInfo{Status: status.StatusDeleted})
	op.console(ctx).LogFileOperation(ctx, log.FileOperation{
		Path:      rel,
		Kind:      "clean",
		Status:    status.StatusDeleted.String(),
		IsRemoved: true,
	})
}

// pruneEmpty removes empty directories from dir upwards, stopping at stop
func pruneEmpty(dir, stop string) {
	stop = filepath.Clean(stop)
	for dir = filepath.Clean(dir); dir != stop && strings.HasPrefix(dir, stop); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}
