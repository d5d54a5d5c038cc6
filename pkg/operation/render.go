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
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/taperoll/pkg/config"
	"github.com/walteh/taperoll/pkg/log"
	"github.com/walteh/taperoll/pkg/pipeline"
	"github.com/walteh/taperoll/pkg/scaffold"
	"github.com/walteh/taperoll/pkg/status"
	"github.com/walteh/taperoll/pkg/stream"
)

// files that are never rendered
var defaultIgnore = append([]string{
	"**/.git",
	"**/node_modules",
	"**/" + stream.TempPrefix + "*",
}, config.FileNames...)

// 📄 entry is one source file and the file set that selected it
type entry struct {
	file scaffold.SourceFile
	set  config.FileSet
}

// 🔍 plan discovers the files every file set selects.
// A file matched by more than one set belongs to the first.
func (op BaseOperation) plan(ctx context.Context) ([]entry, error) {
	src, tgt := op.sourceDir(), op.targetDir()

	ignore := slices.Clone(defaultIgnore)
	if rel, err := filepath.Rel(src, tgt); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		ignore = append(ignore, filepath.ToSlash(rel))
	}

	seen := make(map[string]bool)
	var entries []entry
	for i, set := range op.Config.Files {
		files, err := scaffold.Discover(ctx, src, set.Include, scaffold.DiscoverOptions{
			Ignore: append(slices.Clone(ignore), set.Ignore...),
		})
		if err != nil {
			return nil, errors.Errorf("file set %d: %w", i, err)
		}
		for _, f := range files {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			entries = append(entries, entry{file: f, set: set})
		}
	}
	return entries, nil
}

// 🎨 NewRenderOperation creates an operation that streams every selected file
// through its modifications and parameter substitution into the target directory
func NewRenderOperation(opts Options) Operation {
	return &renderOperation{
		BaseOperation: NewBaseOperation(opts),
	}
}

type renderOperation struct {
	BaseOperation
}

// 🏃 Execute renders all files with at most Config.Concurrency in flight.
// A failing file does not stop the others; all failures are returned together.
func (op *renderOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	entries, err := op.plan(ctx)
	if err != nil {
		return errors.Errorf("planning render: %w", err)
	}

	logger.Debug().
		Str("source", op.sourceDir()).
		Str("target", op.targetDir()).
		Int("files", len(entries)).
		Msg("rendering")

	op.StatusMgr.StartOperation(ctx, len(entries))
	defer op.StatusMgr.FinishOperation(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(op.Config.Concurrency, 1))
	for _, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			op.renderFile(gctx, e)
			op.StatusMgr.Advance(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Errorf("rendering: %w", err)
	}

	return op.StatusMgr.Err()
}

func (op *renderOperation) renderFile(ctx context.Context, e entry) {
	rel := e.file.Path
	target := filepath.Join(op.targetDir(), filepath.FromSlash(rel))

	before, err := op.StatusMgr.Snapshot(ctx, target)
	if err != nil {
		op.fail(ctx, rel, err)
		return
	}

	p := op.Roller.From(stream.Endpoint{Directory: e.file.Root, FileName: rel})
	for _, rule := range e.set.Rules() {
		p = p.ModifyRule(rule)
	}
	p = p.Replace(op.Config.Params())

	job, err := p.Write(ctx, filepath.FromSlash(rel), pipeline.WriteOptions{
		Directory: op.targetDir(),
		Temporary: e.set.Temporary,
	})
	if err != nil {
		op.fail(ctx, rel, err)
		return
	}

	res, err := job.Wait()
	if err != nil {
		op.fail(ctx, rel, err)
		return
	}

	st := status.Classify(before, res.Checksum)
	op.StatusMgr.TrackFile(ctx, rel, status.FileInfo{
		Status:       st,
		Size:         res.Bytes,
		Checksum:     res.Checksum,
		Replacements: res.Replacements,
	})
	op.console(ctx).LogFileOperation(ctx, log.FileOperation{
		Path:         rel,
		Kind:         "render",
		Status:       st.String(),
		IsNew:        st == status.StatusNew,
		IsModified:   st == status.StatusModified,
		Replacements: res.Replacements,
	})
}

func (op *renderOperation) fail(ctx context.Context, rel string, err error) {
	op.StatusMgr.TrackFile(ctx, rel, status.FileInfo{Status: status.StatusFailed, Error: err})
	op.console(ctx).LogFileOperation(ctx, log.FileOperation{
		Path:     rel,
		Kind:     "render",
		Status:   status.StatusFailed.String(),
		IsFailed: true,
	})
}
