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

// Package pipeline chains a file source, rewrite stages and a file sink.
//
// A Pipeline is an immutable description: every Modify or Replace returns a new value and
// nothing touches the filesystem until Write or Copy. Those validate the endpoints right
// away and then stream the file in the background, reporting through a Job.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/pkg/config"
	"github.com/walteh/taperoll/pkg/stream"
	"github.com/walteh/taperoll/pkg/text"
)

// 🎞️ Roller creates pipelines against a set of default endpoints
type Roller struct {
	defaults config.Endpoints
	opts     []text.RewriterOption
}

// 🏭 New creates a roller. Rewriter options apply to every stage it builds.
func New(defaults config.Endpoints, opts ...text.RewriterOption) *Roller {
	return &Roller{defaults: defaults, opts: opts}
}

// Defaults returns the endpoints the roller falls back to
func (r *Roller) Defaults() config.Endpoints {
	return r.defaults
}

// 📖 Read starts a pipeline from file in the default source directory.
// An empty file falls back to the default source file.
func (r *Roller) Read(file string) Pipeline {
	if file == "" {
		file = r.defaults.SourceFile
	}
	return r.From(stream.Endpoint{Directory: r.defaults.SourceDirectory, FileName: file})
}

// From starts a pipeline from an explicit endpoint
func (r *Roller) From(source stream.Endpoint) Pipeline {
	return Pipeline{roller: r, source: source}
}

// Modify starts from the default source file
func (r *Roller) Modify(pattern *regexp.Regexp, policy text.Policy) Pipeline {
	return r.Read("").Modify(pattern, policy)
}

// Replace starts from the default source file
func (r *Roller) Replace(params text.Params) Pipeline {
	return r.Read("").Replace(params)
}

// Write copies the default source file through no stages
func (r *Roller) Write(ctx context.Context, file string, opts WriteOptions) (*Job, error) {
	return r.Read("").Write(ctx, file, opts)
}

// Copy is Write without any stages
func (r *Roller) Copy(ctx context.Context, file string, opts WriteOptions) (*Job, error) {
	return r.Read("").Copy(ctx, file, opts)
}

// 🔀 Rename moves fromFile to toFile, both relative to the default target directory
func (r *Roller) Rename(fromFile, toFile string) error {
	if fromFile == "" || toFile == "" {
		return errors.WithStack(stream.ErrMissingFileName)
	}
	from := stream.Endpoint{Directory: r.defaults.TargetDirectory, FileName: fromFile}
	to := stream.Endpoint{Directory: r.defaults.TargetDirectory, FileName: toFile}
	return stream.Rename(from.Path(), to.Path())
}

type stage struct {
	name  string
	build func(io.Reader) (*text.Rewriter, error)
}

// 📼 Pipeline is an immutable chain from a source through rewrite stages
type Pipeline struct {
	roller *Roller
	source stream.Endpoint
	stages []stage
	err    error
}

// Source returns the endpoint the pipeline reads
func (p Pipeline) Source() stream.Endpoint {
	return p.source
}

// Len is the number of rewrite stages
func (p Pipeline) Len() int {
	return len(p.stages)
}

// Err returns the first error recorded while building the pipeline
func (p Pipeline) Err() error {
	return p.err
}

func (p Pipeline) with(s stage) Pipeline {
	// clipping forces append to copy, so earlier values never see later stages
	p.stages = append(slices.Clip(p.stages), s)
	return p
}

// ✏️ Modify adds a stage rewriting every match of pattern with policy.
// An invalid pattern is reported by Err, Write and Copy.
func (p Pipeline) Modify(pattern *regexp.Regexp, policy text.Policy) Pipeline {
	if p.err != nil {
		return p
	}
	if err := text.ValidatePattern(pattern); err != nil {
		p.err = errors.Errorf("modify stage %d: %w", len(p.stages), err)
		return p
	}
	opts := p.roller.opts
	return p.with(stage{
		name: pattern.String(),
		build: func(r io.Reader) (*text.Rewriter, error) {
			return text.NewRewriter(r, pattern, policy, opts...)
		},
	})
}

// ModifyString compiles expr and adds it as a Modify stage
func (p Pipeline) ModifyString(expr string, policy text.Policy) (Pipeline, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return p, errors.Errorf("compiling pattern %q: %w", expr, err)
	}
	next := p.Modify(re, policy)
	return next, next.err
}

// ModifyRule adds rule as a stage when it applies to the source file
func (p Pipeline) ModifyRule(rule text.ReplacementRule) Pipeline {
	if !rule.AppliesTo(p.source.FileName) {
		return p
	}
	re, err := rule.Compile()
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return p
	}
	return p.Modify(re, rule.Policy)
}

// 🔤 Replace adds a placeholder substitution stage
func (p Pipeline) Replace(params text.Params) Pipeline {
	if p.err != nil {
		return p
	}
	opts := p.roller.opts
	return p.with(stage{
		name: "placeholders",
		build: func(r io.Reader) (*text.Rewriter, error) {
			return text.NewSubstitutor(r, params, opts...)
		},
	})
}

// WriteOptions controls where and how a pipeline is written
type WriteOptions struct {
	// Directory overrides the default target directory
	Directory string

	// Temporary writes through a hidden sibling renamed over the target once complete
	Temporary bool
}

// 💾 Write streams the pipeline into file in the target directory.
// An empty file falls back to the default target file and then to the source file name.
// Configuration errors are returned immediately; everything else is reported by the Job.
func (p Pipeline) Write(ctx context.Context, file string, opts WriteOptions) (*Job, error) {
	return p.start(ctx, p.stages, file, opts)
}

// 📋 Copy writes the source unchanged, ignoring any stages
func (p Pipeline) Copy(ctx context.Context, file string, opts WriteOptions) (*Job, error) {
	return p.start(ctx, nil, file, opts)
}

func (p Pipeline) target(file string, opts WriteOptions) stream.Endpoint {
	dir := opts.Directory
	if dir == "" {
		dir = p.roller.defaults.TargetDirectory
	}
	if file == "" {
		file = p.roller.defaults.TargetFile
	}
	if file == "" {
		file = p.source.FileName
	}
	return stream.Endpoint{Directory: dir, FileName: file}
}

func (p Pipeline) start(ctx context.Context, stages []stage, file string, opts WriteOptions) (*Job, error) {
	if p.err != nil {
		return nil, p.err
	}
	if err := p.source.Validate(); err != nil {
		return nil, errors.Errorf("source: %w", err)
	}
	target := p.target(file, opts)
	if err := target.Validate(); err != nil {
		return nil, errors.Errorf("target: %w", err)
	}

	// writing a file onto itself must not truncate it before it is read
	if filepath.Clean(p.source.Path()) == filepath.Clean(target.Path()) {
		opts.Temporary = true
	}

	job := newJob(p.source, target)
	go func() {
		job.finish(run(ctx, p.source, target, stages, opts))
	}()
	return job, nil
}

func run(ctx context.Context, source, target stream.Endpoint, stages []stage, opts WriteOptions) (Result, error) {
	result := Result{Source: source.Path(), Target: target.Path()}
	logger := zerolog.Ctx(ctx).With().Str("source", result.Source).Str("target", result.Target).Logger()

	src, err := stream.Open(ctx, source)
	if err != nil {
		return result, err
	}
	defer src.Close()

	var r io.Reader = contextReader{ctx: ctx, r: src}
	rewriters := make([]*text.Rewriter, 0, len(stages))
	for i, st := range stages {
		rw, err := st.build(r)
		if err != nil {
			return result, errors.Errorf("building stage %d (%s): %w", i, st.name, err)
		}
		rewriters = append(rewriters, rw)
		r = rw
	}

	sink, err := stream.Create(ctx, target, stream.SinkOptions{Temporary: opts.Temporary})
	if err != nil {
		return result, err
	}

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(sink, hash), r)
	result.Bytes = n
	if err != nil {
		if aerr := sink.Abort(); aerr != nil {
			logger.Warn().Err(aerr).Msg("aborting sink")
		}
		return result, errors.Errorf("streaming %s: %w", source, err)
	}
	if err := sink.Close(); err != nil {
		return result, err
	}

	for _, rw := range rewriters {
		result.Replacements += rw.Count()
	}
	result.Checksum = hex.EncodeToString(hash.Sum(nil))

	logger.Debug().
		Int64("bytes", result.Bytes).
		Int("replacements", result.Replacements).
		Int("stages", len(stages)).
		Msg("wrote file")

	return result, nil
}

// contextReader stops reading once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
