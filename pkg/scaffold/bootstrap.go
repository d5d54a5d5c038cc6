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

package scaffold

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BootstrapOptions configures a Bootstrap task
type BootstrapOptions struct {
	URL string
	Ref string

	// Directory to clone into; TargetName(URL) under Cwd when empty
	Directory string
	Cwd       string

	// KeepGit leaves the cloned .git directory in place
	KeepGit bool

	// SkipInstall marks the install stage as skipped
	SkipInstall bool

	Cloner    Cloner    // GitCloner when nil
	Installer Installer // ExecInstaller with DefaultInstallCommand when nil

	// OnComplete is called with the report once both stages have ended
	OnComplete func(Report)
}

func (o BootstrapOptions) directory() string {
	dir := o.Directory
	if dir == "" {
		dir = TargetName(o.URL)
	}
	if !filepath.IsAbs(dir) && o.Cwd != "" {
		dir = filepath.Join(o.Cwd, dir)
	}
	return dir
}

// 📋 Report holds the outcome of both stages of a bootstrap
type Report struct {
	Directory string
	Clone     Outcome
	Install   Outcome
}

// Err returns the error of the first stage that did not succeed or skip
func (r Report) Err() error {
	for _, o := range []Outcome{r.Clone, r.Install} {
		if o.Kind != Success && o.Kind != Skipped {
			if o.Err != nil {
				return o.Err
			}
			return errors.Errorf("stage ended with %s", o)
		}
	}
	return nil
}

// ⏳ Task is a bootstrap running in the background
type Task struct {
	done   chan struct{}
	report Report
}

// Done is closed once both stages have ended
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until both stages have ended
func (t *Task) Wait() Report {
	<-t.done
	return t.report
}

// 🚀 Bootstrap clones the template, strips its git metadata and installs dependencies.
// It returns immediately; failures are reported through the Report, never raised.
func Bootstrap(ctx context.Context, opts BootstrapOptions) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.report = bootstrap(ctx, opts)
		if opts.OnComplete != nil {
			opts.OnComplete(t.report)
		}
	}()
	return t
}

func bootstrap(ctx context.Context, opts BootstrapOptions) Report {
	dir := opts.directory()
	logger := zerolog.Ctx(ctx).With().Str("url", opts.URL).Str("directory", dir).Logger()
	report := Report{Directory: dir}

	cloner := opts.Cloner
	if cloner == nil {
		cloner = GitCloner{}
	}
	installer := opts.Installer
	if installer == nil {
		installer = ExecInstaller{}
	}

	if opts.URL == "" {
		report.Clone = failed(errors.New("template url is required"))
		return report
	}

	logger.Info().Str("ref", opts.Ref).Msg("cloning template")
	report.Clone = cloner.Clone(ctx, CloneRequest{URL: opts.URL, Ref: opts.Ref, Directory: dir})
	if report.Clone.OK() && !opts.KeepGit {
		if err := RemoveAll(filepath.Join(dir, ".git")); err != nil {
			report.Clone = failed(errors.Errorf("stripping git metadata: %w", err))
		}
	}
	if !report.Clone.OK() {
		logger.Error().Err(report.Clone.Err).Str("outcome", report.Clone.String()).Msg("clone failed")
		return report
	}

	if opts.SkipInstall {
		logger.Debug().Msg("skipping install")
		return report
	}

	logger.Info().Msg("installing dependencies")
	report.Install = installer.Install(ctx, dir)
	if !report.Install.OK() {
		logger.Error().Err(report.Install.Err).Str("outcome", report.Install.String()).Msg("install failed")
	}
	return report
}
