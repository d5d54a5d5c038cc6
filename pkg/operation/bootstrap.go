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
	"maps"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/pkg/config"
	"github.com/walteh/taperoll/pkg/log"
	"github.com/walteh/taperoll/pkg/remote"
	"github.com/walteh/taperoll/pkg/scaffold"
)

// 📦 BootstrapOptions describes the template a new project starts from
type BootstrapOptions struct {
	// Reference is owner/repo, host/owner/repo[@ref], a clone URL or a local path
	Reference string
	Ref       string

	// Directory to create; derived from the clone URL under Cwd when empty
	Directory string
	Cwd       string

	KeepGit     bool
	SkipInstall bool

	// Install overrides the install command
	Install []string

	// Render runs a render over the new project when it ships a taperoll config
	Render bool

	Resolver  *remote.Resolver
	Cloner    scaffold.Cloner
	Installer scaffold.Installer
}

// 🚀 NewBootstrapOperation creates an operation that resolves, clones, strips and installs a template.
// Parameters of opts.Config override the template's own when Render is set.
func NewBootstrapOperation(opts Options, b BootstrapOptions) *BootstrapOperation {
	return &BootstrapOperation{
		BaseOperation: NewBaseOperation(opts),
		opts:          b,
	}
}

// BootstrapOperation is the operation behind `taperoll new`
type BootstrapOperation struct {
	BaseOperation
	opts   BootstrapOptions
	report scaffold.Report
}

// Report is the outcome of the last Execute
func (op *BootstrapOperation) Report() scaffold.Report {
	return op.report
}

// 🏃 Execute runs the bootstrap and, when asked, the render that follows it
func (op *BootstrapOperation) Execute(ctx context.Context) error {
	console := op.console(ctx)

	resolver := op.opts.Resolver
	if resolver == nil {
		resolver = remote.NewResolver()
	}

	tmpl, err := resolver.Resolve(ctx, op.opts.Reference, op.opts.Ref)
	if err != nil {
		return errors.Errorf("resolving template: %w", err)
	}

	dir := op.opts.Directory
	if dir == "" {
		dir = scaffold.TargetName(tmpl.CloneURL)
	}

	installer := op.opts.Installer
	if installer == nil && len(op.opts.Install) > 0 {
		installer = scaffold.ExecInstaller{Command: op.opts.Install}
	}

	console.StartTemplate(ctx, log.TemplateOperation{
		Repo:        tmpl.CloneURL,
		Ref:         tmpl.Ref,
		Destination: dir,
	})
	defer console.EndTemplate(ctx)

	task := scaffold.Bootstrap(ctx, scaffold.BootstrapOptions{
		URL:         tmpl.CloneURL,
		Ref:         tmpl.Ref,
		Directory:   dir,
		Cwd:         op.opts.Cwd,
		KeepGit:     op.opts.KeepGit,
		SkipInstall: op.opts.SkipInstall,
		Cloner:      op.opts.Cloner,
		Installer:   installer,
	})
	op.report = task.Wait()

	console.LogStage(ctx, "clone", op.report.Clone.String(), op.report.Clone.OK())
	console.LogStage(ctx, "install", op.report.Install.String(), op.report.Install.Kind != scaffold.ExitNonZero && op.report.Install.Kind != scaffold.SpawnError)

	if err := op.report.Err(); err != nil {
		return errors.Errorf("bootstrapping %s: %w", tmpl, err)
	}

	if !op.opts.Render {
		return nil
	}

	path, err := config.Find(op.report.Directory)
	if errors.Is(err, config.ErrNotFound) {
		console.Infof("%s has no taperoll config, skipping render", op.report.Directory)
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return errors.Errorf("loading template config: %w", err)
	}
	if cfg.Parameters == nil {
		cfg.Parameters = map[string]any{}
	}
	maps.Copy(cfg.Parameters, op.Config.Parameters)

	render := NewRenderOperation(Options{Config: cfg, Console: op.Console})
	if err := render.Execute(ctx); err != nil {
		return errors.Errorf("rendering template: %w", err)
	}
	return nil
}
