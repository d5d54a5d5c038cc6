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

package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/cmd/taperoll/opts"
	"github.com/walteh/taperoll/pkg/operation"
	"github.com/walteh/taperoll/pkg/remote"
	"github.com/walteh/taperoll/pkg/remote/github"
	"github.com/walteh/taperoll/pkg/scaffold"
)

// NewNewCmd creates the new command
func NewNewCmd(o *opts.RootOpts) *cobra.Command {
	var (
		ref         string
		keepGit     bool
		skipInstall bool
		noRender    bool
		install     []string
		execGit     bool
	)

	cmd := &cobra.Command{
		Use:   "new <template> [directory]",
		Short: "Create a project from a template repository",
		Long: `New clones a template (owner/repo, host/owner/repo@ref, a git URL or a local path),
removes its git metadata and installs its dependencies.
When the template ships a taperoll config, its files are then rendered in place
with the template parameters overridden by --set.

Without arguments, the template block of the config is used.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "new").Logger().WithContext(cmd.Context())

			cfg, err := o.LoadConfig(ctx)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			b := operation.BootstrapOptions{
				Ref:         ref,
				KeepGit:     keepGit,
				SkipInstall: skipInstall,
				Install:     install,
				Render:      !noRender,
				Resolver:    remote.NewResolver(github.New(ctx)),
			}
			if t := cfg.Template; t != nil {
				b.Reference, b.Directory = t.Repo, t.Destination
				b.SkipInstall = b.SkipInstall || t.SkipInstall
				if b.Ref == "" {
					b.Ref = t.Ref
				}
				if len(b.Install) == 0 {
					b.Install = t.Install
				}
			}
			if len(args) > 0 {
				b.Reference = args[0]
			}
			if len(args) > 1 {
				b.Directory = args[1]
			}
			if b.Reference == "" {
				return errors.New("a template is required, as an argument or in the template block of the config")
			}

			if cwd, err := os.Getwd(); err == nil {
				b.Cwd = cwd
			}
			if execGit {
				b.Cloner = scaffold.ExecCloner{Output: cmd.ErrOrStderr()}
			}

			console := o.Console(ctx)
			console.Header("creating " + b.Reference)

			op := operation.NewBootstrapOperation(operation.Options{
				Config:  cfg,
				Console: console,
			}, b)
			if err := operation.NewRunner(zerolog.Ctx(ctx), o.Async).Run(ctx, op); err != nil {
				console.LogNewline()
				console.Errorf("new failed: %v", err)
				return err
			}

			console.LogNewline()
			console.Successf("created %s", op.Report().Directory)
			return nil
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "branch or tag to clone")
	cmd.Flags().BoolVar(&keepGit, "keep-git", false, "keep the cloned .git directory")
	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "do not install dependencies")
	cmd.Flags().BoolVar(&noRender, "no-render", false, "do not render the template config")
	cmd.Flags().StringSliceVar(&install, "install", nil, "install command, e.g. --install pnpm,install")
	cmd.Flags().BoolVar(&execGit, "exec-git", false, "clone with the git binary instead of in process")

	return cmd
}
