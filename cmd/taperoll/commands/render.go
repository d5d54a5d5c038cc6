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
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/cmd/taperoll/opts"
	"github.com/walteh/taperoll/pkg/operation"
	"github.com/walteh/taperoll/pkg/status"
	"github.com/walteh/taperoll/pkg/stream"
)

// NewRenderCmd creates the render command
func NewRenderCmd(o *opts.RootOpts) *cobra.Command {
	var (
		source string
		target string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the project files through their modifications and parameters",
		Long: `Render streams every file selected by the config through its modifications
and {{ placeholder }} substitution into the target directory.
Files that cannot be rendered are reported and do not stop the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "render").Logger().WithContext(cmd.Context())

			cfg, err := o.LoadConfig(ctx)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			if source != "" {
				cfg.Endpoints.SourceDirectory = source
			}
			if target != "" {
				cfg.Endpoints.TargetDirectory = target
			}

			console := o.Console(ctx)
			console.Header("rendering templates")

			mgr := status.New(stream.Endpoint{Directory: cfg.Endpoints.TargetDirectory}.Path(), zerolog.Ctx(ctx))
			op := operation.NewRenderOperation(operation.Options{
				Config:    cfg,
				StatusMgr: mgr,
				Console:   console,
			})

			runErr := operation.NewRunner(zerolog.Ctx(ctx), o.Async).Run(ctx, op)
			return finish(cmd.OutOrStdout(), console, "render", mgr.Summary(), runErr)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "override the source directory")
	cmd.Flags().StringVar(&target, "target", "", "override the target directory")

	return cmd
}
