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

// NewCleanCmd creates the clean command
func NewCleanCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [path...]",
		Short: "Remove rendered files from the target directory",
		Long: `Clean removes every file render would write to the target directory.
With paths, it removes exactly those (relative to the target directory).
It refuses to run when the target directory is the source directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "clean").Logger().WithContext(cmd.Context())

			cfg, err := o.LoadConfig(ctx)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			console := o.Console(ctx)
			console.Header("cleaning rendered files")

			mgr := status.New(stream.Endpoint{Directory: cfg.Endpoints.TargetDirectory}.Path(), zerolog.Ctx(ctx))
			op := operation.NewCleanOperation(operation.Options{
				Config:    cfg,
				StatusMgr: mgr,
				Console:   console,
			}, args...)

			runErr := operation.NewRunner(zerolog.Ctx(ctx), o.Async).Run(ctx, op)
			return finish(cmd.OutOrStdout(), console, "clean", mgr.Summary(), runErr)
		},
	}

	return cmd
}
