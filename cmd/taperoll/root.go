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

package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/taperoll/cmd/taperoll/commands"
	"github.com/walteh/taperoll/cmd/taperoll/opts"
)

// NewRootCmd creates the taperoll command tree
func NewRootCmd() *cobra.Command {
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "taperoll",
		Short: "Scaffold projects from template repositories",
		Long: `taperoll clones template repositories, strips their git metadata,
installs their dependencies and rewrites file contents with {{ placeholder }}
substitution through chained stream pipelines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			o.Out = cmd.OutOrStdout()
			logger := setupLogging(cmd.ErrOrStderr(), o.Debug)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewNewCmd(o),
		commands.NewRenderCmd(o),
		commands.NewCleanCmd(o),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default: .taperoll.{yaml,yml,json,hcl} in the working directory)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&o.Async, "async", false, "run operations in the background and stop waiting on interrupt")
	cmd.PersistentFlags().IntVarP(&o.Concurrency, "concurrency", "j", 0, "files rendered at once (default from config)")
	cmd.PersistentFlags().StringArrayVar(&o.Sets, "set", nil, "set a parameter, e.g. --set project.name=demo")
}

// setupLogging configures zerolog based on flags
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}
