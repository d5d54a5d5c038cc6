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
	"io"
)

// DefaultInstallCommand is used when an ExecInstaller has no command
var DefaultInstallCommand = []string{"npm", "install"}

// 📦 Installer installs a project's dependencies
type Installer interface {
	Install(ctx context.Context, dir string) Outcome
}

// 📦 ExecInstaller runs a package manager in the project directory
type ExecInstaller struct {
	Command []string

	// Output receives the process output as it runs
	Output io.Writer
}

func (i ExecInstaller) Install(ctx context.Context, dir string) Outcome {
	argv := i.Command
	if len(argv) == 0 {
		argv = DefaultInstallCommand
	}
	return runCommand(ctx, dir, argv, i.Output)
}
