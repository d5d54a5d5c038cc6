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
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var ErrNoCommand = errors.Base("no command configured")

// OutcomeKind classifies how a stage ended
type OutcomeKind int

const (
	Skipped     OutcomeKind = iota // the stage did not run
	Success                        // the stage completed
	ExitNonZero                    // the process ran and exited with a non-zero code
	SpawnError                     // the process could not be started
	Failed                         // an in-process stage returned an error
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case ExitNonZero:
		return "exit-non-zero"
	case SpawnError:
		return "spawn-error"
	case Failed:
		return "failed"
	default:
		return "skipped"
	}
}

// 📋 Outcome is the typed result of one stage of a Task
type Outcome struct {
	Kind     OutcomeKind
	Command  string
	ExitCode int
	Output   string
	Err      error
}

// OK reports whether the stage succeeded
func (o Outcome) OK() bool {
	return o.Kind == Success
}

func (o Outcome) String() string {
	switch o.Kind {
	case ExitNonZero:
		return fmt.Sprintf("%s (exit %d)", o.Kind, o.ExitCode)
	case SpawnError, Failed:
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	default:
		return o.Kind.String()
	}
}

func failed(err error) Outcome {
	return Outcome{Kind: Failed, ExitCode: -1, Err: err}
}

// runCommand runs argv in dir and classifies the result. Output is captured and,
// when echo is set, copied there as it arrives.
func runCommand(ctx context.Context, dir string, argv []string, echo io.Writer) Outcome {
	if len(argv) == 0 {
		return Outcome{Kind: SpawnError, ExitCode: -1, Err: errors.WithStack(ErrNoCommand)}
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var output bytes.Buffer
	var w io.Writer = &output
	if echo != nil {
		w = io.MultiWriter(echo, &output)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	err := cmd.Run()

	out := Outcome{Command: strings.Join(argv, " "), Output: output.String()}
	if err == nil {
		out.Kind = Success
		return out
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.Kind = ExitNonZero
		out.ExitCode = exitErr.ExitCode()
		out.Err = errors.Errorf("%s exited with code %d: %w", out.Command, out.ExitCode, err)
		return out
	}

	out.Kind = SpawnError
	out.ExitCode = -1
	out.Err = errors.Errorf("starting %s: %w", out.Command, err)
	return out
}
