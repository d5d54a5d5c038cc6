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
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/walteh/taperoll/pkg/log"
	"github.com/walteh/taperoll/pkg/status"
)

// printSummary renders the status totals as a table
func printSummary(out io.Writer, title string, s status.Summary) error {
	pterm.DefaultSection.WithWriter(out).Println(title)

	data := pterm.TableData{
		{"status", "files"},
		{status.EmojiNew + " new", fmt.Sprint(s.New)},
		{status.EmojiModified + " modified", fmt.Sprint(s.Modified)},
		{status.EmojiUnchanged + " unchanged", fmt.Sprint(s.Unchanged)},
		{status.EmojiRemoved + " removed", fmt.Sprint(s.Deleted)},
		{status.EmojiFailed + " failed", fmt.Sprint(s.Failed)},
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
}

// finish prints the summary table and a closing line for the run
func finish(out io.Writer, console *log.Logger, verb string, s status.Summary, runErr error) error {
	console.LogNewline()
	if err := printSummary(out, verb, s); err != nil {
		return err
	}

	switch {
	case runErr != nil:
		console.Errorf("%s failed: %v", verb, runErr)
	case s.Failed > 0:
		console.Warningf("%d of %d files failed to %s", s.Failed, s.Total(), verb)
	case s.Total() == 0:
		console.Warningf("nothing to %s", verb)
	default:
		console.Successf("%s done, files: %d", verb, s.Total())
	}
	return runErr
}
