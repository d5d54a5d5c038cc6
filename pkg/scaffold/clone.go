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
	"net/url"
	"os"
	"path"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// CloneRequest describes one clone
type CloneRequest struct {
	URL       string
	Ref       string // branch or tag, empty for the remote default
	Directory string
}

// 📥 Cloner fetches a template repository into a directory
type Cloner interface {
	Clone(ctx context.Context, req CloneRequest) Outcome
}

// 📥 GitCloner clones in process with go-git
type GitCloner struct {
	// Progress receives the remote's progress messages
	Progress io.Writer
}

func (c GitCloner) Clone(ctx context.Context, req CloneRequest) Outcome {
	logger := zerolog.Ctx(ctx)

	command := "go-git clone " + req.URL
	if req.Ref != "" {
		command += "@" + req.Ref
	}
	fail := func(err error) Outcome {
		out := failed(err)
		out.Command = command
		return out
	}

	opts := &git.CloneOptions{
		URL:          req.URL,
		Depth:        1,
		SingleBranch: true,
		Progress:     c.Progress,
	}
	if req.Ref == "" {
		if _, err := git.PlainCloneContext(ctx, req.Directory, false, opts); err != nil {
			return fail(errors.Errorf("cloning %s: %w", req.URL, err))
		}
		return Outcome{Kind: Success, Command: command}
	}

	// a ref can name a branch or a tag, try the branch first
	opts.ReferenceName = plumbing.NewBranchReferenceName(req.Ref)
	_, berr := git.PlainCloneContext(ctx, req.Directory, false, opts)
	if berr == nil {
		return Outcome{Kind: Success, Command: command}
	}

	logger.Debug().Err(berr).Str("ref", req.Ref).Msg("branch clone failed, trying tag")
	if err := os.RemoveAll(req.Directory); err != nil {
		return fail(errors.Errorf("cleaning up after failed clone: %w", err))
	}
	opts.ReferenceName = plumbing.NewTagReferenceName(req.Ref)
	if _, terr := git.PlainCloneContext(ctx, req.Directory, false, opts); terr != nil {
		return fail(errors.Errorf("cloning %s at %s: %w", req.URL, req.Ref, errors.Join(
			errors.Errorf("as branch: %w", berr),
			errors.Errorf("as tag: %w", terr),
		)))
	}
	return Outcome{Kind: Success, Command: command}
}

// 📥 ExecCloner runs the git binary
type ExecCloner struct {
	// Git is the binary to run, "git" when empty
	Git string

	// Output receives the process output as it runs
	Output io.Writer
}

func (c ExecCloner) Clone(ctx context.Context, req CloneRequest) Outcome {
	bin := c.Git
	if bin == "" {
		bin = "git"
	}
	argv := []string{bin, "clone", "--depth", "1"}
	if req.Ref != "" {
		argv = append(argv, "--branch", req.Ref)
	}
	argv = append(argv, req.URL, req.Directory)
	return runCommand(ctx, "", argv, c.Output)
}

// TargetName derives the directory name git clone would pick for url
func TargetName(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		s = u.Path
	}
	s = strings.TrimRight(s, "/")
	s = strings.TrimSuffix(s, ".git")
	if i := strings.LastIndexAny(s, "/:"); i >= 0 {
		s = s[i+1:]
	}
	s = path.Clean(s)
	if s == "" || s == "." || s == "/" {
		return "template"
	}
	return s
}
