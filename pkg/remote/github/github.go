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

// Package github resolves template repositories hosted on GitHub.
package github

import (
	"context"
	"os"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/pkg/remote"
)

const Host = "github.com"

// repositoryGetter is the part of the repositories service the provider needs
type repositoryGetter interface {
	Get(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
}

// 🎯 Provider implements remote.Provider for GitHub
type Provider struct {
	repos repositoryGetter
}

var _ remote.Provider = (*Provider)(nil)

// 🏭 New creates a GitHub provider, authenticated when GITHUB_TOKEN is set
func New(ctx context.Context) *Provider {
	client := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	} else {
		zerolog.Ctx(ctx).Debug().Msg("GITHUB_TOKEN not set, using unauthenticated requests")
	}
	return NewFromClient(client)
}

// NewFromClient creates a provider from an existing client
func NewFromClient(client *github.Client) *Provider {
	return &Provider{repos: client.Repositories}
}

func (p *Provider) Host() string {
	return Host
}

// 🔍 Resolve looks up the repository, using its default branch when ref is empty
func (p *Provider) Resolve(ctx context.Context, owner, repo, ref string) (remote.Template, error) {
	r, _, err := p.repos.Get(ctx, owner, repo)
	if err != nil {
		var rateErr *github.RateLimitError
		if errors.As(err, &rateErr) {
			return remote.Template{}, errors.Errorf("rate limit exceeded, resets at %s: %w", rateErr.Rate.Reset.Time, err)
		}
		return remote.Template{}, errors.Errorf("getting repository %s/%s: %w", owner, repo, err)
	}

	if ref == "" {
		ref = r.GetDefaultBranch()
	}

	cloneURL := r.GetCloneURL()
	if cloneURL == "" {
		cloneURL = "https://" + Host + "/" + owner + "/" + repo + ".git"
	}

	zerolog.Ctx(ctx).Debug().
		Str("repo", r.GetFullName()).
		Str("ref", ref).
		Bool("private", r.GetPrivate()).
		Msg("found github repository")

	return remote.Template{
		Host:     Host,
		Owner:    owner,
		Repo:     repo,
		CloneURL: cloneURL,
		Ref:      ref,
	}, nil
}
