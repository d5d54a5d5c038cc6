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

// Package remote turns template references into something git can clone.
package remote

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const DefaultHost = "github.com"

var ErrInvalidReference = errors.Base("invalid template reference")

// 📦 Template is a resolved template repository
type Template struct {
	Host     string
	Owner    string
	Repo     string
	CloneURL string
	Ref      string // empty means the remote default branch
}

func (t Template) String() string {
	if t.Ref == "" {
		return t.CloneURL
	}
	return fmt.Sprintf("%s@%s", t.CloneURL, t.Ref)
}

// 🔌 Provider looks up repositories on one hosting service
type Provider interface {
	// Host is the hostname references must use to reach this provider
	Host() string

	// Resolve returns the clone URL, filling in the default branch when ref is empty
	Resolve(ctx context.Context, owner, repo, ref string) (Template, error)
}

// 🔍 Resolver maps references onto providers by host
type Resolver struct {
	providers map[string]Provider
}

// NewResolver creates a resolver backed by providers
func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Host()] = p
	}
	return r
}

// Reference is a parsed host/owner/repo@ref string
type Reference struct {
	Host  string
	Owner string
	Repo  string
	Ref   string
}

// 📝 ParseReference parses owner/repo, host/owner/repo and either with an @ref suffix
func ParseReference(s string) (Reference, error) {
	var ref Reference
	path := s
	if i := strings.LastIndex(s, "@"); i >= 0 {
		path, ref.Ref = s[:i], s[i+1:]
		if ref.Ref == "" {
			return Reference{}, errors.Errorf("%w: empty ref in %q", ErrInvalidReference, s)
		}
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch len(parts) {
	case 2:
		ref.Host, ref.Owner, ref.Repo = DefaultHost, parts[0], parts[1]
	case 3:
		ref.Host, ref.Owner, ref.Repo = parts[0], parts[1], parts[2]
	default:
		return Reference{}, errors.Errorf("%w: %q", ErrInvalidReference, s)
	}
	ref.Repo = strings.TrimSuffix(ref.Repo, ".git")

	for _, p := range []string{ref.Host, ref.Owner, ref.Repo} {
		if p == "" {
			return Reference{}, errors.Errorf("%w: %q", ErrInvalidReference, s)
		}
	}
	return ref, nil
}

// isDirect reports whether s is already something git can clone
func isDirect(s string) bool {
	if strings.Contains(s, "://") || strings.HasPrefix(s, "git@") || strings.HasPrefix(s, ".") || strings.HasPrefix(s, "/") {
		return true
	}
	info, err := os.Stat(s)
	return err == nil && info.IsDir()
}

// 🎯 Resolve turns a reference into a clone URL and ref.
// URLs and local paths pass through with ref untouched.
func (r *Resolver) Resolve(ctx context.Context, s, ref string) (Template, error) {
	logger := zerolog.Ctx(ctx)

	if isDirect(s) {
		return Template{CloneURL: s, Ref: ref}, nil
	}

	parsed, err := ParseReference(s)
	if err != nil {
		return Template{}, err
	}
	if ref == "" {
		ref = parsed.Ref
	}

	p, ok := r.providers[parsed.Host]
	if !ok {
		logger.Debug().Str("host", parsed.Host).Msg("no provider for host, using plain https clone url")
		return Template{
			Host:     parsed.Host,
			Owner:    parsed.Owner,
			Repo:     parsed.Repo,
			CloneURL: fmt.Sprintf("https://%s/%s/%s.git", parsed.Host, parsed.Owner, parsed.Repo),
			Ref:      ref,
		}, nil
	}

	t, err := p.Resolve(ctx, parsed.Owner, parsed.Repo, ref)
	if err != nil {
		return Template{}, errors.Errorf("resolving %s: %w", s, err)
	}

	logger.Debug().Str("template", t.String()).Msg("resolved template")
	return t, nil
}
