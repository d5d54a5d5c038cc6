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

package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/pkg/config"
	"github.com/walteh/taperoll/pkg/log"
	"github.com/walteh/taperoll/pkg/remote"
	"github.com/walteh/taperoll/pkg/scaffold"
)

// fakeCloner writes a template tree instead of cloning
type fakeCloner struct {
	files map[string]string
	fail  bool
	got   scaffold.CloneRequest
}

func (f *fakeCloner) Clone(_ context.Context, req scaffold.CloneRequest) scaffold.Outcome {
	f.got = req
	if f.fail {
		return scaffold.Outcome{Kind: scaffold.ExitNonZero, ExitCode: 128, Err: errors.New("repository not found")}
	}
	for name, content := range f.files {
		path := filepath.Join(req.Directory, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return scaffold.Outcome{Kind: scaffold.Failed, Err: err}
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return scaffold.Outcome{Kind: scaffold.Failed, Err: err}
		}
	}
	return scaffold.Outcome{Kind: scaffold.Success}
}

type mockInstaller struct {
	mock.Mock
}

func (m *mockInstaller) Install(ctx context.Context, dir string) scaffold.Outcome {
	return m.Called(ctx, dir).Get(0).(scaffold.Outcome)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Host() string {
	return "github.com"
}

func (m *mockProvider) Resolve(ctx context.Context, owner, repo, ref string) (remote.Template, error) {
	args := m.Called(ctx, owner, repo, ref)
	return args.Get(0).(remote.Template), args.Error(1)
}

func TestBootstrap_ResolvesClonesAndInstalls(t *testing.T) {
	ctx := testContext(t)
	cwd := t.TempDir()

	provider := &mockProvider{}
	provider.On("Resolve", mock.Anything, "walteh", "starter", "").Return(remote.Template{
		Host:     "github.com",
		Owner:    "walteh",
		Repo:     "starter",
		CloneURL: "https://github.com/walteh/starter.git",
		Ref:      "main",
	}, nil)

	cloner := &fakeCloner{files: map[string]string{".git/HEAD": "ref", "package.json": "{}"}}
	installer := &mockInstaller{}
	installer.On("Install", mock.Anything, filepath.Join(cwd, "starter")).Return(scaffold.Outcome{Kind: scaffold.Success})

	var console strings.Builder
	op := NewBootstrapOperation(Options{Console: log.New(&console, zerolog.Nop())}, BootstrapOptions{
		Reference: "walteh/starter",
		Cwd:       cwd,
		Resolver:  remote.NewResolver(provider),
		Cloner:    cloner,
		Installer: installer,
	})
	require.NoError(t, op.Execute(ctx))

	assert.Equal(t, "https://github.com/walteh/starter.git", cloner.got.URL)
	assert.Equal(t, "main", cloner.got.Ref)
	assert.Equal(t, filepath.Join(cwd, "starter"), op.Report().Directory)
	assert.NoDirExists(t, filepath.Join(cwd, "starter", ".git"))
	assert.FileExists(t, filepath.Join(cwd, "starter", "package.json"))

	assert.Contains(t, console.String(), "[bootstrapping starter]")
	assert.Contains(t, console.String(), "clone")
	assert.Contains(t, console.String(), "install")

	provider.AssertExpectations(t)
	installer.AssertExpectations(t)
}

func TestBootstrap_CloneFailureSkipsInstall(t *testing.T) {
	ctx := testContext(t)
	installer := &mockInstaller{}

	op := NewBootstrapOperation(Options{}, BootstrapOptions{
		Reference: "https://example.com/missing.git",
		Cwd:       t.TempDir(),
		Cloner:    &fakeCloner{fail: true},
		Installer: installer,
	})
	err := op.Execute(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository not found")

	assert.Equal(t, scaffold.ExitNonZero, op.Report().Clone.Kind)
	assert.Equal(t, scaffold.Skipped, op.Report().Install.Kind)
	installer.AssertNotCalled(t, "Install", mock.Anything, mock.Anything)
}

func TestBootstrap_InvalidReference(t *testing.T) {
	op := NewBootstrapOperation(Options{}, BootstrapOptions{Reference: "not-a-reference"})
	err := op.Execute(testContext(t))
	assert.ErrorIs(t, err, remote.ErrInvalidReference)
}

func TestBootstrap_RendersTemplateConfig(t *testing.T) {
	ctx := testContext(t)
	cwd := t.TempDir()
	dir := filepath.Join(cwd, "my-app")

	cloner := &fakeCloner{files: map[string]string{
		".taperoll.yaml": "parameters:\n  name: template\n  license: MIT\n",
		"README.md":      "{{ name }} ({{ license }})",
	}}

	cfg := &config.Config{Parameters: map[string]any{"name": "my-app"}}
	op := NewBootstrapOperation(Options{Config: cfg}, BootstrapOptions{
		Reference:   "https://example.com/template.git",
		Directory:   dir,
		SkipInstall: true,
		Render:      true,
		Cloner:      cloner,
	})
	require.NoError(t, op.Execute(ctx))

	assert.Equal(t, "my-app (MIT)", readFile(t, filepath.Join(dir, "README.md")))
	assert.FileExists(t, filepath.Join(dir, ".taperoll.yaml"))
}

func TestBootstrap_RenderWithoutTemplateConfig(t *testing.T) {
	ctx := testContext(t)
	dir := filepath.Join(t.TempDir(), "plain")

	var console strings.Builder
	op := NewBootstrapOperation(Options{Console: log.New(&console, zerolog.Nop())}, BootstrapOptions{
		Reference:   "https://example.com/plain.git",
		Directory:   dir,
		SkipInstall: true,
		Render:      true,
		Cloner:      &fakeCloner{files: map[string]string{"README.md": "{{ name }}"}},
	})
	require.NoError(t, op.Execute(ctx))
	assert.Equal(t, "{{ name }}", readFile(t, filepath.Join(dir, "README.md")))
	assert.Contains(t, console.String(), dir+" has no taperoll config, skipping render")
}
