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
	"github.com/stretchr/testify/require"

	"github.com/walteh/taperoll/pkg/config"
	"github.com/walteh/taperoll/pkg/log"
	"github.com/walteh/taperoll/pkg/status"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

type project struct {
	src, dst string
	cfg      *config.Config
	console  *strings.Builder
	opts     Options
}

func newProject(t *testing.T, files map[string]string, cfg *config.Config) project {
	t.Helper()
	root := t.TempDir()
	src, dst := filepath.Join(root, "src"), filepath.Join(root, "dst")
	writeTree(t, src, files)

	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.Endpoints.SourceDirectory = src
	if cfg.Endpoints.TargetDirectory == "" {
		cfg.Endpoints.TargetDirectory = dst
	}
	require.NoError(t, cfg.Validate())

	var console strings.Builder
	return project{
		src:     src,
		dst:     cfg.Endpoints.TargetDirectory,
		cfg:     cfg,
		console: &console,
		opts: Options{
			Config:  cfg,
			Console: log.New(&console, zerolog.Nop()),
		},
	}
}

func TestRender(t *testing.T) {
	ctx := testContext(t)
	upper := "APP"
	p := newProject(t, map[string]string{
		"README.md":         "# {{ name }}\nby {{ author : someone }}\n",
		"cmd/main.go":       "package main // app\n",
		".git/HEAD":         "ref: refs/heads/main\n",
		".taperoll.yaml":    "parameters: {}\n",
		"node_modules/x.js": "{{ name }}",
	}, &config.Config{
		Parameters: map[string]any{"name": "demo"},
		Files: []config.FileSet{{
			Include: "**/*",
			Modifications: []config.Modification{
				{Pattern: `app`, Replace: &upper, File: "**/*.go"},
			},
		}},
	})

	op := NewRenderOperation(p.opts)
	require.NoError(t, op.Execute(ctx))

	assert.Equal(t, "# demo\nby someone\n", readFile(t, filepath.Join(p.dst, "README.md")))
	assert.Equal(t, "package main // APP\n", readFile(t, filepath.Join(p.dst, "cmd", "main.go")))

	for _, skipped := range []string{".git/HEAD", ".taperoll.yaml", "node_modules/x.js"} {
		assert.NoFileExists(t, filepath.Join(p.dst, filepath.FromSlash(skipped)))
	}

	mgr := op.(*renderOperation).StatusMgr
	assert.Equal(t, status.Summary{New: 2}, mgr.Summary())
	info, err := mgr.GetFileInfo(ctx, "cmd/main.go")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Replacements)

	assert.Contains(t, p.console.String(), "README.md")
	assert.Contains(t, p.console.String(), "cmd/main.go")
}

func TestRender_ClassifiesAgainstExistingTargets(t *testing.T) {
	ctx := testContext(t)
	p := newProject(t, map[string]string{
		"same.txt":    "same",
		"changed.txt": "fresh {{ v }}",
	}, &config.Config{Parameters: map[string]any{"v": 1}})

	require.NoError(t, NewRenderOperation(p.opts).Execute(ctx))
	writeTree(t, p.dst, map[string]string{"changed.txt": "edited by hand"})

	op := NewRenderOperation(Options{Config: p.cfg, Console: p.opts.Console})
	require.NoError(t, op.Execute(ctx))

	mgr := op.(*renderOperation).StatusMgr
	assert.Equal(t, status.Summary{Modified: 1, Unchanged: 1}, mgr.Summary())
	assert.Equal(t, "fresh 1", readFile(t, filepath.Join(p.dst, "changed.txt")))
}

func TestRender_FailuresDoNotStopOtherFiles(t *testing.T) {
	ctx := testContext(t)
	p := newProject(t, map[string]string{
		"good.txt":    "ok",
		"blocked.txt": "never written",
	}, &config.Config{Concurrency: 1})

	// a non-empty directory where a file should go
	writeTree(t, p.dst, map[string]string{"blocked.txt/keep": "x"})

	op := NewRenderOperation(p.opts)
	err := op.Execute(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked.txt")

	assert.Equal(t, "ok", readFile(t, filepath.Join(p.dst, "good.txt")))

	mgr := op.(*renderOperation).StatusMgr
	assert.Equal(t, status.Summary{New: 1, Failed: 1}, mgr.Summary())
	processed, total := mgr.Progress()
	assert.Equal(t, 2, processed)
	assert.Equal(t, 2, total)
}

func TestRender_FirstFileSetWins(t *testing.T) {
	ctx := testContext(t)
	shout := "!"
	p := newProject(t, map[string]string{
		"a.md":  "a",
		"b.txt": "b",
	}, &config.Config{
		Files: []config.FileSet{
			{Include: "*.md", Modifications: []config.Modification{{Pattern: `a`, Append: &shout}}},
			{Include: "**/*"},
		},
	})

	require.NoError(t, NewRenderOperation(p.opts).Execute(ctx))
	assert.Equal(t, "a!", readFile(t, filepath.Join(p.dst, "a.md")))
	assert.Equal(t, "b", readFile(t, filepath.Join(p.dst, "b.txt")))
}

func TestRender_InPlace(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "hi {{ who }}"})

	cfg := &config.Config{
		Endpoints:  config.Endpoints{SourceDirectory: root},
		Parameters: map[string]any{"who": "there"},
	}
	require.NoError(t, cfg.Validate())

	require.NoError(t, NewRenderOperation(Options{Config: cfg}).Execute(ctx))
	assert.Equal(t, "hi there", readFile(t, filepath.Join(root, "a.txt")))

	matches, err := filepath.Glob(filepath.Join(root, ".taperoll-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "no temporary files left behind")
}

func TestRender_TargetInsideSourceIsNotRendered(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})

	cfg := &config.Config{Endpoints: config.Endpoints{
		SourceDirectory: root,
		TargetDirectory: filepath.Join(root, "out"),
	}}
	require.NoError(t, cfg.Validate())

	op := NewRenderOperation(Options{Config: cfg})
	require.NoError(t, op.Execute(ctx))
	require.NoError(t, NewRenderOperation(Options{Config: cfg}).Execute(ctx))

	assert.FileExists(t, filepath.Join(root, "out", "a.txt"))
	assert.NoDirExists(t, filepath.Join(root, "out", "out"))
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	p := newProject(t, map[string]string{"a.txt": "a"}, nil)
	err := NewRenderOperation(p.opts).Execute(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
