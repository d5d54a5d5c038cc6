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
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/taperoll/pkg/config"
	"github.com/walteh/taperoll/pkg/status"
)

func TestClean_RemovesRenderedFiles(t *testing.T) {
	ctx := testContext(t)
	p := newProject(t, map[string]string{
		"a.txt":         "a",
		"deep/er/b.txt": "b",
	}, nil)
	require.NoError(t, NewRenderOperation(p.opts).Execute(ctx))
	writeTree(t, p.dst, map[string]string{"mine.txt": "not rendered"})

	op := NewCleanOperation(p.opts)
	require.NoError(t, op.Execute(ctx))

	assert.NoFileExists(t, filepath.Join(p.dst, "a.txt"))
	assert.NoDirExists(t, filepath.Join(p.dst, "deep"))
	assert.FileExists(t, filepath.Join(p.dst, "mine.txt"))
	assert.FileExists(t, filepath.Join(p.src, "a.txt"))

	mgr := op.(*cleanOperation).StatusMgr
	assert.Equal(t, status.Summary{Deleted: 2}, mgr.Summary())
	assert.Contains(t, p.console.String(), "deep/er/b.txt")
}

func TestClean_MissingTargetsAreSkipped(t *testing.T) {
	ctx := testContext(t)
	p := newProject(t, map[string]string{"a.txt": "a"}, nil)

	op := NewCleanOperation(p.opts)
	require.NoError(t, op.Execute(ctx))
	assert.Equal(t, 0, op.(*cleanOperation).StatusMgr.Summary().Total())
}

func TestClean_RefusesInPlace(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})

	cfg := &config.Config{Endpoints: config.Endpoints{SourceDirectory: root}}
	require.NoError(t, cfg.Validate())

	err := NewCleanOperation(Options{Config: cfg}).Execute(ctx)
	assert.ErrorIs(t, err, ErrCleanInPlace)
	assert.FileExists(t, filepath.Join(root, "a.txt"))
}

func TestClean_ExplicitPaths(t *testing.T) {
	tests := []struct {
		name    string
		paths   []string
		removed []string
		kept    []string
		wantErr error
	}{
		{
			name:    "directory_and_file",
			paths:   []string{"build", "notes.txt"},
			removed: []string{"build/out.bin", "notes.txt"},
			kept:    []string{"keep.txt"},
		},
		{
			name:    "absolute_path_inside_target",
			paths:   []string{"<dst>/notes.txt"},
			removed: []string{"notes.txt"},
			kept:    []string{"keep.txt", "build/out.bin"},
		},
		{
			name:    "parent_escape",
			paths:   []string{"../src"},
			kept:    []string{"keep.txt", "notes.txt"},
			wantErr: ErrOutsideTarget,
		},
		{
			name:    "target_itself",
			paths:   []string{"."},
			kept:    []string{"keep.txt"},
			wantErr: ErrOutsideTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t)
			p := newProject(t, map[string]string{"a.txt": "a"}, nil)
			writeTree(t, p.dst, map[string]string{
				"build/out.bin": "bin",
				"notes.txt":     "n",
				"keep.txt":      "k",
			})

			paths := make([]string, len(tt.paths))
			for i, path := range tt.paths {
				paths[i] = strings.Replace(path, "<dst>", p.dst, 1)
			}

			err := NewCleanOperation(p.opts, paths...).Execute(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			for _, r := range tt.removed {
				assert.NoFileExists(t, filepath.Join(p.dst, filepath.FromSlash(r)))
			}
			for _, k := range tt.kept {
				assert.FileExists(t, filepath.Join(p.dst, filepath.FromSlash(k)))
			}
			assert.FileExists(t, filepath.Join(p.src, "a.txt"))
		})
	}
}
