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

package status

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		before   string
		after    string
		expected FileStatus
	}{
		{name: "missing_before", before: "", after: "abc", expected: StatusNew},
		{name: "same_checksum", before: "abc", after: "abc", expected: StatusUnchanged},
		{name: "different_checksum", before: "abc", after: "def", expected: StatusModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.before, tt.after))
		})
	}
}

func TestChecksum(t *testing.T) {
	sum, err := Checksum(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)
}

func TestManager_Snapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := New(dir, nil)

	sum, err := m.Snapshot(ctx, "missing.txt")
	require.NoError(t, err)
	assert.Empty(t, sum, "missing files have no checksum")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))

	rel, err := m.Snapshot(ctx, "a.txt")
	require.NoError(t, err)
	abs, err := m.Snapshot(ctx, filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, rel, abs)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello!"), 0o644))
	after, err := m.Snapshot(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, StatusModified, Classify(rel, after))
}

func TestManager_Rel(t *testing.T) {
	dir := t.TempDir()
	m := New(dir, nil)

	assert.Equal(t, "sub/a.txt", m.Rel(filepath.Join(dir, "sub", "a.txt")))
	outside := filepath.Join(filepath.Dir(dir), "elsewhere.txt")
	assert.Equal(t, outside, m.Rel(outside))
}

func TestManager_TrackFile(t *testing.T) {
	ctx := context.Background()
	var buf strings.Builder
	logger := zerolog.New(&buf)
	m := New(t.TempDir(), &logger)

	m.TrackFile(ctx, "b.txt", FileInfo{Status: StatusModified, Replacements: 2})
	m.TrackFile(ctx, "a.txt", FileInfo{Status: StatusNew})
	m.TrackFile(ctx, "c.txt", FileInfo{Status: StatusFailed, Error: errors.New("disk full")})

	info, err := m.GetFileInfo(ctx, "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", info.Path)
	assert.Equal(t, 2, info.Replacements)

	_, err = m.GetFileInfo(ctx, "missing.txt")
	assert.Error(t, err)

	files := m.ListFiles(ctx)
	require.Len(t, files, 3)
	assert.Equal(t, "a.txt", files[0].Path)
	assert.Equal(t, "b.txt", files[1].Path)
	assert.Equal(t, "c.txt", files[2].Path)

	assert.Equal(t, Summary{New: 1, Modified: 1, Failed: 1}, m.Summary())
	assert.Equal(t, 3, m.Summary().Total())

	err = m.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "c.txt")
	assert.Contains(t, err.Error(), "disk full")

	assert.Contains(t, buf.String(), `"status":"failed"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"error":"❌ Error: disk full"`)
	assert.Contains(t, buf.String(), `"message":"❌ Failed c.txt"`)
}

func TestManager_ErrWithoutFailures(t *testing.T) {
	m := New(t.TempDir(), nil)
	m.TrackFile(context.Background(), "a.txt", FileInfo{Status: StatusUnchanged})
	assert.NoError(t, m.Err())
}

func TestManager_ProgressIsConcurrencySafe(t *testing.T) {
	ctx := context.Background()
	m := New(t.TempDir(), nil)
	m.StartOperation(ctx, 50)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.TrackFile(ctx, fmt.Sprintf("f%02d", i), FileInfo{Status: StatusNew})
			m.Advance(ctx)
		}()
	}
	wg.Wait()
	m.FinishOperation(ctx)

	processed, total := m.Progress()
	assert.Equal(t, 50, processed)
	assert.Equal(t, 50, total)
	assert.Equal(t, 50, m.Summary().New)
}

func TestFileStatus_String(t *testing.T) {
	assert.Equal(t, "new", StatusNew.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", FileStatus(99).String())
}
