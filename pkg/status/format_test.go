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
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"
)

func TestDefaultFileFormatter_FormatFile(t *testing.T) {
	tests := []struct {
		name     string
		info     FileInfo
		expected string
	}{
		{
			name:     "new_file",
			info:     FileInfo{Path: "a.txt", Status: StatusNew},
			expected: EmojiNew + " Created a.txt",
		},
		{
			name:     "modified_file",
			info:     FileInfo{Path: "a.txt", Status: StatusModified},
			expected: EmojiModified + " Modified a.txt",
		},
		{
			name:     "unchanged_file",
			info:     FileInfo{Path: "a.txt", Status: StatusUnchanged},
			expected: EmojiUnchanged + " Unchanged a.txt",
		},
		{
			name:     "deleted_file",
			info:     FileInfo{Path: "a.txt", Status: StatusDeleted},
			expected: EmojiRemoved + " Removed a.txt",
		},
		{
			name:     "failed_file",
			info:     FileInfo{Path: "a.txt", Status: StatusFailed, Error: errors.New("boom")},
			expected: EmojiFailed + " Failed a.txt",
		},
	}

	f := NewDefaultFileFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.FormatFile(tt.info))
		})
	}
}

func TestDefaultFileFormatter_FormatProgress(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected string
	}{
		{
			name:     "zero_progress",
			current:  0,
			total:    10,
			expected: EmojiProgress + " Progress: 0/10 (0%)",
		},
		{
			name:     "half_progress",
			current:  5,
			total:    10,
			expected: EmojiProgress + " Progress: 5/10 (50%)",
		},
		{
			name:     "complete",
			current:  10,
			total:    10,
			expected: EmojiComplete + " Progress: 10/10 (100%)",
		},
		{
			name:     "empty_total",
			current:  0,
			total:    0,
			expected: EmojiComplete + " Progress: 0/0 (100%)",
		},
		{
			name:     "over_total_is_capped",
			current:  12,
			total:    10,
			expected: EmojiComplete + " Progress: 12/10 (100%)",
		},
		{
			name:     "negative_values_are_clamped",
			current:  -1,
			total:    4,
			expected: EmojiProgress + " Progress: 0/4 (0%)",
		},
	}

	f := NewDefaultFileFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.FormatProgress(tt.current, tt.total))
		})
	}
}

func TestDefaultFileFormatter_FormatError(t *testing.T) {
	f := NewDefaultFileFormatter()
	assert.Empty(t, f.FormatError(nil))
	assert.Equal(t, EmojiFailed+" Error: bad", f.FormatError(errors.New("bad")))
}

func TestDefaultFileFormatter_FormatSummary(t *testing.T) {
	f := NewDefaultFileFormatter()
	got := f.FormatSummary(Summary{New: 1, Modified: 2, Unchanged: 3, Deleted: 4, Failed: 5})
	assert.Equal(t, "1 new, 2 modified, 3 unchanged, 4 removed, 5 failed", got)
}
