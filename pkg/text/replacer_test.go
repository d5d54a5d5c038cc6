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

package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplacementRule_AppliesTo(t *testing.T) {
	tests := []struct {
		name string
		glob string
		file string
		want bool
	}{
		{name: "no_filter", glob: "", file: "a/b.go", want: true},
		{name: "doublestar", glob: "**/*.go", file: "a/b/c.go", want: true},
		{name: "extension_mismatch", glob: "**/*.go", file: "a/b/c.md", want: false},
		{name: "single_level", glob: "*.json", file: "dir/package.json", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := ReplacementRule{Pattern: "x", FileFilterGlob: tt.glob}
			assert.Equal(t, tt.want, rule.AppliesTo(tt.file))
		})
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []ReplacementRule
		wantErr string
	}{
		{name: "valid", rules: []ReplacementRule{{Pattern: `foo(\d+)`, FileFilterGlob: "**/*.go"}}},
		{name: "empty_pattern", rules: []ReplacementRule{{}}, wantErr: "pattern is required"},
		{name: "bad_regexp", rules: []ReplacementRule{{Pattern: "("}}, wantErr: "compiling pattern"},
		{name: "anchored", rules: []ReplacementRule{{Pattern: "^foo"}}, wantErr: "anchored"},
		{name: "bad_glob", rules: []ReplacementRule{{Pattern: "x", FileFilterGlob: "[a-"}}, wantErr: "invalid file_filter_glob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRules(tt.rules)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
