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
	"fmt"
)

const (
	EmojiNew       = "✨"
	EmojiModified  = "📝"
	EmojiRemoved   = "🗑️ "
	EmojiFailed    = "❌"
	EmojiUnchanged = "👍"
	EmojiProgress  = "⏳"
	EmojiComplete  = "✅"

	MsgProgress = "%s Progress: %d/%d (%.0f%%)"
)

// 🎨 FileFormatter turns tracked state into console messages
type FileFormatter interface {
	// FormatFile formats the status of one file
	FormatFile(info FileInfo) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string

	// FormatSummary formats the totals of an operation
	FormatSummary(s Summary) string
}

// DefaultFileFormatter is the emoji formatter used by New
type DefaultFileFormatter struct{}

func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

func (f *DefaultFileFormatter) FormatFile(info FileInfo) string {
	switch info.Status {
	case StatusFailed:
		return fmt.Sprintf("%s Failed %s", EmojiFailed, info.Path)
	case StatusNew:
		return fmt.Sprintf("%s Created %s", EmojiNew, info.Path)
	case StatusModified:
		return fmt.Sprintf("%s Modified %s", EmojiModified, info.Path)
	case StatusDeleted:
		return fmt.Sprintf("%s Removed %s", EmojiRemoved, info.Path)
	default:
		return fmt.Sprintf("%s Unchanged %s", EmojiUnchanged, info.Path)
	}
}

// FormatProgress clamps negative values to zero; an empty total counts as complete
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	current, total = max(current, 0), max(total, 0)

	percentage := 100.0
	if total > 0 {
		percentage = min(float64(current)/float64(total)*100, 100)
	}

	emoji := EmojiProgress
	if current >= total {
		emoji = EmojiComplete
	}
	return fmt.Sprintf(MsgProgress, emoji, current, total, percentage)
}

func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s Error: %v", EmojiFailed, err)
}

func (f *DefaultFileFormatter) FormatSummary(s Summary) string {
	return fmt.Sprintf("%d new, %d modified, %d unchanged, %d removed, %d failed",
		s.New, s.Modified, s.Unchanged, s.Deleted, s.Failed)
}
