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
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents what an operation did to a file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusNew                  // File did not exist in the target
	StatusModified             // File existed and its content changed
	StatusUnchanged            // File existed with the same content
	StatusDeleted              // File was removed
	StatusFailed               // The operation on the file failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusDeleted:
		return "deleted"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains what is known about one tracked file
type FileInfo struct {
	Path         string     // Path relative to the manager's base directory
	Status       FileStatus // Current status
	Size         int64      // Bytes written
	Checksum     string     // sha256 of the content after the operation
	Replacements int        // Rewritten matches
	Error        error      // Set when Status is StatusFailed
}

// Summary counts tracked files per status
type Summary struct {
	New       int
	Modified  int
	Unchanged int
	Deleted   int
	Failed    int
}

// Total is the number of tracked files
func (s Summary) Total() int {
	return s.New + s.Modified + s.Unchanged + s.Deleted + s.Failed
}

// 🔧 Manager tracks file status and progress for one operation.
// It is safe for concurrent use.
type Manager struct {
	baseDir   string          // Base directory tracked paths are relative to
	logger    *zerolog.Logger // Logger for status updates
	formatter FileFormatter   // Formatter for status messages

	mu    sync.RWMutex
	files map[string]FileInfo

	total     int
	processed int
}

// 🏭 New creates a new status manager
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// Rel returns path relative to the base directory when it lies below it
func (m *Manager) Rel(path string) string {
	rel, err := filepath.Rel(m.baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func (m *Manager) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

// 🔍 Checksum returns the sha256 of everything r yields
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Snapshot returns the checksum of the file at path, or "" when it does not exist.
// Taken before a write, it lets Classify tell new, modified and unchanged files apart.
func (m *Manager) Snapshot(ctx context.Context, path string) (string, error) {
	f, err := os.Open(m.abs(path))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Checksum(f)
}

// Classify compares checksums taken before and after a write
func Classify(before, after string) FileStatus {
	switch {
	case before == "":
		return StatusNew
	case before == after:
		return StatusUnchanged
	default:
		return StatusModified
	}
}

// TrackFile records info for path and logs it
func (m *Manager) TrackFile(ctx context.Context, path string, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info.Path = path
	m.files[path] = info

	ev := m.logger.Info()
	if info.Status == StatusFailed {
		ev = m.logger.Error().Str("error", m.formatter.FormatError(info.Error))
	}
	ev.Str("path", path).
		Str("status", info.Status.String()).
		Int("replacements", info.Replacements).
		Msg(m.formatter.FormatFile(info))
}

func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns every tracked file sorted by path
func (m *Manager) ListFiles(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return files
}

// Summary counts tracked files per status
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Summary
	for _, info := range m.files {
		switch info.Status {
		case StatusNew:
			s.New++
		case StatusModified:
			s.Modified++
		case StatusUnchanged:
			s.Unchanged++
		case StatusDeleted:
			s.Deleted++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// Err joins the errors of every failed file
func (m *Manager) Err() error {
	var errs []error
	for _, info := range m.ListFiles(context.Background()) {
		if info.Status == StatusFailed && info.Error != nil {
			errs = append(errs, errors.Errorf("%s: %w", info.Path, info.Error))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	m.logger.Info().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

// Advance marks one more file as processed
func (m *Manager) Advance(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed++
	m.logger.Debug().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total))
}

// Progress returns processed and total counts
func (m *Manager) Progress() (processed, total int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.processed, m.total
}

func (m *Manager) FinishOperation(ctx context.Context) {
	summary := m.Summary()

	m.mu.RLock()
	defer m.mu.RUnlock()

	m.logger.Info().
		Int("processed", m.processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.processed, m.total) + " " + m.formatter.FormatSummary(summary))
}
