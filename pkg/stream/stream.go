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

// Package stream opens file endpoints for reading and writing.
//
// Sinks can write through a temporary sibling file that only replaces the target when the
// writer is closed, so an interrupted write never leaves a truncated target behind.
package stream

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/pkg/paths"
)

// TempPrefix is prepended to the target name while a temporary sink is open
const TempPrefix = ".taperoll-"

var (
	ErrMissingFileName = errors.Base("file name is required")
	ErrSinkClosed      = errors.Base("sink is already closed")
)

// 📍 Endpoint identifies one side of a transformation
type Endpoint struct {
	Directory string
	FileName  string
}

// Path resolves the endpoint against the working directory
func (e Endpoint) Path() string {
	return paths.Resolve(e.Directory, e.FileName)
}

// Validate reports configuration problems before any I/O happens
func (e Endpoint) Validate() error {
	if e.FileName == "" {
		return errors.WithStack(ErrMissingFileName)
	}
	return nil
}

func (e Endpoint) String() string {
	return filepath.Join(e.Directory, e.FileName)
}

// 📖 Open opens the endpoint for reading
func Open(ctx context.Context, e Endpoint) (io.ReadCloser, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	path := e.Path()
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening source %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("opened source")
	return f, nil
}

// SinkOptions controls how a sink writes its target
type SinkOptions struct {
	// Temporary writes to a hidden sibling and renames it over the target on Close
	Temporary bool

	// Mode of a newly created file, 0644 when zero
	Mode os.FileMode
}

// 📝 Sink writes an endpoint
type Sink struct {
	file    *os.File
	target  string
	temp    string
	written int64
	closed  bool
	logger  zerolog.Logger
}

// TempPath returns where a temporary sink for path writes
func TempPath(path string) string {
	return filepath.Join(filepath.Dir(path), TempPrefix+filepath.Base(path))
}

// 📝 Create opens the endpoint for writing, creating its directory first
func Create(ctx context.Context, e Endpoint, opts SinkOptions) (*Sink, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	target := e.Path()
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.Errorf("creating directory for %s: %w", target, err)
	}

	mode := opts.Mode
	if mode == 0 {
		mode = 0644
	}

	s := &Sink{target: target, logger: zerolog.Ctx(ctx).With().Str("target", target).Logger()}
	name := target
	if opts.Temporary {
		s.temp = TempPath(target)
		name = s.temp
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return nil, errors.Errorf("creating %s: %w", name, err)
	}
	s.file = f

	s.logger.Debug().Str("writing_to", name).Msg("opened sink")
	return s, nil
}

// Target is the final path of the sink
func (s *Sink) Target() string { return s.target }

// WritingTo is the file currently receiving bytes
func (s *Sink) WritingTo() string {
	if s.temp != "" {
		return s.temp
	}
	return s.target
}

// Written is the number of bytes written so far
func (s *Sink) Written() int64 { return s.written }

func (s *Sink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, errors.WithStack(ErrSinkClosed)
	}
	n, err := s.file.Write(p)
	s.written += int64(n)
	if err != nil {
		return n, errors.Errorf("writing %s: %w", s.WritingTo(), err)
	}
	return n, nil
}

// 🏁 Close flushes the file and, for temporary sinks, renames it over the target
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.file.Close(); err != nil {
		return errors.Errorf("closing %s: %w", s.WritingTo(), err)
	}

	if s.temp != "" {
		if err := os.Rename(s.temp, s.target); err != nil {
			return errors.Errorf("renaming %s to %s: %w", s.temp, s.target, err)
		}
	}

	s.logger.Debug().Int64("bytes", s.written).Msg("closed sink")
	return nil
}

// 🛑 Abort closes the sink without publishing it. A temporary file is left where it is.
func (s *Sink) Abort() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.logger.Debug().Int64("bytes", s.written).Msg("aborted sink")
	if err := s.file.Close(); err != nil {
		return errors.Errorf("closing %s: %w", s.WritingTo(), err)
	}
	return nil
}

// 🔀 Rename moves a file, creating the destination directory
func Rename(from, to string) error {
	if from == "" || to == "" {
		return errors.WithStack(ErrMissingFileName)
	}
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return errors.Errorf("creating directory for %s: %w", to, err)
	}
	if err := os.Rename(from, to); err != nil {
		return errors.Errorf("renaming %s to %s: %w", from, to, err)
	}
	return nil
}
