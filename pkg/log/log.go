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

// Package log prints human readable progress to a console while mirroring
// every line to a structured zerolog logger.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const (
	fileIndent   = 4  // spaces to indent file entries
	nameWidth    = 35 // Base width for filename
	kindWidth    = 10 // Width for operation kind
	statusWidth  = 12 // Width for status text
	changesWidth = 4  // Width for replacement counts
)

// 📄 FileOperation is one file touched by a render or clean
type FileOperation struct {
	Path         string // Path relative to the target directory
	Kind         string // render, copy or clean
	Status       string // Operation status
	IsNew        bool   // Whether the file did not exist before
	IsModified   bool   // Whether the content changed
	IsRemoved    bool   // Whether the file was removed
	IsFailed     bool   // Whether the operation failed
	Replacements int    // Number of rewritten matches
}

// 📦 TemplateOperation is a template being bootstrapped
type TemplateOperation struct {
	Repo        string
	Ref         string
	Destination string
}

// 📝 Logger writes console lines and structured logs
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	current    *TemplateOperation
	operations []FileOperation
}

// 🏭 New creates a logger printing to console and logging to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

type contextKey struct{}

// FromContext returns the logger stored by NewContext, or one that discards everything
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		return New(io.Discard, *zerolog.Ctx(ctx))
	}
	return logger
}

// NewContext stores l in ctx
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func (l *Logger) formatFileOperation(op FileOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsFailed:
		symbol = '!'
		symbolColor = color.FgRed
	case op.IsRemoved:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsNew:
		symbol = '✓'
		symbolColor = color.FgGreen
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	default:
		symbol = '•'
		symbolColor = color.FgCyan
	}

	var kindColor color.Attribute
	switch op.Kind {
	case "render":
		kindColor = color.FgCyan
	case "clean":
		kindColor = color.FgYellow
	default:
		kindColor = color.FgBlue
	}

	changes := ""
	if op.Replacements > 0 {
		changes = fmt.Sprintf("%*d", changesWidth, op.Replacements)
	}

	return fmt.Sprintf("%s%s %s %s %s%s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, op.Kind)),
		fmt.Sprintf("%-*s", statusWidth, op.Status),
		changes)
}

// LogFileOperation prints one file line
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatFileOperation(op))

	l.zlog.Info().
		Str("file", op.Path).
		Str("kind", op.Kind).
		Str("status", op.Status).
		Bool("is_new", op.IsNew).
		Bool("is_modified", op.IsModified).
		Bool("is_removed", op.IsRemoved).
		Bool("is_failed", op.IsFailed).
		Int("replacements", op.Replacements).
		Msg("file operation")
}

// StartTemplate prints the header for a template bootstrap
func (l *Logger) StartTemplate(ctx context.Context, op TemplateOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op
	l.operations = nil

	fmt.Fprintf(l.console, "[bootstrapping %s]\n",
		color.New(color.FgCyan).Sprint(op.Destination))

	ref := op.Ref
	if ref == "" {
		ref = "default branch"
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Repo),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(ref))

	l.zlog.Info().
		Str("repo", op.Repo).
		Str("ref", op.Ref).
		Str("destination", op.Destination).
		Msg("starting template bootstrap")
}

// LogStage prints the outcome of a bootstrap stage
func (l *Logger) LogStage(ctx context.Context, stage, outcome string, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	symbol := color.GreenString("✓")
	if !ok {
		symbol = color.RedString("✗")
	}
	fmt.Fprintf(l.console, "%*s%s %-*s %s\n", fileIndent, "", symbol, kindWidth, stage, outcome)

	ev := l.zlog.Info()
	if !ok {
		ev = l.zlog.Warn()
	}
	ev.Str("stage", stage).Str("outcome", outcome).Msg("bootstrap stage finished")
}

// EndTemplate logs a summary of the current bootstrap
func (l *Logger) EndTemplate(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Info().
		Str("repo", l.current.Repo).
		Int("files", len(l.operations)).
		Msg("template bootstrap complete")

	l.current = nil
}

func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// Header opens the output of a command
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("taperoll")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📣 notice is a one-line message with a symbol and a zerolog level
type notice struct {
	symbol string
	color  color.Attribute
	level  zerolog.Level
}

var (
	infoNotice    = notice{"ℹ️ ", color.FgCyan, zerolog.InfoLevel}
	successNotice = notice{"✅", color.FgGreen, zerolog.InfoLevel}
	warningNotice = notice{"⚠️ ", color.FgYellow, zerolog.WarnLevel}
	errorNotice   = notice{"❌", color.FgRed, zerolog.ErrorLevel}
)

func (l *Logger) notify(n notice, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", n.symbol, color.New(n.color).Sprint(msg))
	l.zlog.WithLevel(n.level).Msg(msg)
}

func (l *Logger) Info(msg string)    { l.notify(infoNotice, msg) }
func (l *Logger) Success(msg string) { l.notify(successNotice, msg) }
func (l *Logger) Warning(msg string) { l.notify(warningNotice, msg) }
func (l *Logger) Error(msg string)   { l.notify(errorNotice, msg) }

func (l *Logger) Infof(format string, args ...any)    { l.notify(infoNotice, format, args...) }
func (l *Logger) Successf(format string, args ...any) { l.notify(successNotice, format, args...) }
func (l *Logger) Warningf(format string, args ...any) { l.notify(warningNotice, format, args...) }
func (l *Logger) Errorf(format string, args ...any)   { l.notify(errorNotice, format, args...) }
