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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/pkg/stream"
	"github.com/walteh/taperoll/pkg/text"
)

const DefaultConcurrency = 4

// FileNames are the config names Find looks for, in order
var FileNames = []string{".taperoll.yaml", ".taperoll.yml", ".taperoll.json", ".taperoll.hcl"}

var ErrNotFound = errors.Base("no taperoll config found")

// 🔍 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is a list of available parsers
var parsers []Parser

// 📝 Register adds a parser to the registry
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🔍 GetParser returns the first parser that can handle the file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📦 Template is the repository a new project is bootstrapped from
type Template struct {
	Repo        string   `json:"repo" yaml:"repo"`
	Ref         string   `json:"ref,omitempty" yaml:"ref,omitempty"`
	Destination string   `json:"destination,omitempty" yaml:"destination,omitempty"`
	Install     []string `json:"install,omitempty" yaml:"install,omitempty"`
	SkipInstall bool     `json:"skip_install,omitempty" yaml:"skip_install,omitempty"`
}

// 📍 Endpoints are the default source and target of every pipeline
type Endpoints struct {
	SourceDirectory string `json:"source_directory,omitempty" yaml:"source_directory,omitempty"`
	TargetDirectory string `json:"target_directory,omitempty" yaml:"target_directory,omitempty"`
	SourceFile      string `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	TargetFile      string `json:"target_file,omitempty" yaml:"target_file,omitempty"`
}

// Source returns the default source endpoint
func (e Endpoints) Source() stream.Endpoint {
	return stream.Endpoint{Directory: e.SourceDirectory, FileName: e.SourceFile}
}

// Target returns the default target endpoint
func (e Endpoints) Target() stream.Endpoint {
	return stream.Endpoint{Directory: e.TargetDirectory, FileName: e.TargetFile}
}

// ✏️ Modification rewrites every match of Pattern in the files it applies to
type Modification struct {
	Pattern string  `json:"pattern" yaml:"pattern"`
	Append  *string `json:"append,omitempty" yaml:"append,omitempty"`
	Prepend *string `json:"prepend,omitempty" yaml:"prepend,omitempty"`
	Replace *string `json:"replace,omitempty" yaml:"replace,omitempty"`
	File    string  `json:"file,omitempty" yaml:"file,omitempty"` // glob limiting the files it applies to
}

// Rule converts the modification into a replacement rule
func (m Modification) Rule() text.ReplacementRule {
	return text.ReplacementRule{
		Pattern: m.Pattern,
		Policy: text.PolicyFromOptions(text.ModifyOptions{
			Append:  m.Append,
			Prepend: m.Prepend,
			Replace: m.Replace,
		}),
		FileFilterGlob: m.File,
	}
}

// 📁 FileSet selects files under the source directory and how they are rendered
type FileSet struct {
	Include       string         `json:"include" yaml:"include"`
	Ignore        []string       `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	Temporary     bool           `json:"temporary,omitempty" yaml:"temporary,omitempty"`
	Modifications []Modification `json:"modifications,omitempty" yaml:"modifications,omitempty"`
}

// Rules returns the replacement rules of the file set in order
func (f FileSet) Rules() []text.ReplacementRule {
	rules := make([]text.ReplacementRule, 0, len(f.Modifications))
	for _, m := range f.Modifications {
		rules = append(rules, m.Rule())
	}
	return rules
}

// 🎯 Config is a taperoll project configuration
type Config struct {
	Template    *Template      `json:"template,omitempty" yaml:"template,omitempty"`
	Endpoints   Endpoints      `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Files       []FileSet      `json:"files,omitempty" yaml:"files,omitempty"`
	Concurrency int            `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	location string
}

// Location is the file the config was loaded from, empty when built in code
func (cfg *Config) Location() string {
	return cfg.location
}

// Params returns the substitution parameters
func (cfg *Config) Params() text.Params {
	return text.Params(cfg.Parameters)
}

// 🔍 Find returns the first config file present in dir
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.Errorf("%w in %s", ErrNotFound, dir)
}

// 📝 Load reads, parses and validates a config file.
// Relative directories are resolved against the directory of the file.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	base := filepath.Dir(path)
	cfg.Endpoints.SourceDirectory = anchor(base, cfg.Endpoints.SourceDirectory)
	cfg.Endpoints.TargetDirectory = anchor(base, cfg.Endpoints.TargetDirectory)
	if cfg.Template != nil {
		cfg.Template.Destination = anchor(base, cfg.Template.Destination)
	}

	logger.Debug().Str("config", cfg.String()).Msg("loaded configuration")
	return cfg, nil
}

func anchor(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// ✅ Validate checks the config and fills in defaults
func (cfg *Config) Validate() error {
	if cfg.Template != nil {
		if cfg.Template.Repo == "" {
			return errors.Errorf("template.repo is required")
		}
		if cfg.Template.Destination != "" {
			cfg.Template.Destination = filepath.Clean(cfg.Template.Destination)
		}
	}

	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	if cfg.Endpoints.SourceDirectory == "" {
		cfg.Endpoints.SourceDirectory = "."
		if cfg.Template != nil && cfg.Template.Destination != "" {
			cfg.Endpoints.SourceDirectory = cfg.Template.Destination
		}
	}
	if cfg.Endpoints.TargetDirectory == "" {
		cfg.Endpoints.TargetDirectory = cfg.Endpoints.SourceDirectory
	}

	if len(cfg.Files) == 0 {
		cfg.Files = []FileSet{{Include: "**/*"}}
	}

	for i, fs := range cfg.Files {
		if fs.Include == "" {
			return errors.Errorf("files[%d].include is required", i)
		}
		if !doublestar.ValidatePattern(fs.Include) {
			return errors.Errorf("files[%d].include: invalid glob %q", i, fs.Include)
		}
		for _, ig := range fs.Ignore {
			if !doublestar.ValidatePattern(ig) {
				return errors.Errorf("files[%d].ignore: invalid glob %q", i, ig)
			}
		}
		if err := text.ValidateRules(fs.Rules()); err != nil {
			return errors.Errorf("files[%d].modifications: %w", i, err)
		}
	}

	return nil
}

func (cfg *Config) String() string {
	src := cfg.Endpoints.SourceDirectory
	if cfg.Template != nil {
		ref := cfg.Template.Ref
		if ref == "" {
			ref = "default"
		}
		src = fmt.Sprintf("%s@%s", cfg.Template.Repo, ref)
	}
	return fmt.Sprintf("%s -> %s (%d file sets)", src, cfg.Endpoints.TargetDirectory, len(cfg.Files))
}
