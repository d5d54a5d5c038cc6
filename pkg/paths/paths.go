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

// Package paths anchors endpoint directories and file names to absolute paths.
package paths

import (
	"os"
	"path/filepath"
)

// 📍 Resolver resolves paths against a fixed base directory
type Resolver struct {
	Base string
}

// 🏭 NewResolver creates a resolver anchored at the current working directory
func NewResolver() Resolver {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return Resolver{Base: wd}
}

// 🎯 Resolve maps a directory and file name to an absolute path.
// Relative inputs are anchored at r.Base; an absolute directory is kept.
func (r Resolver) Resolve(directory, fileName string) string {
	p := filepath.Join(directory, fileName)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	base := r.Base
	if !filepath.IsAbs(base) {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}
	return filepath.Join(base, p)
}

// Resolve maps a directory and file name to an absolute path anchored at the working directory.
func Resolve(directory, fileName string) string {
	return NewResolver().Resolve(directory, fileName)
}
