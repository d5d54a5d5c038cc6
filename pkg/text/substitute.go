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
	"io"
	"regexp"
)

// PlaceholderPattern matches {{ key }} and {{ key : default }}, with the default optionally quoted
var PlaceholderPattern = regexp.MustCompile(`(?i)\{\{\s*([a-z0-9_$][a-z0-9_$.\-]*)\s*(?::\s*["']?(.*?)["']?\s*)?\}\}`)

// 🧩 placeholder resolves a placeholder match against params
type placeholder struct {
	params Params
}

func (p placeholder) apply(m Match) string {
	if v, ok := p.params.String(m.Group(1)); ok {
		return v
	}
	if m.Has(2) {
		return m.Group(2)
	}
	// unresolved placeholders stay visible in the output
	return m.Text
}

// 🏭 NewSubstitutor wraps src so that every placeholder is replaced by its parameter value,
// its inline default, or left as is.
func NewSubstitutor(src io.Reader, params Params, opts ...RewriterOption) (*Rewriter, error) {
	return NewRewriter(src, PlaceholderPattern, placeholder{params: params}, opts...)
}

// Substitute resolves the placeholders of a string in memory
func Substitute(s string, params Params) string {
	p := placeholder{params: params}
	return PlaceholderPattern.ReplaceAllStringFunc(s, func(text string) string {
		loc := PlaceholderPattern.FindStringSubmatchIndex(text)
		return p.apply(newMatch([]byte(text), loc))
	})
}
