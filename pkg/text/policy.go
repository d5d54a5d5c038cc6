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

// 🎯 Match is a single pattern match handed to a Policy
type Match struct {
	Text   string   // full match
	Groups []string // captured groups, index 0 is group 1; unmatched groups are ""

	present []bool
}

// Group returns captured group i (1-based), or "" if it did not participate
func (m Match) Group(i int) string {
	if i < 1 || i > len(m.Groups) {
		return ""
	}
	return m.Groups[i-1]
}

// Has reports whether captured group i (1-based) participated in the match
func (m Match) Has(i int) bool {
	if i < 1 || i > len(m.present) {
		return false
	}
	return m.present[i-1]
}

// 🔧 Policy decides what a match is rewritten to.
// The set of policies is closed: Replace, Append, Prepend, Custom and Identity.
type Policy interface {
	apply(m Match) string
}

// Replace substitutes Text for the whole match
type Replace struct {
	Text string
}

func (p Replace) apply(Match) string { return p.Text }

// Append substitutes the match followed by Text
type Append struct {
	Text string
}

func (p Append) apply(m Match) string { return m.Text + p.Text }

// Prepend substitutes Text followed by the match
type Prepend struct {
	Text string
}

func (p Prepend) apply(m Match) string { return p.Text + m.Text }

// CustomFunc receives the match text and the first two captured groups
type CustomFunc func(match, group1, group2 string) string

// Custom substitutes whatever Func returns
type Custom struct {
	Func CustomFunc
}

func (p Custom) apply(m Match) string {
	if p.Func == nil {
		return m.Text
	}
	return p.Func(m.Text, m.Group(1), m.Group(2))
}

// Identity leaves every match unchanged
type Identity struct{}

func (Identity) apply(m Match) string { return m.Text }

// 📦 ModifyOptions is the loosely typed form of a policy, as decoded from configuration.
// Pointer fields distinguish "unset" from an empty string.
type ModifyOptions struct {
	Append  *string
	Prepend *string
	Replace *string
	Custom  CustomFunc
}

// PolicyFromOptions picks exactly one policy from opts.
// Precedence is replace, append, prepend, custom, then identity.
func PolicyFromOptions(opts ModifyOptions) Policy {
	switch {
	case opts.Replace != nil:
		return Replace{Text: *opts.Replace}
	case opts.Append != nil:
		return Append{Text: *opts.Append}
	case opts.Prepend != nil:
		return Prepend{Text: *opts.Prepend}
	case opts.Custom != nil:
		return Custom{Func: opts.Custom}
	default:
		return Identity{}
	}
}
