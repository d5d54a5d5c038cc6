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
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// ReplacementRule defines a single pattern rewrite, optionally limited to some files
type ReplacementRule struct {
	// Pattern is the regular expression to match
	Pattern string

	// Policy decides what each match becomes
	Policy Policy

	// FileFilterGlob limits the rule to files matching the glob; empty applies everywhere
	FileFilterGlob string
}

// Compile compiles the rule's pattern
func (r ReplacementRule) Compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, errors.Errorf("compiling pattern %q: %w", r.Pattern, err)
	}
	return re, nil
}

// AppliesTo reports whether the rule should run for the given slash-separated file path
func (r ReplacementRule) AppliesTo(file string) bool {
	if r.FileFilterGlob == "" {
		return true
	}
	matched, err := doublestar.Match(r.FileFilterGlob, file)
	return err == nil && matched
}

// ValidateRules checks that all rules are usable
func ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.Pattern == "" {
			return errors.Errorf("rule %d: pattern is required", i)
		}
		re, err := rule.Compile()
		if err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
		if err := ValidatePattern(re); err != nil {
			return errors.Errorf("rule %d: %w", i, err)
		}
		if rule.FileFilterGlob != "" && !doublestar.ValidatePattern(rule.FileFilterGlob) {
			return errors.Errorf("rule %d: invalid file_filter_glob %q", i, rule.FileFilterGlob)
		}
	}
	return nil
}
