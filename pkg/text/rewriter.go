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
	"bytes"
	"io"
	"regexp"
	"regexp/syntax"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultMaxMatchLength is the longest match a Rewriter guarantees to find across reads
	DefaultMaxMatchLength = 8 << 10

	defaultChunkSize = 32 << 10

	// lines longer than this are cut mid-line even for context sensitive patterns
	maxHeldLine = 1 << 20
)

var (
	ErrNilPattern      = errors.Base("pattern is required")
	ErrAnchoredPattern = errors.Base("pattern is anchored to the start of input")
)

// 🔄 Rewriter is an io.Reader that rewrites every match of a pattern in the stream it wraps.
//
// The pattern runs over a reassembled view of the input rather than over single reads, so
// matches that straddle the source's read boundaries are still found. The last
// MaxMatchLength bytes are held back until more input (or EOF) arrives; a match longer
// than that window may be missed.
type Rewriter struct {
	src     io.Reader
	pattern *regexp.Regexp
	policy  Policy

	window    int
	chunkSize int
	chunk     []byte

	contextual bool           // pattern looks at the character before a match
	resume     *regexp.Regexp // pattern behind one byte of context, for scans that start mid-line
	maxLine    int

	pending  []byte       // read but not yet scanned to completion
	lead     int          // bytes at the start of pending already written, kept as context
	out      bytes.Buffer // rewritten, waiting for the caller
	abutting bool         // pending starts right where the last match ended
	count    int
	err      error
}

// RewriterOption configures a Rewriter
type RewriterOption func(*Rewriter)

// WithMaxMatchLength sets the carry window
func WithMaxMatchLength(n int) RewriterOption {
	return func(r *Rewriter) {
		if n > 0 {
			r.window = n
		}
	}
}

func withMaxHeldLine(n int) RewriterOption {
	return func(r *Rewriter) {
		if n > 0 {
			r.maxLine = n
		}
	}
}

// WithChunkSize sets how many bytes are requested from the source per read
func WithChunkSize(n int) RewriterOption {
	return func(r *Rewriter) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// 🏭 NewRewriter wraps src so that every match of pattern is rewritten by policy.
// A nil policy behaves as Identity.
func NewRewriter(src io.Reader, pattern *regexp.Regexp, policy Policy, opts ...RewriterOption) (*Rewriter, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}
	contextual := usesOp(pattern, syntax.OpBeginLine, syntax.OpWordBoundary, syntax.OpNoWordBoundary)
	if policy == nil {
		policy = Identity{}
	}

	r := &Rewriter{
		src:        src,
		pattern:    pattern,
		policy:     policy,
		window:     DefaultMaxMatchLength,
		chunkSize:  defaultChunkSize,
		contextual: contextual,
		maxLine:    maxHeldLine,
	}
	if contextual {
		// the lazy prefix eats the context byte, so group 1 is the first match after it
		resume, err := regexp.Compile(`\A(?s:.+?)(` + pattern.String() + `)`)
		if err != nil {
			return nil, errors.Errorf("compiling %s: %w", pattern, err)
		}
		r.resume = resume
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Count returns how many matches have been rewritten so far
func (r *Rewriter) Count() int {
	return r.count
}

// Read implements io.Reader
func (r *Rewriter) Read(p []byte) (int, error) {
	for r.out.Len() == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}
	return r.out.Read(p)
}

func (r *Rewriter) fill() {
	if len(r.chunk) != r.chunkSize {
		r.chunk = make([]byte, r.chunkSize)
	}

	n, err := r.src.Read(r.chunk)
	r.pending = append(r.pending, r.chunk[:n]...)

	switch {
	case err == io.EOF:
		r.rewrite(true)
		r.err = io.EOF
	case err != nil:
		r.err = err
	case n > 0:
		r.rewrite(false)
	}
}

// rewrite scans pending and moves everything that can no longer change into out.
// Unless final, only matches starting before len(pending)-window are applied.
func (r *Rewriter) rewrite(final bool) {
	data := r.pending

	limit := len(data)
	if !final {
		limit -= r.window
		if limit <= r.lead {
			return
		}
	}

	matches := r.find(data)

	var cut int
	switch {
	case final:
		cut = len(data)
	case r.contextual && len(data) < r.maxLine:
		cut = lineCut(data, matches, limit)
	default:
		cut = limit
		for _, loc := range matches {
			if loc[0] >= cut {
				break
			}
			if loc[1] >= len(data) {
				cut = loc[0]
				break
			}
		}
		// never split a rune, so the byte kept as context ends one
		for i := 0; i < utf8.UTFMax-1 && cut > r.lead && !utf8.RuneStart(data[cut]); i++ {
			cut--
		}
	}

	r.commit(data, matches, cut, final)
}

// commit writes data up to cut into out, applying every match that starts before it
func (r *Rewriter) commit(data []byte, matches [][]int, cut int, final bool) {
	pos, lastEnd := r.lead, -1
	for _, loc := range matches {
		if loc[0] >= cut && !final {
			break
		}
		r.out.Write(data[pos:loc[0]])
		r.out.WriteString(r.policy.apply(newMatch(data, loc)))
		r.count++
		pos, lastEnd = loc[1], loc[1]
	}

	next := max(pos, cut)
	r.out.Write(data[pos:next])

	r.abutting = !final && (lastEnd == next || (next == r.lead && r.abutting))

	// a scan starting mid-line needs the byte before it for (?m)^ and \b
	hold := 0
	if r.contextual && !final && next > 0 && data[next-1] != '\n' {
		hold = 1
	}
	n := copy(r.pending, data[next-hold:])
	r.pending = r.pending[:n]
	r.lead = hold
}

// find returns the matches in data the way FindAllSubmatchIndex would on the whole input.
// Matches never start inside the context bytes, and an empty match where the last
// committed match ended is ignored.
func (r *Rewriter) find(data []byte) [][]int {
	if r.lead == 0 {
		matches := r.pattern.FindAllSubmatchIndex(data, -1)
		if len(matches) > 0 && r.abutting && matches[0][0] == 0 && matches[0][1] == 0 {
			matches = matches[1:]
		}
		return matches
	}

	var matches [][]int
	prevEnd := -1
	if r.abutting {
		prevEnd = r.lead
	}
	for pos := r.lead; pos <= len(data); {
		loc := r.resume.FindSubmatchIndex(data[pos-1:])
		if loc == nil {
			break
		}
		m := make([]int, len(loc)-2)
		for i, v := range loc[2:] {
			if v >= 0 {
				v += pos - 1
			}
			m[i] = v
		}

		accept := true
		if m[1] == pos {
			accept = m[0] != prevEnd
			if pos >= len(data) {
				pos++
			} else {
				_, w := utf8.DecodeRune(data[pos:])
				pos += w
			}
		} else {
			pos = m[1]
		}
		prevEnd = m[1]
		if accept {
			matches = append(matches, m)
		}
	}
	return matches
}

// lineCut picks the last line start before limit that no match straddles, so the next
// scan begins with the same context ((?m)^, \b) it would have on the whole input.
// Zero means nothing can be committed yet.
func lineCut(data []byte, matches [][]int, limit int) int {
	cut := lineStart(data[:limit])
	for moved := true; moved && cut > 0; {
		moved = false
		for _, loc := range matches {
			if loc[0] >= cut {
				break
			}
			if loc[1] > cut {
				cut = lineStart(data[:loc[0]])
				moved = true
				break
			}
		}
	}
	return cut
}

func lineStart(b []byte) int {
	return bytes.LastIndexByte(b, '\n') + 1
}

func newMatch(data []byte, loc []int) Match {
	m := Match{Text: string(data[loc[0]:loc[1]])}
	groups := len(loc)/2 - 1
	m.Groups = make([]string, groups)
	m.present = make([]bool, groups)
	for g := 0; g < groups; g++ {
		s, e := loc[2*(g+1)], loc[2*(g+1)+1]
		if s < 0 {
			continue
		}
		m.Groups[g] = string(data[s:e])
		m.present[g] = true
	}
	return m
}

// ValidatePattern reports whether pattern can be used by a Rewriter
func ValidatePattern(pattern *regexp.Regexp) error {
	if pattern == nil {
		return errors.WithStack(ErrNilPattern)
	}
	if usesOp(pattern, syntax.OpBeginText) {
		return errors.Errorf("%w: %s", ErrAnchoredPattern, pattern.String())
	}
	return nil
}

func usesOp(re *regexp.Regexp, ops ...syntax.Op) bool {
	tree, err := syntax.Parse(re.String(), syntax.Perl)
	if err != nil {
		return false
	}
	return containsOp(tree, ops)
}

func containsOp(re *syntax.Regexp, ops []syntax.Op) bool {
	for _, op := range ops {
		if re.Op == op {
			return true
		}
	}
	for _, sub := range re.Sub {
		if containsOp(sub, ops) {
			return true
		}
	}
	return false
}
