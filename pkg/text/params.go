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
	"fmt"
	"strings"
)

// 📦 Params is a nested parameter map queried by dotted key paths such as "app.name"
type Params map[string]any

// Lookup walks key through nested maps. A miss returns (nil, false).
func (p Params) Lookup(key string) (any, bool) {
	if p == nil || key == "" {
		return nil, false
	}

	var cur any = map[string]any(p)
	for _, part := range strings.Split(key, ".") {
		next, ok := child(cur, part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func child(node any, key string) (any, bool) {
	switch m := node.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case Params:
		v, ok := m[key]
		return v, ok
	case map[string]string:
		v, ok := m[key]
		return v, ok
	case map[any]any:
		v, ok := m[key]
		return v, ok
	default:
		return nil, false
	}
}

// String returns the string form of the value at key.
// Present scalar values resolve, including "", 0 and false; nil, maps and slices do not.
func (p Params) String(key string) (string, bool) {
	v, ok := p.Lookup(key)
	if !ok || v == nil {
		return "", false
	}
	switch v.(type) {
	case map[string]any, Params, map[string]string, map[any]any, []any, []string:
		return "", false
	}
	return fmt.Sprint(v), true
}
