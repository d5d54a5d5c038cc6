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

package text_test

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/walteh/taperoll/pkg/text"
)

func ExampleNewSubstitutor() {
	rw, err := text.NewSubstitutor(strings.NewReader(`Hello {{ name : "World" }}!`), text.Params{"name": "Ada"})
	if err != nil {
		panic(err)
	}
	if _, err := io.Copy(os.Stdout, rw); err != nil {
		panic(err)
	}
	// Output: Hello Ada!
}

func ExampleNewRewriter() {
	rw, err := text.NewRewriter(strings.NewReader("foofoo"), regexp.MustCompile(`foo`), text.Append{Text: "-bar"})
	if err != nil {
		panic(err)
	}
	out, err := io.ReadAll(rw)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(out), rw.Count())
	// Output: foo-barfoo-bar 2
}
