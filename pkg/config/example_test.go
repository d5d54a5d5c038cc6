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

package config_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/walteh/taperoll/pkg/config"
)

func ExampleLoad() {
	dir, err := os.MkdirTemp("", "taperoll-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	configYAML := `
template:
  repo: github.com/walteh/starter
  destination: my-app
parameters:
  name: my-app
files:
  - include: "**/*.go"
    modifications:
      - pattern: starter
        replace: my-app
`
	path := filepath.Join(dir, ".taperoll.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		fmt.Println(err)
		return
	}

	cfg, err := config.Load(context.Background(), path)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cfg.Template.Repo, filepath.Base(cfg.Endpoints.SourceDirectory), cfg.Concurrency)
	fmt.Println(len(cfg.Files[0].Rules()), "modification")
	// Output:
	// github.com/walteh/starter my-app 4
	// 1 modification
}
