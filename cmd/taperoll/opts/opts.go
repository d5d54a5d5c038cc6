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

package opts

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/taperoll/pkg/config"
	"github.com/walteh/taperoll/pkg/log"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile  string
	Debug       bool
	Async       bool
	Concurrency int
	Sets        []string

	// Out receives console output
	Out io.Writer
}

// Console returns the console logger for the command
func (o *RootOpts) Console(ctx context.Context) *log.Logger {
	out := o.Out
	if out == nil {
		out = os.Stdout
	}
	return log.New(out, *zerolog.Ctx(ctx))
}

// 📝 LoadConfig loads the config named by --config, or the one found in the working directory.
// Without either, the defaults render the working directory in place.
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	path := o.ConfigFile
	if path == "" {
		found, err := config.Find(".")
		switch {
		case errors.Is(err, config.ErrNotFound):
			zerolog.Ctx(ctx).Debug().Msg("no config found, using defaults")
		case err != nil:
			return nil, err
		default:
			path = found
		}
	}

	cfg := &config.Config{}
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if o.Concurrency > 0 {
		cfg.Concurrency = o.Concurrency
	}

	params, err := o.Parameters()
	if err != nil {
		return nil, err
	}
	if cfg.Parameters == nil {
		cfg.Parameters = map[string]any{}
	}
	merge(cfg.Parameters, params)

	return cfg, nil
}

// 🔤 Parameters parses the --set key=value flags; dotted keys build nested maps
func (o *RootOpts) Parameters() (map[string]any, error) {
	params := map[string]any{}
	for _, set := range o.Sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid --set %q, expected key=value", set)
		}

		node := params
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return params, nil
}

// merge copies src into dst, descending into maps present on both sides
func merge(dst, src map[string]any) {
	for k, v := range src {
		sv, sok := v.(map[string]any)
		dv, dok := dst[k].(map[string]any)
		if sok && dok {
			merge(dv, sv)
			continue
		}
		dst[k] = v
	}
}
