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

package operation

import (
	"context"
	"os"

	"github.com/walteh/taperoll/pkg/config"
	"github.com/walteh/taperoll/pkg/log"
	"github.com/walteh/taperoll/pkg/pipeline"
	"github.com/walteh/taperoll/pkg/status"
	"github.com/walteh/taperoll/pkg/stream"
)

// 🎯 Operation is one unit of work the CLI runs
type Operation interface {
	Execute(ctx context.Context) error
}

// 🔧 Options contains what every operation needs
type Options struct {
	// Config is a validated taperoll configuration
	Config *config.Config

	// Roller builds pipelines; created from Config.Endpoints when nil
	Roller *pipeline.Roller

	// StatusMgr tracks file outcomes; created over the target directory when nil
	StatusMgr *status.Manager

	// Console prints file lines; taken from the context when nil
	Console *log.Logger
}

// 🧱 BaseOperation holds the collaborators shared by all operations
type BaseOperation struct {
	Config    *config.Config
	Roller    *pipeline.Roller
	StatusMgr *status.Manager
	Console   *log.Logger
}

// 🏗️ NewBaseOperation fills in missing collaborators
func NewBaseOperation(opts Options) BaseOperation {
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{}
		// an empty config always validates
		_ = cfg.Validate()
	}

	roller := opts.Roller
	if roller == nil {
		roller = pipeline.New(cfg.Endpoints)
	}

	mgr := opts.StatusMgr
	if mgr == nil {
		mgr = status.New(stream.Endpoint{Directory: cfg.Endpoints.TargetDirectory}.Path(), nil)
	}

	return BaseOperation{
		Config:    cfg,
		Roller:    roller,
		StatusMgr: mgr,
		Console:   opts.Console,
	}
}

func (op BaseOperation) console(ctx context.Context) *log.Logger {
	if op.Console != nil {
		return op.Console
	}
	return log.FromContext(ctx)
}

func (op BaseOperation) sourceDir() string {
	return stream.Endpoint{Directory: op.Config.Endpoints.SourceDirectory}.Path()
}

func (op BaseOperation) targetDir() string {
	return stream.Endpoint{Directory: op.Config.Endpoints.TargetDirectory}.Path()
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
