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

package pipeline

import (
	"github.com/walteh/taperoll/pkg/stream"
)

// 📊 Result describes a finished pipeline
type Result struct {
	Source       string
	Target       string
	Bytes        int64
	Replacements int
	Checksum     string // sha256 of the written content
}

// ⏳ Job is a pipeline running in the background
type Job struct {
	source stream.Endpoint
	target stream.Endpoint

	done   chan struct{}
	result Result
	err    error
}

func newJob(source, target stream.Endpoint) *Job {
	return &Job{source: source, target: target, done: make(chan struct{})}
}

func (j *Job) finish(result Result, err error) {
	j.result, j.err = result, err
	close(j.done)
}

// Done is closed once the pipeline has finished
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the pipeline finishes
func (j *Job) Wait() (Result, error) {
	<-j.done
	return j.result, j.err
}

// Target is the endpoint the job writes
func (j *Job) Target() stream.Endpoint {
	return j.target
}

// Source is the endpoint the job reads
func (j *Job) Source() stream.Endpoint {
	return j.source
}
