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

package config

import (
	"context"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 📝 HCLParser parses HCL config files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

type hclModification struct {
	Pattern string  `hcl:"pattern"`
	Append  *string `hcl:"append,optional"`
	Prepend *string `hcl:"prepend,optional"`
	Replace *string `hcl:"replace,optional"`
	File    string  `hcl:"file,optional"`
}

type hclFileSet struct {
	Include       string            `hcl:"include"`
	Ignore        []string          `hcl:"ignore,optional"`
	Temporary     bool              `hcl:"temporary,optional"`
	Modifications []hclModification `hcl:"modification,block"`
}

type hclConfig struct {
	Template *struct {
		Repo        string   `hcl:"repo"`
		Ref         string   `hcl:"ref,optional"`
		Destination string   `hcl:"destination,optional"`
		Install     []string `hcl:"install,optional"`
		SkipInstall bool     `hcl:"skip_install,optional"`
	} `hcl:"template,block"`
	Endpoints *struct {
		SourceDirectory string `hcl:"source_directory,optional"`
		TargetDirectory string `hcl:"target_directory,optional"`
		SourceFile      string `hcl:"source_file,optional"`
		TargetFile      string `hcl:"target_file,optional"`
	} `hcl:"endpoints,block"`
	Parameters  cty.Value    `hcl:"parameters,optional"`
	Files       []hclFileSet `hcl:"files,block"`
	Concurrency int          `hcl:"concurrency,optional"`
}

// 📝 Parse parses HCL config data
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{Concurrency: hclCfg.Concurrency}

	if t := hclCfg.Template; t != nil {
		cfg.Template = &Template{
			Repo:        t.Repo,
			Ref:         t.Ref,
			Destination: t.Destination,
			Install:     t.Install,
			SkipInstall: t.SkipInstall,
		}
	}

	if e := hclCfg.Endpoints; e != nil {
		cfg.Endpoints = Endpoints{
			SourceDirectory: e.SourceDirectory,
			TargetDirectory: e.TargetDirectory,
			SourceFile:      e.SourceFile,
			TargetFile:      e.TargetFile,
		}
	}

	if !hclCfg.Parameters.IsNull() {
		params, err := ctyToGo(hclCfg.Parameters)
		if err != nil {
			return nil, errors.Errorf("decoding parameters: %w", err)
		}
		m, ok := params.(map[string]any)
		if !ok {
			return nil, errors.Errorf("parameters must be an object, got %s", hclCfg.Parameters.Type().FriendlyName())
		}
		cfg.Parameters = m
	}

	for _, f := range hclCfg.Files {
		fs := FileSet{Include: f.Include, Ignore: f.Ignore, Temporary: f.Temporary}
		for _, m := range f.Modifications {
			fs.Modifications = append(fs.Modifications, Modification(m))
		}
		cfg.Files = append(cfg.Files, fs)
	}

	return cfg, nil
}

// ctyToGo converts a cty value into the plain Go values YAML and JSON decode to
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.Errorf("value of type %s is not known", v.Type().FriendlyName())
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			conv, err := ctyToGo(ev)
			if err != nil {
				return nil, errors.Errorf("%s: %w", k.AsString(), err)
			}
			out[k.AsString()] = conv
		}
		return out, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			conv, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, conv)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unsupported parameter type %s", ty.FriendlyName())
	}
}
