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

// Package config loads taperoll project configuration.
//
//	            +-------------+
//	            |   Config    |
//	            +------+------+
//	                   |
//	      +------------+------------+
//	      |            |            |
//	+-----+----+ +-----+----+ +-----+----+
//	|   YAML   | |   JSON   | |   HCL    |
//	|  Parser  | |  Parser  | |  Parser  |
//	+----------+ +----------+ +----------+
//
// 🎯 Purpose:
//   - Describes the template to bootstrap from, the default endpoints,
//     the substitution parameters and the modifications applied per file set
//   - Picks a parser by file extension from a small registry
//   - Fills in defaults and rejects invalid globs and patterns before anything runs
//
// 🔍 Example:
//
//	template {
//	  repo        = "github.com/walteh/starter"
//	  destination = "my-app"
//	}
//
//	parameters = {
//	  name = "my-app"
//	}
//
//	files {
//	  include = "**/*.go"
//
//	  modification {
//	    pattern = "starter"
//	    replace = "my-app"
//	  }
//	}
package config
