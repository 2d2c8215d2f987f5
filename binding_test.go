// Copyright 2026 The Kmsvisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kmsvisor

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// mapEnv is an Env backed by a map; missing keys read as "".
type mapEnv map[string]string

func (m mapEnv) GetString(key string) string {
	return m[key]
}

func TestMapArguments(t *testing.T) {
	Convey("Mapping the environment to server flags", t, func() {
		Convey("An empty environment yields nothing", func() {
			So(MapArguments(mapEnv{}, DefaultBindings), ShouldBeEmpty)
		})

		Convey("Only set, non-empty variables are used", func() {
			env := mapEnv{
				"LCID":         "1033",
				"CLIENT_COUNT": "",
				"HWID":         "RANDOM",
			}
			So(MapArguments(env, DefaultBindings), ShouldResemble,
				[]string{"-l", "1033", "-w", "RANDOM"})
		})

		Convey("Order follows the table, not the environment", func() {
			env := mapEnv{
				"EPID":     "epid",
				"LOGLEVEL": "MININFO",
				"LCID":     "0409",
				"LOGSIZE":  "2",
				"LOGFILE":  "STDOUT",
			}
			args := MapArguments(env, DefaultBindings)
			So(args, ShouldResemble, []string{
				"-l", "0409",
				"-V", "MININFO",
				"-F", "STDOUT",
				"-S", "2",
				"-e", "epid",
			})
			for i := 0; i < 10; i++ {
				So(MapArguments(env, DefaultBindings), ShouldResemble, args)
			}
		})

		Convey("Values are passed through unvalidated", func() {
			env := mapEnv{"CLIENT_COUNT": "not a number"}
			So(MapArguments(env, DefaultBindings), ShouldResemble,
				[]string{"-c", "not a number"})
		})

		Convey("Any table can be used", func() {
			bindings := []EnvironmentBinding{
				{Flag: "-x", Env: "X"},
				{Flag: "-y", Env: "Y"},
			}
			So(MapArguments(mapEnv{"Y": "1"}, bindings), ShouldResemble,
				[]string{"-y", "1"})
		})
	})

	Convey("The default table has unique flags", t, func() {
		seen := map[string]bool{}
		for _, b := range DefaultBindings {
			So(seen[b.Flag], ShouldBeFalse)
			seen[b.Flag] = true
		}
		So(len(seen), ShouldEqual, 9)
	})
}
