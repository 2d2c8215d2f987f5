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

// Env is the source of environment configuration.  A *viper.Viper
// configured with AutomaticEnv satisfies it, which is what NewEnv returns.
// Absent variables must be reported as the empty string.
type Env interface {
	GetString(key string) string
}

// EnvironmentBinding associates a server flag with the environment
// variable that supplies its value.
type EnvironmentBinding struct {
	Flag string
	Env  string
}

// DefaultBindings is the table of server flags derived from the
// environment.  It is a slice, not a map, so that command lines come out
// in the same order every time.
var DefaultBindings = []EnvironmentBinding{
	{Flag: "-l", Env: "LCID"},
	{Flag: "-c", Env: "CLIENT_COUNT"},
	{Flag: "-a", Env: "ACTIVATION_INTERVAL"},
	{Flag: "-r", Env: "RENEWAL_INTERVAL"},
	{Flag: "-w", Env: "HWID"},
	{Flag: "-V", Env: "LOGLEVEL"},
	{Flag: "-F", Env: "LOGFILE"},
	{Flag: "-S", Env: "LOGSIZE"},
	{Flag: "-e", Env: "EPID"},
}

// MapArguments returns flag and value pairs, flattened, for every binding
// whose variable has a non-empty value.  Values are passed through as is;
// the server is responsible for rejecting anything malformed.
func MapArguments(env Env, bindings []EnvironmentBinding) []string {
	args := make([]string, 0, len(bindings)*2)
	for _, b := range bindings {
		if v := env.GetString(b.Env); v != "" {
			args = append(args, b.Flag, v)
		}
	}
	return args
}
