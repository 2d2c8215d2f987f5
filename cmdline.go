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
	"strings"
)

const (
	storageFlag    = "-s"
	peerSubcommand = "connect"
	peerFlag       = "-n"
)

// CommandLine builds the argument vector of the KMS server.
//
// The server's argument parser treats the connect subcommand as the end
// of its own options.  Anything belonging to the main parser must come
// before it, or it is silently dropped; hence the storage flag is placed
// ahead of the peers.
func CommandLine(cfg *Config) []string {
	peers := cfg.Listen.Peers(cfg.Port)
	argv := make([]string, 0, 8+len(cfg.Options)+2*len(peers))
	argv = append(argv, cfg.Python, "-u", cfg.Script, cfg.Listen.Bind(), cfg.Port)
	argv = append(argv, cfg.Options...)
	if cfg.WebUI {
		argv = append(argv, storageFlag, cfg.DBPath)
	}
	if len(peers) > 0 {
		argv = append(argv, peerSubcommand)
		for _, p := range peers {
			argv = append(argv, peerFlag, p)
		}
	}
	return argv
}

// WebCommandLine builds the argument vector of the WebUI.  It runs with
// the unnormalized log level, which gunicorn matches case insensitively.
func WebCommandLine(cfg *Config) []string {
	level := cfg.LogLevel
	if level == "" {
		level = DefaultLogLevel
	}
	return []string{cfg.WebProgram, "--log-level", level, cfg.WebApp}
}

// WebEnv returns base with the WebUI specific variables set, replacing
// any earlier definitions.  The relative order of base is kept.
func WebEnv(cfg *Config, base []string) []string {
	overlay := []string{
		"PYKMS_SQLITE_DB_PATH=" + cfg.DBPath,
		"PORT=" + cfg.WebPort,
		"PYKMS_LICENSE_PATH=" + cfg.LicensePath,
		"PYKMS_VERSION_PATH=" + cfg.VersionPath,
	}
	return mergeEnv(base, overlay)
}

func envKey(kv string) string {
	if i := strings.IndexByte(kv, '='); i >= 0 {
		return kv[:i]
	}
	return kv
}

func mergeEnv(base []string, overlay []string) []string {
	replaced := make(map[string]bool, len(overlay))
	for _, kv := range overlay {
		replaced[envKey(kv)] = true
	}
	env := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		if !replaced[envKey(kv)] {
			env = append(env, kv)
		}
	}
	return append(env, overlay...)
}
