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
	"time"

	"github.com/spf13/viper"
)

// Environment variables read directly by the supervisor.  The variables
// of DefaultBindings are read as well, but only to be passed on.
const (
	EnvIP             = "IP"
	EnvPort           = "PORT"
	EnvWebUI          = "WEBUI"
	EnvLogLevel       = "LOGLEVEL"
	EnvSupervisorAddr = "SUPERVISOR_ADDR"
)

const (
	DefaultPort     = "1688"
	DefaultLogLevel = "INFO"
	DefaultDBPath   = "/home/py-kms/db/pykms_database.db"
	DefaultWebPort  = "8080"
)

// Config is everything needed to launch the processes.  It is resolved
// once, at startup, and not changed afterwards.
type Config struct {
	Listen     ListenSpec
	Port       string
	WebUI      bool
	LogLevel   string   // raw LOGLEVEL, may be empty
	Options    []string // flag/value pairs from the binding table
	StatusAddr string

	Python      string
	Script      string
	DBPath      string
	WebProgram  string
	WebApp      string
	WebPort     string
	LicensePath string
	VersionPath string

	// StartDelay is how long the server is given to bind its ports
	// before the WebUI is started.
	StartDelay time.Duration
	// StopTime is how long a process has to exit after SIGTERM before
	// it is killed.
	StopTime time.Duration
}

// DefaultConfig returns a Config with the fixed paths of the py-kms image,
// and the environment dependent parts at their defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:      ListenSpec{DefaultIP},
		Port:        DefaultPort,
		Python:      "/usr/bin/python3",
		Script:      "pykms_Server.py",
		DBPath:      DefaultDBPath,
		WebProgram:  "gunicorn",
		WebApp:      "pykms_WebUI:app",
		WebPort:     DefaultWebPort,
		LicensePath: "/LICENSE",
		VersionPath: "/VERSION",
		StartDelay:  2 * time.Second,
		StopTime:    10 * time.Second,
	}
}

// NewEnv returns a viper instance reading the process environment.
// Empty variables are treated as unset, so they fall back to defaults.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(EnvIP, DefaultIP)
	v.SetDefault(EnvPort, DefaultPort)
	v.SetDefault(EnvWebUI, "0")
	return v
}

// LoadConfig resolves the environment into a Config based on
// DefaultConfig.
func LoadConfig(env Env) *Config {
	cfg := DefaultConfig()
	cfg.Listen = ParseListen(env.GetString(EnvIP))
	if port := env.GetString(EnvPort); port != "" {
		cfg.Port = port
	}
	cfg.WebUI = env.GetString(EnvWebUI) == "1"
	cfg.LogLevel = env.GetString(EnvLogLevel)
	cfg.Options = MapArguments(env, DefaultBindings)
	cfg.StatusAddr = env.GetString(EnvSupervisorAddr)
	return cfg
}
