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
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// levelAliases maps py-kms specific level names onto standard ones.  It
// only applies to the supervisor's own logger; the server always sees
// the level exactly as configured.
var levelAliases = map[string]string{
	"MININFO": "INFO",
}

// BootstrapLevel translates a py-kms (Python logging) level name into a
// zap level.  Unknown or empty names mean info.
func BootstrapLevel(name string) zapcore.Level {
	name = strings.ToUpper(strings.TrimSpace(name))
	if alias, ok := levelAliases[name]; ok {
		name = alias
	}
	switch name {
	case "DEBUG":
		return zapcore.DebugLevel
	case "", "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "CRITICAL", "FATAL":
		return zapcore.FatalLevel
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// NewLogger returns the supervisor logger.  Entries are written to w with
// colored levels; if rec is not nil they are recorded there as well, in
// plain text, for the status API.
func NewLogger(level string, w io.Writer, rec *Log) *zap.Logger {
	lvl := BootstrapLevel(level)

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		lvl,
	)
	if rec != nil {
		plain := zap.NewDevelopmentEncoderConfig()
		plain.EncodeLevel = zapcore.CapitalLevelEncoder
		plain.EncodeTime = zapcore.ISO8601TimeEncoder
		plain.CallerKey = zapcore.OmitKey
		core = zapcore.NewTee(core, zapcore.NewCore(
			zapcore.NewConsoleEncoder(plain), rec, lvl))
	}
	return zap.New(core, zap.AddCaller()).Named("supervisor")
}
