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
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
)

func TestBootstrapLevel(t *testing.T) {
	Convey("Translating py-kms log levels", t, func() {
		So(BootstrapLevel(""), ShouldEqual, zapcore.InfoLevel)
		So(BootstrapLevel("INFO"), ShouldEqual, zapcore.InfoLevel)
		So(BootstrapLevel("MININFO"), ShouldEqual, zapcore.InfoLevel)
		So(BootstrapLevel("mininfo"), ShouldEqual, zapcore.InfoLevel)
		So(BootstrapLevel("DEBUG"), ShouldEqual, zapcore.DebugLevel)
		So(BootstrapLevel("WARNING"), ShouldEqual, zapcore.WarnLevel)
		So(BootstrapLevel("ERROR"), ShouldEqual, zapcore.ErrorLevel)
		So(BootstrapLevel("CRITICAL"), ShouldEqual, zapcore.FatalLevel)
		So(BootstrapLevel("dpanic"), ShouldEqual, zapcore.DPanicLevel)
		So(BootstrapLevel("bogus"), ShouldEqual, zapcore.InfoLevel)
	})
}

func TestNewLogger(t *testing.T) {
	Convey("The bootstrap logger", t, func() {
		var out bytes.Buffer
		rec := NewLog()

		Convey("Filters by level and tees into the record", func() {
			logger := NewLogger("MININFO", &out, rec)
			logger.Debug("hidden")
			logger.Info("shown")
			logger.Sync()

			So(out.String(), ShouldContainSubstring, "shown")
			So(out.String(), ShouldNotContainSubstring, "hidden")

			lines := logLines(rec)
			So(lines, ShouldHaveLength, 1)
			So(lines[0], ShouldContainSubstring, "INFO")
			So(lines[0], ShouldContainSubstring, "supervisor")
			So(lines[0], ShouldContainSubstring, "shown")
		})

		Convey("Logs debug entries at DEBUG", func() {
			logger := NewLogger("DEBUG", &out, nil)
			logger.Debug("detail")
			So(out.String(), ShouldContainSubstring, "detail")
		})
	})
}
