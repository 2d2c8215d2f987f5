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

package util

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/py-kms/kmsvisor/rest"
)

func TestStatus(t *testing.T) {
	Convey("Process status words", t, func() {
		So(Status(&rest.ProcessInfo{Running: true, Pid: 10, ExitCode: -1}), ShouldEqual, StatusRunning)
		So(Status(&rest.ProcessInfo{ExitCode: -1}), ShouldEqual, StatusNotStarted)
		So(Status(&rest.ProcessInfo{Pid: 10, ExitCode: 0}), ShouldEqual, StatusExited)
		So(Status(&rest.ProcessInfo{Pid: 10, ExitCode: 143}), ShouldEqual, StatusFailed)
	})
}

func TestFormatDuration(t *testing.T) {
	Convey("Durations print as h:mm:ss", t, func() {
		So(FormatDuration(0), ShouldEqual, "0:00:00")
		So(FormatDuration(61*time.Second), ShouldEqual, "0:01:01")
		So(FormatDuration(26*time.Hour+3*time.Minute+4*time.Second), ShouldEqual, "26:03:04")
	})
}

func TestSortProcesses(t *testing.T) {
	Convey("Failed processes sort first, then running ones", t, func() {
		items := []*rest.ProcessInfo{
			{Name: "webui", Running: true, Pid: 2, ExitCode: -1},
			{Name: "server", Pid: 1, ExitCode: 0},
			{Name: "zzz", Pid: 3, ExitCode: 1},
			{Name: "aaa", Running: true, Pid: 4, ExitCode: -1},
		}
		SortProcesses(items)
		names := []string{}
		for _, i := range items {
			names = append(names, i.Name)
		}
		So(names, ShouldResemble, []string{"zzz", "aaa", "webui", "server"})
	})
}
