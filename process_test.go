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

//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

// The process tests rely on the shell scripts in testdata, and so are
// specific to POSIX systems.

package kmsvisor

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func testScript(name string) string {
	mydir, _ := os.Getwd()
	return filepath.Join(mydir, "testdata", name)
}

func newTestProcess(args ...string) *Process {
	argv := append([]string{"/bin/sh", testScript("process_test.sh")}, args...)
	p := NewProcess("test", argv, nil, nil)
	p.stdout = io.Discard
	p.stderr = io.Discard
	return p
}

func waitDone(p *Process, d time.Duration) bool {
	select {
	case <-p.Done():
		return true
	case <-time.After(d):
		return false
	}
}

func logLines(l *Log) []string {
	recs, _ := l.GetRecords(0)
	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		lines = append(lines, r.Text)
	}
	return lines
}

func TestProcessStartStop(t *testing.T) {
	Convey("Test start/stop of a new process", t, func() {
		p := newTestProcess("sleep", "3600")
		So(p.Started(), ShouldBeFalse)
		So(p.Running(), ShouldBeFalse)
		So(p.ExitCode(), ShouldEqual, -1)

		e := p.Start()
		So(e, ShouldBeNil)
		So(p.Started(), ShouldBeTrue)
		So(p.Running(), ShouldBeTrue)
		So(p.Pid(), ShouldBeGreaterThan, 0)

		time.Sleep(time.Millisecond * 10)

		p.Stop()
		So(p.Running(), ShouldBeFalse)
		So(p.ExitCode(), ShouldEqual, 128+15)
		status, _ := p.Status()
		So(status, ShouldEqual, "Stopped")

		Convey("Stopping again is harmless", func() {
			p.Stop()
			So(p.ExitCode(), ShouldEqual, 128+15)
		})

		Convey("It cannot be started twice", func() {
			So(p.Start(), ShouldEqual, ErrAlreadyStarted)
		})
	})
}

func TestProcessExit(t *testing.T) {
	Convey("Test a process exiting on its own", t, func() {
		p := newTestProcess("exit", "3")
		So(p.Start(), ShouldBeNil)
		So(waitDone(p, 5*time.Second), ShouldBeTrue)
		So(p.Running(), ShouldBeFalse)
		So(p.ExitCode(), ShouldEqual, 3)
		So(p.Err(), ShouldNotBeNil)

		status, _ := p.Status()
		So(status, ShouldStartWith, "Exited")

		// Stopping a process that already went away is a no-op.
		p.Stop()
		So(p.ExitCode(), ShouldEqual, 3)
	})
}

func TestProcessStartFailure(t *testing.T) {
	Convey("Test a process that cannot be started", t, func() {
		p := NewProcess("missing", []string{"/nonexistent/program"}, nil, nil)
		So(p.Start(), ShouldNotBeNil)
		So(p.Started(), ShouldBeFalse)
		So(p.Running(), ShouldBeFalse)
		status, _ := p.Status()
		So(status, ShouldStartWith, "Failed to start")

		// Never started; must not block.
		p.Stop()
	})

	Convey("Test an empty command line", t, func() {
		p := NewProcess("empty", nil, nil, nil)
		So(p.Start(), ShouldEqual, ErrNoCommand)
	})
}

func TestProcessOutput(t *testing.T) {
	Convey("Test capture of process output", t, func() {
		var out strings.Builder
		p := newTestProcess("echo", "hello")
		p.stdout = &out
		So(p.Start(), ShouldBeNil)
		So(waitDone(p, 5*time.Second), ShouldBeTrue)

		lines := logLines(p.Log())
		So(lines, ShouldContain, "out: hello")
		So(lines, ShouldContain, "err: hello")
		// The unterminated last line is kept once the child exits.
		So(lines[len(lines)-1], ShouldEqual, "partial")

		// Stdout is passed through untouched, partial lines included.
		So(out.String(), ShouldEqual, "out: hello\npartial")
	})
}

func TestProcessKill(t *testing.T) {
	Convey("Test a process that ignores SIGTERM", t, func() {
		p := newTestProcess("stubborn", "3")
		p.stopTime = time.Millisecond * 200
		So(p.Start(), ShouldBeNil)
		time.Sleep(time.Millisecond * 100)

		start := time.Now()
		p.Stop()
		So(time.Since(start) < 3*time.Second, ShouldBeTrue)
		So(p.ExitCode(), ShouldEqual, 128+9)
	})
}

func TestProcessEnv(t *testing.T) {
	Convey("Test a process with its own environment", t, func() {
		p := NewProcess("env", []string{"/bin/sh", "-c", "echo $KMSVISOR_ENV"},
			[]string{"KMSVISOR_ENV=overlay"}, nil)
		p.stdout = io.Discard
		So(p.Start(), ShouldBeNil)
		So(waitDone(p, 5*time.Second), ShouldBeTrue)
		So(logLines(p.Log()), ShouldResemble, []string{"overlay"})
	})
}
