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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/py-kms/kmsvisor"
	"github.com/py-kms/kmsvisor/rest"
)

func statusServer(t *testing.T) *httptest.Server {
	t.Setenv("KMSVISOR_TEST_MODE", "exit")
	t.Setenv("KMSVISOR_TEST_CODE", "2")
	script, _ := filepath.Abs(filepath.Join("..", "testdata", "server.sh"))

	cfg := kmsvisor.DefaultConfig()
	cfg.Python = "/bin/sh"
	cfg.Script = script
	rec := kmsvisor.NewLog()
	s := kmsvisor.NewSupervisor(cfg, kmsvisor.NewLogger("INFO", io.Discard, rec),
		kmsvisor.WithLog(rec), kmsvisor.WithOutput(io.Discard, io.Discard))
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	srv := httptest.NewServer(rest.NewHandler(s))
	t.Cleanup(srv.Close)
	return srv
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	color.NoColor = true

	Convey("Given a status API", t, func() {
		srv := statusServer(t)
		addr := strings.TrimPrefix(srv.URL, "http://")

		Convey("status lists the processes", func() {
			out, err := execute("-a", srv.URL, "status")
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldStartWith, "Supervisor stopped, up ")
			So(lines[1], ShouldStartWith, "server     failed")
			So(lines[1], ShouldEndWith, "Exited: exit status 2")
		})

		Convey("The scheme is optional", func() {
			_, err := execute("-a", addr, "status")
			So(err, ShouldBeNil)
		})

		Convey("status can print JSON", func() {
			out, err := execute("-a", srv.URL, "--json", "status")
			So(err, ShouldBeNil)
			v := struct {
				Supervisor rest.SupervisorInfo  `json:"supervisor"`
				Processes  []*rest.ProcessInfo `json:"processes"`
			}{}
			So(json.Unmarshal([]byte(out), &v), ShouldBeNil)
			So(v.Supervisor.State, ShouldEqual, "stopped")
			So(v.Processes, ShouldHaveLength, 1)
			So(v.Processes[0].ExitCode, ShouldEqual, 2)
		})

		Convey("info shows one process", func() {
			out, err := execute("-a", srv.URL, "info", "server")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Name:      server\n")
			So(out, ShouldContainSubstring, "Exit code: 2\n")
			So(out, ShouldContainSubstring, "Command:   /bin/sh -u ")

			_, err = execute("-a", srv.URL, "info", "webui")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldEqual, "Process not found")

			_, err = execute("-a", srv.URL, "info")
			So(err, ShouldNotBeNil)
		})

		Convey("log prints process output", func() {
			out, err := execute("-a", srv.URL, "log", "server")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "args: :: 1688")
		})

		Convey("log without a process prints the supervisor log", func() {
			out, err := execute("-a", srv.URL, "log")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "stopping process")
		})
	})

	Convey("Unreachable servers are errors", t, func() {
		_, err := execute("-a", "http://127.0.0.1:1", "status")
		So(err, ShouldNotBeNil)
	})
}
