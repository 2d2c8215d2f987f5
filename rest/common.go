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

package rest

import (
	"time"

	"github.com/py-kms/kmsvisor"
)

const (
	mimeJson = "application/json; charset=UTF-8"

	// PollEtagHeader and PollTimeHeader turn a log request into a long
	// poll: the server holds the request until the log moves past the
	// given Etag, or until the given number of seconds pass.
	PollEtagHeader = "X-Kmsvisor-Poll-Etag"
	PollTimeHeader = "X-Kmsvisor-Poll-Time"

	// MaxPollTime caps how long the server holds a long poll.
	MaxPollTime = 5 * time.Minute
)

type LogRecord = kmsvisor.LogRecord

type SupervisorInfo struct {
	Name      string    `json:"name"`
	State     string    `json:"state"`
	StartTime time.Time `json:"startTime"`
	WebUI     bool      `json:"webui"`
	Processes []string  `json:"processes"`
}

type ProcessInfo struct {
	Name      string    `json:"name"`
	Args      []string  `json:"args"`
	Pid       int       `json:"pid"`
	Running   bool      `json:"running"`
	ExitCode  int       `json:"exitCode"`
	Status    string    `json:"status"`
	TimeStamp time.Time `json:"tstamp"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}
