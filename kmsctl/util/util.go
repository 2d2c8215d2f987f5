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

// Package util is used for internal implementation bits in the CLI/UI.
package util

import (
	"fmt"
	"sort"
	"time"

	"github.com/py-kms/kmsvisor/rest"
)

const (
	StatusRunning    = "running"
	StatusFailed     = "failed"
	StatusExited     = "exited"
	StatusNotStarted = "not started"
)

// Status condenses a process into one word.  A process that exited
// non-zero counts as failed, even when it was stopped by the supervisor.
func Status(p *rest.ProcessInfo) string {
	if p.Running {
		return StatusRunning
	}
	switch p.ExitCode {
	case -1:
		if p.Pid == 0 {
			return StatusNotStarted
		}
		return StatusRunning
	case 0:
		return StatusExited
	}
	return StatusFailed
}

func FormatDuration(d time.Duration) string {

	sec := int((d % time.Minute) / time.Second)
	min := int((d % time.Hour) / time.Minute)
	hour := int(d / time.Hour)

	return fmt.Sprintf("%d:%02d:%02d", hour, min, sec)
}

type sorted []*rest.ProcessInfo

func (s sorted) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s sorted) Len() int {
	return len(s)
}

func (s sorted) Less(i, j int) bool {
	a, b := Status(s[i]), Status(s[j])

	if (a == StatusFailed) != (b == StatusFailed) {
		// put failed items at front
		return a == StatusFailed
	}
	if (a == StatusRunning) != (b == StatusRunning) {
		return a == StatusRunning
	}
	return s[i].Name < s[j].Name
}

func SortProcesses(items []*rest.ProcessInfo) {
	sort.Stable(sorted(items))
}
