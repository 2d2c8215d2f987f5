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
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Process represents one child operating system process.  A Process is
// started at most once; it is not restarted.
type Process struct {
	name     string
	argv     []string
	env      []string // nil inherits the supervisor's environment
	stdout   io.Writer
	stderr   io.Writer
	stopTime time.Duration // time between SIGTERM and SIGKILL, 0 = forever
	logger   *zap.Logger
	log      *Log
	onStart  func(name string)
	onExit   func(name string, code int)

	cmd     *exec.Cmd
	outputs []*outputWriter
	started bool
	stopped bool
	reason  string
	stamp   time.Time
	err     error
	done    chan struct{}

	lock sync.Mutex
}

// outputWriter passes child output through unchanged, and records each
// complete line in the process log.
type outputWriter struct {
	w    io.Writer
	log  *Log
	buf  []byte
	lock sync.Mutex
}

func (o *outputWriter) Write(b []byte) (int, error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	if o.w != nil {
		o.w.Write(b)
	}
	o.buf = append(o.buf, b...)
	for {
		i := bytes.IndexByte(o.buf, '\n')
		if i < 0 {
			break
		}
		o.log.Write(o.buf[:i+1])
		o.buf = o.buf[i+1:]
	}
	return len(b), nil
}

// flush records a final line that lacked a newline.
func (o *outputWriter) flush() {
	o.lock.Lock()
	defer o.lock.Unlock()
	if len(o.buf) > 0 {
		o.log.Write(o.buf)
		o.buf = nil
	}
}

func (p *Process) Name() string {
	return p.name
}

// Args returns a copy of the argument vector.
func (p *Process) Args() []string {
	return append([]string{}, p.argv...)
}

// Log returns the record of the child's output.
func (p *Process) Log() *Log {
	return p.log
}

// Status returns the most recent status message, and when it was
// recorded.
func (p *Process) Status() (string, time.Time) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.reason, p.stamp
}

func (p *Process) setStatus(reason string) {
	p.reason = reason
	p.stamp = time.Now()
}

// Pid returns the process id, or 0 if the process was never started.
func (p *Process) Pid() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Started reports whether the child was successfully launched.
func (p *Process) Started() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.started
}

// Running is true between a successful Start and the child exiting.
func (p *Process) Running() bool {
	p.lock.Lock()
	started := p.started
	p.lock.Unlock()
	if !started {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Done returns a channel closed once the child has exited and been
// reaped.  For a process that never started it is never closed.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Err returns the error from waiting on the child, which is nil for a
// zero exit status.  It is only meaningful once Done is closed.
func (p *Process) Err() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.err
}

// ExitCode returns the exit status of the child.  A child killed by a
// signal reports 128 plus the signal number, as a shell would.  It
// returns -1 if the child has not exited.
func (p *Process) ExitCode() int {
	select {
	case <-p.done:
	default:
		return -1
	}
	return p.exitCode()
}

func (p *Process) exitCode() int {
	state := p.cmd.ProcessState
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}

func (p *Process) doWait() {
	e := p.cmd.Wait()
	for _, o := range p.outputs {
		o.flush()
	}
	p.lock.Lock()
	p.err = e
	if p.stopped {
		p.setStatus("Stopped")
	} else if e != nil {
		p.setStatus("Exited: " + e.Error())
	} else {
		p.setStatus("Exited")
	}
	p.lock.Unlock()
	if e != nil {
		p.logger.Info("process exited", zap.Error(e))
	} else {
		p.logger.Info("process exited")
	}
	if p.onExit != nil {
		p.onExit(p.name, p.exitCode())
	}
	close(p.done)
}

// Start launches the child without waiting for it.  It fails if the
// program cannot be found or executed.
func (p *Process) Start() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.started || p.cmd != nil {
		return ErrAlreadyStarted
	}
	if len(p.argv) == 0 {
		p.setStatus("Failed to start: " + ErrNoCommand.Error())
		p.err = ErrNoCommand
		return ErrNoCommand
	}

	cmd := exec.Command(p.argv[0], p.argv[1:]...)
	cmd.Env = p.env
	stdout := &outputWriter{w: p.stdout, log: p.log}
	stderr := &outputWriter{w: p.stderr, log: p.log}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	p.outputs = []*outputWriter{stdout, stderr}
	// Grandchildren may keep our output pipes open after the child is
	// gone; don't let them hold up the reaping.
	cmd.WaitDelay = time.Second
	p.cmd = cmd

	if e := cmd.Start(); e != nil {
		p.setStatus("Failed to start: " + e.Error())
		p.err = e
		return e
	}
	p.started = true
	p.setStatus("Started")
	p.logger.Debug("process started", zap.Int("pid", cmd.Process.Pid))
	if p.onStart != nil {
		p.onStart(p.name)
	}

	go p.doWait()
	return nil
}

// Stop asks the child to exit with SIGTERM, and kills it if it has not
// done so within the stop time.  It returns once the child is reaped.
// It is safe to call more than once, and on a child that already exited
// or never started.
func (p *Process) Stop() {
	p.lock.Lock()
	if !p.started {
		p.lock.Unlock()
		return
	}
	p.stopped = true
	proc := p.cmd.Process
	p.lock.Unlock()

	select {
	case <-p.done:
		return
	default:
	}

	if e := proc.Signal(unix.SIGTERM); e != nil && !errors.Is(e, os.ErrProcessDone) {
		p.logger.Warn("failed sending SIGTERM", zap.Error(e))
	}

	var expire <-chan time.Time
	if p.stopTime > 0 {
		timer := time.NewTimer(p.stopTime)
		defer timer.Stop()
		expire = timer.C
	}
	select {
	case <-p.done:
		return
	case <-expire:
	}
	p.logger.Warn("graceful shutdown timed out", zap.Duration("timeout", p.stopTime))
	if e := proc.Kill(); e != nil && !errors.Is(e, os.ErrProcessDone) {
		p.logger.Warn("failed killing", zap.Error(e))
	}
	<-p.done
}

func (p *Process) String() string {
	return fmt.Sprintf("%s: %s", p.name, strings.Join(p.argv, " "))
}

// NewProcess returns an unstarted Process.  A nil env inherits the
// environment of the supervisor.  Output goes to the supervisor's own
// stdout and stderr.
func NewProcess(name string, argv []string, env []string, logger *zap.Logger) *Process {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Process{
		name:     name,
		argv:     append([]string{}, argv...),
		env:      env,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		stopTime: 10 * time.Second,
		logger:   logger.With(zap.String("process", name)),
		log:      NewLog(),
		done:     make(chan struct{}),
		reason:   "Not started",
		stamp:    time.Now(),
	}
}
