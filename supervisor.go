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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Names of the two processes.
const (
	PrimaryName   = "server"
	SecondaryName = "webui"
)

// State is the lifecycle state of a Supervisor.
type State int

const (
	StateStarting State = iota // nothing spawned yet
	StateRunning               // server running
	StateStopping              // tearing the children down
	StateStopped               // both children reaped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLog records supervisor messages in l, for the status API.  The
// logger passed to NewSupervisor is expected to write there already;
// see NewLogger.
func WithLog(l *Log) Option {
	return func(s *Supervisor) {
		s.log = l
	}
}

// WithMetrics replaces the default collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Supervisor) {
		s.metrics = m
	}
}

// WithOutput sends child output to stdout and stderr instead of the
// supervisor's own.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Supervisor) {
		s.stdout = stdout
		s.stderr = stderr
	}
}

// Supervisor launches the KMS server and, if configured, the WebUI, and
// tears both down when the server goes away.  A Supervisor runs once.
type Supervisor struct {
	cfg     *Config
	logger  *zap.Logger
	log     *Log
	metrics *Metrics
	stdout  io.Writer
	stderr  io.Writer
	environ func() []string

	state     State
	ran       bool
	startTime time.Time
	primary   *Process
	secondary *Process
	lock      sync.Mutex
}

func NewSupervisor(cfg *Config, logger *zap.Logger, opts ...Option) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Supervisor{
		cfg:     cfg,
		logger:  logger,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = NewLog()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics("")
	}
	return s
}

func (s *Supervisor) Config() *Config {
	return s.cfg
}

func (s *Supervisor) Log() *Log {
	return s.log
}

func (s *Supervisor) Metrics() *Metrics {
	return s.metrics
}

func (s *Supervisor) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// StartTime is when Run was called, or the zero time before that.
func (s *Supervisor) StartTime() time.Time {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.startTime
}

// Processes returns the server and the WebUI, in that order, as far as
// they have been created.
func (s *Supervisor) Processes() []*Process {
	s.lock.Lock()
	defer s.lock.Unlock()
	procs := make([]*Process, 0, 2)
	if s.primary != nil {
		procs = append(procs, s.primary)
	}
	if s.secondary != nil {
		procs = append(procs, s.secondary)
	}
	return procs
}

// Process looks a process up by name.
func (s *Supervisor) Process(name string) (*Process, error) {
	for _, p := range s.Processes() {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, ErrNoProcess
}

func (s *Supervisor) setState(state State) {
	s.lock.Lock()
	s.state = state
	s.lock.Unlock()
	s.metrics.SetState(state)
	s.logger.Debug("supervisor state", zap.Stringer("state", state))
}

func (s *Supervisor) newProcess(name string, argv []string, env []string) *Process {
	p := NewProcess(name, argv, env, s.logger)
	p.stdout = s.stdout
	p.stderr = s.stderr
	p.stopTime = s.cfg.StopTime
	p.onStart = s.metrics.ProcessStarted
	p.onExit = s.metrics.ProcessExited
	return p
}

// Run starts the processes and blocks until the server exits or ctx is
// cancelled, whichever comes first.  Either way both processes are then
// stopped, WebUI first, and the server's exit code is returned.
//
// Errors are only returned for failures before the server is running:
// the WebUI storage directory cannot be created, or the server cannot be
// started.  How the server ends is reported only through the exit code.
func (s *Supervisor) Run(ctx context.Context) (int, error) {
	s.lock.Lock()
	if s.ran {
		s.lock.Unlock()
		return -1, ErrAlreadyStarted
	}
	s.ran = true
	s.startTime = time.Now()
	s.lock.Unlock()

	cfg := s.cfg
	s.logger.Debug("user id", zap.Int("uid", unix.Getuid()))

	if cfg.WebUI {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.setState(StateStopped)
			return 1, fmt.Errorf("%w %s: %v", ErrStorage, dir, err)
		}
	}

	argv := CommandLine(cfg)
	s.logger.Debug("server command", zap.String("cmd", strings.Join(argv, " ")))

	primary := s.newProcess(PrimaryName, argv, nil)
	s.lock.Lock()
	s.primary = primary
	s.lock.Unlock()
	if err := primary.Start(); err != nil {
		s.metrics.ProcessStartFailed(PrimaryName)
		s.setState(StateStopped)
		return 1, fmt.Errorf("starting %s: %w", PrimaryName, err)
	}
	s.setState(StateRunning)

	if cfg.WebUI {
		s.startSecondary(ctx, primary)
	}

	// Exit of the server and interruption of the supervisor lead to the
	// same shutdown; how the server ended is only visible in its code.
	select {
	case <-primary.Done():
	case <-ctx.Done():
		s.logger.Info("shutdown requested")
	}
	s.shutdown()
	return primary.ExitCode(), nil
}

func (s *Supervisor) startSecondary(ctx context.Context, primary *Process) {
	// Give the server a head start to bind its ports; the WebUI talks
	// to it right away.
	timer := time.NewTimer(s.cfg.StartDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-primary.Done():
		s.logger.Info("server exited, not starting WebUI")
		return
	case <-ctx.Done():
		return
	}

	p := s.newProcess(SecondaryName, WebCommandLine(s.cfg), WebEnv(s.cfg, s.environ()))
	s.lock.Lock()
	s.secondary = p
	s.lock.Unlock()
	if err := p.Start(); err != nil {
		s.metrics.ProcessStartFailed(SecondaryName)
		s.logger.Error("failed to start WebUI, continuing without it", zap.Error(err))
		return
	}
}

// shutdown never fails; whatever goes wrong stopping a child is logged
// by the child's Process.
func (s *Supervisor) shutdown() {
	s.setState(StateStopping)
	for _, p := range []*Process{s.secondaryProcess(), s.primaryProcess()} {
		if p == nil || !p.Started() {
			continue
		}
		s.logger.Info("stopping process", zap.String("process", p.Name()))
		p.Stop()
	}
	s.setState(StateStopped)
}

func (s *Supervisor) primaryProcess() *Process {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.primary
}

func (s *Supervisor) secondaryProcess() *Process {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.secondary
}
