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

// Command kmsctl is a client for the status API of kmsvisord.
//
// The flags are
//
//	-a <address>	- the status API, default is http://127.0.0.1:8321
//	--json		- print JSON instead of text
//
// Subcommands are
//
//	status              - show the supervisor and its processes
//	info <process>      - show detailed process info
//	log [<process>]     - print the log of a process, or the supervisor
//	ui                  - interactive viewer (the default)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/py-kms/kmsvisor/kmsctl/util"
	"github.com/py-kms/kmsvisor/rest"
)

const defaultTimeout = 5 * time.Second

var (
	goodColor  = color.New(color.FgGreen, color.Bold)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

type options struct {
	addr     string
	json     bool
	debugLog string
}

func (o *options) client() *rest.Client {
	addr := o.addr
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return rest.NewClient(nil, addr)
}

func statusColor(s string) *color.Color {
	switch s {
	case util.StatusRunning:
		return goodColor
	case util.StatusFailed:
		return errorColor
	case util.StatusExited:
		return warnColor
	}
	return color.New(color.Reset)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func showStatus(w io.Writer, p *rest.ProcessInfo) {
	d := time.Since(p.TimeStamp)
	// for printing second resolution is sufficient
	d -= d % time.Second
	st := util.Status(p)
	fmt.Fprintf(w, "%-10s %s %10s %s\n", p.Name,
		statusColor(st).Sprintf("%-12s", st), util.FormatDuration(d), p.Status)
}

func newStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the supervisor and its processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()
			c := o.client()
			sup, err := c.GetSupervisor(ctx)
			if err != nil {
				return err
			}
			infos := []*rest.ProcessInfo{}
			for _, n := range sup.Processes {
				info, err := c.GetProcess(ctx, n)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			util.SortProcesses(infos)

			out := cmd.OutOrStdout()
			if o.json {
				return writeJSON(out, struct {
					Supervisor *rest.SupervisorInfo `json:"supervisor"`
					Processes  []*rest.ProcessInfo  `json:"processes"`
				}{sup, infos})
			}
			up := util.FormatDuration(time.Since(sup.StartTime).Truncate(time.Second))
			fmt.Fprintf(out, "Supervisor %s, up %s\n", sup.State, up)
			for _, info := range infos {
				showStatus(out, info)
			}
			return nil
		},
	}
}

func newInfoCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <process>",
		Short: "Show detailed process info",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()
			s, err := o.client().GetProcess(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if o.json {
				return writeJSON(out, s)
			}
			fmt.Fprintf(out, "Name:      %s\n", s.Name)
			fmt.Fprintf(out, "Status:    %s\n", util.Status(s))
			fmt.Fprintf(out, "Pid:       %d\n", s.Pid)
			if s.ExitCode >= 0 {
				fmt.Fprintf(out, "Exit code: %d\n", s.ExitCode)
			}
			fmt.Fprintf(out, "Since:     %v\n", time.Since(s.TimeStamp).Truncate(time.Second))
			fmt.Fprintf(out, "Detail:    %s\n", s.Status)
			fmt.Fprintf(out, "Command:   %s\n", strings.Join(s.Args, " "))
			return nil
		},
	}
}

func newLogCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "log [<process>]",
		Short: "Print the log of a process, or of the supervisor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			l, err := o.client().GetLog(ctx, name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if o.json {
				return writeJSON(out, l.Records)
			}
			for _, r := range l.Records {
				fmt.Fprintf(out, "%s %s\n", r.Time.Format(time.StampMilli), r.Text)
			}
			return nil
		},
	}
}

// debugLogger writes to path, or discards everything if path is empty.
// The terminal belongs to the UI, so it never logs there.
func debugLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}

func newUICmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Interactive viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doUI(o)
		},
	}
	cmd.Flags().StringVar(&o.debugLog, "debug-log", "", "write UI debug log to `file`")
	return cmd
}

func newRootCmd() *cobra.Command {
	o := &options{}
	ui := newUICmd(o)
	root := &cobra.Command{
		Use:           "kmsctl",
		Short:         "Inspect a running kmsvisord",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          ui.RunE,
	}
	root.PersistentFlags().StringVarP(&o.addr, "addr", "a", "http://127.0.0.1:8321", "status API address")
	root.PersistentFlags().BoolVar(&o.json, "json", false, "print JSON")
	root.AddCommand(newStatusCmd(o), newInfoCmd(o), newLogCmd(o), ui)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "Failed: %v\n", err)
		os.Exit(1)
	}
}
