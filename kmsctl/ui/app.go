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

package ui

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"
	"go.uber.org/zap"

	"github.com/py-kms/kmsvisor/kmsctl/util"
	"github.com/py-kms/kmsvisor/rest"
)

// Poll intervals.  Process state is polled; logs use a long poll.
const (
	refreshInterval = time.Second
	logWait         = time.Minute
	requestTimeout  = 5 * time.Second
)

var errNoProcess = errors.New("Process not found")

type App struct {
	app       *views.Application
	view      views.View
	panel     views.Widget
	info      *InfoPanel
	help      *HelpPanel
	log       *LogPanel
	main      *MainPanel
	client    *rest.Client
	logger    *zap.Logger
	err       error
	sup       *rest.SupervisorInfo
	items     []*rest.ProcessInfo
	logName   string
	logInfo   *rest.LogInfo
	logErr    error
	logCancel context.CancelFunc

	views.WidgetWatchers
}

func (a *App) show(w views.Widget) {
	if w != a.panel {
		a.panel.SetView(nil)
		a.panel = w
	}
	a.panel.SetView(a.view)
	a.panel.Resize()
	a.app.Refresh()
}

func (a *App) ShowHelp() {
	a.show(a.help)
}

func (a *App) ShowInfo(name string) {
	a.info.SetName(name)
	a.show(a.info)
}

// ShowLog switches to the log of the named process, or the supervisor's
// own log when name is empty.
func (a *App) ShowLog(name string) {
	if a.logCancel != nil {
		a.logCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.logInfo = nil
	a.logErr = nil
	a.logName = name
	a.logCancel = cancel
	a.log.SetName(name)
	go a.refreshLog(ctx, name)

	a.show(a.log)
}

func (a *App) ShowMain() {
	a.show(a.main)
}

func (a *App) Quit() {
	if a.logCancel != nil {
		a.logCancel()
	}
	a.app.Quit()
}

func (a *App) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a.logger = logger
}

func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		// Intercept a few control keys up front, for global handling.
		case tcell.KeyCtrlC:
			a.Quit()
			return true
		case tcell.KeyCtrlL:
			a.app.Refresh()
			return true
		}
	}

	if a.panel != nil {
		return a.panel.HandleEvent(ev)
	}
	return false
}

func (a *App) Draw() {
	if a.panel != nil {
		a.panel.Draw()
	}
}

func (a *App) Resize() {
	if a.panel != nil {
		a.panel.Resize()
	}
}

func (a *App) SetView(view views.View) {
	a.view = view
	if a.panel != nil {
		a.panel.SetView(view)
	}
}

func (a *App) Size() (int, int) {
	if a.panel != nil {
		return a.panel.Size()
	}
	return 0, 0
}

func (a *App) GetAppName() string {
	return "kmsctl"
}

func NewApp(client *rest.Client, url string) *App {

	app := &App{}
	app.app = &views.Application{}
	app.client = client
	app.logger = zap.NewNop()
	app.info = NewInfoPanel(app)
	app.help = NewHelpPanel(app)
	app.log = NewLogPanel(app)
	app.main = NewMainPanel(app, url)
	app.panel = app.main
	return app
}

func (a *App) getItems(ctx context.Context) (*rest.SupervisorInfo, []*rest.ProcessInfo, error) {
	sup, e := a.client.GetSupervisor(ctx)
	if e != nil {
		return nil, nil, e
	}
	items := make([]*rest.ProcessInfo, 0, len(sup.Processes))
	for _, n := range sup.Processes {
		item, e := a.client.GetProcess(ctx, n)
		if e == nil {
			items = append(items, item)
		}
	}
	util.SortProcesses(items)
	return sup, items, nil
}

// refresh keeps the app items current until ctx is done.
func (a *App) refresh(ctx context.Context) {
	for {
		rctx, cancel := context.WithTimeout(ctx, requestTimeout)
		sup, items, e := a.getItems(rctx)
		cancel()
		if e != nil {
			a.logger.Debug("refresh failed", zap.Error(e))
		}

		a.app.PostFunc(func() {
			a.sup = sup
			a.items = items
			a.err = e
			a.app.Update()
		})
		select {
		case <-ctx.Done():
			return
		case <-time.After(refreshInterval):
		}
	}
}

func (a *App) refreshLog(ctx context.Context, name string) {
	var info *rest.LogInfo
	var e error
	for {
		info, e = a.client.WatchLog(ctx, name, info, logWait)
		if ctx.Err() != nil {
			return
		}
		if e != nil {
			a.logger.Debug("log refresh failed",
				zap.String("process", name), zap.Error(e))
		}
		li, le := info, e
		a.app.PostFunc(func() {
			if a.logName == name {
				a.logInfo = li
				a.logErr = le
				a.app.Update()
			}
		})
		if e != nil {
			info = nil
			select {
			case <-ctx.Done():
				return
			case <-time.After(refreshInterval):
			}
		}
	}
}

func (a *App) GetSupervisor() (*rest.SupervisorInfo, error) {
	return a.sup, a.err
}

func (a *App) GetItems() ([]*rest.ProcessInfo, error) {
	return a.items, a.err
}

func (a *App) GetItem(name string) (*rest.ProcessInfo, error) {
	if a.err != nil {
		return nil, a.err
	}
	for _, i := range a.items {
		if i.Name == name {
			return i, nil
		}
	}
	return nil, errNoProcess
}

func (a *App) GetLog(name string) (*rest.LogInfo, error) {
	if a.logName == name {
		return a.logInfo, a.logErr
	}
	return nil, nil
}

// levelFor picks the status bar coloring for a process.
func levelFor(p *rest.ProcessInfo) Level {
	switch util.Status(p) {
	case util.StatusFailed:
		return LevelError
	case util.StatusRunning:
		return LevelGood
	case util.StatusExited:
		return LevelWarn
	}
	return LevelNormal
}

func (a *App) Run() error {
	a.logger.Info("starting user interface")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.app.SetRootWidget(a)
	a.ShowMain()
	go a.refresh(ctx)
	return a.app.Run()
}
