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
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/views"

	"github.com/py-kms/kmsvisor/kmsctl/util"
	"github.com/py-kms/kmsvisor/rest"
)

type InfoPanel struct {
	text *views.TextArea
	info *rest.ProcessInfo
	name string // process name

	Panel
}

func NewInfoPanel(app *App) *InfoPanel {
	i := &InfoPanel{}

	i.Panel.Init(app)
	i.text = views.NewTextArea()
	i.text.EnableCursor(false)
	i.text.SetStyle(StyleNormal)
	i.SetContent(i.text)

	return i
}

func (i *InfoPanel) Draw() {
	i.update()
	i.Panel.Draw()
}

func (i *InfoPanel) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEsc:
			i.app.ShowMain()
			return true
		case tcell.KeyF1:
			i.app.ShowHelp()
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'Q', 'q':
				i.app.ShowMain()
				return true
			case 'H', 'h':
				i.app.ShowHelp()
				return true
			case 'L', 'l':
				if i.info != nil {
					i.app.ShowLog(i.info.Name)
					return true
				}
			}
		}
	}
	return i.Panel.HandleEvent(ev)
}

func (i *InfoPanel) SetName(name string) {
	i.name = name
}

// infoLines renders the details of a process.
func infoLines(s *rest.ProcessInfo) []string {
	exit := "-"
	if s.ExitCode >= 0 {
		exit = fmt.Sprint(s.ExitCode)
	}
	return []string{
		fmt.Sprintf("%10s %s", "Name:", s.Name),
		fmt.Sprintf("%10s %s", "Status:", util.Status(s)),
		fmt.Sprintf("%10s %d", "Pid:", s.Pid),
		fmt.Sprintf("%10s %s", "Exit code:", exit),
		fmt.Sprintf("%10s %s", "Since:", s.TimeStamp.Format(time.RFC3339)),
		fmt.Sprintf("%10s %s", "Detail:", s.Status),
		fmt.Sprintf("%10s %s", "Command:", strings.Join(s.Args, " ")),
	}
}

// update runs on the application goroutine.
func (i *InfoPanel) update() {

	s, e := i.app.GetItem(i.name)
	i.info = s
	words := []string{"[ESC] Main", "[H] Help"}

	i.SetTitle("Details for " + i.name)

	if s == nil {
		if e != nil {
			i.SetStatus(fmt.Sprintf("No data: %v", e))
			i.SetLevel(LevelError)
		} else {
			i.SetStatus("Loading...")
			i.SetLevel(LevelNormal)
		}
		i.text.SetLines(nil)
		i.SetKeys(words)
		return
	}

	i.SetStatus("")
	i.SetLevel(levelFor(s))
	i.text.SetLines(infoLines(s))
	i.SetKeys(append(words, "[L] Log"))
}
