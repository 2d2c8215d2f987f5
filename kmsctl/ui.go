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

package main

import (
	"github.com/py-kms/kmsvisor/kmsctl/ui"
)

/*
   Our screen has the following appearance:

                          http://127.0.0.1:8321                     kmsctl
    Supervisor running     2 Processes   2 Running
   server     running          12      0:10:32   Started
   webui      running          40      0:10:30   Started
   ...
   [Q] Quit [H] Help [I] Info [L] Log
*/

func doUI(o *options) error {
	logger, err := debugLogger(o.debugLog)
	if err != nil {
		return err
	}
	defer logger.Sync()

	app := ui.NewApp(o.client(), o.addr)
	app.SetLogger(logger)
	return app.Run()
}
