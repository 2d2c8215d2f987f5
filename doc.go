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

// Package kmsvisor supervises the processes of a py-kms container.
//
// A container runs exactly one KMS server process, and optionally one
// administrative web process (the "WebUI").  Both are configured entirely
// from the environment of the container: a fixed table of variables is
// translated into command line flags for the server, the IP and PORT
// variables describe where it listens, and WEBUI=1 enables the web
// process.
//
// The server process is the definitive run signal.  When it exits, for
// whatever reason, or when the supervisor itself is interrupted, the web
// process is stopped first and then the server.  No attempt is made to
// restart anything; that is the job of the container runtime.
//
// The set of processes is fixed; there is no way to add processes at
// run time.
package kmsvisor
