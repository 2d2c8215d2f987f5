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
	"strings"
)

// DefaultIP listens on all interfaces, IPv4 and IPv6 alike.
const DefaultIP = "::"

// ListenSpec is the parsed form of the IP variable.  The first address is
// where the server binds; any further addresses are peers the server is
// told to connect to as well.  It always holds at least one address.
type ListenSpec []string

// ParseListen splits s on whitespace.  An empty or blank value yields
// the wildcard address rather than an error.
func ParseListen(s string) ListenSpec {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ListenSpec{DefaultIP}
	}
	return ListenSpec(fields)
}

// Bind returns the server's own bind address.
func (l ListenSpec) Bind() string {
	if len(l) == 0 {
		return DefaultIP
	}
	return l[0]
}

// Peers returns the remaining addresses, each joined with port in the
// "address,port" form the server expects.  The order of the input is
// kept.  It returns nil if there is only the bind address.
func (l ListenSpec) Peers(port string) []string {
	if len(l) < 2 {
		return nil
	}
	peers := make([]string, 0, len(l)-1)
	for _, addr := range l[1:] {
		peers = append(peers, addr+","+port)
	}
	return peers
}
