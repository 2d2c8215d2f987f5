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
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseListen(t *testing.T) {
	Convey("Parsing listen addresses", t, func() {
		Convey("Empty and blank values fall back to the wildcard", func() {
			So(ParseListen(""), ShouldResemble, ListenSpec{"::"})
			So(ParseListen(" \t\n "), ShouldResemble, ListenSpec{"::"})
		})

		Convey("A single address has no peers", func() {
			l := ParseListen("0.0.0.0")
			So(l.Bind(), ShouldEqual, "0.0.0.0")
			So(l.Peers("1688"), ShouldBeNil)
		})

		Convey("Further addresses become peers, in order", func() {
			l := ParseListen("  0.0.0.0   192.168.1.10\t10.0.0.1 ")
			So(l, ShouldHaveLength, 3)
			So(l.Bind(), ShouldEqual, "0.0.0.0")
			So(l.Peers("1688"), ShouldResemble,
				[]string{"192.168.1.10,1688", "10.0.0.1,1688"})
		})

		Convey("IPv6 peers are not bracketed", func() {
			l := ParseListen(":: fe80::1")
			So(l.Peers("1700"), ShouldResemble, []string{"fe80::1,1700"})
		})
	})
}
