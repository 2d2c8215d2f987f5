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

package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LogInfo is a snapshot of a log, along with the Etag it was served with.
type LogInfo struct {
	Etag    string
	Records []LogRecord
}

// Client talks to the status API of a running kmsvisord.
type Client struct {
	base   string // URI to root of tree on server
	client *http.Client
}

func (c *Client) url(name string) string {
	if name == "" {
		return c.base + "/processes"
	}
	return c.base + "/processes/" + url.PathEscape(name)
}

func (c *Client) logURL(name string) string {
	if name == "" {
		return c.base + "/log"
	}
	return c.url(name) + "/log"
}

// poll issues an HTTP GET against the URL, optionally checking for a cache,
// including optionally issuing a long poll that tries to wait until the
// value changes.  The return values are the new Etag and any error.  If the
// value did not change, then the returned etag will be "", but the error will
// be nil.
func (c *Client) poll(ctx context.Context, url string, etag string, wait time.Duration, v interface{}) (string, error) {

	req, e := http.NewRequestWithContext(ctx, "GET", url, nil)
	if e != nil {
		return "", e
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
		if secs := int(wait / time.Second); secs > 0 {
			req.Header.Set(PollEtagHeader, etag)
			req.Header.Set(PollTimeHeader, strconv.Itoa(secs))
		}
	}

	res, e := c.client.Do(req)
	if e != nil {
		return "", e
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotModified {
		return "", nil
	}
	body, e := io.ReadAll(res.Body)
	if e != nil {
		return "", e
	}
	if res.StatusCode != http.StatusOK {
		err := &Error{}
		if json.Unmarshal(body, err) != nil || err.Message == "" {
			err.Message = res.Status
		}
		err.Code = res.StatusCode
		return "", err
	}
	if e := json.Unmarshal(body, v); e != nil {
		return "", e
	}
	return res.Header.Get("Etag"), nil
}

func (c *Client) GetSupervisor(ctx context.Context) (*SupervisorInfo, error) {
	v := &SupervisorInfo{}
	if _, e := c.poll(ctx, c.base+"/", "", 0, v); e != nil {
		return nil, e
	}
	return v, nil
}

// Processes returns the names of the processes the supervisor has created,
// the server first.
func (c *Client) Processes(ctx context.Context) ([]string, error) {
	v := []string{}
	if _, e := c.poll(ctx, c.url(""), "", 0, &v); e != nil {
		return nil, e
	}
	return v, nil
}

func (c *Client) GetProcess(ctx context.Context, name string) (*ProcessInfo, error) {
	v := &ProcessInfo{}
	if _, e := c.poll(ctx, c.url(name), "", 0, v); e != nil {
		return nil, e
	}
	return v, nil
}

// GetLog returns the log of the named process, or of the supervisor
// itself when name is empty.
func (c *Client) GetLog(ctx context.Context, name string) (*LogInfo, error) {
	return c.WatchLog(ctx, name, nil, 0)
}

// WatchLog waits up to wait for the log to change from last, and returns
// the new contents.  If nothing changed, last is returned.
func (c *Client) WatchLog(ctx context.Context, name string, last *LogInfo, wait time.Duration) (*LogInfo, error) {
	otag := ""
	if last != nil {
		otag = last.Etag
	}
	v := &LogInfo{}
	etag, e := c.poll(ctx, c.logURL(name), otag, wait, &v.Records)
	if e != nil {
		return nil, e
	}
	if etag == "" && last != nil {
		return last, nil
	}
	v.Etag = etag
	return v, nil
}

// NewClient returns a Client handle.  The transport may be nil to use
// a default transport, but it may also be adjusted to support additional
// options such as TLS.  baseURI is the base URL to use.
func NewClient(t http.RoundTripper, baseURI string) *Client {
	if t == nil {
		t = http.DefaultTransport
	}
	return &Client{
		base:   strings.TrimRight(baseURI, "/"),
		client: &http.Client{Transport: t},
	}
}
