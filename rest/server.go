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
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/py-kms/kmsvisor"
)

// Handler wraps a Supervisor, adding read only http.Handler functionality.
type Handler struct {
	s *kmsvisor.Supervisor
	r *mux.Router
}

func (h *Handler) internalError(w http.ResponseWriter, e error) {
	http.Error(w, e.Error(), http.StatusInternalServerError)
}

func (h *Handler) writeJson(w http.ResponseWriter, v interface{}) {
	if b, e := json.Marshal(v); e != nil {
		h.internalError(w, e)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.Write(b)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, e *Error) {
	if b, err := json.Marshal(e); err != nil {
		h.internalError(w, err)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.WriteHeader(e.Code)
		w.Write(b)
	}
}

func (h *Handler) names() []string {
	procs := h.s.Processes()
	l := make([]string, 0, len(procs))
	for _, p := range procs {
		l = append(l, p.Name())
	}
	return l
}

func (h *Handler) getSupervisor(w http.ResponseWriter, r *http.Request) {
	info := &SupervisorInfo{
		Name:      "kmsvisor",
		State:     h.s.State().String(),
		StartTime: h.s.StartTime(),
		WebUI:     h.s.Config().WebUI,
		Processes: h.names(),
	}
	h.writeJson(w, info)
}

func (h *Handler) listProcesses(w http.ResponseWriter, r *http.Request) {
	h.writeJson(w, h.names())
}

func (h *Handler) findProcess(r *http.Request) (*kmsvisor.Process, *Error) {
	name := mux.Vars(r)["process"]
	p, err := h.s.Process(name)
	if err != nil {
		return nil, &Error{http.StatusNotFound, "Process not found"}
	}
	return p, nil
}

func (h *Handler) getProcess(w http.ResponseWriter, r *http.Request) {
	p, e := h.findProcess(r)
	if e != nil {
		h.writeError(w, e)
		return
	}
	info := &ProcessInfo{
		Name:     p.Name(),
		Args:     p.Args(),
		Pid:      p.Pid(),
		Running:  p.Running(),
		ExitCode: p.ExitCode(),
	}
	info.Status, info.TimeStamp = p.Status()
	h.writeJson(w, info)
}

// serveLog writes the records of l.  The log ID is the Etag; a matching
// If-None-Match gets 304, and the poll headers make the request wait for
// new records first.
func (h *Handler) serveLog(w http.ResponseWriter, r *http.Request, l *kmsvisor.Log) {
	last := int64(0)
	if etag := r.Header.Get("If-None-Match"); etag != "" {
		if v, err := strconv.ParseInt(etag, 10, 64); err == nil {
			last = v
		}
	}
	if etag := r.Header.Get(PollEtagHeader); etag != "" {
		secs, _ := strconv.Atoi(r.Header.Get(PollTimeHeader))
		wait := time.Duration(secs) * time.Second
		if wait > MaxPollTime {
			wait = MaxPollTime
		}
		if v, err := strconv.ParseInt(etag, 10, 64); err == nil && wait > 0 {
			l.Watch(v, wait)
		}
	}

	recs, id := l.GetRecords(last)
	w.Header().Set("Etag", strconv.FormatInt(id, 10))
	if last != 0 && id == last {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if recs == nil {
		recs = []LogRecord{}
	}
	h.writeJson(w, recs)
}

func (h *Handler) getProcessLog(w http.ResponseWriter, r *http.Request) {
	if p, e := h.findProcess(r); e != nil {
		h.writeError(w, e)
	} else {
		h.serveLog(w, r, p.Log())
	}
}

func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	h.serveLog(w, r, h.s.Log())
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, &Error{http.StatusNotFound, "Not found"})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.r.ServeHTTP(w, req)
}

func NewHandler(s *kmsvisor.Supervisor) *Handler {
	r := mux.NewRouter()
	h := &Handler{s: s, r: r}
	r.HandleFunc("/", h.getSupervisor).Methods("GET")
	r.HandleFunc("/processes", h.listProcesses).Methods("GET")
	r.HandleFunc("/processes/{process}", h.getProcess).Methods("GET")
	r.HandleFunc("/processes/{process}/log", h.getProcessLog).Methods("GET")
	r.HandleFunc("/log", h.getLog).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.Metrics().Registry(),
		promhttp.HandlerOpts{})).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	return h
}
