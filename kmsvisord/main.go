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

// Command kmsvisord is the py-kms container entrypoint.  It takes no
// flags: everything comes from the environment (IP, PORT, WEBUI, LOGLEVEL,
// the server option variables, and SUPERVISOR_ADDR for the status API).
// It exits with the exit code of the KMS server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/py-kms/kmsvisor"
	"github.com/py-kms/kmsvisor/rest"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := kmsvisor.LoadConfig(kmsvisor.NewEnv())
	rec := kmsvisor.NewLog()
	logger := kmsvisor.NewLogger(cfg.LogLevel, os.Stdout, rec)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)
	defer stop()

	s := kmsvisor.NewSupervisor(cfg, logger, kmsvisor.WithLog(rec))

	var srv *http.Server
	if cfg.StatusAddr != "" {
		srv = &http.Server{
			Addr:              cfg.StatusAddr,
			Handler:           rest.NewHandler(s),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("status API listening", zap.String("addr", cfg.StatusAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("status API failed", zap.Error(err))
			}
		}()
	}

	code, err := s.Run(ctx)
	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		srv.Shutdown(sctx)
		cancel()
	}
	if err != nil {
		logger.Error("supervisor failed", zap.Error(err))
		return 1
	}
	logger.Info("server exited", zap.Int("code", code))
	return code
}
