// Copyright (c) 2026 Breez MCP Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mcp

// In this file: Streamable HTTP transport and the health endpoint.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Handler returns the Streamable HTTP transport as a plain http.Handler
// mounted at path, for embedding the MCP server into an existing HTTP
// server.  The caller owns the listener lifecycle; the wallet session is
// still torn down through the manager.
func (s *Server) Handler(path string) http.Handler {
	return mcpsrv.NewStreamableHTTPServer(s.mcp,
		mcpsrv.WithEndpointPath(path),
	)
}

// ServeHTTP runs the MCP server as a Streamable HTTP server on addr until
// ctx is cancelled.  Alongside the MCP endpoint at path it serves
// GET /health for load-balancer probes.
func (s *Server) ServeHTTP(ctx context.Context, addr, path string) error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/health", s.handleHealth)
	r.Handle(path, s.Handler(path))

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	s.logger.InfoContext(ctx, "mcp server listening on http", "addr", addr, "path", path)

	var eg errgroup.Group
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mcp http server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.logger.InfoContext(ctx, "mcp server shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return fmt.Errorf("mcp http server shutdown error: %w", err)
		}
		return nil
	})
	return eg.Wait()
}

// healthResponse is the health probe body.
type healthResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Network   string `json:"network"`
}

// handleHealth reports manager liveness.  It never touches the wallet
// session, so a probe cannot interfere with in-flight payments.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Connected: s.mgr.Connected(),
		Network:   string(s.mgr.Network()),
	}
	code := http.StatusOK
	if !resp.Connected {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.ErrorContext(r.Context(), "health: write response", "error", err)
	}
}
