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

// In this file: MCP server construction, dispatch and argument helpers.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	breezmcp "github.com/breez/breez-mcp"
	"github.com/breez/breez-mcp/internal/errkind"
)

const (
	serverName    = "breez-mcp"
	serverVersion = "1.0.0"
)

// Server wraps an MCP server and the wallet client manager it serves from.
type Server struct {
	mcp    *mcpsrv.MCPServer
	reg    *registry
	mgr    *breezmcp.Manager
	logger *slog.Logger
}

// Option is the signature of the server option-setting function.
type Option func(*Server)

// WithLogger sets the logger to use.  If nil, the default logger is kept.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// New creates an MCP server backed by the wallet manager.  The server is
// populated with all wallet tools but does not start listening until one of
// the Serve* methods is called.
func New(mgr *breezmcp.Manager, opts ...Option) (*Server, error) {
	s := &Server{
		reg:    newRegistry(),
		mgr:    mgr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		serverVersion,
		mcpsrv.WithInstructions(s.instructions()),
	)

	for _, t := range s.tools() {
		if err := s.reg.register(t); err != nil {
			return nil, err
		}
		mcpServer.AddTool(t.Tool, t.Handler)
	}

	s.mcp = mcpServer
	return s, nil
}

// instructions returns the server instructions that describe the wallet to
// the connecting agent.
func (s *Server) instructions() string {
	return fmt.Sprintf(`You are connected to a Breez Spark Lightning wallet (network: %s).

Available tools allow you to:
- Check the wallet balance (get_balance)
- Inspect node state, sync status and limits (get_node_info)
- Pay a BOLT11 Lightning invoice (send_payment)
- Create a BOLT11 invoice to receive funds (create_invoice)
- List recent payments, newest first (list_payments)

Amounts are reported in both satoshis and millisatoshis, with a
human-readable rendering (e.g. "1,234 sats").  Failures are returned as a
JSON envelope {"kind", "message", "retryable"}; retry only when "retryable"
is true.

send_payment moves real funds. Confirm the invoice and amount with the user
before calling it.
`, s.mgr.Network())
}

// tools returns the wallet tools that this server exposes, in the order they
// are advertised.
func (s *Server) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolGetBalance(),
		s.toolGetNodeInfo(),
		s.toolSendPayment(),
		s.toolCreateInvoice(),
		s.toolListPayments(),
	}
}

// Tools returns the advertised tool names in registration order.
func (s *Server) Tools() []string {
	return s.reg.names()
}

// Invoke dispatches a tool call by name, for in-process callers that embed
// the server without a wire transport.  An unknown name yields the
// unknown_tool envelope; it never reaches a handler.
func (s *Server) Invoke(ctx context.Context, name string, args map[string]any) *mcplib.CallToolResult {
	t, ok := s.reg.get(name)
	if !ok {
		return resultEnvelope(errkind.New(errkind.UnknownTool, fmt.Sprintf("unknown tool: %q", name)))
	}
	req := mcplib.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := t.Handler(ctx, req)
	if err != nil {
		// Handlers report failures in-band; a Go error here is a bug.
		s.logger.ErrorContext(ctx, "tool handler returned an error", "tool", name, "error", err)
		return resultEnvelope(errkind.Normalize(err))
	}
	return res
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
// This is the standard transport used by local agent integrations.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	s.logger.InfoContext(ctx, "mcp server listening on stdio", "network", s.mgr.Network())
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}

// fail logs the raw failure server-side and returns its normalised envelope.
// The raw error text never reaches the remote caller.
func (s *Server) fail(ctx context.Context, tool string, err error) *mcplib.CallToolResult {
	s.logger.ErrorContext(ctx, "tool call failed", "tool", tool, "error", err)
	return resultEnvelope(errkind.Normalize(err))
}

// resultJSON is a helper that serialises v to JSON and returns a CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// resultEnvelope wraps a failure envelope in a CallToolResult with
// IsError=true.  The envelope is the tool output, not a protocol error, so
// agents can read the kind and decide whether to retry.
func resultEnvelope(env errkind.Envelope) *mcplib.CallToolResult {
	data, err := json.Marshal(env)
	if err != nil {
		data = []byte(`{"kind":"internal_error","message":"internal error; see server logs for details","retryable":false}`)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
		IsError: true,
	}
}

// stringArg extracts a named string argument from a tool call request.  ok
// is false when the argument is absent; a present value of the wrong type
// is an error, never a silent default.
func stringArg(req mcplib.CallToolRequest, name string) (v string, ok bool, err error) {
	raw, present := req.GetArguments()[name]
	if !present {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, fmt.Errorf("argument %q must be a string", name)
	}
	return s, true, nil
}

// int64Arg extracts a named integer argument from a tool call request.  The
// MCP protocol serialises numbers as float64, so we convert accordingly;
// fractional values are rejected along with non-numbers.
func int64Arg(req mcplib.CallToolRequest, name string) (v int64, ok bool, err error) {
	raw, present := req.GetArguments()[name]
	if !present {
		return 0, false, nil
	}
	switch n := raw.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, true, fmt.Errorf("argument %q must be an integer", name)
		}
		return int64(n), true, nil
	case int:
		return int64(n), true, nil
	case int64:
		return n, true, nil
	}
	return 0, true, fmt.Errorf("argument %q must be an integer", name)
}

// checkArgs rejects argument names outside the tool schema, so a typo'd
// optional fails loudly instead of being silently ignored.
func checkArgs(req mcplib.CallToolRequest, allowed ...string) error {
	for name := range req.GetArguments() {
		if !slices.Contains(allowed, name) {
			return fmt.Errorf("unexpected argument %q", name)
		}
	}
	return nil
}
