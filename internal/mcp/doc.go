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

// Package mcp implements the Model Context Protocol (MCP) server that exposes
// a Breez Spark Lightning wallet to AI agents.  It publishes five tools
// (get_balance, get_node_info, send_payment, create_invoice and
// list_payments), all backed by the single long-lived wallet session owned
// by the manager.
//
// Tool failures never escape as protocol errors: every failure is normalised
// into a structured JSON envelope with a stable kind, a safe message and a
// retryable flag, returned as tool output with the error bit set.
//
// Transport: the server supports two transports selectable at runtime:
//   - stdio  – standard MCP stdio transport (default); suitable for local
//     agent integration (e.g. Claude Desktop, VS Code Copilot).
//   - http   – Streamable HTTP transport with a health endpoint; suitable
//     for remote agents or when multiple concurrent clients are needed.
//
// For embedding into an existing HTTP server, Handler returns the streamable
// transport as a plain http.Handler.
package mcp
