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

// Package errkind maps arbitrary SDK and runtime failures to a closed set of
// error kinds with stable identifiers and safe messages.  Every tool handler
// funnels its failures through here, so remote callers see the same taxonomy
// regardless of transport or of what the SDK threw.
package errkind

import (
	"context"
	"errors"
	"net"

	breezmcp "github.com/breez/breez-mcp"
	"github.com/breez/breez-mcp/internal/format"
	"github.com/breez/breez-mcp/wallet"
)

// Kind is the stable failure category identifier.
type Kind string

const (
	// Configuration: required credentials absent or malformed.  Fatal at
	// startup, not retryable.
	Configuration Kind = "configuration_error"
	// AlreadyInitialized: programming-contract violation; should not occur
	// in correct usage.
	AlreadyInitialized Kind = "already_initialized"
	// Connection: SDK connectivity failure or timeout.  Retryable.
	Connection Kind = "connection_error"
	// UnknownTool: the requested tool name is not registered.
	UnknownTool Kind = "unknown_tool"
	// InvalidArgument: caller-supplied arguments failed schema validation.
	InvalidArgument Kind = "invalid_argument"
	// Validation: business-rule rejection (insufficient funds, bad invoice,
	// amount out of bounds).
	Validation Kind = "validation_error"
	// Internal: unclassified failure.  Logged in full server-side, surfaced
	// only as a generic message.
	Internal Kind = "internal_error"
)

// internalMessage is the only text the Internal kind ever carries to callers.
const internalMessage = "internal error; see server logs for details"

// Envelope is the structured failure surfaced to remote callers.  It never
// contains secrets or raw SDK internals.
type Envelope struct {
	Kind      Kind   `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// New builds an envelope with an explicit kind for failures the dispatcher
// classifies itself (unknown tool, invalid argument).  Retryability is a
// property of the kind, not of the caller's mood.
func New(kind Kind, message string) Envelope {
	if kind == Internal {
		message = internalMessage
	}
	return Envelope{
		Kind:      kind,
		Message:   message,
		Retryable: kind == Connection,
	}
}

// Normalize classifies err into the taxonomy.  Anything it cannot classify
// becomes Internal with a generic message so that SDK internals never leak.
func Normalize(err error) Envelope {
	switch {
	case err == nil:
		return New(Internal, "")

	case isConfiguration(err):
		return New(Configuration, err.Error())

	case isConnection(err):
		return New(Connection, err.Error())

	case errors.Is(err, wallet.ErrInvalidInvoice),
		errors.Is(err, wallet.ErrInsufficientFunds),
		errors.Is(err, wallet.ErrAmountOutOfRange):
		return New(Validation, err.Error())

	case errors.Is(err, format.ErrNegativeAmount):
		return New(InvalidArgument, err.Error())

	default:
		return New(Internal, "")
	}
}

func isConfiguration(err error) bool {
	var cfgErr *breezmcp.ConfigError
	return errors.As(err, &cfgErr) || errors.Is(err, wallet.ErrUnauthorized)
}

func isConnection(err error) bool {
	var (
		connErr *wallet.ConnError
		netErr  net.Error
	)
	return errors.As(err, &connErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, wallet.ErrNotConnected) ||
		errors.Is(err, breezmcp.ErrNotConnected) ||
		errors.Is(err, breezmcp.ErrClosed)
}
