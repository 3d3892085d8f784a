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

package wallet

import (
	"errors"
	"fmt"
)

// Business-rule rejections.  Implementations must return these (possibly
// wrapped) so that callers can map them to a stable error taxonomy.
var (
	// ErrInvalidInvoice indicates the destination could not be parsed as a
	// BOLT11 invoice or Lightning address.
	ErrInvalidInvoice = errors.New("invalid invoice")
	// ErrInsufficientFunds indicates the spendable balance does not cover
	// the requested amount plus fees.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAmountOutOfRange indicates the amount is outside the limits the
	// node can pay or receive.
	ErrAmountOutOfRange = errors.New("amount out of range")
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("api key rejected")
	// ErrNotConnected is returned when an operation is attempted before
	// connect or after disconnect.
	ErrNotConnected = errors.New("wallet is not connected")
)

// ConnError wraps a transport-level failure (network, timeout, daemon
// unavailable).  Callers treat it as retryable.
type ConnError struct {
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("wallet connection error: %s", e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}

func (e *ConnError) Is(target error) bool {
	return target == e.Err
}
