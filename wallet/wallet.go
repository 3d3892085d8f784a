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

// Package wallet defines the capability interface through which the rest of
// the process talks to the Lightning wallet SDK, along with the domain types
// that cross that boundary.  The package contains no wallet logic of its own:
// key handling, chain sync and Lightning protocol execution belong to the
// implementation behind the [Client] interface (see the sparkd subpackage for
// the daemon-backed one, and mock_wallet for the generated test double).
package wallet

import (
	"context"
	"strings"
	"time"
)

//go:generate mockgen -destination=mock_wallet/mock_wallet.go . Client

// Network selects the Lightning network the wallet operates on.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// Bolt11Prefix returns the human-readable prefix that BOLT11 invoices carry
// on this network.
func (n Network) Bolt11Prefix() string {
	if n == Testnet {
		return "lntb"
	}
	return "lnbc"
}

// Client is the set of wallet capabilities the tool server depends on.  All
// methods may fail asynchronously and must be called only between a
// successful connect and disconnect.  SendPayment is not idempotent: the
// caller must never retry it on its own.
type Client interface {
	// GetInfo returns the node identity, sync state, balances and limits.
	GetInfo(ctx context.Context) (*NodeInfo, error)
	// SendPayment pays a BOLT11 invoice or address.  At-most-once semantics.
	SendPayment(ctx context.Context, req SendRequest) (*Payment, error)
	// CreateInvoice creates a BOLT11 invoice for the given amount.  Repeated
	// calls with identical arguments produce distinct invoices.
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	// ListPayments returns up to req.Limit payment records, newest first.
	// The listing is finite and not restartable mid-stream; use Offset to
	// page.
	ListPayments(ctx context.Context, req ListRequest) ([]Payment, error)
	// Disconnect tears down the wallet session.
	Disconnect(ctx context.Context) error
}

// NodeInfo describes the wallet node.  All amounts are in millisatoshi.
type NodeInfo struct {
	NodeID              string
	Network             Network
	Synced              bool
	BlockHeight         uint32
	BalanceMsat         int64
	PendingIncomingMsat int64
	PendingOutgoingMsat int64
	MaxPayableMsat      int64
	MaxReceivableMsat   int64
}

// PaymentType is the direction of a payment.
type PaymentType string

const (
	PaymentSend    PaymentType = "send"
	PaymentReceive PaymentType = "receive"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
)

// Payment is a single payment record.
type Payment struct {
	ID          string
	PaymentHash string
	Type        PaymentType
	Status      PaymentStatus
	AmountMsat  int64
	FeeMsat     int64
	Timestamp   time.Time
	Destination string
	Description string
	Preimage    string
}

// SendRequest is the argument set for [Client.SendPayment].
type SendRequest struct {
	// Destination is a BOLT11 invoice or a Lightning address.
	Destination string
	// AmountMsat overrides or supplies the amount; zero means the invoice
	// carries a fixed amount.
	AmountMsat int64
}

// InvoiceRequest is the argument set for [Client.CreateInvoice].
type InvoiceRequest struct {
	AmountMsat  int64
	Description string
	// Expiry is how long the invoice stays payable; zero selects the SDK
	// default.
	Expiry time.Duration
}

// ListRequest is the argument set for [Client.ListPayments].
type ListRequest struct {
	Limit  int
	Offset int
}

// Invoice is a freshly created BOLT11 invoice.
type Invoice struct {
	Bolt11      string
	PaymentHash string
	ExpiresAt   time.Time
}

// ConnectRequest carries the credentials and environment needed to establish
// a wallet session.
type ConnectRequest struct {
	Mnemonic string
	Network  Network
	DataDir  string
}

// IsBolt11 reports whether s is structurally shaped like a BOLT11 payment
// request.  Only the human-readable prefix is checked; full decoding and
// signature verification are the SDK's job.
func IsBolt11(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range []string{"lnbcrt", "lnbc", "lntb"} {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			return true
		}
	}
	return false
}
