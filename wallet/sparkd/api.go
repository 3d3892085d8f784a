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

package sparkd

// In this file: daemon API operations and their wire types.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/breez/breez-mcp/wallet"
)

type connectRequest struct {
	Mnemonic   string `json:"mnemonic"`
	Network    string `json:"network"`
	StorageDir string `json:"storage_dir,omitempty"`
}

type connectResponse struct {
	baseResponse
	SessionID string `json:"session_id"`
}

// Connect opens a daemon session for the wallet identified by the mnemonic.
// It is a noop if a session is already established.
func (c *Client) Connect(ctx context.Context, req wallet.ConnectRequest) error {
	if c.sessionToken() != "" {
		return nil
	}
	var resp connectResponse
	if err := c.post(ctx, "/session", connectRequest{
		Mnemonic:   req.Mnemonic,
		Network:    string(req.Network),
		StorageDir: req.DataDir,
	}, &resp); err != nil {
		return err
	}
	if resp.SessionID == "" {
		return &wallet.ConnError{Err: fmt.Errorf("daemon returned an empty session id")}
	}
	c.setSession(resp.SessionID)
	c.lg.InfoContext(ctx, "sparkd session established", "network", req.Network)
	return nil
}

// Disconnect closes the daemon session.  The local session token is dropped
// even if the daemon call fails, so the client never gets stuck half-closed.
func (c *Client) Disconnect(ctx context.Context) error {
	if c.sessionToken() == "" {
		return nil
	}
	var resp baseResponse
	err := c.post(ctx, "/session/close", struct{}{}, &resp)
	c.setSession("")
	return err
}

type nodeInfoResponse struct {
	baseResponse
	NodeID              string `json:"node_id"`
	Network             string `json:"network"`
	Synced              bool   `json:"synced"`
	BlockHeight         uint32 `json:"block_height"`
	BalanceMsat         int64  `json:"balance_msat"`
	PendingIncomingMsat int64  `json:"pending_incoming_msat"`
	PendingOutgoingMsat int64  `json:"pending_outgoing_msat"`
	MaxPayableMsat      int64  `json:"max_payable_msat"`
	MaxReceivableMsat   int64  `json:"max_receivable_msat"`
}

// GetInfo returns the node state and balances as the daemon sees them.
func (c *Client) GetInfo(ctx context.Context) (*wallet.NodeInfo, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var resp nodeInfoResponse
	if err := c.post(ctx, "/node/info", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &wallet.NodeInfo{
		NodeID:              resp.NodeID,
		Network:             wallet.Network(resp.Network),
		Synced:              resp.Synced,
		BlockHeight:         resp.BlockHeight,
		BalanceMsat:         resp.BalanceMsat,
		PendingIncomingMsat: resp.PendingIncomingMsat,
		PendingOutgoingMsat: resp.PendingOutgoingMsat,
		MaxPayableMsat:      resp.MaxPayableMsat,
		MaxReceivableMsat:   resp.MaxReceivableMsat,
	}, nil
}

// paymentJSON is the daemon representation of a payment.
type paymentJSON struct {
	ID          string `json:"id"`
	PaymentHash string `json:"payment_hash"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	AmountMsat  int64  `json:"amount_msat"`
	FeeMsat     int64  `json:"fee_msat"`
	Timestamp   int64  `json:"timestamp"` // unix seconds
	Destination string `json:"destination,omitempty"`
	Description string `json:"description,omitempty"`
	Preimage    string `json:"preimage,omitempty"`
}

func (p paymentJSON) toPayment() wallet.Payment {
	return wallet.Payment{
		ID:          p.ID,
		PaymentHash: p.PaymentHash,
		Type:        wallet.PaymentType(p.Type),
		Status:      wallet.PaymentStatus(p.Status),
		AmountMsat:  p.AmountMsat,
		FeeMsat:     p.FeeMsat,
		Timestamp:   time.Unix(p.Timestamp, 0).UTC(),
		Destination: p.Destination,
		Description: p.Description,
		Preimage:    p.Preimage,
	}
}

type sendRequest struct {
	Destination string `json:"destination"`
	AmountMsat  int64  `json:"amount_msat,omitempty"`
	// IdempotencyKey protects against double spends when a request is
	// retried after a transport failure.
	IdempotencyKey string `json:"idempotency_key"`
}

type paymentResponse struct {
	baseResponse
	Payment paymentJSON `json:"payment"`
}

// SendPayment pays a BOLT11 invoice.  Each call carries a fresh idempotency
// key, so a retried request settles at most one payment on the daemon side.
func (c *Client) SendPayment(ctx context.Context, req wallet.SendRequest) (*wallet.Payment, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var resp paymentResponse
	if err := c.post(ctx, "/payments/send", sendRequest{
		Destination:    req.Destination,
		AmountMsat:     req.AmountMsat,
		IdempotencyKey: uuid.NewString(),
	}, &resp); err != nil {
		return nil, err
	}
	p := resp.Payment.toPayment()
	return &p, nil
}

type invoiceRequest struct {
	AmountMsat  int64  `json:"amount_msat"`
	Description string `json:"description,omitempty"`
	ExpirySecs  int64  `json:"expiry_secs,omitempty"`
}

type invoiceResponse struct {
	baseResponse
	Bolt11      string `json:"bolt11"`
	PaymentHash string `json:"payment_hash"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds
}

// CreateInvoice asks the daemon for a BOLT11 invoice.
func (c *Client) CreateInvoice(ctx context.Context, req wallet.InvoiceRequest) (*wallet.Invoice, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var resp invoiceResponse
	if err := c.post(ctx, "/invoices", invoiceRequest{
		AmountMsat:  req.AmountMsat,
		Description: req.Description,
		ExpirySecs:  int64(req.Expiry / time.Second),
	}, &resp); err != nil {
		return nil, err
	}
	return &wallet.Invoice{
		Bolt11:      resp.Bolt11,
		PaymentHash: resp.PaymentHash,
		ExpiresAt:   time.Unix(resp.ExpiresAt, 0).UTC(),
	}, nil
}

type listRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset,omitempty"`
}

type listResponse struct {
	baseResponse
	Payments []paymentJSON `json:"payments"`
}

// ListPayments returns payments newest first, as ordered by the daemon.
func (c *Client) ListPayments(ctx context.Context, req wallet.ListRequest) ([]wallet.Payment, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	var resp listResponse
	if err := c.post(ctx, "/payments/list", listRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
	}, &resp); err != nil {
		return nil, err
	}
	pp := make([]wallet.Payment, len(resp.Payments))
	for i, p := range resp.Payments {
		pp[i] = p.toPayment()
	}
	return pp, nil
}
