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

// In this file: MCP tool definitions and handler implementations.

import (
	"context"
	"fmt"
	"slices"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/breez/breez-mcp/internal/errkind"
	"github.com/breez/breez-mcp/internal/format"
	"github.com/breez/breez-mcp/wallet"
)

// defDescription is attached to invoices created without a description.
const defDescription = "MCP Payment"

const (
	defListLimit = 10
	minListLimit = 1
	maxListLimit = 100
)

// ─── get_balance ──────────────────────────────────────────────────────────────

func (s *Server) toolGetBalance() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_balance",
		mcplib.WithDescription("Get the current wallet balance. Returns the total and spendable balance, pending incoming/outgoing amounts (when non-zero), and the maximum receivable amount."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetBalance}
}

// balanceResult is the JSON-serialisable balance report.  Pending amounts
// are omitted when zero.
type balanceResult struct {
	Total           format.Amount  `json:"total"`
	Spendable       format.Amount  `json:"spendable"`
	PendingIncoming *format.Amount `json:"pending_incoming,omitempty"`
	PendingOutgoing *format.Amount `json:"pending_outgoing,omitempty"`
	MaxReceivable   format.Amount  `json:"max_receivable"`
}

func (s *Server) handleGetBalance(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if err := checkArgs(req); err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "get_balance: "+err.Error())), nil
	}

	cl, release, err := s.mgr.Lease()
	if err != nil {
		return s.fail(ctx, "get_balance", err), nil
	}
	defer release()

	info, err := cl.GetInfo(ctx)
	if err != nil {
		return s.fail(ctx, "get_balance", err), nil
	}

	var res balanceResult
	if res.Total, err = format.Msat(info.BalanceMsat); err != nil {
		return s.fail(ctx, "get_balance", err), nil
	}
	if res.Spendable, err = format.Msat(info.MaxPayableMsat); err != nil {
		return s.fail(ctx, "get_balance", err), nil
	}
	if res.MaxReceivable, err = format.Msat(info.MaxReceivableMsat); err != nil {
		return s.fail(ctx, "get_balance", err), nil
	}
	if info.PendingIncomingMsat != 0 {
		a, err := format.Msat(info.PendingIncomingMsat)
		if err != nil {
			return s.fail(ctx, "get_balance", err), nil
		}
		res.PendingIncoming = &a
	}
	if info.PendingOutgoingMsat != 0 {
		a, err := format.Msat(info.PendingOutgoingMsat)
		if err != nil {
			return s.fail(ctx, "get_balance", err), nil
		}
		res.PendingOutgoing = &a
	}

	result, err := resultJSON(res)
	if err != nil {
		return s.fail(ctx, "get_balance", err), nil
	}
	return result, nil
}

// ─── get_node_info ────────────────────────────────────────────────────────────

func (s *Server) toolGetNodeInfo() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_node_info",
		mcplib.WithDescription("Get information about the Lightning node: node ID, network, sync status, block height, balance and payment limits."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetNodeInfo}
}

// nodeInfoResult is the JSON-serialisable node report.
type nodeInfoResult struct {
	NodeID        string        `json:"node_id"`
	Network       string        `json:"network"`
	Synced        bool          `json:"synced"`
	BlockHeight   uint32        `json:"block_height"`
	Balance       format.Amount `json:"balance"`
	MaxPayable    format.Amount `json:"max_payable"`
	MaxReceivable format.Amount `json:"max_receivable"`
}

func (s *Server) handleGetNodeInfo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if err := checkArgs(req); err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "get_node_info: "+err.Error())), nil
	}

	cl, release, err := s.mgr.Lease()
	if err != nil {
		return s.fail(ctx, "get_node_info", err), nil
	}
	defer release()

	info, err := cl.GetInfo(ctx)
	if err != nil {
		return s.fail(ctx, "get_node_info", err), nil
	}

	res := nodeInfoResult{
		NodeID:      info.NodeID,
		Network:     string(info.Network),
		Synced:      info.Synced,
		BlockHeight: info.BlockHeight,
	}
	if res.Balance, err = format.Msat(info.BalanceMsat); err != nil {
		return s.fail(ctx, "get_node_info", err), nil
	}
	if res.MaxPayable, err = format.Msat(info.MaxPayableMsat); err != nil {
		return s.fail(ctx, "get_node_info", err), nil
	}
	if res.MaxReceivable, err = format.Msat(info.MaxReceivableMsat); err != nil {
		return s.fail(ctx, "get_node_info", err), nil
	}

	result, err := resultJSON(res)
	if err != nil {
		return s.fail(ctx, "get_node_info", err), nil
	}
	return result, nil
}

// ─── send_payment ─────────────────────────────────────────────────────────────

func (s *Server) toolSendPayment() mcpsrv.ServerTool {
	tool := mcplib.NewTool("send_payment",
		mcplib.WithDescription(`Pay a BOLT11 Lightning invoice. This moves real funds and cannot be undone.

If the invoice carries an amount, omit 'amount_msat'. For zero-amount
invoices 'amount_msat' selects how much to pay.`),
		mcplib.WithString("destination",
			mcplib.Description("The BOLT11 payment request to pay (e.g. lnbc...)"),
			mcplib.Required(),
		),
		mcplib.WithNumber("amount_msat",
			mcplib.Description("Amount to pay in millisatoshis. Only for zero-amount invoices."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSendPayment}
}

// sendPaymentResult is the JSON-serialisable settlement report.
type sendPaymentResult struct {
	ID          string        `json:"id"`
	PaymentHash string        `json:"payment_hash"`
	Status      string        `json:"status"`
	Amount      format.Amount `json:"amount"`
	Fee         format.Amount `json:"fee"`
	Preimage    string        `json:"preimage,omitempty"`
}

func (s *Server) handleSendPayment(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if err := checkArgs(req, "destination", "amount_msat"); err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "send_payment: "+err.Error())), nil
	}

	destination, ok, err := stringArg(req, "destination")
	if err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "send_payment: "+err.Error())), nil
	}
	if !ok || destination == "" {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "send_payment: destination is required")), nil
	}
	// Structural check only; full invoice decoding is the SDK's job.
	if !wallet.IsBolt11(destination) {
		return resultEnvelope(errkind.New(errkind.Validation, "send_payment: destination is not a BOLT11 payment request")), nil
	}
	amount, hasAmount, err := int64Arg(req, "amount_msat")
	if err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "send_payment: "+err.Error())), nil
	}
	if hasAmount && amount <= 0 {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "send_payment: amount_msat must be a positive integer")), nil
	}

	cl, release, err := s.mgr.Lease()
	if err != nil {
		return s.fail(ctx, "send_payment", err), nil
	}
	defer release()

	s.logger.InfoContext(ctx, "mcp: send_payment: paying invoice", "amount_msat", amount)

	p, err := cl.SendPayment(ctx, wallet.SendRequest{
		Destination: destination,
		AmountMsat:  amount,
	})
	if err != nil {
		return s.fail(ctx, "send_payment", err), nil
	}

	res := sendPaymentResult{
		ID:          p.ID,
		PaymentHash: p.PaymentHash,
		Status:      string(p.Status),
		Preimage:    p.Preimage,
	}
	if res.Amount, err = format.Msat(p.AmountMsat); err != nil {
		return s.fail(ctx, "send_payment", err), nil
	}
	if res.Fee, err = format.Msat(p.FeeMsat); err != nil {
		return s.fail(ctx, "send_payment", err), nil
	}

	s.logger.InfoContext(ctx, "mcp: send_payment: settled", "status", p.Status, "fee_msat", p.FeeMsat)

	result, err := resultJSON(res)
	if err != nil {
		return s.fail(ctx, "send_payment", err), nil
	}
	return result, nil
}

// ─── create_invoice ───────────────────────────────────────────────────────────

func (s *Server) toolCreateInvoice() mcpsrv.ServerTool {
	tool := mcplib.NewTool("create_invoice",
		mcplib.WithDescription("Create a BOLT11 Lightning invoice to receive funds."),
		mcplib.WithNumber("amount_msat",
			mcplib.Description("Amount to request in millisatoshis (must be at least 1)."),
			mcplib.Required(),
		),
		mcplib.WithString("description",
			mcplib.Description(fmt.Sprintf("Description embedded in the invoice (default %q).", defDescription)),
		),
		mcplib.WithNumber("expiry_secs",
			mcplib.Description("Invoice validity in seconds. When omitted the wallet default applies."),
		),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleCreateInvoice}
}

// invoiceResult is the JSON-serialisable invoice report.
type invoiceResult struct {
	Bolt11      string        `json:"bolt11"`
	PaymentHash string        `json:"payment_hash"`
	Amount      format.Amount `json:"amount"`
	ExpiresAt   string        `json:"expires_at"`
}

func (s *Server) handleCreateInvoice(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if err := checkArgs(req, "amount_msat", "description", "expiry_secs"); err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "create_invoice: "+err.Error())), nil
	}

	amount, _, err := int64Arg(req, "amount_msat")
	if err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "create_invoice: "+err.Error())), nil
	}
	if amount < 1 {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "create_invoice: amount_msat must be a positive integer")), nil
	}
	description, _, err := stringArg(req, "description")
	if err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "create_invoice: "+err.Error())), nil
	}
	if description == "" {
		description = defDescription
	}
	expiry, hasExpiry, err := int64Arg(req, "expiry_secs")
	if err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "create_invoice: "+err.Error())), nil
	}
	if hasExpiry && expiry <= 0 {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "create_invoice: expiry_secs must be a positive integer")), nil
	}

	cl, release, err := s.mgr.Lease()
	if err != nil {
		return s.fail(ctx, "create_invoice", err), nil
	}
	defer release()

	inv, err := cl.CreateInvoice(ctx, wallet.InvoiceRequest{
		AmountMsat:  amount,
		Description: description,
		Expiry:      time.Duration(expiry) * time.Second,
	})
	if err != nil {
		return s.fail(ctx, "create_invoice", err), nil
	}

	res := invoiceResult{
		Bolt11:      inv.Bolt11,
		PaymentHash: inv.PaymentHash,
		ExpiresAt:   inv.ExpiresAt.Format(time.RFC3339),
	}
	if res.Amount, err = format.Msat(amount); err != nil {
		return s.fail(ctx, "create_invoice", err), nil
	}

	result, err := resultJSON(res)
	if err != nil {
		return s.fail(ctx, "create_invoice", err), nil
	}
	return result, nil
}

// ─── list_payments ────────────────────────────────────────────────────────────

func (s *Server) toolListPayments() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_payments",
		mcplib.WithDescription("List payments sent and received by the wallet, newest first."),
		mcplib.WithNumber("limit",
			mcplib.Description("Maximum number of payments to return (1–100, default 10)."),
		),
		mcplib.WithNumber("offset",
			mcplib.Description("Number of payments to skip from the newest. Use for pagination."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListPayments}
}

// paymentRecord is the JSON-serialisable rendering of one payment.
type paymentRecord struct {
	ID          string        `json:"id"`
	PaymentHash string        `json:"payment_hash,omitempty"`
	Type        string        `json:"type"`
	Status      string        `json:"status"`
	Amount      format.Amount `json:"amount"`
	Fee         format.Amount `json:"fee"`
	Timestamp   string        `json:"timestamp"`
	Destination string        `json:"destination,omitempty"`
	Description string        `json:"description,omitempty"`
}

// listPaymentsResult is the JSON-serialisable payment history page.
type listPaymentsResult struct {
	Payments []paymentRecord `json:"payments"`
	Count    int             `json:"count"`
}

func (s *Server) handleListPayments(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if err := checkArgs(req, "limit", "offset"); err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "list_payments: "+err.Error())), nil
	}

	limit, hasLimit, err := int64Arg(req, "limit")
	if err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "list_payments: "+err.Error())), nil
	}
	if !hasLimit {
		limit = defListLimit
	}
	limit = max(min(limit, maxListLimit), minListLimit) // ensure within bounds
	offset, _, err := int64Arg(req, "offset")
	if err != nil {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "list_payments: "+err.Error())), nil
	}
	if offset < 0 {
		return resultEnvelope(errkind.New(errkind.InvalidArgument, "list_payments: offset must not be negative")), nil
	}

	cl, release, err := s.mgr.Lease()
	if err != nil {
		return s.fail(ctx, "list_payments", err), nil
	}
	defer release()

	pp, err := cl.ListPayments(ctx, wallet.ListRequest{
		Limit:  int(limit),
		Offset: int(offset),
	})
	if err != nil {
		return s.fail(ctx, "list_payments", err), nil
	}

	// The daemon already orders newest first and honours the limit; keep
	// both guarantees even if a backend misbehaves.
	slices.SortStableFunc(pp, func(a, b wallet.Payment) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if int64(len(pp)) > limit {
		pp = pp[:limit]
	}

	records := make([]paymentRecord, 0, len(pp))
	for _, p := range pp {
		rec := paymentRecord{
			ID:          p.ID,
			PaymentHash: p.PaymentHash,
			Type:        string(p.Type),
			Status:      string(p.Status),
			Timestamp:   p.Timestamp.Format(time.RFC3339),
			Destination: p.Destination,
			Description: p.Description,
		}
		if rec.Amount, err = format.Msat(p.AmountMsat); err != nil {
			return s.fail(ctx, "list_payments", err), nil
		}
		if rec.Fee, err = format.Msat(p.FeeMsat); err != nil {
			return s.fail(ctx, "list_payments", err), nil
		}
		records = append(records, rec)
	}

	result, err := resultJSON(listPaymentsResult{Payments: records, Count: len(records)})
	if err != nil {
		return s.fail(ctx, "list_payments", err), nil
	}
	return result, nil
}
