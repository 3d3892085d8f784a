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

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	breezmcp "github.com/breez/breez-mcp"
	"github.com/breez/breez-mcp/internal/errkind"
	"github.com/breez/breez-mcp/wallet"
	"github.com/breez/breez-mcp/wallet/mock_wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testConfig() breezmcp.Config {
	return breezmcp.Config{
		APIKey:    "test-api-key",
		Mnemonic:  testMnemonic,
		Network:   wallet.Testnet,
		DataDir:   "./data",
		DaemonURL: "http://localhost:18723",
	}
}

// newTestServer returns a server connected to a mock wallet client.  The
// mock accepts Disconnect so tests are free to close the manager.
func newTestServer(t *testing.T, ctrl *gomock.Controller) (*Server, *mock_wallet.MockClient, *breezmcp.Manager) {
	t.Helper()
	mc := mock_wallet.NewMockClient(ctrl)
	mc.EXPECT().Disconnect(gomock.Any()).Return(nil).AnyTimes()

	mgr, err := breezmcp.New(testConfig(), breezmcp.WithConnector(
		func(ctx context.Context, cfg breezmcp.Config) (wallet.Client, error) {
			return mc, nil
		},
	))
	require.NoError(t, err)
	require.NoError(t, mgr.Connect(t.Context()))
	t.Cleanup(func() { _ = mgr.Close(context.Background()) })

	srv, err := New(mgr)
	require.NoError(t, err)
	return srv, mc, mgr
}

// newCallReq builds a tool call request the way the wire does: numbers as
// float64.
func newCallReq(name string, args map[string]any) mcplib.CallToolRequest {
	req := mcplib.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// isErrorResult returns true when the result carries IsError=true.
func isErrorResult(r *mcplib.CallToolResult) bool {
	return r != nil && r.IsError
}

// firstText returns the text of the first TextContent in the result.
func firstText(t *testing.T, r *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, r.Content, "result has no content")
	txt, ok := r.Content[0].(mcplib.TextContent)
	require.True(t, ok, "first content item is not TextContent")
	return txt.Text
}

// decodeEnvelope asserts that the result is an error result and decodes the
// failure envelope from it.
func decodeEnvelope(t *testing.T, r *mcplib.CallToolResult) errkind.Envelope {
	t.Helper()
	require.True(t, isErrorResult(r), "expected an error result")
	var env errkind.Envelope
	require.NoError(t, json.Unmarshal([]byte(firstText(t, r)), &env))
	return env
}

func TestNew_registersTools(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, _, _ := newTestServer(t, ctrl)

	assert.Equal(t, []string{
		"get_balance",
		"get_node_info",
		"send_payment",
		"create_invoice",
		"list_payments",
	}, srv.Tools())
}

func TestRegistry_duplicate(t *testing.T) {
	reg := newRegistry()
	tool := mcpsrv.ServerTool{Tool: mcplib.NewTool("get_balance")}

	require.NoError(t, reg.register(tool))
	err := reg.register(tool)
	require.Error(t, err)
	var dup *DuplicateToolError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "get_balance", dup.Name)
}

func TestServer_Invoke_unknownTool(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, _, _ := newTestServer(t, ctrl)

	res := srv.Invoke(t.Context(), "drain_wallet", nil)
	env := decodeEnvelope(t, res)
	assert.Equal(t, errkind.UnknownTool, env.Kind)
	assert.Contains(t, env.Message, "drain_wallet")
	assert.False(t, env.Retryable)
}

func TestServer_Invoke_dispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, mc, _ := newTestServer(t, ctrl)
	mc.EXPECT().GetInfo(gomock.Any()).Return(&wallet.NodeInfo{
		BalanceMsat:    1234567,
		MaxPayableMsat: 1200000,
	}, nil)

	res := srv.Invoke(t.Context(), "get_balance", nil)
	require.False(t, isErrorResult(res))
	assert.Contains(t, firstText(t, res), `"1,234 sats"`)
}

func TestServer_Invoke_afterClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, _, mgr := newTestServer(t, ctrl)
	require.NoError(t, mgr.Close(t.Context()))

	res := srv.Invoke(t.Context(), "get_balance", nil)
	env := decodeEnvelope(t, res)
	assert.Equal(t, errkind.Connection, env.Kind)
	assert.True(t, env.Retryable)
}

func TestServer_instructions(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, _, _ := newTestServer(t, ctrl)

	got := srv.instructions()
	assert.Contains(t, got, "testnet")
	for _, name := range srv.Tools() {
		assert.Contains(t, got, name)
	}
}

func TestServer_Handler(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, _, _ := newTestServer(t, ctrl)

	// the handler must be mountable into a host server
	mux := http.NewServeMux()
	mux.Handle("/mcp", srv.Handler("/mcp"))
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	const initialize = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test-client","version":"0.0.1"}}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mcp", strings.NewReader(initialize))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), serverName)
}

func TestHandleHealth(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, _, mgr := newTestServer(t, ctrl)

	get := func() (int, healthResponse) {
		rec := httptest.NewRecorder()
		srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return rec.Code, resp
	}

	code, resp := get()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, healthResponse{Status: "ok", Connected: true, Network: "testnet"}, resp)

	require.NoError(t, mgr.Close(t.Context()))

	code, resp = get()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, healthResponse{Status: "unavailable", Connected: false, Network: "testnet"}, resp)
}

func TestCheckArgs(t *testing.T) {
	req := newCallReq("send_payment", map[string]any{
		"destination": "lnbc1",
		"amont_msat":  float64(1000), // typo'd on purpose
	})
	err := checkArgs(req, "destination", "amount_msat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amont_msat")

	assert.NoError(t, checkArgs(newCallReq("get_balance", nil)))
}

func TestInt64Arg(t *testing.T) {
	req := newCallReq("list_payments", map[string]any{
		"limit":    float64(25),
		"fraction": float64(2.5),
		"text":     "ten",
	})

	v, ok, err := int64Arg(req, "limit")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 25, v)

	_, ok, err = int64Arg(req, "offset")
	require.NoError(t, err)
	assert.False(t, ok, "absent argument must not look present")

	_, ok, err = int64Arg(req, "fraction")
	require.Error(t, err)
	assert.True(t, ok)

	_, ok, err = int64Arg(req, "text")
	require.Error(t, err)
	assert.True(t, ok, "wrong-typed argument must be reported, not defaulted")
}

func TestStringArg(t *testing.T) {
	req := newCallReq("send_payment", map[string]any{
		"destination": "lnbc1",
		"number":      float64(7),
	})

	v, ok, err := stringArg(req, "destination")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "lnbc1", v)

	_, ok, err = stringArg(req, "description")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = stringArg(req, "number")
	require.Error(t, err)
	assert.True(t, ok)
}
