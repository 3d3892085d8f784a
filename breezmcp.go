// Package breezmcp owns the single long-lived wallet client shared by every
// MCP transport in the process.  The Manager constructs the client from
// configuration, connects it exactly once, hands scoped references to tool
// handlers, and guarantees orderly teardown on shutdown.
package breezmcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/breez/breez-mcp/wallet"
	"github.com/breez/breez-mcp/wallet/sparkd"
)

// disconnectTimeout bounds the final session teardown, independently of the
// drain deadline given to Close.
const disconnectTimeout = 5 * time.Second

var (
	// ErrNotConnected is returned by Lease before Connect has completed.
	ErrNotConnected = errors.New("wallet client is not connected")
	// ErrClosed is returned once shutdown has begun.
	ErrClosed = errors.New("wallet client manager is closed")
)

// Connector establishes a wallet session from the configuration.  The default
// connector dials the Spark wallet daemon; tests substitute their own.
type Connector func(ctx context.Context, cfg Config) (wallet.Client, error)

// Manager owns the process-wide wallet client.  Zero value is not usable,
// must be initialised with New.  At most one live client exists per Manager,
// and the intended use is one Manager per process.
type Manager struct {
	cfg     Config
	connect Connector
	lg      *slog.Logger

	mu     sync.Mutex
	client wallet.Client
	closed bool
	calls  sync.WaitGroup // in-flight leased calls
}

// New creates a Manager for the given configuration.  It fails with a
// *ConfigError when required credentials are absent or malformed; no network
// activity happens until Connect.
func New(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		cfg:     cfg,
		connect: sparkdConnector,
		lg:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// sparkdConnector is the production Connector: it dials the Spark wallet
// daemon and establishes a session with the configured credentials.
func sparkdConnector(ctx context.Context, cfg Config) (wallet.Client, error) {
	cl := sparkd.New(cfg.DaemonURL, cfg.APIKey)
	if err := cl.Connect(ctx, wallet.ConnectRequest{
		Mnemonic: cfg.Mnemonic,
		Network:  cfg.Network,
		DataDir:  cfg.DataDir,
	}); err != nil {
		return nil, err
	}
	return cl, nil
}

// Connect establishes the wallet session.  It is idempotent: a second call
// while the session is live returns immediately with the existing session, so
// at most one handle ever exists.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.client != nil {
		return nil
	}
	client, err := m.connect(ctx, m.cfg)
	if err != nil {
		return fmt.Errorf("connect wallet: %w", err)
	}
	m.client = client
	m.lg.InfoContext(ctx, "wallet connected", "network", m.cfg.Network)
	return nil
}

// Connected reports whether a live wallet session exists.  It never touches
// the session itself.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client != nil && !m.closed
}

// Network returns the configured network selector.
func (m *Manager) Network() wallet.Network {
	return m.cfg.Network
}

// Lease returns the live client together with a release function.  The
// client is a non-owning reference: it must be used only for the duration of
// one call, and release must be called when the call settles.  Leases taken
// before shutdown are allowed to finish; new leases fail once Close has
// begun.
func (m *Manager) Lease() (wallet.Client, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, nil, ErrClosed
	}
	if m.client == nil {
		return nil, nil, ErrNotConnected
	}
	m.calls.Add(1)
	var once sync.Once
	release := func() {
		once.Do(m.calls.Done)
	}
	return m.client, release, nil
}

// Close tears down the wallet session exactly once.  It blocks new leases
// first, then waits for in-flight calls to settle (bounded by ctx: a payment
// already submitted must not be aborted mid-flight), and finally disconnects.
// Close is idempotent and safe to call from a signal-driven shutdown path
// concurrently with in-flight tool calls.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}

	settled := make(chan struct{})
	go func() {
		m.calls.Wait()
		close(settled)
	}()
	select {
	case <-settled:
	case <-ctx.Done():
		m.lg.WarnContext(ctx, "shutdown deadline reached with calls in flight")
	}

	// The drain may have consumed the whole deadline; the disconnect gets
	// its own budget so the session is still torn down.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
	defer cancel()
	if err := client.Disconnect(dctx); err != nil {
		return fmt.Errorf("disconnect wallet: %w", err)
	}
	m.lg.InfoContext(ctx, "wallet disconnected")
	return nil
}
