package breezmcp

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/breez/breez-mcp/wallet"
	"github.com/breez/breez-mcp/wallet/mock_wallet"
)

// newTestManager returns a Manager wired to a mock client via a counting
// connector.
func newTestManager(t *testing.T, ctrl *gomock.Controller) (*Manager, *mock_wallet.MockClient, *atomic.Int32) {
	t.Helper()
	m := mock_wallet.NewMockClient(ctrl)
	var dials atomic.Int32
	mgr, err := New(validConfig(), WithConnector(func(ctx context.Context, cfg Config) (wallet.Client, error) {
		dials.Add(1)
		return m, nil
	}))
	require.NoError(t, err)
	return mgr, m, &dials
}

func TestNew_invalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestManager_Connect_idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr, _, dials := newTestManager(t, ctrl)

	require.NoError(t, mgr.Connect(t.Context()))
	require.NoError(t, mgr.Connect(t.Context()))
	assert.Equal(t, int32(1), dials.Load(), "second connect must reuse the live session")
	assert.True(t, mgr.Connected())
}

func TestManager_Connect_failure(t *testing.T) {
	dialErr := &wallet.ConnError{Err: errors.New("daemon unavailable")}
	mgr, err := New(validConfig(), WithConnector(func(ctx context.Context, cfg Config) (wallet.Client, error) {
		return nil, dialErr
	}))
	require.NoError(t, err)

	err = mgr.Connect(t.Context())
	require.Error(t, err)
	var ce *wallet.ConnError
	assert.ErrorAs(t, err, &ce)
	assert.False(t, mgr.Connected())

	_, _, err = mgr.Lease()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestManager_Lease(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr, m, _ := newTestManager(t, ctrl)

	// before connect
	_, _, err := mgr.Lease()
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, mgr.Connect(t.Context()))

	client, release, err := mgr.Lease()
	require.NoError(t, err)
	assert.Same(t, wallet.Client(m), client)
	release()
	release() // double release must be a no-op

	// both leases see the same handle
	c2, release2, err := mgr.Lease()
	require.NoError(t, err)
	assert.Same(t, client, c2)
	release2()
}

func TestManager_Close(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr, m, _ := newTestManager(t, ctrl)
	m.EXPECT().Disconnect(gomock.Any()).Return(nil).Times(1)

	require.NoError(t, mgr.Connect(t.Context()))
	require.NoError(t, mgr.Close(t.Context()))
	assert.False(t, mgr.Connected())

	// idempotent: the second close must not disconnect again.
	require.NoError(t, mgr.Close(t.Context()))

	// after close, leases and reconnects fail with ErrClosed, not a crash.
	_, _, err := mgr.Lease()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, mgr.Connect(t.Context()), ErrClosed)
}

func TestManager_Close_neverConnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr, _, _ := newTestManager(t, ctrl)
	assert.NoError(t, mgr.Close(t.Context()))
}

func TestManager_Close_waitsForInflight(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr, m, _ := newTestManager(t, ctrl)

	disconnected := make(chan struct{})
	m.EXPECT().Disconnect(gomock.Any()).DoAndReturn(func(context.Context) error {
		close(disconnected)
		return nil
	})

	require.NoError(t, mgr.Connect(t.Context()))
	_, release, err := mgr.Lease()
	require.NoError(t, err)

	closed := make(chan error, 1)
	go func() {
		closed <- mgr.Close(context.Background())
	}()

	// close must not settle while the lease is held
	select {
	case <-disconnected:
		t.Fatal("disconnected while a call was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("close did not finish after the lease was released")
	}
	select {
	case <-disconnected:
	default:
		t.Fatal("client was never disconnected")
	}
}

func TestManager_Close_deadline(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr, m, _ := newTestManager(t, ctrl)
	m.EXPECT().Disconnect(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		// an exhausted drain deadline must not poison the teardown
		assert.NoError(t, ctx.Err())
		return nil
	})

	require.NoError(t, mgr.Connect(t.Context()))
	_, release, err := mgr.Lease()
	require.NoError(t, err)
	defer release()

	// a stuck call must not hold up shutdown past the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, mgr.Close(ctx))
}

func TestManager_Close_disconnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mgr, m, _ := newTestManager(t, ctrl)
	m.EXPECT().Disconnect(gomock.Any()).Return(errors.New("session already gone"))

	require.NoError(t, mgr.Connect(t.Context()))
	err := mgr.Close(t.Context())
	require.Error(t, err)
	// the manager is closed regardless
	assert.False(t, mgr.Connected())
	require.NoError(t, mgr.Close(t.Context()))
}
