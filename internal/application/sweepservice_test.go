package application_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credtrust/internal/application"
)

func TestSweep_UsesClock(t *testing.T) {
	store := &mockCredentialStore{expireResult: 3}
	svc := application.NewSweepService(store, time.Hour, slog.Default()).WithClock(fixedClock)

	n, err := svc.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.Len(t, store.expireCalls, 1)
	assert.Equal(t, testNow, store.expireCalls[0])
}

func TestSweep_RunsHooks(t *testing.T) {
	store := &mockCredentialStore{expireResult: 4}
	var got []int64
	svc := application.NewSweepService(store, time.Hour, slog.Default()).
		OnSweep(func(n int64) { got = append(got, n) })

	_, err := svc.Sweep(context.Background())
	require.NoError(t, err)

	store.err = errStoreDown
	_, err = svc.Sweep(context.Background())
	require.Error(t, err)

	assert.Equal(t, []int64{4}, got)
}

func TestSweep_StoreFailure(t *testing.T) {
	store := &mockCredentialStore{err: errStoreDown}
	svc := application.NewSweepService(store, time.Hour, slog.Default())

	_, err := svc.Sweep(context.Background())

	assert.ErrorIs(t, err, errStoreDown)
}

func TestSweepService_StartAndSweepNow(t *testing.T) {
	store := &mockCredentialStore{expireResult: 2}
	svc := application.NewSweepService(store, time.Hour, slog.Default()).WithClock(fixedClock)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(stopped)
	}()

	n, err := svc.SweepNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep service did not stop")
	}

	// One initial sweep plus the manual one.
	assert.Len(t, store.expireCalls, 2)
}

func TestSweepNow_CanceledContext(t *testing.T) {
	svc := application.NewSweepService(&mockCredentialStore{}, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SweepNow(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
