package kdfpool_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/keyring/kdfpool"
)

func TestDeriveReturnsResult(t *testing.T) {
	t.Parallel()
	p := kdfpool.New(2)

	key, err := p.Derive(context.Background(), func() ([]byte, error) {
		return []byte("derived-key"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("derived-key"), key)
}

func TestDeriveBoundsConcurrency(t *testing.T) {
	t.Parallel()
	p := kdfpool.New(1)

	var running int32
	var maxRunning int32
	release := make(chan struct{})

	go func() {
		_, _ = p.Derive(context.Background(), func() ([]byte, error) {
			n := atomic.AddInt32(&running, 1)
			if n > atomic.LoadInt32(&maxRunning) {
				atomic.StoreInt32(&maxRunning, n)
			}
			<-release
			atomic.AddInt32(&running, -1)
			return nil, nil
		})
	}()

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Derive(ctx, func() ([]byte, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestDeriveRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	p := kdfpool.New(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := make(chan struct{})
	_, err := p.Derive(ctx, func() ([]byte, error) {
		close(started)
		return []byte("x"), nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
