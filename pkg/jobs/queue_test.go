package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesItems(t *testing.T) {
	var mu sync.Mutex
	var seen []int

	q := New[int]("test", func(ctx context.Context, n int) error {
		mu.Lock()
		seen = append(seen, n)
		mu.Unlock()
		return nil
	}, Config{Workers: 2, BufferSize: 8})

	q.Start(context.Background())
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(i))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 5
	}, time.Second, 10*time.Millisecond)

	q.Stop()
}

func TestQueueRetriesFailures(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	q := New[string]("retry", func(ctx context.Context, s string) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, Config{Workers: 1, MaxRetries: 5, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue("job"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 3
	}, time.Second, 5*time.Millisecond)

	q.Stop()
}

func TestStopDrainsBufferedItems(t *testing.T) {
	var handled int32

	q := New[int]("drain", func(ctx context.Context, n int) error {
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&handled, 1)
		return nil
	}, Config{Workers: 1, BufferSize: 8})

	q.Start(context.Background())
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(i))
	}

	q.Stop()

	assert.EqualValues(t, 5, atomic.LoadInt32(&handled))
	assert.Error(t, q.Enqueue(99))
}

func TestStopKeepsHandlerContextAlive(t *testing.T) {
	var cancelled int32

	q := New[int]("ctx", func(ctx context.Context, n int) error {
		if ctx.Err() != nil {
			atomic.AddInt32(&cancelled, 1)
		}
		return nil
	}, Config{Workers: 1, BufferSize: 8})

	q.Start(context.Background())
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	q.Stop()

	assert.EqualValues(t, 0, atomic.LoadInt32(&cancelled))
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := New[int]("unstarted", func(ctx context.Context, n int) error { return nil }, Config{})
	assert.Error(t, q.Enqueue(1))
}

func TestEnqueueAfterStopFails(t *testing.T) {
	q := New[int]("stopped", func(ctx context.Context, n int) error { return nil }, Config{})
	q.Start(context.Background())
	q.Stop()
	assert.Error(t, q.Enqueue(1))
}
