package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-router/internal/domain"
)

func newOrder() domain.DeliveryOrder {
	return domain.DeliveryOrder{ID: uuid.New(), Status: domain.OrderPending}
}

func TestPushPopFIFO(t *testing.T) {
	q := New(4)
	ctx := context.Background()

	o1, o2, o3 := newOrder(), newOrder(), newOrder()
	require.NoError(t, q.Push(ctx, o1))
	require.NoError(t, q.Push(ctx, o2))
	require.NoError(t, q.Push(ctx, o3))
	assert.Equal(t, 3, q.Len())

	got, ok := q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, o1.ID, got.ID)

	got, ok = q.Pop(ctx)
	require.True(t, ok)
	assert.Equal(t, o2.ID, got.ID)
}

func TestPushBlocksWhenFull(t *testing.T) {
	q := New(1)
	ctx := context.Background()

	require.NoError(t, q.Push(ctx, newOrder()))

	pushed := make(chan struct{})
	go func() {
		_ = q.Push(ctx, newOrder())
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("push should have blocked on a full queue")
	case <-time.After(50 * time.Millisecond):
	}

	_, ok := q.Pop(ctx)
	require.True(t, ok)

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push never unblocked after a pop freed capacity")
	}
}

func TestPushFailsAfterClose(t *testing.T) {
	q := New(2)
	q.Close()

	err := q.Push(context.Background(), newOrder())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPopReturnsFalseAfterDrainedClose(t *testing.T) {
	q := New(2)
	require.NoError(t, q.Push(context.Background(), newOrder()))
	q.Close()

	_, ok := q.Pop(context.Background())
	assert.True(t, ok, "a buffered order should still be delivered after close")

	_, ok = q.Pop(context.Background())
	assert.False(t, ok, "pop on a closed, drained queue reports done")
}

func TestPopRespectsContextCancellation(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := q.Pop(ctx)
	assert.False(t, ok)
}

func TestConcurrentPushPopNeverLosesOrders(t *testing.T) {
	q := New(8)
	ctx := context.Background()
	const n = 200

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			_ = q.Push(ctx, newOrder())
		}
	}()

	received := 0
	for received < n {
		if _, ok := q.Pop(ctx); ok {
			received++
		}
	}
	wg.Wait()
	assert.Equal(t, n, received)
}
