package throttle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_Burst(t *testing.T) {
	b := NewBucket(3, 0.001)

	for i := 0; i < 3; i++ {
		assert.True(t, b.Allow(), "request %d", i+1)
	}
	assert.False(t, b.Allow())
	assert.Equal(t, 0, b.Remaining())
}

func TestBucket_WaitRefills(t *testing.T) {
	b := NewBucket(1, 50) // one token every 20ms
	require.True(t, b.Allow())

	start := time.Now()
	require.NoError(t, b.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestBucket_WaitCancelled(t *testing.T) {
	b := NewBucket(1, 0.001)
	require.True(t, b.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Wait(ctx), context.DeadlineExceeded)
}

func TestBucket_NilNeverBlocks(t *testing.T) {
	var b *Bucket
	assert.Nil(t, NewBucket(5, 0))
	assert.True(t, b.Allow())
	assert.NoError(t, b.Wait(context.Background()))
}

func TestBucket_ConcurrentWaiters(t *testing.T) {
	b := NewBucket(2, 200)
	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- b.Wait(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
