package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LimitWithinWindow(t *testing.T) {
	store := NewMemoryStore(5, 15*time.Minute)
	now := time.Now()

	for i := 0; i < 5; i++ {
		allowed, count, err := store.Allow(context.Background(), "1.2.3.4", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be admitted", i+1)
		assert.Equal(t, i+1, count)
	}

	allowed, count, err := store.Allow(context.Background(), "1.2.3.4", now.Add(6*time.Second))
	require.NoError(t, err)
	assert.False(t, allowed, "6th request within the window must be rejected")
	assert.Equal(t, 5, count)
}

func TestMemoryStore_RejectionNotRecorded(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)
	now := time.Now()

	allowed, _, _ := store.Allow(context.Background(), "k", now)
	require.True(t, allowed)

	// Hammer while blocked; none of these may extend the window
	for i := 0; i < 10; i++ {
		allowed, count, _ := store.Allow(context.Background(), "k", now.Add(time.Duration(i)*time.Second))
		assert.False(t, allowed)
		assert.Equal(t, 1, count)
	}

	// Once the single recorded timestamp ages out, the key is admitted again
	allowed, count, _ := store.Allow(context.Background(), "k", now.Add(time.Minute+time.Second))
	assert.True(t, allowed)
	assert.Equal(t, 1, count)
}

func TestMemoryStore_WindowSlides(t *testing.T) {
	store := NewMemoryStore(5, 15*time.Minute)
	now := time.Now()

	for i := 0; i < 5; i++ {
		store.Allow(context.Background(), "ip", now.Add(time.Duration(i)*time.Minute))
	}

	// Earliest entry was at +0m; at +15m1s it has aged out
	allowed, count, _ := store.Allow(context.Background(), "ip", now.Add(15*time.Minute+time.Second))
	assert.True(t, allowed)
	assert.Equal(t, 5, count)
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	store := NewMemoryStore(1, time.Minute)
	now := time.Now()

	allowed, _, _ := store.Allow(context.Background(), "a", now)
	assert.True(t, allowed)
	allowed, _, _ = store.Allow(context.Background(), "a", now)
	assert.False(t, allowed)

	allowed, _, _ = store.Allow(context.Background(), "b", now)
	assert.True(t, allowed, "a different key must not share the bucket")
}

func TestMemoryStore_ConcurrentSameKey(t *testing.T) {
	store := NewMemoryStore(5, time.Minute)
	now := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, _ := store.Allow(context.Background(), "burst", now)
			if allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, admitted, "check-and-record must be atomic per key")
}
