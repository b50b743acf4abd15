package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTryPush_FailsWhenFull(t *testing.T) {
	var q = New[int]()

	for i := 0; i < Capacity; i++ {
		require.True(t, q.TryPush(i), "push %d should succeed under capacity", i)
	}

	assert.False(t, q.TryPush(999), "push beyond capacity should fail, not block or panic")
}

func TestFrontPop_FIFOOrder(t *testing.T) {
	var q = New[string]()

	require.True(t, q.TryPush("a"))
	require.True(t, q.TryPush("b"))
	require.True(t, q.TryPush("c"))

	for _, want := range []string{"a", "b", "c"} {
		var got, ok = q.Front()
		require.True(t, ok)
		assert.Equal(t, want, got)
		q.Pop()
	}

	var _, ok = q.Front()
	assert.False(t, ok, "queue should be empty after draining all pushes")
}

func TestSPSC_ProducerConsumerPreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.IntRange(1, 1000).Draw(t, "n")
		var q = New[int]()
		var received = make([]int, 0, n)
		var wg sync.WaitGroup

		wg.Add(1)
		go func() {
			defer wg.Done()
			for len(received) < n {
				if v, ok := q.Front(); ok {
					received = append(received, v)
					q.Pop()
				}
			}
		}()

		for i := 0; i < n; i++ {
			for !q.TryPush(i) {
				// Queue momentarily full; spin until the consumer drains.
			}
		}

		wg.Wait()

		for i, v := range received {
			assert.Equal(t, i, v, "command %d observed out of enqueue order", i)
		}
	})
}
