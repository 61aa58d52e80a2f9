package gradient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountingObjectiveTallies(t *testing.T) {
	counting := NewCountingObjective(func(x []uint64) uint64 { return x[0] })

	for i := 0; i < 5; i++ {
		counting.Eval([]uint64{uint64(i)})
	}

	assert.Equal(t, int64(5), counting.Calls())
}

func TestCountingObjectiveIsSafeForConcurrentCalls(t *testing.T) {
	counting := NewCountingObjective(func(x []uint64) uint64 { return x[0] })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			counting.Eval([]uint64{v})
		}(uint64(i))
	}
	wg.Wait()

	assert.Equal(t, int64(50), counting.Calls())
}

func TestCachingObjectiveServesRepeatsFromCache(t *testing.T) {
	underlying := NewCountingObjective(func(x []uint64) uint64 { return x[0] * 2 })
	caching, err := NewCachingObjective(underlying.Eval, 16)
	require.NoError(t, err)

	assert.Equal(t, uint64(10), caching.Eval([]uint64{5}))
	assert.Equal(t, uint64(10), caching.Eval([]uint64{5}))
	assert.Equal(t, uint64(20), caching.Eval([]uint64{10}))

	assert.Equal(t, int64(2), underlying.Calls())
	assert.Equal(t, int64(1), caching.Hits())
}

func TestCachingObjectiveDistinguishesEqualLowBytesDifferentHighBits(t *testing.T) {
	caching, err := NewCachingObjective(func(x []uint64) uint64 { return x[0] }, 16)
	require.NoError(t, err)

	a := caching.Eval([]uint64{0x00000000000000FF})
	b := caching.Eval([]uint64{0xAAAAAAAAAAAAAAFF})

	assert.NotEqual(t, a, b)
	assert.Equal(t, int64(0), caching.Hits())
}

func TestDeadlineObjectiveReturnsSentinelOnTimeout(t *testing.T) {
	var cancels []context.CancelFunc
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	slow := func(x []uint64) uint64 {
		time.Sleep(50 * time.Millisecond)
		return x[0]
	}
	deadline := NewDeadlineObjective(slow, func() context.Context {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		cancels = append(cancels, cancel)
		return ctx
	})

	got := deadline.Eval([]uint64{7})
	assert.Equal(t, timeoutSentinel, got)
}

func TestDeadlineObjectivePassesThroughFastCalls(t *testing.T) {
	var cancels []context.CancelFunc
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	fast := func(x []uint64) uint64 { return x[0] + 1 }
	deadline := NewDeadlineObjective(fast, func() context.Context {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		cancels = append(cancels, cancel)
		return ctx
	})

	got := deadline.Eval([]uint64{41})
	assert.Equal(t, uint64(42), got)
}

func TestDeadlineObjectiveDoesNotRaceCallerBuffer(t *testing.T) {
	var cancels []context.CancelFunc
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	release := make(chan struct{})
	slow := func(x []uint64) uint64 {
		<-release
		return x[0]
	}
	deadline := NewDeadlineObjective(slow, func() context.Context {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		cancels = append(cancels, cancel)
		return ctx
	})

	x := []uint64{1}
	got := deadline.Eval(x)
	assert.Equal(t, timeoutSentinel, got)

	// The engine is free to keep mutating x immediately after Eval returns;
	// the leaked goroutine must not be reading this backing array.
	x[0] = 99
	close(release)
}
