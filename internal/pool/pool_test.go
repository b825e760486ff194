package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPool_ExecutesEverySubmittedTask(t *testing.T) {
	t.Parallel()

	p, err := New(4, zap.NewNop())
	require.NoError(t, err)

	var count atomic.Int64
	for i := 0; i < 200; i++ {
		require.NoError(t, p.Submit(func() {
			count.Add(1)
		}))
	}
	p.Shutdown()

	require.Equal(t, int64(200), count.Load())
	require.Equal(t, 0, p.Outstanding())
}

func TestPool_RejectsInvalidWorkerCount(t *testing.T) {
	t.Parallel()

	_, err := New(0, zap.NewNop())
	require.Error(t, err)
}

func TestPool_RejectsNilTask(t *testing.T) {
	t.Parallel()

	p, err := New(1, zap.NewNop())
	require.NoError(t, err)
	defer p.Shutdown()

	require.Error(t, p.Submit(nil))
}

func TestPool_SubmitAfterShutdownReturnsErrClosed(t *testing.T) {
	t.Parallel()

	p, err := New(2, zap.NewNop())
	require.NoError(t, err)
	p.Shutdown()

	err = p.Submit(func() {})
	require.ErrorIs(t, err, ErrClosed)
}

// TestPool_ShutdownWaitsForRecursiveSubmissions covers the hazard the
// outstanding counter exists for: a task that pauses with the queue empty
// and only then submits more work. A barrier that checked queue emptiness
// would tear the pool down mid-chain and drop the tail.
func TestPool_ShutdownWaitsForRecursiveSubmissions(t *testing.T) {
	t.Parallel()

	p, err := New(3, zap.NewNop())
	require.NoError(t, err)

	const chain = 50
	var executed, submitErrs atomic.Int64
	var submitChain func(remaining int)
	submitChain = func(remaining int) {
		executed.Add(1)
		if remaining == 0 {
			return
		}
		// Leave the queue empty for a beat before feeding it again.
		time.Sleep(time.Millisecond)
		if err := p.Submit(func() {
			submitChain(remaining - 1)
		}); err != nil {
			submitErrs.Add(1)
		}
	}

	require.NoError(t, p.Submit(func() {
		submitChain(chain)
	}))
	p.Shutdown()

	require.Zero(t, submitErrs.Load(), "recursive submissions must be accepted until the barrier clears")
	require.Equal(t, int64(chain+1), executed.Load())
}

func TestPool_PanicDoesNotKillWorker(t *testing.T) {
	t.Parallel()

	p, err := New(1, zap.NewNop())
	require.NoError(t, err)

	var ran atomic.Bool
	require.NoError(t, p.Submit(func() {
		panic("bad page")
	}))
	require.NoError(t, p.Submit(func() {
		ran.Store(true)
	}))
	p.Shutdown()

	require.True(t, ran.Load(), "the single worker must survive the panic and run the next task")
}

func TestPool_ShutdownIsIdempotent(t *testing.T) {
	t.Parallel()

	p, err := New(2, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, p.Submit(func() {}))

	p.Shutdown()
	p.Shutdown()
}

func TestPool_ConcurrentSubmitters(t *testing.T) {
	t.Parallel()

	p, err := New(8, zap.NewNop())
	require.NoError(t, err)

	var count, submitErrs atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if err := p.Submit(func() {
					count.Add(1)
				}); err != nil {
					submitErrs.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	p.Shutdown()

	require.Zero(t, submitErrs.Load())
	require.Equal(t, int64(1000), count.Load())
}
