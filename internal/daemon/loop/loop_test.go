package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(cancel)
	return l
}

func TestDoReturnsHandlerResult(t *testing.T) {
	l := startLoop(t)

	want := errors.New("boom")
	err := l.Do(context.Background(), func() error { return want })
	assert.ErrorIs(t, err, want)
	assert.NoError(t, l.Do(context.Background(), func() error { return nil }))
}

func TestHandlersRunInSubmissionOrder(t *testing.T) {
	l := startLoop(t)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 50; i++ {
		i := i
		require.True(t, l.Post(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	require.NoError(t, l.Do(context.Background(), func() error { return nil }))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestPanicDoesNotKillLoop(t *testing.T) {
	l := startLoop(t)

	l.Post(func() { panic("handler bug") })
	assert.NoError(t, l.Do(context.Background(), func() error { return nil }))
}

func TestDoReportsHandlerPanic(t *testing.T) {
	l := startLoop(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := l.Do(ctx, func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	require.ErrorIs(t, err, ErrPanicked)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)

	// The loop keeps serving.
	assert.NoError(t, l.Do(context.Background(), func() error { return nil }))
}

func TestStoppedLoopRejectsWork(t *testing.T) {
	l := startLoop(t)
	l.Stop()
	<-l.Done()

	assert.False(t, l.Post(func() {}))
	assert.ErrorIs(t, l.Do(context.Background(), func() error { return nil }), ErrStopped)
}

func TestDoFromStoppingTask(t *testing.T) {
	l := startLoop(t)

	err := l.Do(context.Background(), func() error {
		l.Stop()
		return nil
	})
	assert.NoError(t, err)
}
