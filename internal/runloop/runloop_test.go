package runloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/solvyn/widgetcore/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopRunsTasksInOrder(t *testing.T) {
	loop := NewLoop(logging.New(nil, "silent"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	for i := 1; i <= 3; i++ {
		i := i
		loop.Post(func() {
			mu.Lock()
			got = append(got, i)
			if len(got) == 3 {
				close(done)
			}
			mu.Unlock()
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestLoopAfterFires(t *testing.T) {
	loop := NewLoop(logging.New(nil, "silent"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	done := make(chan struct{})
	loop.After(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestManualPostOrder(t *testing.T) {
	m := NewManual()
	var got []int

	m.Post(func() {
		got = append(got, 1)
		// Re-entrant post must run after the current task, not inside it.
		m.Post(func() { got = append(got, 3) })
		got = append(got, 2)
	})

	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestManualAdvanceFiresDueTimers(t *testing.T) {
	m := NewManual()
	var got []string

	m.After(200*time.Millisecond, func() { got = append(got, "a") })
	m.After(100*time.Millisecond, func() { got = append(got, "b") })
	m.After(300*time.Millisecond, func() { got = append(got, "c") })

	m.Advance(250 * time.Millisecond)
	assert.Equal(t, []string{"b", "a"}, got)

	m.Advance(100 * time.Millisecond)
	assert.Equal(t, []string{"b", "a", "c"}, got)
}

func TestManualChainedTimers(t *testing.T) {
	m := NewManual()
	var got []string

	m.After(100*time.Millisecond, func() {
		got = append(got, "first")
		m.After(50*time.Millisecond, func() { got = append(got, "second") })
	})

	// One advance covers both: the nested timer lands at 150ms.
	m.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, 200*time.Millisecond, m.Now())
}

func TestManualCancel(t *testing.T) {
	m := NewManual()
	fired := false

	cancel := m.After(100*time.Millisecond, func() { fired = true })
	cancel()
	m.Advance(time.Second)

	require.False(t, fired)
}

func TestManualSameDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []int

	m.After(100*time.Millisecond, func() { got = append(got, 1) })
	m.After(100*time.Millisecond, func() { got = append(got, 2) })

	m.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{1, 2}, got)
}
