package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewTaskGroup(t *testing.T) {
	g := NewTaskGroup("TEST", 0, time.Second)
	if g.workers != 1 {
		t.Errorf("workers = %d, want 1", g.workers)
	}
}

func TestCollect(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps input order", func(t *testing.T) {
		g := NewTaskGroup("TEST", 3, time.Second)
		inputs := []int{5, 1, 4, 2, 3}

		results, done := Collect(ctx, g, inputs, func(ctx context.Context, n int) int {
			time.Sleep(time.Duration(n) * time.Millisecond)
			return n * 10
		})
		for i, n := range inputs {
			if !done[i] {
				t.Errorf("task %d not done", i)
			}
			if results[i] != n*10 {
				t.Errorf("results[%d] = %d, want %d", i, results[i], n*10)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		g := NewTaskGroup("TEST", 2, time.Second)
		results, done := Collect(ctx, g, []string{}, func(ctx context.Context, s string) string { return s })
		if len(results) != 0 || len(done) != 0 {
			t.Errorf("got %d results, %d flags", len(results), len(done))
		}
	})

	t.Run("bounds concurrency", func(t *testing.T) {
		g := NewTaskGroup("TEST", 2, time.Second)
		var running, peak int32

		_, _ = Collect(ctx, g, make([]int, 8), func(ctx context.Context, _ int) int {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return 0
		})
		if p := atomic.LoadInt32(&peak); p > 2 {
			t.Errorf("peak concurrency = %d, want <= 2", p)
		}
	})

	t.Run("returns partial results on timeout", func(t *testing.T) {
		g := NewTaskGroup("TEST", 2, 50*time.Millisecond)
		block := make(chan struct{})
		defer close(block)

		start := time.Now()
		results, done := Collect(ctx, g, []bool{false, true}, func(ctx context.Context, hang bool) string {
			if hang {
				<-block
				return "late"
			}
			return "fast"
		})
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("Collect took %v, want it bounded by the timeout", elapsed)
		}
		if !done[0] || results[0] != "fast" {
			t.Errorf("fast task: done = %v, result = %q", done[0], results[0])
		}
		if done[1] {
			t.Error("hanging task should not be reported as done")
		}
	})

	t.Run("recovers panics", func(t *testing.T) {
		g := NewTaskGroup("TEST", 2, time.Second)
		results, done := Collect(ctx, g, []int{1, 2}, func(ctx context.Context, n int) int {
			if n == 2 {
				panic("bad task")
			}
			return n
		})
		if !done[0] || results[0] != 1 {
			t.Errorf("task 0: done = %v, result = %d", done[0], results[0])
		}
		if done[1] {
			t.Error("panicking task should not be reported as done")
		}
	})

	t.Run("honours caller cancellation", func(t *testing.T) {
		g := NewTaskGroup("TEST", 1, time.Minute)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, done := Collect(cctx, g, []int{1, 2, 3}, func(ctx context.Context, n int) int {
			return n
		})
		for i, d := range done {
			if d {
				t.Errorf("task %d ran after cancellation", i)
			}
		}
	})
}
