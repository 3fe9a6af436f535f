package mapview

import (
	"context"
	"sync"
	"time"
)

// FrameCount is the length of one animation cycle.
const FrameCount = 100

// Advance returns the frame after t.
func Advance(t int) int {
	return (t + 1) % FrameCount
}

// Clock emits animation frames 0..FrameCount-1 on a fixed interval.
// Frame values come from a counter, never from wall time.
type Clock struct {
	frames chan int
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartClock starts a clock. It runs until ctx is cancelled or Stop is called.
// A slow reader misses frames instead of blocking the ticker.
func StartClock(ctx context.Context, interval time.Duration) *Clock {
	ctx, cancel := context.WithCancel(ctx)
	c := &Clock{
		frames: make(chan int, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.run(ctx, interval)
	return c
}

func (c *Clock) run(ctx context.Context, interval time.Duration) {
	defer close(c.done)
	defer close(c.frames)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t = Advance(t)
			select {
			case c.frames <- t:
			default:
			}
		}
	}
}

// Frames returns the frame channel. It is closed when the clock stops.
func (c *Clock) Frames() <-chan int {
	return c.frames
}

// Stop halts the clock and waits for its goroutine. Safe to call more than once.
func (c *Clock) Stop() {
	c.once.Do(c.cancel)
	<-c.done
}
