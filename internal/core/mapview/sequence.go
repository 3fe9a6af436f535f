package mapview

import (
	"context"
	"sync"
)

// Sequencer orders overlapping lookups of the same kind. Begin hands out
// increasing tokens and cancels the lookup that was in flight; Commit applies
// a result only if its token is still the newest.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

// Begin starts a new lookup. The returned context is cancelled when a newer
// lookup begins or release is called.
func (s *Sequencer) Begin(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	token := s.latest
	s.cancel = cancel
	s.mu.Unlock()

	return ctx, token, cancel
}

// Commit runs apply under the sequencer lock if token is still the newest.
// It reports whether the result was applied.
func (s *Sequencer) Commit(token uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.latest {
		return false
	}
	apply()
	return true
}

// Invalidate retires every token handed out so far and cancels the lookup in
// flight. Use it when the inputs of that lookup change.
func (s *Sequencer) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.latest++
}

// Latest returns the newest token handed out.
func (s *Sequencer) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}
