package rdt

import "time"

// retransmissionTimer is a cancellable time.AfterFunc handle. Every start and
// stop bumps the generation, so a callback that was already running when the
// timer got stopped or restarted sees that it is no longer current.
// Callers hold the lock of the owning sender.
type retransmissionTimer struct {
	timer      *time.Timer
	generation uint64
}

func (t *retransmissionTimer) start(timeout time.Duration, expired func(generation uint64)) {
	t.stop()
	generation := t.generation
	t.timer = time.AfterFunc(timeout, func() {
		expired(generation)
	})
}

func (t *retransmissionTimer) stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.generation++
}

func (t *retransmissionTimer) isCurrent(generation uint64) bool {
	return t.timer != nil && t.generation == generation
}
