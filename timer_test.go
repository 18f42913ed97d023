package rdt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetransmissionTimerFires(t *testing.T) {
	var timer retransmissionTimer
	fired := make(chan uint64, 1)
	timer.start(time.Millisecond, func(generation uint64) {
		fired <- generation
	})
	select {
	case generation := <-fired:
		assert.True(t, timer.isCurrent(generation))
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestRetransmissionTimerStaleGeneration(t *testing.T) {
	var timer retransmissionTimer
	fired := make(chan uint64, 2)
	expired := func(generation uint64) {
		fired <- generation
	}
	timer.start(time.Millisecond, expired)
	stale := timer.generation
	timer.start(time.Hour, expired)
	assert.False(t, timer.isCurrent(stale))

	timer.stop()
	assert.False(t, timer.isCurrent(timer.generation))
}
