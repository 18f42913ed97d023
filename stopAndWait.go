package rdt

import (
	"net"
	"time"
)

type senderState int

const (
	waitCall0 senderState = iota
	waitAck0
	waitCall1
	waitAck1
)

func (state senderState) String() string {
	switch state {
	case waitCall0:
		return "wait_call0"
	case waitAck0:
		return "wait_ack0"
	case waitCall1:
		return "wait_call1"
	case waitAck1:
		return "wait_ack1"
	default:
		return "undefined"
	}
}

func (state senderState) sequenceNumber() int {
	if state == waitCall0 || state == waitAck0 {
		return 0
	}
	return 1
}

func (state senderState) next() senderState {
	return (state + 1) % 4
}

// call returns the state that sends the current sequence number again.
func (state senderState) call() senderState {
	if state.sequenceNumber() == 0 {
		return waitCall0
	}
	return waitCall1
}

type receiverState int

const (
	waitSeq0 receiverState = iota
	waitSeq1
)

func (state receiverState) String() string {
	switch state {
	case waitSeq0:
		return "wait_seq0"
	case waitSeq1:
		return "wait_seq1"
	default:
		return "undefined"
	}
}

func (state receiverState) sequenceNumber() int {
	return int(state)
}

func (state receiverState) next() receiverState {
	return 1 - state
}

// stopAndWaitPeer is the common part of the single-threaded variants: one
// frame in flight, a synchronous wait for feedback after every send.
type stopAndWaitPeer struct {
	endpoint
	peer            net.Addr
	feedbackTimeout time.Duration
}

func newStopAndWaitPeer(channel Channel, peer net.Addr, config Config, variant, role string) stopAndWaitPeer {
	return stopAndWaitPeer{
		endpoint:        newEndpoint(channel, config, variant, role),
		peer:            peer,
		feedbackTimeout: config.FeedbackTimeout,
	}
}

func (p *stopAndWaitPeer) Close() error {
	return p.channel.Close()
}

func (p *stopAndWaitPeer) transmit(frame []byte) error {
	return p.reply(frame, p.peer)
}
