package rdt

import "time"

const (
	ackText = "ACK"
	nakText = "NAK"
)

const (
	maxModulus        = 256
	DefaultBufferSize = 256
)

type StatusCode int

const (
	Success StatusCode = iota
	Fail
	AckReceived
	InvalidSegment
	WindowFull
	Timeout
)

func (code StatusCode) String() string {
	switch code {
	case Success:
		return "Success"
	case Fail:
		return "Fail"
	case AckReceived:
		return "AckReceived"
	case InvalidSegment:
		return "InvalidSegment"
	case WindowFull:
		return "WindowFull"
	case Timeout:
		return "Timeout"
	default:
		return "undefined"
	}
}

var (
	DefaultRetransmissionTimeout = 2 * time.Second
	DefaultReadTimeout           = 500 * time.Millisecond
	DefaultNakTimeout            = 500 * time.Millisecond
	DefaultAckTimeout            = 600 * time.Millisecond
	DefaultRetryInterval         = 500 * time.Millisecond
)
