package rdt

import "github.com/pkg/errors"

var (
	ErrClosed         = errors.New("channel closed")
	ErrInvalidState   = errors.New("state machine reached an unknown state")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrSequenceNumber = errors.New("sequence number does not fit into one byte")
)

func invalidState(state interface{}) error {
	return errors.Wrapf(ErrInvalidState, "%v", state)
}

func isClosed(err error) bool {
	return errors.Cause(err) == ErrClosed
}
