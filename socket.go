package rdt

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// WindowSender is implemented by GoBackNSender and SelectiveRepeatSender.
type WindowSender interface {
	Send(payload string) (StatusCode, error)
}

// Socket feeds whitespace separated tokens of application text to a window
// sender, one frame per token.
type Socket struct {
	sender        WindowSender
	retryInterval time.Duration
}

func NewSocket(sender WindowSender, retryInterval time.Duration) *Socket {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	return &Socket{
		sender:        sender,
		retryInterval: retryInterval,
	}
}

// Write blocks until every token of text has been handed to the sender and
// returns the number of tokens sent.
func (socket *Socket) Write(text string) (int, error) {
	tokens := strings.Fields(text)
	for i, token := range tokens {
		if err := socket.write(token); err != nil {
			return i, err
		}
	}
	return len(tokens), nil
}

func (socket *Socket) write(token string) error {
	for {
		status, err := socket.sender.Send(token)
		if err != nil {
			return err
		}
		switch status {
		case Success:
			return nil
		case WindowFull:
			time.Sleep(socket.retryInterval)
		default:
			return errors.Errorf("unexpected status %v", status)
		}
	}
}
