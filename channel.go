package rdt

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// Channel is an unreliable datagram channel. ReadFrom returns the status
// Timeout when nothing arrived within timeout; a zero timeout blocks. Both
// calls return ErrClosed once the channel is closed.
type Channel interface {
	WriteTo(buffer []byte, addr net.Addr) (StatusCode, int, error)
	ReadFrom(buffer []byte, timeout time.Duration) (StatusCode, int, net.Addr, error)
	Close() error
}

// endpoint bundles what every sender and receiver needs to talk to its
// channel.
type endpoint struct {
	channel    Channel
	log        *logrus.Entry
	bufferSize int
}

func newEndpoint(channel Channel, config Config, variant, role string) endpoint {
	return endpoint{
		channel:    channel,
		log:        config.logger(variant, role),
		bufferSize: config.bufferSize(),
	}
}

func (e *endpoint) write(buffer []byte, addr net.Addr) error {
	_, _, err := e.channel.WriteTo(buffer, addr)
	return err
}

func (e *endpoint) read(timeout time.Duration) (StatusCode, []byte, net.Addr, error) {
	buffer := make([]byte, e.bufferSize)
	status, n, addr, err := e.channel.ReadFrom(buffer, timeout)
	if err != nil {
		return Fail, nil, nil, err
	}
	return status, buffer[:n], addr, nil
}

// reply sends a control frame. Only a closed channel is reported.
func (e *endpoint) reply(frame []byte, addr net.Addr) error {
	err := e.write(frame, addr)
	if err != nil && !isClosed(err) {
		e.log.WithError(err).Warn("reply failed")
		return nil
	}
	return err
}
