package rdt

import (
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

type UDPChannel struct {
	conn   *net.UDPConn
	closed atomic.Bool
}

func createUDPAddress(address string) (*net.UDPAddr, error) {
	udpAddress, err := net.ResolveUDPAddr("udp4", address)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", address)
	}
	return udpAddress, nil
}

// ResolvePeer resolves host:port of the remote end.
func ResolvePeer(address string) (net.Addr, error) {
	udpAddress, err := createUDPAddress(address)
	if err != nil {
		return nil, err
	}
	return udpAddress, nil
}

func NewUDPChannel(localAddress string) (*UDPChannel, error) {
	address, err := createUDPAddress(localAddress)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", address)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", localAddress)
	}
	return &UDPChannel{conn: conn}, nil
}

func (channel *UDPChannel) LocalAddr() net.Addr {
	return channel.conn.LocalAddr()
}

func (channel *UDPChannel) Close() error {
	if !channel.closed.CAS(false, true) {
		return nil
	}
	return errors.Wrap(channel.conn.Close(), "close udp channel")
}

func (channel *UDPChannel) WriteTo(buffer []byte, addr net.Addr) (StatusCode, int, error) {
	if channel.closed.Load() {
		return Fail, 0, ErrClosed
	}
	n, err := channel.conn.WriteTo(buffer, addr)
	if err != nil {
		return Fail, n, errors.Wrapf(err, "write to %v", addr)
	}
	return Success, n, nil
}

func (channel *UDPChannel) ReadFrom(buffer []byte, timeout time.Duration) (StatusCode, int, net.Addr, error) {
	if channel.closed.Load() {
		return Fail, 0, nil, ErrClosed
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := channel.conn.SetReadDeadline(deadline); err != nil {
		return Fail, 0, nil, errors.Wrap(err, "set read deadline")
	}
	n, addr, err := channel.conn.ReadFrom(buffer)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return Timeout, 0, nil, nil
		}
		if channel.closed.Load() {
			return Fail, 0, nil, ErrClosed
		}
		return Fail, n, addr, errors.Wrap(err, "read from udp channel")
	}
	return Success, n, addr, nil
}

// OpenChannel binds a UDP channel on localAddress, injecting faults on
// receive when loss enables any. Every datagram is traced under name.
func OpenChannel(localAddress string, loss LossConfig, name string) (Channel, error) {
	udp, err := NewUDPChannel(localAddress)
	if err != nil {
		return nil, err
	}
	var channel Channel = udp
	if loss.Enabled() {
		channel = NewLossyChannel(channel, loss)
	}
	return NewTracingChannel(channel, name), nil
}
