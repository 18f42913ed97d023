package rdt

import (
	"net"
	"sync"
	"time"
)

const pipeCapacity = 1024

type pipeAddr string

func (addr pipeAddr) Network() string {
	return "pipe"
}

func (addr pipeAddr) String() string {
	return string(addr)
}

// PipeChannel is one end of an in-memory datagram link. Like UDP it never
// blocks a writer: datagrams that do not fit are dropped.
type PipeChannel struct {
	in        chan []byte
	out       chan []byte
	local     pipeAddr
	remote    pipeAddr
	closed    chan struct{}
	closeOnce sync.Once
}

func NewPipe(alphaName, betaName string) (*PipeChannel, *PipeChannel) {
	endpoint1, endpoint2 := make(chan []byte, pipeCapacity), make(chan []byte, pipeCapacity)
	alpha := &PipeChannel{
		in:     endpoint1,
		out:    endpoint2,
		local:  pipeAddr(alphaName),
		remote: pipeAddr(betaName),
		closed: make(chan struct{}),
	}
	beta := &PipeChannel{
		in:     endpoint2,
		out:    endpoint1,
		local:  pipeAddr(betaName),
		remote: pipeAddr(alphaName),
		closed: make(chan struct{}),
	}
	return alpha, beta
}

func (pipe *PipeChannel) LocalAddr() net.Addr {
	return pipe.local
}

func (pipe *PipeChannel) RemoteAddr() net.Addr {
	return pipe.remote
}

func (pipe *PipeChannel) isClosed() bool {
	select {
	case <-pipe.closed:
		return true
	default:
		return false
	}
}

func (pipe *PipeChannel) Close() error {
	pipe.closeOnce.Do(func() {
		close(pipe.closed)
	})
	return nil
}

func (pipe *PipeChannel) WriteTo(buffer []byte, addr net.Addr) (StatusCode, int, error) {
	if pipe.isClosed() {
		return Fail, 0, ErrClosed
	}
	datagram := make([]byte, len(buffer))
	copy(datagram, buffer)
	select {
	case pipe.out <- datagram:
	default:
	}
	return Success, len(buffer), nil
}

func (pipe *PipeChannel) ReadFrom(buffer []byte, timeout time.Duration) (StatusCode, int, net.Addr, error) {
	if pipe.isClosed() {
		return Fail, 0, nil, ErrClosed
	}
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case datagram := <-pipe.in:
		n := copy(buffer, datagram)
		return Success, n, pipe.remote, nil
	case <-pipe.closed:
		return Fail, 0, nil, ErrClosed
	case <-expired:
		return Timeout, 0, nil, nil
	}
}
