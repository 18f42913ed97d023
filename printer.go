package rdt

import (
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// TracingChannel logs every datagram passing through it at trace level.
type TracingChannel struct {
	channel Channel
	log     *logrus.Entry
}

func NewTracingChannel(channel Channel, name string) *TracingChannel {
	return &TracingChannel{
		channel: channel,
		log:     logrus.NewEntry(Logger).WithField("name", name),
	}
}

func (printer *TracingChannel) Close() error {
	err := printer.channel.Close()
	printer.log.WithError(err).Trace("Close()")
	return err
}

func (printer *TracingChannel) WriteTo(buffer []byte, addr net.Addr) (StatusCode, int, error) {
	status, n, err := printer.channel.WriteTo(buffer, addr)
	printer.prettyPrint("WriteTo(...)", buffer, addr, status, n, err)
	return status, n, err
}

func (printer *TracingChannel) ReadFrom(buffer []byte, timeout time.Duration) (StatusCode, int, net.Addr, error) {
	status, n, addr, err := printer.channel.ReadFrom(buffer, timeout)
	if status != Timeout {
		printer.prettyPrint("ReadFrom(...)", buffer[:n], addr, status, n, err)
	}
	return status, n, addr, err
}

func (printer *TracingChannel) prettyPrint(funcName string, buffer []byte, addr net.Addr, status StatusCode, n int, err error) {
	if !printer.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	printer.log.WithFields(logrus.Fields{
		"buffer": fmt.Sprintf("% x", buffer),
		"addr":   addr,
		"status": status,
		"n":      n,
		"error":  err,
	}).Trace(funcName)
}
