package rdt

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

type SenderStats struct {
	Sent          uint32
	Retransmitted uint32
	Acked         uint32
}

// windowSender holds the state shared by the Go-Back-N and the Selective
// Repeat sender. All fields below mutex are only touched with mutex held.
// The listener goroutine is the only reader of the channel.
type windowSender struct {
	endpoint
	peer                  net.Addr
	retransmissionTimeout time.Duration
	readTimeout           time.Duration
	windowSize            int
	modulus               int

	mutex         sync.Mutex
	unacked       *ringBufferSnd
	oldestUnacked int
	nextToSend    int

	started      atomic.Bool
	stopped      atomic.Bool
	listenerDone chan struct{}

	sent          atomic.Uint32
	retransmitted atomic.Uint32
	acked         atomic.Uint32
}

func newWindowSender(channel Channel, peer net.Addr, config Config, variant string) *windowSender {
	readTimeout := config.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	retransmissionTimeout := config.RetransmissionTimeout
	if retransmissionTimeout <= 0 {
		retransmissionTimeout = DefaultRetransmissionTimeout
	}
	return &windowSender{
		endpoint:              newEndpoint(channel, config, variant, "sender"),
		peer:                  peer,
		retransmissionTimeout: retransmissionTimeout,
		readTimeout:           readTimeout,
		windowSize:            config.WindowSize,
		modulus:               config.Modulus,
		unacked:               newRingBufferSnd(config.Modulus),
		listenerDone:          make(chan struct{}),
	}
}

func (sender *windowSender) canSend() bool {
	return inWindow(sender.oldestUnacked, sender.oldestUnacked+sender.windowSize, sender.modulus, sender.nextToSend)
}

// CanSend reports whether the next sequence number still fits into the
// window.
func (sender *windowSender) CanSend() bool {
	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	return !sender.stopped.Load() && sender.canSend()
}

func (sender *windowSender) window() (int, int) {
	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	return sender.oldestUnacked, sender.nextToSend
}

func (sender *windowSender) windowFields() logrus.Fields {
	return logrus.Fields{
		"window": windowString(sender.oldestUnacked, sender.windowSize, sender.modulus),
		"next":   sender.nextToSend,
	}
}

func (sender *windowSender) Stats() SenderStats {
	return SenderStats{
		Sent:          sender.sent.Load(),
		Retransmitted: sender.retransmitted.Load(),
		Acked:         sender.acked.Load(),
	}
}

// enqueue stores the frame for payload at nextToSend and advances it.
func (sender *windowSender) enqueue(payload string) (int, []byte, error) {
	sequenceNumber := sender.nextToSend
	frame, err := EncodeFrame(sequenceNumber, payload)
	if err != nil {
		return 0, nil, err
	}
	if err := sender.unacked.insert(sequenceNumber, frame); err != nil {
		return 0, nil, err
	}
	sender.nextToSend = mod(sequenceNumber+1, sender.modulus)
	return sequenceNumber, frame, nil
}

// transmit hands a frame to the channel. Write failures other than a closed
// channel are transport faults and left to the retransmission timers.
func (sender *windowSender) transmit(sequenceNumber int, frame []byte, retransmission bool) error {
	log := sender.log.WithField("seq", sequenceNumber)
	if retransmission {
		sender.retransmitted.Inc()
		log.Info("retransmitting")
	} else {
		sender.sent.Inc()
		log.Debug("sending")
	}
	err := sender.write(frame, sender.peer)
	if isClosed(err) {
		return err
	}
	if err != nil {
		log.WithError(err).Warn("write failed")
	}
	return nil
}

// ackSequenceNumber returns the sequence number of an intact ACK frame that
// fits into the sequence number space, or false.
func (sender *windowSender) ackSequenceNumber(frame Frame) (int, bool) {
	if !frame.isAck() {
		sender.log.Debug("discarding corrupted acknowledgment")
		return 0, false
	}
	if frame.SequenceNumber < 0 || frame.SequenceNumber >= sender.modulus {
		sender.log.WithField("seq", frame.SequenceNumber).Debug("discarding acknowledgment outside sequence space")
		return 0, false
	}
	return frame.SequenceNumber, true
}

func (sender *windowSender) start(handle func(frame Frame)) error {
	if sender.stopped.Load() {
		return ErrClosed
	}
	if !sender.started.CAS(false, true) {
		return nil
	}
	go sender.listen(handle)
	return nil
}

// listen receives acknowledgments until the sender is stopped. The read
// timeout bounds how long a stop request goes unnoticed.
func (sender *windowSender) listen(handle func(frame Frame)) {
	defer close(sender.listenerDone)
	for !sender.stopped.Load() {
		status, buffer, _, err := sender.read(sender.readTimeout)
		if isClosed(err) {
			return
		}
		if err != nil {
			sender.log.WithError(err).Warn("read failed")
			continue
		}
		if status == Timeout {
			continue
		}
		handle(DecodeFrame(buffer))
	}
}

func (sender *windowSender) close(stopTimers func()) error {
	sender.mutex.Lock()
	if !sender.stopped.CAS(false, true) {
		sender.mutex.Unlock()
		return ErrClosed
	}
	stopTimers()
	sender.mutex.Unlock()

	err := sender.channel.Close()
	if sender.started.Load() {
		<-sender.listenerDone
	}
	sender.log.WithFields(sender.Stats().fields()).Debug("closed")
	return err
}

func (stats SenderStats) fields() logrus.Fields {
	return logrus.Fields{
		"sent":          stats.Sent,
		"retransmitted": stats.Retransmitted,
		"acked":         stats.Acked,
	}
}
