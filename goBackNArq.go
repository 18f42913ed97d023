package rdt

import (
	"net"
)

// GoBackNSender keeps up to WindowSize frames in flight behind one shared
// retransmission timer. Acknowledgments are cumulative and a timeout resends
// the whole window.
type GoBackNSender struct {
	*windowSender
	timer retransmissionTimer
}

func NewGoBackNSender(channel Channel, peer net.Addr, config Config) (*GoBackNSender, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &GoBackNSender{
		windowSender: newWindowSender(channel, peer, config, "go-back-n"),
	}, nil
}

// Start launches the acknowledgment listener.
func (sender *GoBackNSender) Start() error {
	return sender.start(sender.handleAck)
}

func (sender *GoBackNSender) Close() error {
	return sender.close(sender.timer.stop)
}

// Send transmits payload as the next frame. WindowFull is returned, and
// nothing is sent, while WindowSize frames are unacknowledged.
func (sender *GoBackNSender) Send(payload string) (StatusCode, error) {
	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	if sender.stopped.Load() {
		return Fail, ErrClosed
	}
	if !sender.canSend() {
		return WindowFull, nil
	}

	sequenceNumber, frame, err := sender.enqueue(payload)
	if err != nil {
		return Fail, err
	}
	if sender.oldestUnacked == sequenceNumber {
		sender.timer.start(sender.retransmissionTimeout, sender.onTimeout)
	}
	if err := sender.transmit(sequenceNumber, frame, false); err != nil {
		return Fail, err
	}
	sender.log.WithFields(sender.windowFields()).Debug("window")
	return Success, nil
}

func (sender *GoBackNSender) handleAck(frame Frame) {
	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	if sender.stopped.Load() {
		return
	}
	sequenceNumber, ok := sender.ackSequenceNumber(frame)
	if !ok {
		return
	}
	if !inWindow(sender.oldestUnacked, sender.nextToSend, sender.modulus, sequenceNumber) {
		sender.log.WithField("seq", sequenceNumber).Debug("ignoring stale acknowledgment")
		return
	}

	removed := sender.unacked.removeRange(sender.oldestUnacked, sequenceNumber+1)
	sender.acked.Add(uint32(removed))
	sender.oldestUnacked = mod(sequenceNumber+1, sender.modulus)
	sender.log.WithField("seq", sequenceNumber).WithFields(sender.windowFields()).Info("acknowledgment received")

	if sender.oldestUnacked == sender.nextToSend {
		sender.timer.stop()
	} else {
		sender.timer.start(sender.retransmissionTimeout, sender.onTimeout)
	}
}

func (sender *GoBackNSender) onTimeout(generation uint64) {
	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	if sender.stopped.Load() || !sender.timer.isCurrent(generation) {
		return
	}

	sender.log.WithFields(sender.windowFields()).Info("timeout")
	sender.timer.start(sender.retransmissionTimeout, sender.onTimeout)
	for _, sequenceNumber := range sender.unacked.outstanding(sender.oldestUnacked, sender.nextToSend) {
		if err := sender.transmit(sequenceNumber, sender.unacked.get(sequenceNumber), true); err != nil {
			return
		}
	}
}

// GoBackNReceiver accepts frames strictly in order. Anything else is answered
// with the last cumulative acknowledgment.
type GoBackNReceiver struct {
	endpoint
	modulus  int
	expected int
	lastAck  []byte
}

func NewGoBackNReceiver(channel Channel, config Config) (*GoBackNReceiver, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &GoBackNReceiver{
		endpoint: newEndpoint(channel, config, "go-back-n", "receiver"),
		modulus:  config.Modulus,
		lastAck:  mustEncodeFrame(mod(-1, config.Modulus), ackText),
	}, nil
}

func (receiver *GoBackNReceiver) Expected() int {
	return receiver.expected
}

func (receiver *GoBackNReceiver) Close() error {
	return receiver.channel.Close()
}

// Receive blocks for one datagram. It returns Success with the payload of
// an in-order frame and InvalidSegment for everything it discarded.
func (receiver *GoBackNReceiver) Receive() (StatusCode, string, error) {
	_, buffer, addr, err := receiver.read(0)
	if err != nil {
		return Fail, "", err
	}

	frame := DecodeFrame(buffer)
	log := receiver.log.WithField("seq", frame.SequenceNumber)
	if !frame.Valid || frame.SequenceNumber != receiver.expected {
		if frame.Valid {
			log.WithField("expected", receiver.expected).Debug("out of order")
		} else {
			log.Debug("corrupted")
		}
		return InvalidSegment, "", receiver.reply(receiver.lastAck, addr)
	}

	receiver.lastAck = mustEncodeFrame(receiver.expected, ackText)
	receiver.expected = mod(receiver.expected+1, receiver.modulus)
	log.Info("accepted")
	return Success, frame.Payload, receiver.reply(receiver.lastAck, addr)
}
