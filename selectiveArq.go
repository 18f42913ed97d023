package rdt

import (
	"net"
)

// SelectiveRepeatSender runs one retransmission timer per outstanding frame
// and resends only the frame whose timer expired.
type SelectiveRepeatSender struct {
	*windowSender
	timers []retransmissionTimer
}

func NewSelectiveRepeatSender(channel Channel, peer net.Addr, config Config) (*SelectiveRepeatSender, error) {
	if err := config.validateSelectiveRepeat(); err != nil {
		return nil, err
	}
	return &SelectiveRepeatSender{
		windowSender: newWindowSender(channel, peer, config, "selective-repeat"),
		timers:       make([]retransmissionTimer, config.Modulus),
	}, nil
}

func (sender *SelectiveRepeatSender) Start() error {
	return sender.start(sender.handleAck)
}

func (sender *SelectiveRepeatSender) Close() error {
	return sender.close(sender.stopTimers)
}

func (sender *SelectiveRepeatSender) stopTimers() {
	for i := range sender.timers {
		sender.timers[i].stop()
	}
}

func (sender *SelectiveRepeatSender) startTimer(sequenceNumber int) {
	sender.timers[sequenceNumber].start(sender.retransmissionTimeout, func(generation uint64) {
		sender.onTimeout(sequenceNumber, generation)
	})
}

func (sender *SelectiveRepeatSender) Send(payload string) (StatusCode, error) {
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
	sender.startTimer(sequenceNumber)
	if err := sender.transmit(sequenceNumber, frame, false); err != nil {
		return Fail, err
	}
	sender.log.WithFields(sender.windowFields()).Debug("window")
	return Success, nil
}

func (sender *SelectiveRepeatSender) handleAck(frame Frame) {
	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	if sender.stopped.Load() {
		return
	}
	sequenceNumber, ok := sender.ackSequenceNumber(frame)
	if !ok {
		return
	}
	log := sender.log.WithField("seq", sequenceNumber)
	if !inWindow(sender.oldestUnacked, sender.nextToSend, sender.modulus, sequenceNumber) ||
		!sender.unacked.isOutstanding(sequenceNumber) {
		log.Debug("ignoring duplicate acknowledgment")
		return
	}

	sender.timers[sequenceNumber].stop()
	if _, err := sender.unacked.remove(sequenceNumber); err != nil {
		log.WithError(err).Warn("acknowledged slot already empty")
		return
	}
	sender.acked.Inc()

	if sequenceNumber == sender.oldestUnacked {
		for sender.oldestUnacked != sender.nextToSend && !sender.unacked.isOutstanding(sender.oldestUnacked) {
			sender.oldestUnacked = mod(sender.oldestUnacked+1, sender.modulus)
		}
	}
	log.WithFields(sender.windowFields()).Info("acknowledgment received")
}

func (sender *SelectiveRepeatSender) onTimeout(sequenceNumber int, generation uint64) {
	sender.mutex.Lock()
	defer sender.mutex.Unlock()
	if sender.stopped.Load() || !sender.timers[sequenceNumber].isCurrent(generation) {
		return
	}
	frame := sender.unacked.get(sequenceNumber)
	if frame == nil {
		return
	}

	sender.log.WithField("seq", sequenceNumber).Info("timeout")
	sender.startTimer(sequenceNumber)
	_ = sender.transmit(sequenceNumber, frame, true)
}

// SelectiveRepeatReceiver buffers frames of its receive window and delivers
// them in order. Frames of the window before it are acknowledged again, the
// sender may have missed the first acknowledgment.
type SelectiveRepeatReceiver struct {
	endpoint
	modulus    int
	windowSize int
	received   *ringBufferRcv
}

func NewSelectiveRepeatReceiver(channel Channel, config Config) (*SelectiveRepeatReceiver, error) {
	if err := config.validateSelectiveRepeat(); err != nil {
		return nil, err
	}
	return &SelectiveRepeatReceiver{
		endpoint:   newEndpoint(channel, config, "selective-repeat", "receiver"),
		modulus:    config.Modulus,
		windowSize: config.WindowSize,
		received:   newRingBufferRcv(config.Modulus),
	}, nil
}

func (receiver *SelectiveRepeatReceiver) OldestExpected() int {
	return receiver.received.oldest()
}

func (receiver *SelectiveRepeatReceiver) Close() error {
	return receiver.channel.Close()
}

// Receive blocks for one datagram. On Success the returned payloads are
// the ones that became deliverable in order, possibly none.
func (receiver *SelectiveRepeatReceiver) Receive() (StatusCode, []string, error) {
	_, buffer, addr, err := receiver.read(0)
	if err != nil {
		return Fail, nil, err
	}

	frame := DecodeFrame(buffer)
	log := receiver.log.WithField("seq", frame.SequenceNumber)
	if !frame.Valid || frame.SequenceNumber >= receiver.modulus {
		log.Debug("corrupted")
		return InvalidSegment, nil, nil
	}

	sequenceNumber := frame.SequenceNumber
	oldest := receiver.received.oldest()
	ack := mustEncodeFrame(sequenceNumber, ackText)
	switch {
	case inWindow(oldest, oldest+receiver.windowSize, receiver.modulus, sequenceNumber):
		if err := receiver.received.insert(sequenceNumber, frame.Payload); err != nil {
			log.Debug("duplicate")
		}
		if err := receiver.reply(ack, addr); err != nil {
			return Fail, nil, err
		}
		var delivered []string
		if sequenceNumber == oldest {
			delivered = receiver.received.removeSequence()
		}
		log.WithField("window", windowString(receiver.received.oldest(), receiver.windowSize, receiver.modulus)).Info("accepted")
		return Success, delivered, nil
	case inWindow(oldest-receiver.windowSize, oldest, receiver.modulus, sequenceNumber):
		log.Debug("acknowledging again")
		return InvalidSegment, nil, receiver.reply(ack, addr)
	default:
		log.Debug("outside window")
		return InvalidSegment, nil, nil
	}
}
