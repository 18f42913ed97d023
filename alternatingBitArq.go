package rdt

import (
	"net"
	"time"
)

// AlternatingBitSender numbers frames 0 and 1 and advances only on an intact
// ACK for the frame in flight. With a FeedbackTimeout it ignores every other
// reply and retransmits when the timeout expires. Without one it blocks for
// feedback and retransmits on every reply that is not the expected ACK.
type AlternatingBitSender struct {
	stopAndWaitPeer
	state senderState
}

func NewAlternatingBitSender(channel Channel, peer net.Addr, config Config) *AlternatingBitSender {
	return &AlternatingBitSender{
		stopAndWaitPeer: newStopAndWaitPeer(channel, peer, config, "alternating-bit", "sender"),
	}
}

func (sender *AlternatingBitSender) Send(payload string) error {
	var frame []byte
	var deadline time.Time
	for {
		switch sender.state {
		case waitCall0, waitCall1:
			frame = mustEncodeFrame(sender.state.sequenceNumber(), payload)
			if err := sender.transmit(frame); err != nil {
				return err
			}
			deadline = time.Now().Add(sender.feedbackTimeout)
			sender.state = sender.state.next()
		case waitAck0, waitAck1:
			log := sender.log.WithField("seq", sender.state.sequenceNumber())
			timeout := time.Duration(0)
			if sender.feedbackTimeout > 0 {
				timeout = time.Until(deadline)
			}
			status := Timeout
			var buffer []byte
			var err error
			if sender.feedbackTimeout <= 0 || timeout > 0 {
				status, buffer, _, err = sender.read(timeout)
			}
			if err != nil {
				sender.state = sender.state.call()
				return err
			}

			if status != Timeout {
				reply := DecodeFrame(buffer)
				if reply.isAck() && reply.SequenceNumber == sender.state.sequenceNumber() {
					log.Info("acknowledgment received")
					sender.state = sender.state.next()
					return nil
				}
				if sender.feedbackTimeout > 0 {
					log.WithField("ack", reply.SequenceNumber).Debug("ignoring reply")
					continue
				}
				log.WithField("ack", reply.SequenceNumber).Info("unexpected reply, retransmitting")
			} else {
				log.Info("timeout, retransmitting")
			}

			if err := sender.transmit(frame); err != nil {
				sender.state = sender.state.call()
				return err
			}
			deadline = time.Now().Add(sender.feedbackTimeout)
		default:
			return invalidState(sender.state)
		}
	}
}

// AlternatingBitReceiver acknowledges every frame. The ACK carries the
// expected sequence number when the frame was accepted and the other one
// otherwise.
type AlternatingBitReceiver struct {
	stopAndWaitPeer
	state receiverState
}

func NewAlternatingBitReceiver(channel Channel, config Config) *AlternatingBitReceiver {
	return &AlternatingBitReceiver{
		stopAndWaitPeer: newStopAndWaitPeer(channel, nil, config, "alternating-bit", "receiver"),
	}
}

func (receiver *AlternatingBitReceiver) Receive() (string, net.Addr, error) {
	for {
		_, buffer, addr, err := receiver.read(0)
		if err != nil {
			return "", nil, err
		}
		frame := DecodeFrame(buffer)
		switch receiver.state {
		case waitSeq0, waitSeq1:
			expected := receiver.state.sequenceNumber()
			log := receiver.log.WithField("seq", frame.SequenceNumber)
			if frame.Valid && frame.SequenceNumber == expected {
				log.Info("accepted")
				if err := receiver.reply(mustEncodeFrame(expected, ackText), addr); err != nil {
					return "", nil, err
				}
				receiver.state = receiver.state.next()
				return frame.Payload, addr, nil
			}
			log.WithField("valid", frame.Valid).Debug("rejected")
			if err := receiver.reply(mustEncodeFrame(receiver.state.next().sequenceNumber(), ackText), addr); err != nil {
				return "", nil, err
			}
		default:
			return "", nil, invalidState(receiver.state)
		}
	}
}
