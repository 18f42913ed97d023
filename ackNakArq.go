package rdt

import (
	"net"
)

// AckNakSender numbers frames 0 and 1 and toggles only on a positive
// acknowledgment. A NAK, a corrupted reply or an unknown text triggers an
// immediate retransmission. A positive FeedbackTimeout also retransmits when
// no reply arrives at all.
type AckNakSender struct {
	stopAndWaitPeer
	state senderState
}

func NewAckNakSender(channel Channel, peer net.Addr, config Config) *AckNakSender {
	return &AckNakSender{
		stopAndWaitPeer: newStopAndWaitPeer(channel, peer, config, "ack-nak", "sender"),
	}
}

func (sender *AckNakSender) Send(payload string) error {
	var frame []byte
	for {
		switch sender.state {
		case waitCall0, waitCall1:
			frame = mustEncodeFrame(sender.state.sequenceNumber(), payload)
			if err := sender.transmit(frame); err != nil {
				return err
			}
			sender.state = sender.state.next()
		case waitAck0, waitAck1:
			log := sender.log.WithField("seq", sender.state.sequenceNumber())
			status, buffer, _, err := sender.read(sender.feedbackTimeout)
			if err != nil {
				sender.state = sender.state.call()
				return err
			}
			if status == Timeout {
				log.Info("timeout, retransmitting")
			} else {
				reply := DecodeUnnumberedFrame(buffer)
				if reply.isAck() {
					log.Info("acknowledgment received")
					sender.state = sender.state.next()
					return nil
				}
				log.WithField("reply", reply.Payload).WithField("valid", reply.Valid).Info("retransmitting")
			}
			if err := sender.transmit(frame); err != nil {
				sender.state = sender.state.call()
				return err
			}
		default:
			return invalidState(sender.state)
		}
	}
}

// AckNakReceiver sends NAK for a corrupted frame and ACK for every intact
// one, advancing only when the sequence number is the expected one.
type AckNakReceiver struct {
	stopAndWaitPeer
	state receiverState
}

func NewAckNakReceiver(channel Channel, config Config) *AckNakReceiver {
	return &AckNakReceiver{
		stopAndWaitPeer: newStopAndWaitPeer(channel, nil, config, "ack-nak", "receiver"),
	}
}

func (receiver *AckNakReceiver) Receive() (string, net.Addr, error) {
	ack, nak := EncodeUnnumberedFrame(ackText), EncodeUnnumberedFrame(nakText)
	for {
		_, buffer, addr, err := receiver.read(0)
		if err != nil {
			return "", nil, err
		}
		if receiver.state != waitSeq0 && receiver.state != waitSeq1 {
			return "", nil, invalidState(receiver.state)
		}

		frame := DecodeFrame(buffer)
		log := receiver.log.WithField("seq", frame.SequenceNumber)
		switch {
		case !frame.Valid:
			log.Debug("corrupted, sending negative acknowledgment")
			err = receiver.reply(nak, addr)
		case frame.SequenceNumber == receiver.state.sequenceNumber():
			log.Info("accepted")
			if err := receiver.reply(ack, addr); err != nil {
				return "", nil, err
			}
			receiver.state = receiver.state.next()
			return frame.Payload, addr, nil
		default:
			log.Debug("duplicate")
			err = receiver.reply(ack, addr)
		}
		if err != nil {
			return "", nil, err
		}
	}
}
