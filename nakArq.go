package rdt

import (
	"net"
)

type nakSenderState int

const (
	waitCall nakSenderState = iota
	waitNak
)

func (state nakSenderState) String() string {
	switch state {
	case waitCall:
		return "wait_call"
	case waitNak:
		return "wait_nak"
	default:
		return "undefined"
	}
}

// NakSender relies on negative acknowledgments only. Frames carry no
// sequence number and silence for FeedbackTimeout counts as delivery, so a
// lost frame or a lost NAK goes unnoticed.
type NakSender struct {
	stopAndWaitPeer
	state nakSenderState
}

func NewNakSender(channel Channel, peer net.Addr, config Config) *NakSender {
	sender := &NakSender{
		stopAndWaitPeer: newStopAndWaitPeer(channel, peer, config, "nak", "sender"),
	}
	if sender.feedbackTimeout <= 0 {
		sender.feedbackTimeout = DefaultNakTimeout
	}
	return sender
}

func (sender *NakSender) Send(payload string) error {
	frame := EncodeUnnumberedFrame(payload)
	for {
		switch sender.state {
		case waitCall:
			if err := sender.transmit(frame); err != nil {
				return err
			}
			sender.state = waitNak
		case waitNak:
			status, _, _, err := sender.read(sender.feedbackTimeout)
			if err != nil {
				sender.state = waitCall
				return err
			}
			if status == Timeout {
				sender.log.Debug("no negative acknowledgment, assuming delivery")
				sender.state = waitCall
				return nil
			}
			sender.log.Info("negative acknowledgment received, retransmitting")
			if err := sender.transmit(frame); err != nil {
				sender.state = waitCall
				return err
			}
		default:
			return invalidState(sender.state)
		}
	}
}

// NakReceiver answers every corrupted frame with a one byte zero datagram
// and stays silent otherwise.
type NakReceiver struct {
	stopAndWaitPeer
}

func NewNakReceiver(channel Channel, config Config) *NakReceiver {
	return &NakReceiver{
		stopAndWaitPeer: newStopAndWaitPeer(channel, nil, config, "nak", "receiver"),
	}
}

func (receiver *NakReceiver) Receive() (string, net.Addr, error) {
	for {
		_, buffer, addr, err := receiver.read(0)
		if err != nil {
			return "", nil, err
		}
		frame := DecodeUnnumberedFrame(buffer)
		if frame.Valid {
			receiver.log.Info("accepted")
			return frame.Payload, addr, nil
		}
		receiver.log.Debug("corrupted, sending negative acknowledgment")
		if err := receiver.reply([]byte{0}, addr); err != nil {
			return "", nil, err
		}
	}
}
