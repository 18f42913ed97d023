package rdt

import (
	"strings"

	"github.com/pkg/errors"
)

type Position struct {
	Start int
	End   int
}

var sequenceNumberPosition = Position{0, 1}

const checksumLength = 1

// Frame is a decoded datagram. Valid is false when the checksum does not
// match or the datagram is too short to hold the fields it should carry.
type Frame struct {
	SequenceNumber int
	Numbered       bool
	Payload        string
	Valid          bool
}

func (frame Frame) isAck() bool {
	return frame.Valid && frame.Payload == ackText
}

func (frame Frame) isNak() bool {
	return frame.Valid && frame.Payload == nakText
}

func appendChecksum(buffer []byte) []byte {
	return append(buffer, Checksum(buffer))
}

// EncodeFrame builds [sequence number][payload][checksum] with the checksum
// covering the sequence number byte and the payload.
func EncodeFrame(sequenceNumber int, payload string) ([]byte, error) {
	if sequenceNumber < 0 || sequenceNumber >= maxModulus {
		return nil, errors.Wrapf(ErrSequenceNumber, "%d", sequenceNumber)
	}
	buffer := make([]byte, sequenceNumberPosition.End, sequenceNumberPosition.End+len(payload)+checksumLength)
	buffer[sequenceNumberPosition.Start] = byte(sequenceNumber)
	buffer = append(buffer, payload...)
	return appendChecksum(buffer), nil
}

// EncodeUnnumberedFrame builds [payload][checksum].
func EncodeUnnumberedFrame(payload string) []byte {
	buffer := make([]byte, 0, len(payload)+checksumLength)
	buffer = append(buffer, payload...)
	return appendChecksum(buffer)
}

func mustEncodeFrame(sequenceNumber int, payload string) []byte {
	buffer, err := EncodeFrame(sequenceNumber, payload)
	if err != nil {
		panic(err)
	}
	return buffer
}

// decodePayload drops byte sequences that are not valid UTF-8.
func decodePayload(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

func DecodeFrame(buffer []byte) Frame {
	if len(buffer) < sequenceNumberPosition.End+checksumLength {
		return Frame{SequenceNumber: -1, Numbered: true}
	}
	return Frame{
		SequenceNumber: int(buffer[sequenceNumberPosition.Start]),
		Numbered:       true,
		Payload:        decodePayload(buffer[sequenceNumberPosition.End : len(buffer)-checksumLength]),
		Valid:          Verify(buffer),
	}
}

func DecodeUnnumberedFrame(buffer []byte) Frame {
	if len(buffer) < checksumLength {
		return Frame{SequenceNumber: -1}
	}
	return Frame{
		SequenceNumber: -1,
		Payload:        decodePayload(buffer[:len(buffer)-checksumLength]),
		Valid:          Verify(buffer),
	}
}
