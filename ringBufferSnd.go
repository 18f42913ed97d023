package rdt

import "github.com/pkg/errors"

// ringBufferSnd keeps the last transmitted frame of every outstanding
// sequence number. A sequence number is in flight iff its slot is set.
type ringBufferSnd struct {
	buffer [][]byte
	s      int
}

func newRingBufferSnd(modulus int) *ringBufferSnd {
	return &ringBufferSnd{
		buffer: make([][]byte, modulus),
		s:      modulus,
	}
}

func (ring *ringBufferSnd) insert(sequenceNumber int, frame []byte) error {
	index := mod(sequenceNumber, ring.s)
	if ring.buffer[index] != nil {
		return errors.Errorf("not empty at pos %v", index)
	}
	ring.buffer[index] = frame
	return nil
}

func (ring *ringBufferSnd) get(sequenceNumber int) []byte {
	return ring.buffer[mod(sequenceNumber, ring.s)]
}

func (ring *ringBufferSnd) isOutstanding(sequenceNumber int) bool {
	return ring.get(sequenceNumber) != nil
}

func (ring *ringBufferSnd) remove(sequenceNumber int) ([]byte, error) {
	index := mod(sequenceNumber, ring.s)
	frame := ring.buffer[index]
	if frame == nil {
		return nil, errors.Errorf("already removed %v", index)
	}
	ring.buffer[index] = nil
	return frame, nil
}

// removeRange clears [low, high) and returns how many slots were in flight.
func (ring *ringBufferSnd) removeRange(low, high int) int {
	removed := 0
	for _, sequenceNumber := range sequenceRange(low, high, ring.s) {
		if _, err := ring.remove(sequenceNumber); err == nil {
			removed++
		}
	}
	return removed
}

// outstanding lists the in-flight sequence numbers of [low, high) in window
// order.
func (ring *ringBufferSnd) outstanding(low, high int) []int {
	var ret []int
	for _, sequenceNumber := range sequenceRange(low, high, ring.s) {
		if ring.isOutstanding(sequenceNumber) {
			ret = append(ret, sequenceNumber)
		}
	}
	return ret
}
