package rdt

import "github.com/pkg/errors"

type rcvSlot struct {
	payload string
	present bool
}

// ringBufferRcv is the reorder buffer of the selective repeat receiver. r is
// the oldest sequence number not yet delivered.
type ringBufferRcv struct {
	buffer []rcvSlot
	s      int
	r      int
}

func newRingBufferRcv(modulus int) *ringBufferRcv {
	return &ringBufferRcv{
		buffer: make([]rcvSlot, modulus),
		s:      modulus,
	}
}

func (ring *ringBufferRcv) oldest() int {
	return ring.r
}

// insert stores payload at its sequence number. A retransmission of a frame
// that is already buffered is reported and ignored.
func (ring *ringBufferRcv) insert(sequenceNumber int, payload string) error {
	index := mod(sequenceNumber, ring.s)
	if ring.buffer[index].present {
		return errors.Errorf("already buffered %v", index)
	}
	ring.buffer[index] = rcvSlot{payload: payload, present: true}
	return nil
}

func (ring *ringBufferRcv) isBuffered(sequenceNumber int) bool {
	return ring.buffer[mod(sequenceNumber, ring.s)].present
}

// removeSequence delivers the consecutive run of buffered payloads starting
// at r, clearing their slots and advancing r past them.
func (ring *ringBufferRcv) removeSequence() []string {
	//fast path
	if !ring.buffer[ring.r].present {
		return nil
	}

	var ret []string
	for i := 0; i < ring.s; i++ {
		slot := ring.buffer[ring.r]
		if !slot.present {
			break
		}
		ring.buffer[ring.r] = rcvSlot{}
		ret = append(ret, slot.payload)
		ring.r = (ring.r + 1) % ring.s
	}
	return ret
}
