package rdt

import (
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// LossConfig controls the faults LossyChannel injects into received
// datagrams.
type LossConfig struct {
	DropProbability    float64
	DelayProbability   float64
	DelayMin           time.Duration
	DelayMax           time.Duration
	CorruptProbability float64
	Seed               int64
}

func (config LossConfig) Enabled() bool {
	return config.DropProbability > 0 || config.DelayProbability > 0 || config.CorruptProbability > 0
}

type LossStats struct {
	Dropped   uint32
	Delayed   uint32
	Corrupted uint32
}

// LossyChannel wraps a Channel and, on receive, drops, delays or flips a
// single bit of datagrams at random. Writes pass through untouched.
type LossyChannel struct {
	channel     Channel
	config      LossConfig
	random      *rand.Rand
	randomMutex sync.Mutex
	log         *logrus.Entry
	dropped     atomic.Uint32
	delayed     atomic.Uint32
	corrupted   atomic.Uint32
}

func NewLossyChannel(channel Channel, config LossConfig) *LossyChannel {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LossyChannel{
		channel: channel,
		config:  config,
		random:  rand.New(rand.NewSource(seed)),
		log:     logrus.NewEntry(Logger).WithField("role", "lossy channel"),
	}
}

func (lossy *LossyChannel) Stats() LossStats {
	return LossStats{
		Dropped:   lossy.dropped.Load(),
		Delayed:   lossy.delayed.Load(),
		Corrupted: lossy.corrupted.Load(),
	}
}

func (lossy *LossyChannel) Close() error {
	return lossy.channel.Close()
}

func (lossy *LossyChannel) WriteTo(buffer []byte, addr net.Addr) (StatusCode, int, error) {
	return lossy.channel.WriteTo(buffer, addr)
}

func (lossy *LossyChannel) ReadFrom(buffer []byte, timeout time.Duration) (StatusCode, int, net.Addr, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		remaining := timeout
		if timeout > 0 {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return Timeout, 0, nil, nil
			}
		}
		status, n, addr, err := lossy.channel.ReadFrom(buffer, remaining)
		if err != nil || status != Success {
			return status, n, addr, err
		}
		if lossy.chance(lossy.config.DropProbability) {
			lossy.dropped.Inc()
			lossy.log.Debug("datagram lost")
			continue
		}
		lossy.delay()
		if n > 0 && lossy.chance(lossy.config.CorruptProbability) {
			lossy.corrupt(buffer[:n])
		}
		return status, n, addr, nil
	}
}

func (lossy *LossyChannel) chance(probability float64) bool {
	if probability <= 0 {
		return false
	}
	lossy.randomMutex.Lock()
	defer lossy.randomMutex.Unlock()
	return lossy.random.Float64() < probability
}

func (lossy *LossyChannel) delay() {
	if !lossy.chance(lossy.config.DelayProbability) {
		return
	}
	lossy.randomMutex.Lock()
	span := lossy.config.DelayMax - lossy.config.DelayMin
	delay := lossy.config.DelayMin
	if span > 0 {
		delay += time.Duration(lossy.random.Int63n(int64(span)))
	}
	lossy.randomMutex.Unlock()
	lossy.delayed.Inc()
	lossy.log.WithField("delay", delay).Debug("datagram delayed")
	time.Sleep(delay)
}

// corrupt flips one bit anywhere in datagram; the length stays the same.
func (lossy *LossyChannel) corrupt(datagram []byte) {
	lossy.randomMutex.Lock()
	position := lossy.random.Intn(len(datagram) * 8)
	lossy.randomMutex.Unlock()
	flipBit(datagram, position)
	lossy.corrupted.Inc()
	lossy.log.WithField("bit", position).Debug("bit error injected")
}

// flipBit inverts bit position of datagram, counting from the most
// significant bit of the first byte.
func flipBit(datagram []byte, position int) {
	datagram[position/8] ^= 0x80 >> uint(position%8)
}
