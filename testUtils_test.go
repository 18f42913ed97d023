package rdt

import (
	"flag"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

var flagVerbose = flag.Bool("v", false, "show more detailed console output")

func TestMain(m *testing.M) {
	flag.Parse()
	if *flagVerbose {
		Logger.SetLevel(logrus.TraceLevel)
	} else {
		Logger.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

const testTimeout = 2 * time.Second

type rdtTestSuite struct {
	suite.Suite
}

func (suite *rdtTestSuite) handleTestError(err error) {
	suite.Require().NoError(err)
}

// readFrame reads the next datagram from channel and decodes it as a
// numbered frame.
func (suite *rdtTestSuite) readFrame(channel Channel) Frame {
	return DecodeFrame(suite.readDatagram(channel))
}

func (suite *rdtTestSuite) readDatagram(channel Channel) []byte {
	buffer := make([]byte, DefaultBufferSize)
	status, n, _, err := channel.ReadFrom(buffer, testTimeout)
	suite.handleTestError(err)
	suite.Require().Equal(Success, status)
	return buffer[:n]
}

func (suite *rdtTestSuite) expectSilence(channel Channel, timeout time.Duration) {
	buffer := make([]byte, DefaultBufferSize)
	status, n, _, err := channel.ReadFrom(buffer, timeout)
	suite.handleTestError(err)
	suite.Equal(Timeout, status, "unexpected datagram %x", buffer[:n])
}

func (suite *rdtTestSuite) write(channel Channel, datagram []byte) {
	_, _, err := channel.WriteTo(datagram, nil)
	suite.handleTestError(err)
}

func (suite *rdtTestSuite) writeFrame(channel Channel, sequenceNumber int, payload string) {
	suite.write(channel, mustEncodeFrame(sequenceNumber, payload))
}

func (suite *rdtTestSuite) writeAck(channel Channel, sequenceNumber int) {
	suite.writeFrame(channel, sequenceNumber, ackText)
}

func corrupted(datagram []byte) []byte {
	result := make([]byte, len(datagram))
	copy(result, datagram)
	flipBit(result, 3)
	return result
}

func testWindowConfig(config Config) Config {
	config.RetransmissionTimeout = 200 * time.Millisecond
	config.ReadTimeout = 10 * time.Millisecond
	return config
}

// segmentManipulator drops or corrupts selected writes, counted from 1.
type segmentManipulator struct {
	channel       Channel
	mutex         sync.Mutex
	writes        int
	toDropOnce    map[int]bool
	toCorruptOnce map[int]bool
}

func newSegmentManipulator(channel Channel) *segmentManipulator {
	return &segmentManipulator{
		channel:       channel,
		toDropOnce:    make(map[int]bool),
		toCorruptOnce: make(map[int]bool),
	}
}

func (manipulator *segmentManipulator) DropOnce(write int) {
	manipulator.mutex.Lock()
	defer manipulator.mutex.Unlock()
	manipulator.toDropOnce[write] = true
}

func (manipulator *segmentManipulator) CorruptOnce(write int) {
	manipulator.mutex.Lock()
	defer manipulator.mutex.Unlock()
	manipulator.toCorruptOnce[write] = true
}

func (manipulator *segmentManipulator) WriteTo(buffer []byte, addr net.Addr) (StatusCode, int, error) {
	manipulator.mutex.Lock()
	manipulator.writes++
	write := manipulator.writes
	drop, corrupt := manipulator.toDropOnce[write], manipulator.toCorruptOnce[write]
	delete(manipulator.toDropOnce, write)
	delete(manipulator.toCorruptOnce, write)
	manipulator.mutex.Unlock()

	if drop {
		return Success, len(buffer), nil
	}
	if corrupt {
		buffer = corrupted(buffer)
	}
	return manipulator.channel.WriteTo(buffer, addr)
}

func (manipulator *segmentManipulator) ReadFrom(buffer []byte, timeout time.Duration) (StatusCode, int, net.Addr, error) {
	return manipulator.channel.ReadFrom(buffer, timeout)
}

func (manipulator *segmentManipulator) Close() error {
	return manipulator.channel.Close()
}
