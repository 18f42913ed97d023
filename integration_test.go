package rdt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type windowSenderUnderTest interface {
	WindowSender
	Start() error
	Close() error
	Stats() SenderStats
	window() (int, int)
}

type IntegrationTestSuite struct {
	rdtTestSuite
	alpha, beta *PipeChannel
	loss        LossConfig
}

func (suite *IntegrationTestSuite) SetupTest() {
	suite.alpha, suite.beta = NewPipe("alpha", "beta")
	suite.loss = LossConfig{DropProbability: 0.2, CorruptProbability: 0.1, Seed: 1}
}

func (suite *IntegrationTestSuite) TearDownTest() {
	suite.handleTestError(suite.alpha.Close())
	suite.handleTestError(suite.beta.Close())
}

func integrationConfig(config Config) Config {
	config.RetransmissionTimeout = 30 * time.Millisecond
	config.ReadTimeout = 10 * time.Millisecond
	return config
}

func tokens(count int) []string {
	result := make([]string, count)
	for i := range result {
		result[i] = fmt.Sprintf("token-%d", i)
	}
	return result
}

// runReceiver delivers everything receive hands out until the channel is
// closed.
func runReceiver(receive func() ([]string, error)) <-chan string {
	delivered := make(chan string, 1024)
	go func() {
		defer close(delivered)
		for {
			payloads, err := receive()
			if err != nil {
				return
			}
			for _, payload := range payloads {
				delivered <- payload
			}
		}
	}()
	return delivered
}

func (suite *IntegrationTestSuite) expectDelivered(delivered <-chan string, expected []string) {
	for _, token := range expected {
		select {
		case payload := <-delivered:
			suite.Require().Equal(token, payload)
		case <-time.After(10 * time.Second):
			suite.Require().Fail("nothing delivered", "waiting for %s", token)
		}
	}
}

func (suite *IntegrationTestSuite) transfer(sender windowSenderUnderTest, delivered <-chan string) {
	suite.handleTestError(sender.Start())
	expected := tokens(40)
	written := make(chan error, 1)
	go func() {
		n, err := NewSocket(sender, 5*time.Millisecond).Write(strings.Join(expected, " "))
		if err == nil && n != len(expected) {
			err = fmt.Errorf("wrote %d tokens", n)
		}
		written <- err
	}()

	suite.expectDelivered(delivered, expected)
	suite.NoError(<-written)
	suite.Eventually(func() bool {
		oldest, next := sender.window()
		return oldest == next
	}, 10*time.Second, time.Millisecond)
	suite.NoError(sender.Close())
	suite.Equal(uint32(40), sender.Stats().Acked)
}

func (suite *IntegrationTestSuite) TestGoBackNOverLossyChannel() {
	config := integrationConfig(Config{Modulus: 8, WindowSize: 3, BufferSize: DefaultBufferSize})
	sender, err := NewGoBackNSender(NewLossyChannel(suite.alpha, suite.loss), suite.beta.LocalAddr(), config)
	suite.handleTestError(err)
	receiver, err := NewGoBackNReceiver(NewLossyChannel(suite.beta, suite.loss), config)
	suite.handleTestError(err)

	delivered := runReceiver(func() ([]string, error) {
		status, payload, err := receiver.Receive()
		if err != nil || status != Success {
			return nil, err
		}
		return []string{payload}, nil
	})
	suite.transfer(sender, delivered)
}

func (suite *IntegrationTestSuite) TestSelectiveRepeatOverLossyChannel() {
	config := integrationConfig(Config{Modulus: 8, WindowSize: 4, BufferSize: DefaultBufferSize})
	sender, err := NewSelectiveRepeatSender(NewLossyChannel(suite.alpha, suite.loss), suite.beta.LocalAddr(), config)
	suite.handleTestError(err)
	receiver, err := NewSelectiveRepeatReceiver(NewLossyChannel(suite.beta, suite.loss), config)
	suite.handleTestError(err)

	delivered := runReceiver(func() ([]string, error) {
		_, payloads, err := receiver.Receive()
		return payloads, err
	})
	suite.transfer(sender, delivered)
}

func (suite *IntegrationTestSuite) TestSelectiveRepeatOverDroppingManipulator() {
	config := integrationConfig(DefaultSelectiveRepeatConfig())
	manipulator := newSegmentManipulator(suite.alpha)
	manipulator.DropOnce(2)
	manipulator.CorruptOnce(3)
	sender, err := NewSelectiveRepeatSender(manipulator, suite.beta.LocalAddr(), config)
	suite.handleTestError(err)
	receiver, err := NewSelectiveRepeatReceiver(suite.beta, config)
	suite.handleTestError(err)

	delivered := runReceiver(func() ([]string, error) {
		_, payloads, err := receiver.Receive()
		return payloads, err
	})
	suite.handleTestError(sender.Start())
	for _, payload := range []string{"a", "b", "c", "d"} {
		status, err := sender.Send(payload)
		suite.handleTestError(err)
		suite.Equal(Success, status)
	}
	suite.expectDelivered(delivered, []string{"a", "b", "c", "d"})
	suite.Eventually(func() bool {
		return sender.Stats().Acked == 4
	}, 10*time.Second, time.Millisecond)
	suite.GreaterOrEqual(sender.Stats().Retransmitted, uint32(2))
	suite.NoError(sender.Close())
}

func (suite *IntegrationTestSuite) TestAlternatingBitOverLossyChannel() {
	config := DefaultStopAndWaitConfig()
	config.FeedbackTimeout = 50 * time.Millisecond
	sender := NewAlternatingBitSender(NewLossyChannel(suite.alpha, suite.loss), suite.beta.LocalAddr(), config)
	receiver := NewAlternatingBitReceiver(NewLossyChannel(suite.beta, suite.loss), config)

	delivered := runReceiver(func() ([]string, error) {
		payload, _, err := receiver.Receive()
		return []string{payload}, err
	})
	expected := tokens(20)
	for _, token := range expected {
		suite.handleTestError(sender.Send(token))
	}
	suite.expectDelivered(delivered, expected)
}

func (suite *IntegrationTestSuite) TestAckNakOverCorruptingChannel() {
	config := DefaultStopAndWaitConfig()
	config.FeedbackTimeout = 0
	loss := LossConfig{CorruptProbability: 0.3, Seed: 2}
	sender := NewAckNakSender(NewLossyChannel(suite.alpha, loss), suite.beta.LocalAddr(), config)
	receiver := NewAckNakReceiver(NewLossyChannel(suite.beta, loss), config)

	delivered := runReceiver(func() ([]string, error) {
		payload, _, err := receiver.Receive()
		return []string{payload}, err
	})
	expected := tokens(20)
	for _, token := range expected {
		suite.handleTestError(sender.Send(token))
	}
	suite.expectDelivered(delivered, expected)
}

func (suite *IntegrationTestSuite) TestWindowProtocolsOverUDP() {
	if testing.Short() {
		suite.T().Skip("Skipping integration test")
	}
	senderChannel, err := NewUDPChannel("localhost:0")
	suite.handleTestError(err)
	receiverChannel, err := NewUDPChannel("localhost:0")
	suite.handleTestError(err)
	peer, err := ResolvePeer(receiverChannel.LocalAddr().String())
	suite.handleTestError(err)

	config := integrationConfig(DefaultGoBackNConfig())
	sender, err := NewGoBackNSender(NewTracingChannel(senderChannel, "sender"), peer, config)
	suite.handleTestError(err)
	receiver, err := NewGoBackNReceiver(NewLossyChannel(receiverChannel, suite.loss), config)
	suite.handleTestError(err)
	defer func() {
		suite.NoError(receiver.Close())
	}()

	delivered := runReceiver(func() ([]string, error) {
		status, payload, err := receiver.Receive()
		if err != nil || status != Success {
			return nil, err
		}
		return []string{payload}, nil
	})
	suite.transfer(sender, delivered)
}

func TestIntegration(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
