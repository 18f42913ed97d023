package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/nicosta1132/rdt-go"
	"github.com/sirupsen/logrus"
)

func main() {
	variant := flag.String("variant", rdt.VariantGoBackN, "nak, altbit, acknak, gbn or sr")
	listen := flag.String("listen", "localhost:3031", "local address")
	verbose := flag.Bool("v", false, "trace every datagram")
	var overrides rdt.Config
	var loss rdt.LossConfig
	rdt.BindConfigFlags(flag.CommandLine, &overrides)
	rdt.BindLossFlags(flag.CommandLine, &loss)
	flag.Parse()

	if *verbose {
		rdt.Logger.SetLevel(logrus.TraceLevel)
	}
	log := rdt.Logger.WithField("cmd", "rdtrecv")

	config, err := rdt.DefaultConfig(*variant)
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	config = config.With(overrides)

	channel, err := rdt.OpenChannel(*listen, loss, "receiver")
	if err != nil {
		log.WithError(err).Fatal("open channel")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		if err := channel.Close(); err != nil {
			log.WithError(err).Warn("close")
		}
	}()

	receive, err := newReceiver(*variant, channel, config)
	if err != nil {
		log.WithError(err).Fatal("create receiver")
	}
	for {
		payloads, err := receive()
		if err != nil {
			log.WithError(err).Info("stopped")
			return
		}
		for _, payload := range payloads {
			fmt.Println(payload)
		}
	}
}

func newReceiver(variant string, channel rdt.Channel, config rdt.Config) (func() ([]string, error), error) {
	switch variant {
	case rdt.VariantNak:
		return stopAndWait(rdt.NewNakReceiver(channel, config).Receive), nil
	case rdt.VariantAlternatingBit:
		return stopAndWait(rdt.NewAlternatingBitReceiver(channel, config).Receive), nil
	case rdt.VariantAckNak:
		return stopAndWait(rdt.NewAckNakReceiver(channel, config).Receive), nil
	case rdt.VariantGoBackN:
		receiver, err := rdt.NewGoBackNReceiver(channel, config)
		if err != nil {
			return nil, err
		}
		return func() ([]string, error) {
			status, payload, err := receiver.Receive()
			if err != nil || status != rdt.Success {
				return nil, err
			}
			return []string{payload}, nil
		}, nil
	case rdt.VariantSelectiveRepeat:
		receiver, err := rdt.NewSelectiveRepeatReceiver(channel, config)
		if err != nil {
			return nil, err
		}
		return func() ([]string, error) {
			_, payloads, err := receiver.Receive()
			return payloads, err
		}, nil
	default:
		return nil, rdt.ErrInvalidConfig
	}
}

func stopAndWait(receive func() (string, net.Addr, error)) func() ([]string, error) {
	return func() ([]string, error) {
		payload, _, err := receive()
		if err != nil {
			return nil, err
		}
		return []string{payload}, nil
	}
}
