package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/nicosta1132/rdt-go"
	"github.com/sirupsen/logrus"
)

type stopAndWaitSender interface {
	Send(payload string) error
	Close() error
}

type windowSender interface {
	rdt.WindowSender
	Start() error
	Close() error
	Stats() rdt.SenderStats
}

func main() {
	variant := flag.String("variant", rdt.VariantGoBackN, "nak, altbit, acknak, gbn or sr")
	listen := flag.String("listen", "localhost:3030", "local address")
	peerAddress := flag.String("peer", "localhost:3031", "address of the receiver")
	verbose := flag.Bool("v", false, "trace every datagram")
	var overrides rdt.Config
	var loss rdt.LossConfig
	rdt.BindConfigFlags(flag.CommandLine, &overrides)
	rdt.BindLossFlags(flag.CommandLine, &loss)
	flag.Parse()

	if *verbose {
		rdt.Logger.SetLevel(logrus.TraceLevel)
	}
	log := rdt.Logger.WithField("cmd", "rdtsend")

	config, err := rdt.DefaultConfig(*variant)
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	config = config.With(overrides)

	peer, err := rdt.ResolvePeer(*peerAddress)
	if err != nil {
		log.WithError(err).Fatal("resolve peer")
	}
	channel, err := rdt.OpenChannel(*listen, loss, "sender")
	if err != nil {
		log.WithError(err).Fatal("open channel")
	}

	send, closer, err := newSender(*variant, channel, peer, config)
	if err != nil {
		log.WithError(err).Fatal("create sender")
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		if err := closer(); err != nil {
			log.WithError(err).Warn("close")
		}
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		if err := send(scanner.Text()); err != nil {
			log.WithError(err).Error("send")
			break
		}
		fmt.Print("> ")
	}
	if err := closer(); err != nil {
		log.WithError(err).Warn("close")
	}
}

func newSender(variant string, channel rdt.Channel, addr net.Addr, config rdt.Config) (func(string) error, func() error, error) {
	var stopAndWait stopAndWaitSender
	switch variant {
	case rdt.VariantNak:
		stopAndWait = rdt.NewNakSender(channel, addr, config)
	case rdt.VariantAlternatingBit:
		stopAndWait = rdt.NewAlternatingBitSender(channel, addr, config)
	case rdt.VariantAckNak:
		stopAndWait = rdt.NewAckNakSender(channel, addr, config)
	}
	if stopAndWait != nil {
		return stopAndWait.Send, stopAndWait.Close, nil
	}

	var sender windowSender
	var err error
	switch variant {
	case rdt.VariantGoBackN:
		sender, err = rdt.NewGoBackNSender(channel, addr, config)
	case rdt.VariantSelectiveRepeat:
		sender, err = rdt.NewSelectiveRepeatSender(channel, addr, config)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := sender.Start(); err != nil {
		return nil, nil, err
	}
	socket := rdt.NewSocket(sender, rdt.DefaultRetryInterval)
	send := func(text string) error {
		_, err := socket.Write(text)
		return err
	}
	closer := func() error {
		stats := sender.Stats()
		fmt.Printf("sent %d, retransmitted %d, acknowledged %d\n", stats.Sent, stats.Retransmitted, stats.Acked)
		return sender.Close()
	}
	return send, closer, nil
}
