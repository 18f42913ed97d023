package rdt

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

const (
	VariantNak             = "nak"
	VariantAlternatingBit  = "altbit"
	VariantAckNak          = "acknak"
	VariantGoBackN         = "gbn"
	VariantSelectiveRepeat = "sr"
)

type Config struct {
	Modulus               int
	WindowSize            int
	RetransmissionTimeout time.Duration
	// FeedbackTimeout bounds the wait for a reply in the stop-and-wait
	// variants. Zero or less blocks until something arrives.
	FeedbackTimeout time.Duration
	// ReadTimeout is the poll interval of the acknowledgment listener.
	ReadTimeout time.Duration
	BufferSize  int
	Log         *logrus.Entry
}

func DefaultStopAndWaitConfig() Config {
	return Config{
		Modulus:               2,
		WindowSize:            1,
		RetransmissionTimeout: DefaultRetransmissionTimeout,
		FeedbackTimeout:       DefaultAckTimeout,
		ReadTimeout:           DefaultReadTimeout,
		BufferSize:            DefaultBufferSize,
	}
}

func DefaultGoBackNConfig() Config {
	return Config{
		Modulus:               16,
		WindowSize:            4,
		RetransmissionTimeout: DefaultRetransmissionTimeout,
		ReadTimeout:           DefaultReadTimeout,
		BufferSize:            DefaultBufferSize,
	}
}

func DefaultSelectiveRepeatConfig() Config {
	return Config{
		Modulus:               9,
		WindowSize:            4,
		RetransmissionTimeout: DefaultRetransmissionTimeout,
		ReadTimeout:           DefaultReadTimeout,
		BufferSize:            DefaultBufferSize,
	}
}

// DefaultConfig returns the defaults of the named variant.
func DefaultConfig(variant string) (Config, error) {
	switch variant {
	case VariantNak:
		config := DefaultStopAndWaitConfig()
		config.FeedbackTimeout = DefaultNakTimeout
		return config, nil
	case VariantAlternatingBit, VariantAckNak:
		return DefaultStopAndWaitConfig(), nil
	case VariantGoBackN:
		return DefaultGoBackNConfig(), nil
	case VariantSelectiveRepeat:
		return DefaultSelectiveRepeatConfig(), nil
	default:
		return Config{}, errors.Wrapf(ErrInvalidConfig, "unknown variant %q", variant)
	}
}

// With returns config with every non-zero field of overrides applied.
func (config Config) With(overrides Config) Config {
	if overrides.Modulus != 0 {
		config.Modulus = overrides.Modulus
	}
	if overrides.WindowSize != 0 {
		config.WindowSize = overrides.WindowSize
	}
	if overrides.RetransmissionTimeout != 0 {
		config.RetransmissionTimeout = overrides.RetransmissionTimeout
	}
	if overrides.FeedbackTimeout != 0 {
		config.FeedbackTimeout = overrides.FeedbackTimeout
	}
	if overrides.ReadTimeout != 0 {
		config.ReadTimeout = overrides.ReadTimeout
	}
	if overrides.BufferSize != 0 {
		config.BufferSize = overrides.BufferSize
	}
	if overrides.Log != nil {
		config.Log = overrides.Log
	}
	return config
}

func (config Config) validate() error {
	if config.Modulus < 2 || config.Modulus > maxModulus {
		return errors.Wrapf(ErrInvalidConfig, "modulus %d outside [2, %d]", config.Modulus, maxModulus)
	}
	if config.WindowSize < 1 || config.WindowSize >= config.Modulus {
		return errors.Wrapf(ErrInvalidConfig, "window size %d outside [1, %d)", config.WindowSize, config.Modulus)
	}
	if config.BufferSize < 2 {
		return errors.Wrapf(ErrInvalidConfig, "buffer size %d", config.BufferSize)
	}
	return nil
}

// validateSelectiveRepeat additionally requires windowSize <= modulus/2;
// otherwise a retransmitted frame from the previous window is
// indistinguishable from a new one.
func (config Config) validateSelectiveRepeat() error {
	if err := config.validate(); err != nil {
		return err
	}
	if config.WindowSize > config.Modulus/2 {
		return errors.Wrapf(ErrInvalidConfig, "window size %d exceeds modulus/2 (%d)", config.WindowSize, config.Modulus/2)
	}
	return nil
}

func (config Config) logger(variant, role string) *logrus.Entry {
	log := config.Log
	if log == nil {
		log = logrus.NewEntry(Logger)
	}
	return log.WithFields(logrus.Fields{"variant": variant, "role": role})
}

func (config Config) bufferSize() int {
	if config.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return config.BufferSize
}
