package rdt

import "flag"

// BindConfigFlags registers the fields of config on fs, using the current
// values as defaults.
func BindConfigFlags(fs *flag.FlagSet, config *Config) {
	fs.IntVar(&config.Modulus, "modulus", config.Modulus, "size of the sequence number space")
	fs.IntVar(&config.WindowSize, "window", config.WindowSize, "number of unacknowledged frames")
	fs.DurationVar(&config.RetransmissionTimeout, "rto", config.RetransmissionTimeout, "retransmission timeout of the window protocols")
	fs.DurationVar(&config.FeedbackTimeout, "feedback-timeout", config.FeedbackTimeout, "stop-and-wait wait for a reply, negative blocks")
	fs.DurationVar(&config.ReadTimeout, "read-timeout", config.ReadTimeout, "poll interval of the acknowledgment listener")
	fs.IntVar(&config.BufferSize, "buffer", config.BufferSize, "receive buffer size in bytes")
}

func BindLossFlags(fs *flag.FlagSet, config *LossConfig) {
	fs.Float64Var(&config.DropProbability, "drop", config.DropProbability, "probability of losing a datagram")
	fs.Float64Var(&config.DelayProbability, "delay", config.DelayProbability, "probability of delaying a datagram")
	fs.DurationVar(&config.DelayMin, "delay-min", config.DelayMin, "minimum delay")
	fs.DurationVar(&config.DelayMax, "delay-max", config.DelayMax, "maximum delay")
	fs.Float64Var(&config.CorruptProbability, "corrupt", config.CorruptProbability, "probability of flipping one bit")
	fs.Int64Var(&config.Seed, "seed", config.Seed, "random seed, 0 seeds from the clock")
}
