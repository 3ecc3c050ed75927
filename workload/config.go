package workload

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/benz9527/treex/lib/infra"
)

var ErrInvalidConfig = errors.New("[workload] invalid config")

// Config of the randomized trials. Every trial owns its own tree.
type Config struct {
	Trials      int
	Size        int
	RemoveRatio float64
	Workers     int
	// Seed 0 picks a random seed. The picked one is kept in the report.
	Seed       uint64
	CheckEvery int
	// StatsName enables the tree metrics when it is not empty.
	StatsName string
}

func DefaultConfig() Config {
	return Config{
		Trials:      8,
		Size:        2000,
		RemoveRatio: 0.5,
		Workers:     runtime.GOMAXPROCS(0),
		CheckEvery:  1,
	}
}

func (cfg *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&cfg.Trials, "trials", cfg.Trials, "number of independent trees")
	fs.IntVar(&cfg.Size, "size", cfg.Size, "number of keys inserted into each tree")
	fs.Float64Var(&cfg.RemoveRatio, "remove-ratio", cfg.RemoveRatio, "share of the inserted nodes removed again, in [0, 1]")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "size of the worker pool")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, 0 picks one")
	fs.IntVar(&cfg.CheckEvery, "check-every", cfg.CheckEvery, "validate the tree every n inserts or removes")
}

func invalid(field string, value any, reason string) error {
	return infra.WrapErrorStackWithMessage(ErrInvalidConfig, fmt.Sprintf("%s=%v %s", field, value, reason))
}

func (cfg Config) Validate() error {
	var err error
	if cfg.Trials <= 0 {
		err = multierr.Append(err, invalid("trials", cfg.Trials, "must be positive"))
	}
	if cfg.Size < 0 {
		err = multierr.Append(err, invalid("size", cfg.Size, "must not be negative"))
	}
	if cfg.RemoveRatio < 0 || cfg.RemoveRatio > 1 || math.IsNaN(cfg.RemoveRatio) {
		err = multierr.Append(err, invalid("remove-ratio", cfg.RemoveRatio, "must be in [0, 1]"))
	}
	if cfg.Workers <= 0 {
		err = multierr.Append(err, invalid("workers", cfg.Workers, "must be positive"))
	}
	if cfg.CheckEvery <= 0 {
		err = multierr.Append(err, invalid("check-every", cfg.CheckEvery, "must be positive"))
	}
	return err
}
