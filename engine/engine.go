// Package engine implements the search operation: find the best nonce in a
// window whose double SHA-256 digest meets a leading zero bits threshold.
package engine

import (
	"go.uber.org/zap"

	"github.com/spacemeshos/powsearch/device"
	"github.com/spacemeshos/powsearch/grid"
	"github.com/spacemeshos/powsearch/hashing"
	"github.com/spacemeshos/powsearch/partition"
	"github.com/spacemeshos/powsearch/shared"
)

// Params describes one search.
type Params struct {
	Challenge  []byte
	Threshold  int
	StartNonce uint64
	Window     uint64
	Shape      grid.Shape
}

// Validate checks p and returns a shared.ConfigError for the first invalid field.
func (p Params) Validate() error {
	if err := shared.ValidateThreshold(p.Threshold); err != nil {
		return err
	}
	if err := (shared.Window{Start: p.StartNonce, Count: p.Window}).Validate(); err != nil {
		return err
	}
	if err := shared.ValidateChallenge(p.Challenge); err != nil {
		return err
	}
	return p.Shape.Validate()
}

// Engine runs searches over a fixed set of devices.
type Engine struct {
	partitioner *partition.Partitioner
	hasher      hashing.Hasher
	logger      *zap.Logger
}

func New(opts ...OptionFunc) (*Engine, error) {
	options := &option{
		hasher: hashing.DoubleSHA256{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	logger := options.logger.Named("engine")
	p, err := partition.New(options.devices, logger)
	if err != nil {
		return nil, err
	}
	return &Engine{
		partitioner: p,
		hasher:      options.hasher,
		logger:      logger,
	}, nil
}

// NewWithProviders discovers count devices with lanes goroutines each and
// returns an Engine over them.
func NewWithProviders(count, lanes int, opts ...OptionFunc) (*Engine, error) {
	options := &option{logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	devices, err := device.Discover(count, lanes, device.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}
	return New(append(opts, WithDevices(partition.FromDevices(devices)...))...)
}

// NumDevices returns the number of devices a window is split across.
func (e *Engine) NumDevices() int {
	return e.partitioner.NumDevices()
}

// Search returns the best candidate in [StartNonce, StartNonce+Window) scoring
// at least Threshold, or nil if there is none. Among equal scores the lowest
// nonce wins.
func (e *Engine) Search(p Params) (*shared.Candidate, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	k := grid.Kernel{
		Challenge: p.Challenge,
		Window:    shared.Window{Start: p.StartNonce, Count: p.Window},
		Baseline:  p.Threshold,
		Shape:     p.Shape,
		Hasher:    e.hasher,
	}
	return e.partitioner.Dispatch(k)
}
