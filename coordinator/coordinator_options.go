package coordinator

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spacemeshos/powsearch/grid"
)

type option struct {
	logger     *zap.Logger
	startNonce uint64
	window     uint64
	shape      grid.Shape
	now        func() time.Time
}

func (o *option) validate() error {
	if o.window == 0 {
		return errors.New("`window` must be greater than 0")
	}
	return o.shape.Validate()
}

// OptionFunc is a function that sets an option for a Coordinator instance.
type OptionFunc func(*option) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		if logger == nil {
			return errors.New("`logger` must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithStartNonce sets the first nonce searched by every job.
func WithStartNonce(start uint64) OptionFunc {
	return func(o *option) error {
		o.startNonce = start
		return nil
	}
}

// WithWindowSize sets the number of nonces searched per batch.
func WithWindowSize(window uint64) OptionFunc {
	return func(o *option) error {
		o.window = window
		return nil
	}
}

// WithShape sets the grid shape of every dispatch.
func WithShape(shape grid.Shape) OptionFunc {
	return func(o *option) error {
		o.shape = shape
		return nil
	}
}

func withClock(now func() time.Time) OptionFunc {
	return func(o *option) error {
		o.now = now
		return nil
	}
}
