package engine

import (
	"errors"

	"go.uber.org/zap"

	"github.com/spacemeshos/powsearch/hashing"
	"github.com/spacemeshos/powsearch/partition"
	"github.com/spacemeshos/powsearch/shared"
)

type option struct {
	devices []partition.Device
	hasher  hashing.Hasher
	logger  *zap.Logger
}

func (o *option) validate() error {
	if len(o.devices) == 0 {
		return shared.ErrNoProviders
	}
	if o.hasher == nil {
		return errors.New("`hasher` is required")
	}
	return nil
}

// OptionFunc is a function that sets an option for an Engine instance.
type OptionFunc func(*option) error

// WithDevices sets the devices every search is partitioned across.
func WithDevices(devices ...partition.Device) OptionFunc {
	return func(o *option) error {
		o.devices = append(o.devices, devices...)
		return nil
	}
}

// WithHasher replaces the double SHA-256 hasher.
func WithHasher(h hashing.Hasher) OptionFunc {
	return func(o *option) error {
		if h == nil {
			return errors.New("`hasher` must not be nil")
		}
		o.hasher = h
		return nil
	}
}

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) error {
		if logger == nil {
			return errors.New("`logger` must not be nil")
		}
		o.logger = logger
		return nil
	}
}
