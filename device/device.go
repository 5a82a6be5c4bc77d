// Package device exposes the compute providers that dispatches run on.
package device

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"go.uber.org/zap"

	"github.com/spacemeshos/powsearch/grid"
	"github.com/spacemeshos/powsearch/shared"
)

// dispatchMtx prevents concurrent dispatches to the same device (by provider ID).
var dispatchMtx deviceMutex

// DeviceClass is an enum for the type of device.
type DeviceClass int

const (
	ClassUnspecified DeviceClass = iota
	ClassCPU
)

func (c DeviceClass) String() string {
	switch c {
	case ClassCPU:
		return "CPU"
	default:
		return "Unspecified"
	}
}

// Provider describes one compute provider.
type Provider struct {
	ID         uint
	Model      string
	DeviceType DeviceClass
	Lanes      int
}

type option struct {
	logger *zap.Logger
	run    func(grid.Kernel, int) (*shared.Candidate, error)
}

// OptionFunc configures Discover.
type OptionFunc func(*option)

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(opts *option) {
		opts.logger = logger
	}
}

// withRunner replaces the grid executor; used by tests to inject faults.
func withRunner(run func(grid.Kernel, int) (*shared.Candidate, error)) OptionFunc {
	return func(opts *option) {
		opts.run = run
	}
}

// Device runs dispatches for one provider.
type Device struct {
	provider Provider
	logger   *zap.Logger
	run      func(grid.Kernel, int) (*shared.Candidate, error)
}

// Discover returns count devices, each multiplexing its grid onto lanes
// goroutines. lanes <= 0 selects runtime.NumCPU(). At least one device is
// required.
func Discover(count, lanes int, opts ...OptionFunc) ([]*Device, error) {
	if count < 1 {
		if count == 0 {
			return nil, shared.ErrNoProviders
		}
		return nil, shared.ConfigError{Param: "Devices", Expected: ">= 1", Given: fmt.Sprintf("%d", count)}
	}

	options := &option{
		logger: zap.NewNop(),
		run:    grid.Run,
	}
	for _, opt := range opts {
		opt(options)
	}

	if lanes <= 0 {
		lanes = runtime.NumCPU()
	}

	devices := make([]*Device, 0, count)
	for i := 0; i < count; i++ {
		p := Provider{
			ID:         uint(i),
			Model:      cpuModel(),
			DeviceType: ClassCPU,
			Lanes:      lanes,
		}
		devices = append(devices, &Device{
			provider: p,
			logger:   options.logger.Named("device").With(zap.Uint("provider", p.ID)),
			run:      options.run,
		})
	}
	return devices, nil
}

var cpuModel = sync.OnceValue(func() string {
	info, err := cpu.Info()
	if err != nil || len(info) == 0 || info[0].ModelName == "" {
		return "generic CPU"
	}
	return info[0].ModelName
})

// Providers lists the providers of devices.
func Providers(devices []*Device) []Provider {
	providers := make([]Provider, 0, len(devices))
	for _, d := range devices {
		providers = append(providers, d.provider)
	}
	return providers
}

func (d *Device) Provider() Provider {
	return d.provider
}

// Dispatch runs one kernel on the device. Invalid kernels are returned as
// configuration errors, everything else as a *shared.DeviceError.
func (d *Device) Dispatch(k grid.Kernel) (*shared.Candidate, error) {
	mtx := dispatchMtx.Device(d.provider.ID)
	mtx.Lock()
	defer mtx.Unlock()

	start := time.Now()
	c, err := d.run(k, d.provider.Lanes)
	switch {
	case errors.Is(err, shared.ErrInvalidConfig):
		return nil, err
	case err != nil:
		return nil, &shared.DeviceError{ProviderID: d.provider.ID, Err: err}
	}

	fields := []zap.Field{
		zap.Uint64("start", k.Window.Start),
		zap.Uint64("count", k.Window.Count),
		zap.Int("baseline", k.Baseline),
		zap.Duration("elapsed", time.Since(start)),
	}
	if c != nil {
		fields = append(fields, zap.Uint64("nonce", c.Nonce), zap.Int("score", c.Score))
	}
	d.logger.Debug("dispatch completed", fields...)
	return c, nil
}
