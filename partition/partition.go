// Package partition splits a window across devices, runs one dispatch per
// device in parallel and merges the per-device results.
package partition

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/powsearch/device"
	"github.com/spacemeshos/powsearch/grid"
	"github.com/spacemeshos/powsearch/shared"
)

// Split divides w into n contiguous sub-windows. Every sub-window gets
// floor(Count/n) nonces and the first Count mod n get one more. Sub-windows
// may be empty when Count < n.
func Split(w shared.Window, n int) []shared.Window {
	if n < 1 {
		return nil
	}

	chunk := w.Count / uint64(n)
	rem := w.Count % uint64(n)

	windows := make([]shared.Window, n)
	cur := w.Start
	for i := range windows {
		size := chunk
		if uint64(i) < rem {
			size++
		}
		windows[i] = shared.Window{Start: cur, Count: size}
		cur += size
	}
	return windows
}

// Merge picks the highest scoring result. Ties go to the lowest index.
// It returns -1 and nil when every result is nil.
func Merge(results []*shared.Candidate) (int, *shared.Candidate) {
	idx := -1
	var best *shared.Candidate
	for i, c := range results {
		if c == nil {
			continue
		}
		if best == nil || c.Score > best.Score {
			idx, best = i, c
		}
	}
	return idx, best
}

// Partitioner fans a kernel out to its devices.
type Partitioner struct {
	devices []Device
	logger  *zap.Logger
}

// New returns a Partitioner over devices. At least one device is required.
func New(devices []Device, logger *zap.Logger) (*Partitioner, error) {
	if len(devices) == 0 {
		return nil, shared.ErrNoProviders
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Partitioner{
		devices: devices,
		logger:  logger.Named("partition"),
	}, nil
}

// FromDevices adapts discovered devices.
func FromDevices(devices []*device.Device) []Device {
	out := make([]Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, d)
	}
	return out
}

// NumDevices returns the number of devices the window is split across.
func (p *Partitioner) NumDevices() int {
	return len(p.devices)
}

// Dispatch runs k over all devices and returns the merged best candidate,
// or nil if no device found one scoring at least k.Baseline.
//
// With a single device a dispatch failure is returned. With several devices
// a failing device is logged and contributes no candidate; only when every
// device fails is an error returned.
func (p *Partitioner) Dispatch(k grid.Kernel) (*shared.Candidate, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}

	if len(p.devices) == 1 {
		c, err := p.devices[0].Dispatch(k)
		if err != nil {
			return nil, err
		}
		return p.report(k, c), nil
	}

	windows := Split(k.Window, len(p.devices))
	results := make([]*shared.Candidate, len(p.devices))
	errs := make([]error, len(p.devices))

	var eg errgroup.Group
	eg.SetLimit(len(p.devices))
	for i, d := range p.devices {
		if windows[i].Count == 0 {
			continue
		}
		i, d := i, d
		eg.Go(func() error {
			c, err := d.Dispatch(k.WithWindow(windows[i]))
			if err != nil {
				p.logger.Warn("device dispatch failed",
					zap.Uint("provider", d.Provider().ID),
					zap.Uint64("start", windows[i].Start),
					zap.Uint64("count", windows[i].Count),
					zap.Error(err),
				)
				errs[i] = err
				return nil
			}
			results[i] = c
			return nil
		})
	}
	_ = eg.Wait()

	failed := 0
	dispatched := 0
	for i := range p.devices {
		if windows[i].Count == 0 {
			continue
		}
		dispatched++
		if errs[i] != nil {
			failed++
			if errors.Is(errs[i], shared.ErrInvalidConfig) {
				return nil, errs[i]
			}
		}
	}
	if failed == dispatched {
		return nil, fmt.Errorf("all %d devices failed: %w", failed, errors.Join(errs...))
	}

	idx, best := Merge(results)
	if best != nil {
		p.logger.Debug("merged device results", zap.Int("device", idx), zap.Uint64("nonce", best.Nonce), zap.Int("score", best.Score))
	}
	return p.report(k, best), nil
}

// report applies the reporting rule: the accumulator starts at baseline-1 and
// a result is reported only when it strictly exceeds it.
func (p *Partitioner) report(k grid.Kernel, c *shared.Candidate) *shared.Candidate {
	if c == nil || c.Score <= k.Baseline-1 {
		return nil
	}
	return c
}
