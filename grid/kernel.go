// Package grid executes one dispatch: a data-parallel sweep of a nonce window.
//
// A dispatch is organised like an accelerator launch. Blocks × ThreadsPerBlock
// logical units each own a disjoint, strided subsequence of the window. The
// units are multiplexed onto a bounded number of goroutine lanes.
package grid

import (
	"fmt"

	"github.com/spacemeshos/powsearch/hashing"
	"github.com/spacemeshos/powsearch/shared"
)

// MaxShapeDim bounds every dimension of a Shape so that the grid stride
// always fits in a uint64.
const MaxShapeDim = 1 << 20

// Shape describes the launch geometry of a dispatch.
type Shape struct {
	Blocks          int `mapstructure:"blocks"`
	ThreadsPerBlock int `mapstructure:"threads-per-block"`
	ItersPerThread  int `mapstructure:"iters-per-thread"`
}

func (s Shape) Validate() error {
	for _, dim := range []struct {
		name  string
		value int
	}{
		{"Blocks", s.Blocks},
		{"ThreadsPerBlock", s.ThreadsPerBlock},
		{"ItersPerThread", s.ItersPerThread},
	} {
		if dim.value < 1 || dim.value > MaxShapeDim {
			return shared.ConfigError{Param: dim.name, Expected: fmt.Sprintf("[1, %d]", MaxShapeDim), Given: fmt.Sprintf("%d", dim.value)}
		}
	}
	return nil
}

// Units returns the number of logical units launched for a window of count
// nonces. Blocks shrink so that no block is launched without work.
func (s Shape) Units(count uint64) uint64 {
	tpb := uint64(s.ThreadsPerBlock)
	blocks := uint64(s.Blocks)
	if count < blocks*tpb {
		blocks = (count + tpb - 1) / tpb
		if blocks == 0 {
			blocks = 1
		}
	}
	return blocks * tpb
}

// Kernel is the full description of one dispatch.
type Kernel struct {
	Challenge []byte
	Window    shared.Window
	Baseline  int
	Shape     Shape

	// Hasher defaults to hashing.DoubleSHA256 when nil.
	Hasher hashing.Hasher
}

func (k Kernel) Validate() error {
	if err := shared.ValidateChallenge(k.Challenge); err != nil {
		return err
	}
	if err := k.Window.Validate(); err != nil {
		return err
	}
	if err := shared.ValidateThreshold(k.Baseline); err != nil {
		return err
	}
	return k.Shape.Validate()
}

// WithWindow returns a copy of k covering w.
func (k Kernel) WithWindow(w shared.Window) Kernel {
	k.Window = w
	return k
}
