package grid

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/powsearch/hashing"
	"github.com/spacemeshos/powsearch/shared"
)

// Run sweeps k.Window and returns the best candidate scoring at least
// k.Baseline, or nil if there is none. The call blocks until every unit has
// finished; it cannot be interrupted.
func Run(k Kernel, lanes int) (*shared.Candidate, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}

	hasher := k.Hasher
	if hasher == nil {
		hasher = hashing.DoubleSHA256{}
	}

	units := k.Shape.Units(k.Window.Count)
	if lanes < 1 {
		lanes = 1
	}
	if uint64(lanes) > units {
		lanes = int(units)
	}

	acc := &best{}
	var eg errgroup.Group
	for lane := 0; lane < lanes; lane++ {
		lane := lane
		eg.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("lane %d: panic: %v", lane, p)
				}
			}()

			var buf [shared.MaxMessageLen]byte
			for u := uint64(lane); u < units; u += uint64(lanes) {
				if err := sweep(&k, hasher, u, units, buf[:0], acc); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return acc.load(), nil
}

// sweep runs logical unit u: offsets u·iters + step for step in [0, iters),
// advancing by units·iters until the window is exhausted.
func sweep(k *Kernel, hasher hashing.Hasher, u, units uint64, buf []byte, acc *best) error {
	iters := uint64(k.Shape.ItersPerThread)
	count := k.Window.Count
	stride := units * iters

	for off := u * iters; off < count; off += stride {
		for step := uint64(0); step < iters && step < count-off; step++ {
			nonce := k.Window.Start + off + step

			msg, err := hashing.AppendMessage(buf, k.Challenge, nonce)
			if err != nil {
				return err
			}
			digest := hasher.Sum(msg)
			if score := hashing.LeadingZeros(digest); score >= k.Baseline {
				acc.offer(nonce, &digest, score)
			}
		}

		if count-off <= stride {
			break
		}
	}
	return nil
}
