package device

import (
	"time"

	"github.com/spacemeshos/powsearch/grid"
	"github.com/spacemeshos/powsearch/shared"
)

// benchmarkNonces is the window hashed by Benchmark.
const benchmarkNonces = 1 << 16

// Benchmark returns the hashes per second the device achieves with shape on
// the current machine.
func Benchmark(d *Device, shape grid.Shape) (int, error) {
	k := grid.Kernel{
		Challenge: []byte("0000000000000000000000000000000000000000000000000000000000000000:0"),
		Window:    shared.Window{Start: 0, Count: benchmarkNonces},
		Baseline:  shared.MaxScore,
		Shape:     shape,
	}

	start := time.Now()
	_, err := d.Dispatch(k)
	elapsed := time.Since(start)
	if err != nil {
		return 0, err
	}

	hashesPerSecond := float64(benchmarkNonces) / elapsed.Seconds()
	return int(hashesPerSecond), nil
}
