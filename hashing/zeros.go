package hashing

import (
	"math/bits"

	"github.com/spacemeshos/powsearch/shared"
)

// LeadingZeros counts the zero bits of d starting at the most significant bit
// of byte 0. An all-zero digest scores shared.MaxScore.
func LeadingZeros(d shared.Digest) int {
	n := 0
	for _, b := range d {
		if b != 0 {
			return n + bits.LeadingZeros8(b)
		}
		n += 8
	}
	return n
}
