package hashing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/powsearch/shared"
)

func TestLeadingZeros(t *testing.T) {
	r := require.New(t)

	var d shared.Digest
	r.Equal(shared.MaxScore, LeadingZeros(d))

	d[0] = 0x80
	r.Equal(0, LeadingZeros(d))

	d = shared.Digest{0x00, 0x0f, 0xff}
	r.Equal(12, LeadingZeros(d))

	d = shared.Digest{}
	d[31] = 0x01
	r.Equal(255, LeadingZeros(d))
}
