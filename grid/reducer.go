package grid

import (
	"sync/atomic"

	"github.com/spacemeshos/powsearch/shared"
)

// best is the per-dispatch accumulator shared by every unit of a dispatch.
//
// Score, nonce and digest are published together through one pointer CAS, so
// readers never observe a score paired with another unit's nonce or digest.
// Among equal scores the lowest nonce wins, independent of scheduling.
type best struct {
	p atomic.Pointer[shared.Candidate]
}

// offer records the candidate if it beats the current best. It allocates only
// when the candidate actually improves on the current value.
func (b *best) offer(nonce uint64, digest *shared.Digest, score int) bool {
	cur := b.p.Load()
	if cur != nil && (score < cur.Score || (score == cur.Score && nonce >= cur.Nonce)) {
		return false
	}

	c := &shared.Candidate{Nonce: nonce, Digest: *digest, Score: score}
	for {
		if !c.Better(cur) {
			return false
		}
		if b.p.CompareAndSwap(cur, c) {
			return true
		}
		cur = b.p.Load()
	}
}

func (b *best) load() *shared.Candidate {
	return b.p.Load()
}
