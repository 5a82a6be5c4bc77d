package hashing

import (
	"github.com/spacemeshos/sha256-simd"

	"github.com/spacemeshos/powsearch/shared"
)

type referenceHasher struct{}

func (referenceHasher) Sum(msg []byte) shared.Digest {
	first := sha256.Sum256(msg)
	return sha256.Sum256(first[:])
}

// Verify recomputes the candidate for challenge and nonce with an independent
// SHA-256 implementation.
func Verify(challenge []byte, nonce uint64) (shared.Candidate, error) {
	return Score(referenceHasher{}, challenge, nonce)
}

// Check reports whether c is a correctly scored candidate for challenge.
func Check(challenge []byte, c shared.Candidate) (bool, error) {
	ref, err := Verify(challenge, c.Nonce)
	if err != nil {
		return false, err
	}
	return ref == c, nil
}
