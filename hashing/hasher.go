package hashing

import "github.com/spacemeshos/powsearch/shared"

// Hasher produces the digest that a message is scored by.
type Hasher interface {
	Sum(msg []byte) shared.Digest
}

// DoubleSHA256 is the production Hasher.
type DoubleSHA256 struct{}

func (DoubleSHA256) Sum(msg []byte) shared.Digest {
	return DoubleSum(msg)
}

// Score builds the message for nonce, hashes it with h and returns the scored candidate.
func Score(h Hasher, challenge []byte, nonce uint64) (shared.Candidate, error) {
	var buf [shared.MaxMessageLen]byte
	msg, err := AppendMessage(buf[:0], challenge, nonce)
	if err != nil {
		return shared.Candidate{}, err
	}
	digest := h.Sum(msg)
	return shared.Candidate{
		Nonce:  nonce,
		Digest: digest,
		Score:  LeadingZeros(digest),
	}, nil
}
