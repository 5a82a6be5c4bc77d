package hashing

import (
	"fmt"
	"strconv"

	"github.com/spacemeshos/powsearch/shared"
)

// AppendMessage appends challenge ‖ decimal(nonce) to dst. The caller is
// expected to pass a dst with capacity shared.MaxMessageLen so that the
// per-nonce hot path does not allocate.
func AppendMessage(dst, challenge []byte, nonce uint64) ([]byte, error) {
	if err := shared.ValidateChallenge(challenge); err != nil {
		return dst, err
	}

	dst = append(dst, challenge...)
	dst = strconv.AppendUint(dst, nonce, 10)
	if len(dst) > shared.MaxMessageLen {
		return dst, fmt.Errorf("message too long; expected: <= %d bytes, given: %d", shared.MaxMessageLen, len(dst))
	}
	return dst, nil
}
