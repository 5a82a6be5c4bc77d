package shared

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
)

// Digest is a 32 byte double SHA-256 output, hex encoded in JSON.
type Digest [DigestSize]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(d[:]))
}

func (d *Digest) UnmarshalJSON(data []byte) (err error) {
	var hexString string
	if err = json.Unmarshal(data, &hexString); err != nil {
		return
	}
	b, err := hex.DecodeString(hexString)
	if err != nil {
		return
	}
	if len(b) != DigestSize {
		return fmt.Errorf("invalid digest length; expected: %d, given: %d", DigestSize, len(b))
	}
	copy(d[:], b)
	return nil
}

// Candidate is a scored nonce.
type Candidate struct {
	Nonce  uint64 `json:"nonce"`
	Digest Digest `json:"hash_hex"`
	Score  int    `json:"leading_zero_bits"`
}

// Better reports whether c should replace other as the best candidate.
// Higher score wins; on equal score the lower nonce wins.
func (c *Candidate) Better(other *Candidate) bool {
	if other == nil {
		return true
	}
	if c.Score != other.Score {
		return c.Score > other.Score
	}
	return c.Nonce < other.Nonce
}

// Window is the half-open nonce range [Start, Start+Count).
type Window struct {
	Start uint64
	Count uint64
}

// End returns the first nonce after the window.
func (w Window) End() uint64 {
	return w.Start + w.Count
}

func (w Window) Validate() error {
	if w.Count == 0 {
		return ConfigError{Param: "Window", Expected: "> 0", Given: "0"}
	}
	if w.Start > math.MaxUint64-w.Count {
		return ConfigError{
			Param:    "Window",
			Expected: fmt.Sprintf("start + count <= %d", uint64(math.MaxUint64)),
			Given:    fmt.Sprintf("start %d, count %d", w.Start, w.Count),
		}
	}
	return nil
}

func ValidateThreshold(threshold int) error {
	if threshold < 0 || threshold > MaxScore {
		return ConfigError{Param: "Threshold", Expected: fmt.Sprintf("[0, %d]", MaxScore), Given: fmt.Sprintf("%d", threshold)}
	}
	return nil
}

func ValidateChallenge(challenge []byte) error {
	if len(challenge) > MaxChallengeLen {
		return ConfigError{Param: "Challenge", Expected: fmt.Sprintf("<= %d bytes", MaxChallengeLen), Given: fmt.Sprintf("%d bytes", len(challenge))}
	}
	return nil
}
