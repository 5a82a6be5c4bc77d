package shared

const (
	// DigestSize is the size of a double SHA-256 digest in bytes.
	DigestSize = 32

	// MaxScore is the score of an all-zero digest.
	MaxScore = DigestSize * 8

	// MaxChallengeLen is the largest challenge accepted by the engine.
	MaxChallengeLen = 96

	// MaxNonceDigits is the number of decimal digits of math.MaxUint64.
	MaxNonceDigits = 20

	// MaxMessageLen bounds challenge ‖ decimal(nonce).
	MaxMessageLen = 128
)
