package shared

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCandidate_Better(t *testing.T) {
	r := require.New(t)

	low := &Candidate{Nonce: 10, Score: 3}
	high := &Candidate{Nonce: 20, Score: 5}
	r.True(low.Better(nil))
	r.True(high.Better(low))
	r.False(low.Better(high))

	// equal scores: lowest nonce wins
	tie := &Candidate{Nonce: 7, Score: 3}
	r.True(tie.Better(low))
	r.False(low.Better(tie))
	r.False(low.Better(low))
}

func TestWindow_Validate(t *testing.T) {
	r := require.New(t)

	r.NoError(Window{Start: 0, Count: 1}.Validate())
	r.NoError(Window{Start: math.MaxUint64 - 10, Count: 10}.Validate())

	err := Window{Start: 5, Count: 0}.Validate()
	r.ErrorIs(err, ErrInvalidConfig)

	err = Window{Start: math.MaxUint64, Count: 2}.Validate()
	var cfgErr ConfigError
	r.ErrorAs(err, &cfgErr)
	r.Equal("Window", cfgErr.Param)
}

func TestValidateThreshold(t *testing.T) {
	r := require.New(t)

	r.NoError(ValidateThreshold(0))
	r.NoError(ValidateThreshold(MaxScore))
	r.ErrorIs(ValidateThreshold(-1), ErrInvalidConfig)
	r.ErrorIs(ValidateThreshold(MaxScore+1), ErrInvalidConfig)
}

func TestValidateChallenge(t *testing.T) {
	r := require.New(t)

	r.NoError(ValidateChallenge(make([]byte, MaxChallengeLen)))
	r.ErrorIs(ValidateChallenge(make([]byte, MaxChallengeLen+1)), ErrInvalidConfig)
}

func TestDigest_JSON(t *testing.T) {
	r := require.New(t)

	var d Digest
	d[0] = 0x0f
	d[31] = 0xa0

	c := Candidate{Nonce: 42, Digest: d, Score: 4}
	data, err := json.Marshal(c)
	r.NoError(err)
	r.JSONEq(`{"nonce":42,"hash_hex":"0f000000000000000000000000000000000000000000000000000000000000a0","leading_zero_bits":4}`, string(data))

	var decoded Candidate
	r.NoError(json.Unmarshal(data, &decoded))
	r.Equal(c, decoded)

	r.Error(json.Unmarshal([]byte(`"abcd"`), &d))
}

func TestJobParams_Key(t *testing.T) {
	p := JobParams{TxID: "ab12", Vout: 3, Threshold: 20}
	require.Equal(t, "ab12:3", p.Challenge())
	require.Equal(t, "ab12:3:20", p.Key())
}
