package hashing

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/spacemeshos/sha256-simd"
	"github.com/stretchr/testify/require"
)

func TestSum256_KnownVectors(t *testing.T) {
	vectors := []struct {
		msg    string
		digest string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq", "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1"},
	}

	for _, v := range vectors {
		d := Sum256([]byte(v.msg))
		require.Equal(t, v.digest, hex.EncodeToString(d[:]), "message: %q", v.msg)
	}
}

// TestSum256_PaddingBoundaries covers both padding branches: the length fits
// in the last message block (55) or spills into an extra block (56, 64, 119, 120).
func TestSum256_PaddingBoundaries(t *testing.T) {
	for _, n := range []int{0, 1, 55, 56, 57, 63, 64, 65, 119, 120, 127, 128} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			msg := bytes.Repeat([]byte{'a' + byte(n%26)}, n)
			expected := sha256.Sum256(msg)
			actual := Sum256(msg)
			require.Equal(t, expected[:], actual[:])
		})
	}
}

func TestDoubleSum(t *testing.T) {
	r := require.New(t)

	for _, msg := range [][]byte{
		nil,
		[]byte("abc:0"),
		[]byte("abc:042"),
		bytes.Repeat([]byte{0xff}, 116),
	} {
		first := sha256.Sum256(msg)
		expected := sha256.Sum256(first[:])
		actual := DoubleSum(msg)
		r.Equal(expected[:], actual[:])
	}
}

func TestVerify_MatchesHasher(t *testing.T) {
	r := require.New(t)
	challenge := []byte("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:1")

	for nonce := uint64(0); nonce < 64; nonce++ {
		c, err := Score(DoubleSHA256{}, challenge, nonce)
		r.NoError(err)

		ok, err := Check(challenge, c)
		r.NoError(err)
		r.True(ok, "nonce %d", nonce)
	}

	c, err := Score(DoubleSHA256{}, challenge, 7)
	r.NoError(err)
	c.Score++
	ok, err := Check(challenge, c)
	r.NoError(err)
	r.False(ok)
}

func BenchmarkDoubleSum(b *testing.B) {
	msg := []byte("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:0:18446744073709551615")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		DoubleSum(msg)
	}
}
