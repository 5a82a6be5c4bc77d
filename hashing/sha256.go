// Package hashing implements the double SHA-256 pipeline used to score nonces.
//
// The compression function is implemented here rather than taken from a
// library because the grid calls it with a fixed, bounded message buffer and
// no allocation per hash.
package hashing

import (
	"encoding/binary"
	"math/bits"

	"github.com/spacemeshos/powsearch/shared"
)

const (
	blockSize = 64

	// lengthOffset is where the 64-bit message length starts in the final block.
	lengthOffset = blockSize - 8
)

var iv = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

var k = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// compress runs one SHA-256 block compression over chunk, updating state in place.
func compress(state *[8]uint32, chunk []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(chunk[i*4:])
	}
	for i := 16; i < 64; i++ {
		v1 := w[i-2]
		s1 := bits.RotateLeft32(v1, -17) ^ bits.RotateLeft32(v1, -19) ^ (v1 >> 10)
		v2 := w[i-15]
		s0 := bits.RotateLeft32(v2, -7) ^ bits.RotateLeft32(v2, -18) ^ (v2 >> 3)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, d, e, f, g, h := state[0], state[1], state[2], state[3], state[4], state[5], state[6], state[7]
	for i := 0; i < 64; i++ {
		bsig1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := h + bsig1 + ch + k[i] + w[i]

		bsig0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := bsig0 + maj

		h = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
	state[4] += e
	state[5] += f
	state[6] += g
	state[7] += h
}

// Sum256 returns the SHA-256 digest of msg.
func Sum256(msg []byte) shared.Digest {
	state := iv

	full := len(msg) / blockSize
	for i := 0; i < full; i++ {
		compress(&state, msg[i*blockSize:(i+1)*blockSize])
	}

	// The tail never needs more than two blocks: up to 63 message bytes, the
	// 0x80 marker and the 8 byte length.
	var tail [2 * blockSize]byte
	rem := copy(tail[:], msg[full*blockSize:])
	tail[rem] = 0x80

	bitLen := uint64(len(msg)) * 8
	if rem+1 <= lengthOffset {
		binary.BigEndian.PutUint64(tail[lengthOffset:blockSize], bitLen)
		compress(&state, tail[:blockSize])
	} else {
		binary.BigEndian.PutUint64(tail[blockSize+lengthOffset:], bitLen)
		compress(&state, tail[:blockSize])
		compress(&state, tail[blockSize:])
	}

	var out shared.Digest
	for i, s := range state {
		binary.BigEndian.PutUint32(out[i*4:], s)
	}
	return out
}

// DoubleSum returns SHA256(SHA256(msg)).
func DoubleSum(msg []byte) shared.Digest {
	first := Sum256(msg)
	return Sum256(first[:])
}
