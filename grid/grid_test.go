package grid

import (
	"bytes"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spacemeshos/powsearch/hashing"
	"github.com/spacemeshos/powsearch/shared"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scoreHasher returns a digest with a chosen number of leading zero bits per
// nonce and 0xff... (score 0) for everything else.
type scoreHasher struct {
	challenge []byte
	scores    map[uint64]int
}

func digestWithScore(score int) shared.Digest {
	var d shared.Digest
	for i := range d {
		d[i] = 0xff
	}
	for i := 0; i < score; i++ {
		d[i/8] &^= 0x80 >> (i % 8)
	}
	return d
}

func (h scoreHasher) Sum(msg []byte) shared.Digest {
	nonce, err := strconv.ParseUint(string(bytes.TrimPrefix(msg, h.challenge)), 10, 64)
	if err != nil {
		panic(err)
	}
	return digestWithScore(h.scores[nonce])
}

// countingHasher counts how many times every nonce of a window is hashed.
type countingHasher struct {
	challenge []byte
	start     uint64
	counts    []atomic.Int32
}

func (h *countingHasher) Sum(msg []byte) shared.Digest {
	nonce, err := strconv.ParseUint(string(bytes.TrimPrefix(msg, h.challenge)), 10, 64)
	if err != nil {
		panic(err)
	}
	h.counts[nonce-h.start].Add(1)
	return digestWithScore(0)
}

type panicHasher struct{}

func (panicHasher) Sum([]byte) shared.Digest {
	panic("device fault")
}

func testShape() Shape {
	return Shape{Blocks: 4, ThreadsPerBlock: 8, ItersPerThread: 3}
}

func TestShape_Units(t *testing.T) {
	r := require.New(t)

	s := Shape{Blocks: 256, ThreadsPerBlock: 256, ItersPerThread: 64}
	r.EqualValues(256*256, s.Units(1<<30))
	r.EqualValues(256, s.Units(1))
	r.EqualValues(512, s.Units(257))
	r.EqualValues(256*256, s.Units(256*256))
}

func TestShape_Validate(t *testing.T) {
	r := require.New(t)

	r.NoError(testShape().Validate())
	r.ErrorIs(Shape{Blocks: 0, ThreadsPerBlock: 1, ItersPerThread: 1}.Validate(), shared.ErrInvalidConfig)
	r.ErrorIs(Shape{Blocks: 1, ThreadsPerBlock: -1, ItersPerThread: 1}.Validate(), shared.ErrInvalidConfig)
	r.ErrorIs(Shape{Blocks: 1, ThreadsPerBlock: 1, ItersPerThread: MaxShapeDim + 1}.Validate(), shared.ErrInvalidConfig)
}

// TestRun_CoversWindowExactlyOnce asserts that the grid-stride units are disjoint
// and together cover the window.
func TestRun_CoversWindowExactlyOnce(t *testing.T) {
	shapes := []Shape{
		{Blocks: 1, ThreadsPerBlock: 1, ItersPerThread: 1},
		{Blocks: 4, ThreadsPerBlock: 8, ItersPerThread: 3},
		{Blocks: 2, ThreadsPerBlock: 3, ItersPerThread: 64},
		{Blocks: 256, ThreadsPerBlock: 256, ItersPerThread: 64},
	}
	for _, shape := range shapes {
		for _, count := range []uint64{1, 7, 96, 1000, 4099} {
			for _, lanes := range []int{1, 3, 8} {
				t.Run(fmt.Sprintf("%+v/count=%d/lanes=%d", shape, count, lanes), func(t *testing.T) {
					challenge := []byte("abc:0")
					h := &countingHasher{challenge: challenge, start: 1000, counts: make([]atomic.Int32, count)}
					k := Kernel{
						Challenge: challenge,
						Window:    shared.Window{Start: 1000, Count: count},
						Shape:     shape,
						Hasher:    h,
					}

					_, err := Run(k, lanes)
					require.NoError(t, err)
					for i := range h.counts {
						require.EqualValues(t, 1, h.counts[i].Load(), "nonce %d", 1000+i)
					}
				})
			}
		}
	}
}

func TestRun_StubHasher(t *testing.T) {
	r := require.New(t)

	challenge := []byte("abc:0")
	k := Kernel{
		Challenge: challenge,
		Window:    shared.Window{Start: 0, Count: 1000},
		Baseline:  1,
		Shape:     testShape(),
		Hasher:    scoreHasher{challenge: challenge, scores: map[uint64]int{42: 3}},
	}

	c, err := Run(k, 4)
	r.NoError(err)
	r.NotNil(c)
	r.EqualValues(42, c.Nonce)
	r.Equal(3, c.Score)
	r.Equal(digestWithScore(3), c.Digest)
}

func TestRun_BelowBaseline(t *testing.T) {
	challenge := []byte("abc:0")
	k := Kernel{
		Challenge: challenge,
		Window:    shared.Window{Start: 0, Count: 1000},
		Baseline:  4,
		Shape:     testShape(),
		Hasher:    scoreHasher{challenge: challenge, scores: map[uint64]int{42: 3}},
	}

	c, err := Run(k, 4)
	require.NoError(t, err)
	require.Nil(t, c)
}

func TestRun_ScoreEqualToBaselineIsReported(t *testing.T) {
	challenge := []byte("abc:0")
	k := Kernel{
		Challenge: challenge,
		Window:    shared.Window{Start: 0, Count: 100},
		Baseline:  3,
		Shape:     testShape(),
		Hasher:    scoreHasher{challenge: challenge, scores: map[uint64]int{42: 3}},
	}

	c, err := Run(k, 2)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.EqualValues(t, 42, c.Nonce)
}

func TestRun_TieBreakLowestNonce(t *testing.T) {
	challenge := []byte("tie")
	scores := map[uint64]int{}
	for _, n := range []uint64{977, 31, 500, 64} {
		scores[n] = 9
	}
	scores[12] = 8

	for i := 0; i < 20; i++ {
		k := Kernel{
			Challenge: challenge,
			Window:    shared.Window{Start: 0, Count: 1000},
			Shape:     Shape{Blocks: 8, ThreadsPerBlock: 8, ItersPerThread: 2},
			Hasher:    scoreHasher{challenge: challenge, scores: scores},
		}
		c, err := Run(k, 8)
		require.NoError(t, err)
		require.EqualValues(t, 31, c.Nonce)
		require.Equal(t, 9, c.Score)
	}
}

func TestRun_ZeroBaselineAlwaysReports(t *testing.T) {
	for _, count := range []uint64{1, 2, 50} {
		k := Kernel{
			Challenge: []byte("f00d:1"),
			Window:    shared.Window{Start: 12345, Count: count},
			Shape:     testShape(),
		}
		c, err := Run(k, 2)
		require.NoError(t, err)
		require.NotNil(t, c)
		require.GreaterOrEqual(t, c.Nonce, uint64(12345))
		require.Less(t, c.Nonce, 12345+count)
	}
}

func TestRun_MatchesSequentialScan(t *testing.T) {
	r := require.New(t)

	challenge := []byte("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:0")
	w := shared.Window{Start: 500, Count: 3000}

	var expected *shared.Candidate
	for n := w.Start; n < w.End(); n++ {
		c, err := hashing.Score(hashing.DoubleSHA256{}, challenge, n)
		r.NoError(err)
		if c.Better(expected) {
			expected = &c
		}
	}

	actual, err := Run(Kernel{Challenge: challenge, Window: w, Shape: testShape()}, 4)
	r.NoError(err)
	r.Equal(expected, actual)

	ok, err := hashing.Check(challenge, *actual)
	r.NoError(err)
	r.True(ok)
}

func TestRun_PanicIsReturnedAsError(t *testing.T) {
	k := Kernel{
		Challenge: []byte("abc"),
		Window:    shared.Window{Start: 0, Count: 10},
		Shape:     testShape(),
		Hasher:    panicHasher{},
	}
	c, err := Run(k, 2)
	require.ErrorContains(t, err, "device fault")
	require.Nil(t, c)
}

func TestRun_InvalidKernel(t *testing.T) {
	r := require.New(t)

	valid := Kernel{Challenge: []byte("abc"), Window: shared.Window{Count: 1}, Shape: testShape()}

	k := valid
	k.Window.Count = 0
	_, err := Run(k, 1)
	r.ErrorIs(err, shared.ErrInvalidConfig)

	k = valid
	k.Baseline = shared.MaxScore + 1
	_, err = Run(k, 1)
	r.ErrorIs(err, shared.ErrInvalidConfig)

	k = valid
	k.Challenge = make([]byte, shared.MaxChallengeLen+1)
	_, err = Run(k, 1)
	r.ErrorIs(err, shared.ErrInvalidConfig)

	k = valid
	k.Shape.Blocks = 0
	_, err = Run(k, 1)
	r.ErrorIs(err, shared.ErrInvalidConfig)
}
