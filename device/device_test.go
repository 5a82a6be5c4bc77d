package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spacemeshos/powsearch/grid"
	"github.com/spacemeshos/powsearch/shared"
)

func testKernel() grid.Kernel {
	return grid.Kernel{
		Challenge: []byte("abc:0"),
		Window:    shared.Window{Start: 0, Count: 256},
		Shape:     grid.Shape{Blocks: 2, ThreadsPerBlock: 4, ItersPerThread: 8},
	}
}

func TestDiscover(t *testing.T) {
	r := require.New(t)

	devices, err := Discover(3, 2, WithLogger(zaptest.NewLogger(t)))
	r.NoError(err)
	r.Len(devices, 3)

	providers := Providers(devices)
	for i, p := range providers {
		r.EqualValues(i, p.ID)
		r.Equal(ClassCPU, p.DeviceType)
		r.Equal(2, p.Lanes)
		r.NotEmpty(p.Model)
	}
}

func TestDiscover_NoProviders(t *testing.T) {
	_, err := Discover(0, 1)
	require.ErrorIs(t, err, shared.ErrNoProviders)
	require.ErrorIs(t, err, shared.ErrInvalidConfig)

	_, err = Discover(-1, 1)
	require.ErrorIs(t, err, shared.ErrInvalidConfig)
}

func TestDiscover_DefaultLanes(t *testing.T) {
	devices, err := Discover(1, 0)
	require.NoError(t, err)
	require.Positive(t, devices[0].Provider().Lanes)
}

func TestDevice_Dispatch(t *testing.T) {
	r := require.New(t)

	devices, err := Discover(1, 4, WithLogger(zaptest.NewLogger(t)))
	r.NoError(err)

	c, err := devices[0].Dispatch(testKernel())
	r.NoError(err)
	r.NotNil(c)
	r.Less(c.Nonce, uint64(256))
}

func TestDevice_DispatchFault(t *testing.T) {
	fault := errors.New("kernel launch failed")
	devices, err := Discover(2, 1, withRunner(func(grid.Kernel, int) (*shared.Candidate, error) {
		return nil, fault
	}))
	require.NoError(t, err)

	_, err = devices[1].Dispatch(testKernel())
	var devErr *shared.DeviceError
	require.ErrorAs(t, err, &devErr)
	require.EqualValues(t, 1, devErr.ProviderID)
	require.ErrorIs(t, err, fault)
}

func TestDevice_DispatchInvalidKernel(t *testing.T) {
	devices, err := Discover(1, 1)
	require.NoError(t, err)

	k := testKernel()
	k.Window.Count = 0
	_, err = devices[0].Dispatch(k)
	require.ErrorIs(t, err, shared.ErrInvalidConfig)

	var devErr *shared.DeviceError
	require.False(t, errors.As(err, &devErr))
}
