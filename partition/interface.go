package partition

import (
	"github.com/spacemeshos/powsearch/device"
	"github.com/spacemeshos/powsearch/grid"
	"github.com/spacemeshos/powsearch/shared"
)

//go:generate mockgen -source=interface.go -destination=./mocks.go -package=partition

// Device is a compute provider able to run one dispatch.
type Device interface {
	Provider() device.Provider
	Dispatch(k grid.Kernel) (*shared.Candidate, error)
}
