package batch

import (
	"github.com/spacemeshos/powsearch/engine"
	"github.com/spacemeshos/powsearch/shared"
)

//go:generate mockgen -source=interface.go -destination=./mocks.go -package=batch

// Searcher runs one dispatch over a window.
type Searcher interface {
	Search(p engine.Params) (*shared.Candidate, error)
}
