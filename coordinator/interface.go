package coordinator

import (
	"context"

	"github.com/spacemeshos/powsearch/batch"
	"github.com/spacemeshos/powsearch/engine"
)

//go:generate mockgen -source=interface.go -destination=./mocks.go -package=coordinator

// Runner searches consecutive windows until one meets p.Threshold.
type Runner interface {
	UntilFound(ctx context.Context, p engine.Params) (batch.Result, error)
}
