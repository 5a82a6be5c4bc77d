// Package batch sequences dispatches over consecutive windows.
package batch

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spacemeshos/powsearch/engine"
	"github.com/spacemeshos/powsearch/shared"
)

// ErrNonceSpaceExhausted is returned when the cursor reaches the end of the
// uint64 nonce space.
var ErrNonceSpaceExhausted = errors.New("nonce space exhausted")

// Event is emitted by Stream for every improvement of the best score.
type Event struct {
	Best     shared.Candidate
	Baseline int
	Window   shared.Window
	Batch    uint64
}

// Result of UntilFound.
type Result struct {
	Candidate  shared.Candidate
	BatchesRun uint64
}

type option struct {
	logger           *zap.Logger
	progressInterval time.Duration
}

type OptionFunc func(*option)

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(o *option) {
		o.logger = logger
	}
}

// WithProgressInterval sets the minimum interval between progress logs.
func WithProgressInterval(d time.Duration) OptionFunc {
	return func(o *option) {
		o.progressInterval = d
	}
}

// Controller drives a Searcher over consecutive windows.
type Controller struct {
	searcher Searcher
	logger   *zap.Logger
	progress *rate.Limiter
}

func New(s Searcher, opts ...OptionFunc) *Controller {
	options := &option{
		logger:           zap.NewNop(),
		progressInterval: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Controller{
		searcher: s,
		logger:   options.logger.Named("batch"),
		progress: rate.NewLimiter(rate.Every(options.progressInterval), 1),
	}
}

// Threshold runs a single dispatch over p's window with baseline p.Threshold.
func (c *Controller) Threshold(ctx context.Context, p engine.Params) (*shared.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.searcher.Search(p)
}

// Stream searches consecutive windows of p.Window nonces starting at
// p.StartNonce. The first dispatch requires floor; after every find the next
// dispatch requires one bit more than the best so far. emit is called once per
// improvement.
//
// Stream returns ctx.Err() once ctx is done (checked between windows), the
// error returned by emit, or nil when a score of 256 has been found.
func (c *Controller) Stream(ctx context.Context, p engine.Params, floor int, emit func(Event) error) error {
	if err := shared.ValidateThreshold(floor); err != nil {
		return err
	}

	baseline := floor
	cursor := p.StartNonce
	for batch := uint64(1); ; batch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		w, err := next(cursor, p.Window)
		if err != nil {
			return err
		}
		p.StartNonce, p.Window, p.Threshold = w.Start, w.Count, baseline

		best, err := c.searcher.Search(p)
		if err != nil {
			return err
		}
		cursor = w.End()
		c.logProgress(batch, w, baseline)

		if best == nil {
			continue
		}

		ev := Event{Best: *best, Baseline: best.Score, Window: w, Batch: batch}
		if err := emit(ev); err != nil {
			return err
		}
		if best.Score >= shared.MaxScore {
			return nil
		}
		baseline = best.Score + 1
	}
}

// UntilFound searches consecutive windows at the fixed baseline p.Threshold
// until a dispatch returns a candidate.
func (c *Controller) UntilFound(ctx context.Context, p engine.Params) (Result, error) {
	cursor := p.StartNonce
	for batch := uint64(1); ; batch++ {
		if err := ctx.Err(); err != nil {
			return Result{BatchesRun: batch - 1}, err
		}

		w, err := next(cursor, p.Window)
		if err != nil {
			return Result{BatchesRun: batch - 1}, err
		}
		p.StartNonce, p.Window = w.Start, w.Count

		best, err := c.searcher.Search(p)
		if err != nil {
			return Result{BatchesRun: batch}, err
		}
		cursor = w.End()
		c.logProgress(batch, w, p.Threshold)

		if best != nil {
			return Result{Candidate: *best, BatchesRun: batch}, nil
		}
	}
}

// next returns the window of up to count nonces at cursor, truncated at the
// end of the nonce space.
func next(cursor, count uint64) (shared.Window, error) {
	if count == 0 {
		return shared.Window{}, shared.ConfigError{Param: "Window", Expected: "> 0", Given: "0"}
	}
	remaining := math.MaxUint64 - cursor
	if remaining == 0 {
		return shared.Window{}, ErrNonceSpaceExhausted
	}
	return shared.Window{Start: cursor, Count: min(count, remaining)}, nil
}

func (c *Controller) logProgress(batch uint64, w shared.Window, baseline int) {
	if !c.progress.Allow() {
		return
	}
	c.logger.Info("search progress",
		zap.Uint64("batch", batch),
		zap.Uint64("next_nonce", w.End()),
		zap.Int("baseline", baseline),
	)
}
