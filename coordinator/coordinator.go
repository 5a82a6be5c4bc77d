// Package coordinator runs search jobs requested from outside the process.
//
// At most one job runs at any time regardless of its key; concurrent requests
// are rejected, never queued. Completed results are memoised by job key.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spacemeshos/powsearch/engine"
	"github.com/spacemeshos/powsearch/grid"
	"github.com/spacemeshos/powsearch/persistence"
	"github.com/spacemeshos/powsearch/shared"
)

// Request identifies a job: the challenge is "<txid>:<vout>" and the key
// "<txid>:<vout>:<threshold>".
type Request = shared.JobParams

// ErrBusy is the root of every *BusyError.
var ErrBusy = errors.New("another job is running")

// BusyError is returned when a job is requested while another one holds the
// coordinator. Running reports whether the job in progress has the same key.
type BusyError struct {
	Running    bool
	Key        string
	CurrentKey string
}

func (err *BusyError) Error() string {
	if err.Running {
		return fmt.Sprintf("job %v is already running", err.Key)
	}
	return fmt.Sprintf("cannot start job %v: job %v is running", err.Key, err.CurrentKey)
}

func (err *BusyError) Unwrap() error {
	return ErrBusy
}

// Coordinator serialises jobs and memoises their results in a store.
type Coordinator struct {
	runner Runner
	store  *persistence.Store
	logger *zap.Logger
	now    func() time.Time

	startNonce uint64
	window     uint64
	shape      grid.Shape

	// busy is held for the whole duration of a job.
	busy sync.Mutex

	mtx     sync.Mutex // protects current and the acquisition of busy
	current string
}

func New(runner Runner, store *persistence.Store, opts ...OptionFunc) (*Coordinator, error) {
	options := &option{
		logger: zap.NewNop(),
		window: 1_000_000,
		shape:  grid.Shape{Blocks: 256, ThreadsPerBlock: 256, ItersPerThread: 64},
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	return &Coordinator{
		runner:     runner,
		store:      store,
		logger:     options.logger.Named("coordinator"),
		now:        options.now,
		startNonce: options.startNonce,
		window:     options.window,
		shape:      options.shape,
	}, nil
}

// ValidateRequest returns a shared.ConfigError for requests that can never succeed.
func ValidateRequest(req Request) error {
	if req.TxID == "" {
		return shared.ConfigError{Param: "txid", Expected: "non-empty string", Given: `""`}
	}
	if req.Vout < 0 {
		return shared.ConfigError{Param: "vout", Expected: ">= 0", Given: fmt.Sprintf("%d", req.Vout)}
	}
	if err := shared.ValidateThreshold(req.Threshold); err != nil {
		return err
	}
	return shared.ValidateChallenge([]byte(req.Challenge()))
}

// CurrentKey returns the key of the running job, or "" when idle.
func (c *Coordinator) CurrentKey() string {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.current
}

// Cached returns the cached entry for req, if any.
func (c *Coordinator) Cached(req Request) (shared.CacheEntry, bool) {
	return c.Lookup(req.Key())
}

// Lookup returns the cached entry for a job key, if any.
func (c *Coordinator) Lookup(key string) (shared.CacheEntry, bool) {
	return c.store.Get(key)
}

// Run returns the cached entry for req, or runs the job and caches its result.
// It returns a *BusyError immediately when another job is in progress.
func (c *Coordinator) Run(ctx context.Context, req Request) (shared.CacheEntry, error) {
	if err := ValidateRequest(req); err != nil {
		return shared.CacheEntry{}, err
	}

	key := req.Key()
	if entry, ok := c.store.Get(key); ok {
		c.logger.Debug("cache hit", zap.String("key", key))
		return entry, nil
	}

	if err := c.acquire(key); err != nil {
		return shared.CacheEntry{}, err
	}
	defer c.release(key)

	// another job may have completed this key while we were acquiring.
	if entry, ok := c.store.Get(key); ok {
		return entry, nil
	}

	return c.run(ctx, req)
}

func (c *Coordinator) acquire(key string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !c.busy.TryLock() {
		return &BusyError{Running: c.current == key, Key: key, CurrentKey: c.current}
	}
	c.current = key
	return nil
}

func (c *Coordinator) release(key string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.current = ""
	c.busy.Unlock()
	c.logger.Info("job released", zap.String("key", key))
}

func (c *Coordinator) run(ctx context.Context, req Request) (shared.CacheEntry, error) {
	key := req.Key()
	challenge := req.Challenge()
	logger := c.logger.With(zap.Stringer("job", uuid.New()), zap.String("key", key))

	logger.Info("job started",
		zap.String("challenge", challenge),
		zap.Int("threshold", req.Threshold),
		zap.Uint64("start", c.startNonce),
		zap.Uint64("window", c.window),
		zap.Int("blocks", c.shape.Blocks),
		zap.Int("threads_per_block", c.shape.ThreadsPerBlock),
	)

	start := c.now()
	res, err := c.runner.UntilFound(ctx, engine.Params{
		Challenge:  []byte(challenge),
		Threshold:  req.Threshold,
		StartNonce: c.startNonce,
		Window:     c.window,
		Shape:      c.shape,
	})
	if err != nil {
		logger.Error("job failed", zap.Uint64("batches_run", res.BatchesRun), zap.Error(err))
		return shared.CacheEntry{}, fmt.Errorf("job %v: %w", key, err)
	}

	entry := shared.CacheEntry{
		Status:     shared.StatusDone,
		JobKey:     key,
		Challenge:  challenge,
		Params:     req,
		Result:     res.Candidate,
		BatchesRun: res.BatchesRun,
		Timestamp:  c.now().UTC(),
	}
	logger.Info("job done",
		zap.Uint64("batches_run", res.BatchesRun),
		zap.Uint64("nonce", res.Candidate.Nonce),
		zap.Int("leading_zero_bits", res.Candidate.Score),
		zap.Duration("elapsed", c.now().Sub(start)),
	)

	if err := c.store.Put(entry); err != nil {
		logger.Warn("failed to persist result", zap.Error(err))
	}
	return entry, nil
}
