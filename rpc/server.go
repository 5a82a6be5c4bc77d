// Package rpc is the HTTP JSON front end to the job coordinator.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/spacemeshos/powsearch/coordinator"
	"github.com/spacemeshos/powsearch/shared"
)

// maxBodySize bounds the size of a request body.
const maxBodySize = 1 << 16

const shutdownTimeout = 5 * time.Second

// Server is an HTTP front end to a Coordinator.
type Server struct {
	coord  *coordinator.Coordinator
	logger *zap.Logger
	router *httprouter.Router

	// jobs run on ctx rather than on the request context, so a client
	// disconnect does not abort a running job.
	ctx context.Context
}

// NewServer returns a Server whose jobs run until ctx is done.
func NewServer(ctx context.Context, coord *coordinator.Coordinator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		coord:  coord,
		logger: logger.Named("rpc"),
		router: httprouter.New(),
		ctx:    ctx,
	}

	s.router.POST("/", s.pow)
	s.router.POST("/pow", s.pow)
	s.router.GET("/pow/:key", s.cached)
	s.router.GET("/jobs/current", s.current)
	s.router.GET("/healthz", s.health)
	s.router.PanicHandler = s.recoverPanic
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve accepts connections on l until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.Stringer("address", l.Addr()))
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, l)
}

type powRequest struct {
	TxID      *string `json:"txid"`
	Vout      *int    `json:"vout"`
	Threshold *int    `json:"threshold"`
}

func (req powRequest) validate() (coordinator.Request, error) {
	switch {
	case req.TxID == nil:
		return coordinator.Request{}, errors.New("missing field `txid`")
	case req.Vout == nil:
		return coordinator.Request{}, errors.New("missing field `vout`")
	case req.Threshold == nil:
		return coordinator.Request{}, errors.New("missing field `threshold`")
	}

	r := coordinator.Request{TxID: *req.TxID, Vout: *req.Vout, Threshold: *req.Threshold}
	if err := coordinator.ValidateRequest(r); err != nil {
		return coordinator.Request{}, err
	}
	return r, nil
}

func (s *Server) pow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body powRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(&body); err != nil {
		s.badRequest(w, fmt.Errorf("invalid JSON: %w", err))
		return
	}
	req, err := body.validate()
	if err != nil {
		s.badRequest(w, err)
		return
	}

	entry, err := s.coord.Run(s.ctx, req)
	var busy *coordinator.BusyError
	switch {
	case errors.As(err, &busy) && busy.Running:
		s.write(w, http.StatusLocked, map[string]any{
			"status":  "running",
			"message": "the same job is currently running; please retry later or check cache",
			"key":     busy.Key,
			"hint":    "server caches results by key (txid:vout:threshold)",
		})
	case errors.As(err, &busy):
		s.write(w, http.StatusLocked, map[string]any{
			"status":      "busy",
			"message":     "another job is running; please retry later",
			"current_key": busy.CurrentKey,
		})
	case errors.Is(err, shared.ErrInvalidConfig):
		s.badRequest(w, err)
	case err != nil:
		s.internal(w, err)
	default:
		s.write(w, http.StatusOK, entry)
	}
}

func (s *Server) cached(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	key := ps.ByName("key")
	entry, ok := s.coord.Lookup(key)
	if !ok {
		s.write(w, http.StatusNotFound, map[string]any{
			"error":   "not_found",
			"message": fmt.Sprintf("no result cached for key %v", key),
		})
		return
	}
	s.write(w, http.StatusOK, entry)
}

func (s *Server) current(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	var key *string
	if k := s.coord.CurrentKey(); k != "" {
		key = &k
	}
	s.write(w, http.StatusOK, map[string]any{"current_key": key})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.write(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) recoverPanic(w http.ResponseWriter, r *http.Request, p any) {
	s.internal(w, fmt.Errorf("panic serving %v: %v", r.URL.Path, p))
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	s.logger.Debug("bad request", zap.Error(err))
	s.write(w, http.StatusBadRequest, map[string]any{
		"error":   "bad_request",
		"message": err.Error(),
	})
}

func (s *Server) internal(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	s.write(w, http.StatusInternalServerError, map[string]any{
		"error":   "internal",
		"message": err.Error(),
	})
}

func (s *Server) write(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", zap.Error(err))
	}
}
