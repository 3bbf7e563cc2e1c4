// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/go-mgard/mgard/internal/envconfig"
	"github.com/go-mgard/mgard/internal/workerpool"
)

// Handle owns the worker pool and the streams of one emulated device.
type Handle struct {
	props   Properties
	pool    *workerpool.Pool
	streams []*Stream
	log     *slog.Logger
	debug   bool
	onError func(error)

	closeOnce sync.Once
	closeErr  error
}

type handleConfig struct {
	workers   int
	queues    int
	sharedMem int
	log       *slog.Logger
	debug     bool
	onError   func(error)
}

// Option configures NewHandle.
type Option func(*handleConfig)

// WithWorkers sets the worker pool size. n <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *handleConfig) { c.workers = n }
}

// WithQueues sets the number of streams.
func WithQueues(n int) Option {
	return func(c *handleConfig) { c.queues = n }
}

// WithSharedMemPerBlock sets the per-block shared memory limit in bytes.
func WithSharedMemPerBlock(bytes int) Option {
	return func(c *handleConfig) { c.sharedMem = bytes }
}

// WithLogger sets the logger used for launch diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *handleConfig) { c.log = log }
}

// WithDebug makes every Launch wait for its stream and return execution
// errors directly.
func WithDebug(debug bool) Option {
	return func(c *handleConfig) { c.debug = debug }
}

// WithErrorHandler replaces the handler called by Check. The default logs
// the error and panics.
func WithErrorHandler(fn func(error)) Option {
	return func(c *handleConfig) { c.onError = fn }
}

// NewHandle creates a device handle. Unset options come from the MGARD_*
// environment variables.
func NewHandle(opts ...Option) *Handle {
	cfg := handleConfig{
		workers:   int(envconfig.NumWorkers()),
		queues:    int(envconfig.NumQueues()),
		sharedMem: int(envconfig.SharedMemPerBlock()),
		debug:     envconfig.Debug(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.queues <= 0 {
		cfg.queues = 1
	}
	if cfg.sharedMem <= 0 {
		cfg.sharedMem = DefaultSharedMemPerBlock
	}
	if cfg.log == nil {
		cfg.log = slog.Default()
	}

	pool := workerpool.New(cfg.workers)
	h := &Handle{
		props:   detectProperties(pool.NumWorkers(), cfg.queues, cfg.sharedMem),
		pool:    pool,
		streams: make([]*Stream, cfg.queues),
		log:     cfg.log,
		debug:   cfg.debug,
		onError: cfg.onError,
	}
	if h.onError == nil {
		h.onError = h.fatal
	}
	for i := range h.streams {
		h.streams[i] = newStream(i)
	}
	h.log.Debug("device handle created", "name", h.props.Name, "workers", h.props.Workers,
		"queues", cfg.queues, "shared_mem", cfg.sharedMem, "features", h.props.Features)
	return h
}

// Properties returns the device description.
func (h *Handle) Properties() Properties {
	return h.props
}

// Logger returns the handle's logger.
func (h *Handle) Logger() *slog.Logger {
	return h.log
}

// NumQueues returns the number of streams.
func (h *Handle) NumQueues() int {
	return len(h.streams)
}

// Queue returns stream i.
func (h *Handle) Queue(i int) (*Stream, error) {
	if i < 0 || i >= len(h.streams) {
		return nil, fmt.Errorf("device: queue %d of %d: %w", i, len(h.streams), ErrInvalidQueue)
	}
	return h.streams[i], nil
}

// Synchronize waits for every stream concurrently and returns the first
// sticky error. Errors of all streams are cleared.
func (h *Handle) Synchronize() error {
	var g errgroup.Group
	for _, s := range h.streams {
		g.Go(s.Synchronize)
	}
	return g.Wait()
}

// Check passes a non-nil err to the error handler and returns it. With the
// default handler Check does not return for non-nil errors.
func (h *Handle) Check(err error) error {
	if err != nil {
		h.onError(err)
	}
	return err
}

func (h *Handle) fatal(err error) {
	h.log.Error("device error", "error", err)
	panic(err)
}

// Close drains every stream and stops the worker pool.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		var g errgroup.Group
		for _, s := range h.streams {
			g.Go(s.close)
		}
		h.closeErr = g.Wait()
		h.pool.Close()
	})
	return h.closeErr
}
