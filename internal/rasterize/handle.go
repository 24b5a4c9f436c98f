package rasterize

import (
	"context"
	"sync"

	"resume-feedback/internal/shared/metrics"
	"resume-feedback/internal/shared/telemetry"
)

// Handle lazily loads an engine and shares it across conversions. Concurrent
// first calls wait for a single in-flight load; a failed load is retried by
// the next caller. Waiters give up when their context ends.
type Handle struct {
	name   string
	loader Loader
	opts   Options

	mu      sync.Mutex
	engine  Engine
	loading chan struct{} // closed when the in-flight load finishes
}

// NewHandle creates an unloaded handle.
func NewHandle(name string, loader Loader, opts Options) *Handle {
	return &Handle{name: name, loader: loader, opts: opts.withDefaults()}
}

// Acquire returns the shared engine, loading it on first use.
func (h *Handle) Acquire(ctx context.Context) (Engine, error) {
	for {
		h.mu.Lock()
		if h.engine != nil {
			eng := h.engine
			h.mu.Unlock()
			return eng, nil
		}
		if wait := h.loading; wait != nil {
			h.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		done := make(chan struct{})
		h.loading = done
		h.mu.Unlock()

		return h.finishLoad(ctx, done)
	}
}

func (h *Handle) finishLoad(ctx context.Context, done chan struct{}) (Engine, error) {
	eng, err := h.load(ctx)

	h.mu.Lock()
	if err == nil {
		h.engine = eng
	}
	h.loading = nil
	close(done)
	h.mu.Unlock()

	if err != nil {
		metrics.IncEngineLoad(h.name, "error")
		return nil, err
	}
	metrics.IncEngineLoad(h.name, "ok")
	telemetry.Info("rasterize.engine.loaded", map[string]any{
		"engine":         h.name,
		"workers":        h.opts.Workers,
		"worker_timeout": h.opts.WorkerTimeout.String(),
	})
	return eng, nil
}

func (h *Handle) load(ctx context.Context) (eng Engine, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(rec)
		}
	}()
	return h.loader(ctx, h.opts)
}

// Loaded reports whether the engine has been loaded.
func (h *Handle) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.engine != nil
}

// Close releases the engine if it was loaded. The handle can load again afterwards.
func (h *Handle) Close() error {
	h.mu.Lock()
	for h.loading != nil {
		wait := h.loading
		h.mu.Unlock()
		<-wait
		h.mu.Lock()
	}
	eng := h.engine
	h.engine = nil
	h.mu.Unlock()
	if eng == nil {
		return nil
	}
	return eng.Close()
}
