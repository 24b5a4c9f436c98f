// Package rasterize converts the first page of a PDF into a PNG snapshot.
//
// Rendering is delegated to an Engine chosen by name. The engine is loaded
// once per process through a Handle and shared by every conversion; each
// conversion owns its decoded Document and pixel surface.
package rasterize

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"
)

// Engine is a loaded rendering library.
type Engine interface {
	Name() string
	Open(ctx context.Context, data []byte) (Document, error)
	Close() error
}

// Document is a decoded input owned by a single conversion.
type Document interface {
	NumPages() int
	// Page returns the page with the given 1-based index.
	Page(ctx context.Context, index int) (Page, error)
	Close() error
}

// Page is one page of a Document.
type Page interface {
	// Size returns the intrinsic page size in points.
	Size() (width, height float64)
	// Render paints the page onto dst, which is already sized to the page
	// multiplied by scale.
	Render(ctx context.Context, dst *image.RGBA, scale float64) error
}

// Options configures an engine's worker resources. They are bound when the
// engine is loaded, before the first document is opened.
type Options struct {
	Workers       int
	WorkerTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.WorkerTimeout <= 0 {
		o.WorkerTimeout = 30 * time.Second
	}
	return o
}

// Loader initializes an engine.
type Loader func(ctx context.Context, opts Options) (Engine, error)

var (
	// ErrPrecondition means the requested engine cannot run in this process.
	ErrPrecondition = errors.New("rendering engine unavailable")

	ErrNoPages        = errors.New("document has no pages")
	ErrInvalidPage    = errors.New("invalid page size")
	ErrSurfaceTooLong = errors.New("surface exceeds maximum dimension")
	ErrEmptyImage     = errors.New("encoder produced no data")
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Loader{}
)

// Register makes an engine available under name. Engines that need build
// support (cgo) register from build-tagged files.
func Register(name string, loader Loader) {
	if loader == nil {
		panic("rasterize: Register loader is nil")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = loader
}

// Lookup returns the loader for name or an ErrPrecondition error.
func Lookup(name string) (Loader, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	loader, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: engine %q is not available in this build (have %v)", ErrPrecondition, name, engineNamesLocked())
	}
	return loader, nil
}

// Engines lists the registered engine names.
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return engineNamesLocked()
}

func engineNamesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
