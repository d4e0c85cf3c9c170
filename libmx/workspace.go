package libmx

import (
	"sync"

	"github.com/matroid-systems/gomx/gomx"
)

// Workspace collects active session resources and catalogs.
type Workspace struct {
	CatalogCtx gomx.CatalogContext
}

// NewCatalogContext returns a CatalogContext tracking open Catalog instances.
func NewCatalogContext() gomx.CatalogContext {
	return &catalogContext{
		done: make(chan struct{}),
	}
}

type catalogContext struct {
	mu      sync.Mutex
	open    []gomx.Catalog
	done    chan struct{}
	closing bool
}

func (ctx *catalogContext) AttachCatalog(cat gomx.Catalog) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.open = append(ctx.open, cat)
}

func (ctx *catalogContext) DetachCatalog(cat gomx.Catalog) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for i, open := range ctx.open {
		if open == cat {
			ctx.open = append(ctx.open[:i], ctx.open[i+1:]...)
			break
		}
	}
	if ctx.closing && len(ctx.open) == 0 {
		close(ctx.done)
	}
}

func (ctx *catalogContext) Close() {
	ctx.mu.Lock()
	if ctx.closing {
		ctx.mu.Unlock()
		return
	}
	ctx.closing = true
	toClose := append([]gomx.Catalog{}, ctx.open...)
	if len(toClose) == 0 {
		close(ctx.done)
	}
	ctx.mu.Unlock()

	// Each Close detaches its catalog, which signals done once all are gone.
	for _, cat := range toClose {
		cat.Close()
	}
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.done
}
