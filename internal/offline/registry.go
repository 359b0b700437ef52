package offline

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dverna/trasferte/internal/logging"
)

// MessagePath is the one inbound message the gateway accepts from pages: a
// POST here asks the waiting generation to skip the wait and activate
// immediately.
const MessagePath = "/_gateway/skip-waiting"

var ErrNoWaitingGeneration = errors.New("no waiting generation")

// Registry tracks the active and waiting cache generations plus the clients
// attached to the active one. A freshly installed generation sits waiting
// until either every attached client detaches or a skip-waiting message
// arrives; it is never promoted silently underneath a live session.
type Registry struct {
	logger logging.Logger

	mu      sync.Mutex
	active  *Controller
	waiting *Controller
	clients int
}

func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{logger: logger.With("module", "offline_registry")}
}

// Register installs a new generation. The first generation activates
// immediately (there is nothing to yank out from under a client); later ones
// wait only while clients are attached to the previous one. With no clients
// attached the no-clients promotion condition already holds, so the new
// generation activates at once.
func (g *Registry) Register(ctx context.Context, c *Controller) error {
	if err := c.Install(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	noActive := g.active == nil
	idle := g.clients == 0
	if noActive {
		g.active = c
	} else if !idle {
		g.waiting = c
	}
	g.mu.Unlock()

	if noActive {
		return c.Activate(ctx)
	}
	if idle {
		return g.promote(ctx, c)
	}
	g.logger.Info(ctx, "generation installed, waiting", "cache_version", c.Version())
	return nil
}

// SkipWaiting promotes the waiting generation right away. This is the only
// sanctioned bypass of the wait and must be requested deliberately.
func (g *Registry) SkipWaiting(ctx context.Context) error {
	g.mu.Lock()
	next := g.waiting
	g.mu.Unlock()
	if next == nil {
		return ErrNoWaitingGeneration
	}
	return g.promote(ctx, next)
}

func (g *Registry) promote(ctx context.Context, next *Controller) error {
	if err := next.Activate(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	g.active = next
	if g.waiting == next {
		g.waiting = nil
	}
	g.mu.Unlock()
	g.logger.Info(ctx, "generation promoted", "cache_version", next.Version())
	return nil
}

// Attach records one client controlled by the active generation and returns
// its detach function. When the last client detaches and a generation is
// waiting, the wait ends and the new generation activates.
func (g *Registry) Attach() (detach func(ctx context.Context)) {
	g.mu.Lock()
	g.clients++
	g.mu.Unlock()

	var once sync.Once
	return func(ctx context.Context) {
		once.Do(func() {
			g.mu.Lock()
			g.clients--
			idle := g.clients == 0
			next := g.waiting
			g.mu.Unlock()

			if idle && next != nil {
				if err := g.promote(ctx, next); err != nil {
					g.logger.Error(ctx, "promotion failed", "error", err.Error())
				}
			}
		})
	}
}

// Active returns the generation currently routing fetches, or nil.
func (g *Registry) Active() *Controller {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// ServeHTTP routes requests through the active generation. The skip-waiting
// message endpoint is the registry's own.
func (g *Registry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && r.URL.Path == MessagePath {
		if err := g.SkipWaiting(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	active := g.Active()
	if active == nil {
		http.Error(w, "gateway non inizializzato", http.StatusServiceUnavailable)
		return
	}
	active.ServeHTTP(w, r)
}
