package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/dverna/trasferte/internal/logging"
)

// State tags the controller's position in the cache lifecycle.
type State int

const (
	StateNew State = iota
	StateInstalling
	StateWaiting
	StateActivating
	StateActive
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateInstalling:
		return "installing"
	case StateWaiting:
		return "waiting"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrNotWaiting       = errors.New("controller is not in waiting state")
	ErrNotInstalled     = errors.New("controller install has not completed")
	ErrAlreadyInstalled = errors.New("controller install already ran")
)

// Config describes one cache generation of the shell gateway.
type Config struct {
	// Version is the opaque tag naming this cache generation; it is also
	// the name of the generation's store. Bumped on every deploy that
	// changes the precache manifest.
	Version string
	// Origin is the base URL of the remote app origin.
	Origin string
	// Manifest lists the shell paths that must be fully retrievable before
	// the generation reports installed.
	Manifest []string
	// RootDoc is the path of the cached root document used as the offline
	// navigation fallback. Defaults to "/".
	RootDoc string
	// Placeholder is the manifest path of the generic image served when an
	// image is neither reachable nor cached.
	Placeholder string
	// StrictPrecache aborts install on the first failed manifest fetch.
	// When false the generation proceeds to waiting in a degraded state.
	StrictPrecache bool

	Client  *http.Client
	Storage Storage
	Logger  logging.Logger
}

// Controller owns one cache generation and its lifecycle transitions:
// new -> installing -> waiting -> activating -> active, with failed as the
// terminal state of a strict install that could not precache the shell.
type Controller struct {
	version     string
	origin      *url.URL
	manifest    []string
	rootDoc     string
	placeholder string
	strict      bool

	client  *http.Client
	storage Storage
	logger  logging.Logger

	mu    sync.Mutex
	state State
	cache Cache

	// puts tracks in-flight asynchronous cache writes so Drain can wait
	// for them (shutdown and tests).
	puts sync.WaitGroup
}

func NewController(cfg Config) (*Controller, error) {
	if cfg.Version == "" {
		return nil, errors.New("cache version is required")
	}
	origin, err := url.Parse(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %w", err)
	}
	if origin.Scheme != "http" && origin.Scheme != "https" {
		return nil, fmt.Errorf("origin scheme must be http or https, got %q", origin.Scheme)
	}
	if cfg.RootDoc == "" {
		cfg.RootDoc = "/"
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Storage == nil {
		cfg.Storage = NewMemoryStorage()
	}
	return &Controller{
		version:     cfg.Version,
		origin:      origin,
		manifest:    cfg.Manifest,
		rootDoc:     cfg.RootDoc,
		placeholder: cfg.Placeholder,
		strict:      cfg.StrictPrecache,
		client:      cfg.Client,
		storage:     cfg.Storage,
		logger:      cfg.Logger.With("module", "offline", "cache_version", cfg.Version),
	}, nil
}

// Version returns the generation tag.
func (c *Controller) Version() string { return c.version }

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(ctx context.Context, s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.logger.Info(ctx, "lifecycle transition", "state", s.String())
}

// Install opens the generation's store and precaches every manifest entry.
// Under StrictPrecache any failed fetch aborts the install; otherwise
// failures are logged and the generation proceeds to waiting degraded.
// Install runs at most once per generation.
func (c *Controller) Install(ctx context.Context) error {
	if c.State() != StateNew {
		return ErrAlreadyInstalled
	}
	c.setState(ctx, StateInstalling)

	cache, err := c.storage.Open(c.version)
	if err != nil {
		c.setState(ctx, StateFailed)
		return fmt.Errorf("cache open error: %w", err)
	}
	c.mu.Lock()
	c.cache = cache
	c.mu.Unlock()

	for _, p := range c.manifest {
		if err := c.precache(ctx, cache, p); err != nil {
			c.logger.Warn(ctx, "precache failed", "path", p, "error", err.Error())
			if c.strict {
				c.setState(ctx, StateFailed)
				return fmt.Errorf("precache %s: %w", p, err)
			}
		}
	}

	c.setState(ctx, StateWaiting)
	return nil
}

func (c *Controller) precache(ctx context.Context, cache Cache, p string) error {
	snap, err := c.fetchUpstream(ctx, http.MethodGet, p, nil, nil)
	if err != nil {
		return err
	}
	if snap.Status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", snap.Status)
	}
	return cache.Put(p, snap)
}

// Activate deletes every store not named for this generation and marks the
// controller active. Only a waiting generation may activate.
func (c *Controller) Activate(ctx context.Context) error {
	if c.State() != StateWaiting {
		return ErrNotWaiting
	}
	c.setState(ctx, StateActivating)

	names, err := c.storage.Keys()
	if err != nil {
		return fmt.Errorf("cache enumeration error: %w", err)
	}
	for _, name := range names {
		if name == c.version {
			continue
		}
		if _, err := c.storage.Delete(name); err != nil {
			c.logger.Warn(ctx, "stale cache delete failed", "name", name, "error", err.Error())
			continue
		}
		c.logger.Info(ctx, "stale cache deleted", "name", name)
	}

	c.setState(ctx, StateActive)
	return nil
}

// Drain waits for in-flight asynchronous cache writes to finish.
func (c *Controller) Drain() { c.puts.Wait() }

func (c *Controller) fetchUpstream(ctx context.Context, method, requestURI string, header http.Header, body io.Reader) (*Snapshot, error) {
	ref, err := url.ParseRequestURI(requestURI)
	if err != nil {
		return nil, fmt.Errorf("bad request uri: %w", err)
	}
	u := c.origin.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	req.Host = c.origin.Host

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: data}, nil
}

// scriptStyleExts are extensions whose cache misses fall back to the cached
// root document: hashed build filenames cannot be predicted at precache
// time, and serving the shell lets the client recover.
var scriptStyleExts = map[string]struct{}{
	".js": {}, ".mjs": {}, ".css": {}, ".map": {},
}

var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".svg": {}, ".ico": {},
}

func hasExt(p string, exts map[string]struct{}) bool {
	_, ok := exts[strings.ToLower(path.Ext(p))]
	return ok
}

// ServeHTTP applies the fetch routing rules, first match wins:
//
//  1. non-GET requests pass through untouched;
//  2. non-http(s) schemes are not intercepted;
//  3. navigations go network-first, falling back to the cached root document;
//  4. everything else goes network-first with an asynchronous cache write on
//     200, then cache, then extension-based fallbacks, then a synthetic 404.
func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		c.passthrough(w, r)
		return
	}
	if r.URL.Scheme != "" && r.URL.Scheme != "http" && r.URL.Scheme != "https" {
		c.passthrough(w, r)
		return
	}
	if isNavigation(r) {
		c.serveNavigation(w, r)
		return
	}
	c.serveAsset(w, r)
}

// isNavigation reports whether the request is a top-level document load.
func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (c *Controller) serveNavigation(w http.ResponseWriter, r *http.Request) {
	snap, err := c.fetchUpstream(r.Context(), http.MethodGet, r.URL.RequestURI(), r.Header, nil)
	if err == nil {
		writeSnapshot(w, snap)
		return
	}
	// Offline: serve the cached root document so client-side routing still
	// renders whatever route was requested.
	if cached, ok := c.match(c.rootDoc); ok {
		writeSnapshot(w, cached)
		return
	}
	c.synthetic404(w)
}

func (c *Controller) serveAsset(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()

	snap, err := c.fetchUpstream(r.Context(), http.MethodGet, key, r.Header, nil)
	if err == nil {
		if snap.Status == http.StatusOK {
			c.putAsync(key, snap.Clone())
		}
		writeSnapshot(w, snap)
		return
	}

	if cached, ok := c.match(key); ok {
		writeSnapshot(w, cached)
		return
	}

	switch {
	case hasExt(r.URL.Path, scriptStyleExts):
		if cached, ok := c.match(c.rootDoc); ok {
			writeSnapshot(w, cached)
			return
		}
	case hasExt(r.URL.Path, imageExts):
		if c.placeholder != "" {
			if cached, ok := c.match(c.placeholder); ok {
				writeSnapshot(w, cached)
				return
			}
		}
	}

	c.synthetic404(w)
}

func (c *Controller) match(key string) (*Snapshot, bool) {
	c.mu.Lock()
	cache := c.cache
	c.mu.Unlock()
	if cache == nil {
		return nil, false
	}
	return cache.Match(key)
}

// putAsync stores a response clone without blocking the reply to the client.
// Store failures degrade offline support for that resource only; they are
// never surfaced to the caller.
func (c *Controller) putAsync(key string, snap *Snapshot) {
	c.mu.Lock()
	cache := c.cache
	c.mu.Unlock()
	if cache == nil {
		return
	}
	c.puts.Add(1)
	go func() {
		defer c.puts.Done()
		if err := cache.Put(key, snap); err != nil {
			c.logger.Warn(context.Background(), "cache put failed", "key", key, "error", err.Error())
		}
	}()
}

// passthrough proxies the request to the origin without touching the cache.
func (c *Controller) passthrough(w http.ResponseWriter, r *http.Request) {
	snap, err := c.fetchUpstream(r.Context(), r.Method, r.URL.RequestURI(), r.Header, r.Body)
	if err != nil {
		http.Error(w, "origine non raggiungibile", http.StatusBadGateway)
		return
	}
	writeSnapshot(w, snap)
}

// synthetic404 is the terminal fallback. It must never fail.
func (c *Controller) synthetic404(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, "risorsa non disponibile offline\n")
}

func writeSnapshot(w http.ResponseWriter, snap *Snapshot) {
	h := w.Header()
	for k, vv := range snap.Header {
		for _, v := range vv {
			h.Add(k, v)
		}
	}
	w.WriteHeader(snap.Status)
	_, _ = w.Write(snap.Body)
}
