package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dverna/trasferte/internal/logging"
	"github.com/dverna/trasferte/internal/offline"
)

// shellManifest lists the app shell paths a gateway generation precaches.
var shellManifest = []string{
	"/",
	"/index.html",
	"/manifest.json",
	"/placeholder.png",
}

// startGateway runs the local offline gateway: a reverse proxy in front of
// the app origin that keeps the shell usable without connectivity. Starting
// it again while it runs registers a fresh cache generation instead, which
// waits until promoted (skip-waiting message or last client detaching).
func (a *App) startGateway(ctx context.Context) error {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if a.gateway == nil {
		a.gateway = offline.NewRegistry(logger)
	}

	ctrl, err := offline.NewController(offline.Config{
		Version:        a.config.CacheVersion,
		Origin:         a.config.ServerEndpointAddr,
		Manifest:       shellManifest,
		RootDoc:        "/",
		Placeholder:    "/placeholder.png",
		StrictPrecache: false,
		Storage:        a.gatewayStorage(),
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	// Register owns installation; a second install on the same generation
	// would re-fetch the whole manifest.
	if err := a.gateway.Register(ctx, ctrl); err != nil {
		return fmt.Errorf("gateway install failed: %w", err)
	}

	if a.stopGateway != nil {
		fmt.Printf("Registered cache generation %s.\n", ctrl.Version())
		return nil
	}

	// The CLI session counts as one attached client: a later generation
	// waits until this session detaches or sends skip-waiting.
	detach := a.gateway.Attach()

	srv := &http.Server{Addr: a.config.GatewayAddr, Handler: a.gateway}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("gateway stopped: %v\n", err)
		}
	}()

	a.stopGateway = func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		detach(shutdownCtx)
		if active := a.gateway.Active(); active != nil {
			active.Drain()
		}
	}

	fmt.Printf("Offline gateway listening on %s (cache %s).\n", a.config.GatewayAddr, ctrl.Version())
	return nil
}

// gatewayStorage keeps one shared storage across generations so a promoted
// generation can evict its predecessors' stores.
func (a *App) gatewayStorage() offline.Storage {
	if a.storage == nil {
		a.storage = offline.NewMemoryStorage()
	}
	return a.storage
}

// gatewaySkipWaiting promotes the waiting cache generation immediately.
func (a *App) gatewaySkipWaiting(ctx context.Context) error {
	if a.gateway == nil {
		return errors.New("gateway is not running")
	}
	if err := a.gateway.SkipWaiting(ctx); err != nil {
		return err
	}
	fmt.Println("Waiting generation promoted.")
	return nil
}
