// Package cli implements the interactive command loop of the Trasferte
// client: authentication, trip and expense management, export downloads, and
// the local offline gateway.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/dverna/trasferte/internal/client/api"
	"github.com/dverna/trasferte/internal/client/config"
	"github.com/dverna/trasferte/internal/offline"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config   *config.Config
	client   *api.Client
	userName string
	Mode     Mode
	reader   *bufio.Reader

	gateway     *offline.Registry
	storage     offline.Storage
	stopGateway func()
}

func NewApp(c *config.Config) (*App, error) {
	return &App{
		config: c,
		client: api.NewClient(c.ServerEndpointAddr),
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

func (app *App) setMode(mode Mode) {
	if app.Mode != mode {
		app.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.stopGateway != nil {
			a.stopGateway()
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.client.IsLoggedIn()
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.client.Ping(ctx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
