package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dverna/trasferte/internal/client/api"
)

// saveDownload writes a server download into the working directory. The
// server-suggested name is reduced to its last element so a name carrying
// path separators cannot escape the directory.
func saveDownload(d *api.Download) error {
	name := filepath.Base(d.Name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return fmt.Errorf("unusable download name %q", d.Name)
	}
	if err := os.WriteFile(name, d.Data, 0o644); err != nil {
		return fmt.Errorf("cannot save %s: %w", name, err)
	}
	fmt.Printf("Saved %s (%d bytes).\n", name, len(d.Data))
	return nil
}

// exportTrip downloads the ZIP bundle of one trip.
func (a *App) exportTrip(ctx context.Context) error {
	tripID, err := getSimpleText(a.reader, "Enter trip id", os.Stdout)
	if err != nil {
		return err
	}
	d, err := a.client.ExportTrip(ctx, tripID)
	if err != nil {
		return err
	}
	return saveDownload(d)
}

// exportSelected downloads one archive bundling several chosen trips.
func (a *App) exportSelected(ctx context.Context) error {
	raw, err := getSimpleText(a.reader, "Enter trip ids (space separated)", os.Stdout)
	if err != nil {
		return err
	}
	ids := strings.Fields(raw)
	d, err := a.client.ExportSelected(ctx, ids)
	if err != nil {
		return err
	}
	return saveDownload(d)
}

// exportCSV downloads the CSV summary of all trips, without photos.
func (a *App) exportCSV(ctx context.Context) error {
	d, err := a.client.ExportCSV(ctx)
	if err != nil {
		return err
	}
	return saveDownload(d)
}
