package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/logging"
	"github.com/dverna/trasferte/internal/server/models"
)

const (
	// SelectedTripsFileName is the download name when several trips are
	// exported at once.
	SelectedTripsFileName = "trasferte_selezionate.zip"
	// CSVOnlyFileName is the download name of the images-free CSV path.
	CSVOnlyFileName = "spese_trasferta.csv"
)

// Exporter composes the pipeline: CSV build, concurrent photo fetch, archive
// assembly. CSV and archive errors are fatal to the export; individual photo
// failures are not.
type Exporter struct {
	fetcher *Fetcher
	logger  logging.Logger
}

func NewExporter(client *http.Client, logger logging.Logger) *Exporter {
	return &Exporter{
		fetcher: NewFetcher(client, logger),
		logger:  logger.With("module", "export"),
	}
}

// ExportTrip bundles a single trip into w and returns the suggested download
// file name, "trasferta_<location>_<date>.zip".
func (e *Exporter) ExportTrip(ctx context.Context, w io.Writer, trip models.Trip) (string, error) {
	name := fmt.Sprintf("trasferta_%s_%s.zip", trip.Location, trip.Date)
	if err := e.writeBundle(ctx, w, []models.Trip{trip}); err != nil {
		return "", err
	}
	return name, nil
}

// ExportSelected bundles a caller-filtered set of trips into w. An empty
// selection is rejected: no silent empty archive is ever produced.
func (e *Exporter) ExportSelected(ctx context.Context, w io.Writer, trips []models.Trip) (string, error) {
	if err := e.writeBundle(ctx, w, trips); err != nil {
		return "", err
	}
	return SelectedTripsFileName, nil
}

func (e *Exporter) writeBundle(ctx context.Context, w io.Writer, trips []models.Trip) error {
	if len(trips) == 0 {
		return common.ErrNothingToExport
	}

	csvData, err := BuildCSV(trips)
	if err != nil {
		return err
	}

	images := e.fetcher.FetchReceiptImages(ctx, trips)

	zw := zip.NewWriter(w)
	if err := writeArchive(zw, csvData, images); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive close error: %w", err)
	}

	e.logger.Info(ctx, "export bundle written", "trips", len(trips), "images", len(images))
	return nil
}

// ExportCSV writes the summary of all supplied trips as plain CSV, skipping
// archive assembly entirely, and returns the suggested download file name.
func ExportCSV(w io.Writer, trips []models.Trip) (string, error) {
	if len(trips) == 0 {
		return "", common.ErrNothingToExport
	}
	data, err := BuildCSV(trips)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("csv write error: %w", err)
	}
	return CSVOnlyFileName, nil
}
