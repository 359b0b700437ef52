package export

import (
	"archive/zip"
	"fmt"
)

const (
	// ArchiveCSVName is the fixed top-level name of the summary inside an
	// export archive.
	ArchiveCSVName = "riepilogo_spese.csv"
	// photosPrefix is the folder all receipt images live under.
	photosPrefix = "photos/"
)

// writeArchive assembles the ZIP container: the CSV at the top level and
// every fetched image under photos/. The destination is typically an HTTP
// response or a local file; data volumes are small enough that no streaming
// compression tricks are needed.
func writeArchive(zw *zip.Writer, csvData []byte, images []Image) error {
	f, err := zw.Create(ArchiveCSVName)
	if err != nil {
		return fmt.Errorf("archive entry error: %w", err)
	}
	if _, err := f.Write(csvData); err != nil {
		return fmt.Errorf("archive write error: %w", err)
	}

	for _, img := range images {
		f, err := zw.Create(photosPrefix + img.Name)
		if err != nil {
			return fmt.Errorf("archive entry error: %w", err)
		}
		if _, err := f.Write(img.Data); err != nil {
			return fmt.Errorf("archive write error: %w", err)
		}
	}
	return nil
}
