package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dverna/trasferte/internal/logging"
	"github.com/dverna/trasferte/internal/server/models"
)

// Image is one receipt photo tagged with its archive-relative name,
// "<tripDate>__<tripLocation>/<expenseID><ext>".
type Image struct {
	Name string
	Data []byte
}

// Fetcher downloads receipt photos for export. A failed download is logged
// and the image is omitted; it never aborts sibling fetches or the export.
type Fetcher struct {
	client *http.Client
	logger logging.Logger
}

func NewFetcher(client *http.Client, logger logging.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, logger: logger.With("module", "export_fetcher")}
}

// FetchReceiptImages downloads every expense photo across the supplied trips
// concurrently. Completion order is irrelevant: results are keyed by their
// deterministic archive name and returned sorted by it.
func (f *Fetcher) FetchReceiptImages(ctx context.Context, trips []models.Trip) []Image {
	var (
		mu     sync.Mutex
		images []Image
	)

	var g errgroup.Group
	for _, trip := range trips {
		folder := fmt.Sprintf("%s__%s", trip.Date, trip.Location)
		for _, exp := range trip.Expenses {
			if exp.PhotoURL == "" {
				continue
			}
			name := folder + "/" + exp.ID + FileExtension(exp.PhotoURL)
			photoURL := exp.PhotoURL
			g.Go(func() error {
				data, err := f.fetchOne(ctx, photoURL)
				if err != nil {
					// Non-fatal: the image is simply left out of the bundle.
					f.logger.Warn(ctx, "receipt photo fetch failed", "url", photoURL, "error", err.Error())
					return nil
				}
				mu.Lock()
				images = append(images, Image{Name: name, Data: data})
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images
}

func (f *Fetcher) fetchOne(ctx context.Context, rawurl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// FileExtension infers the photo file extension from the URL's trailing path
// segment, lowercased. Query strings are ignored. If no extension is
// recognizable it defaults to ".jpg".
func FileExtension(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || ext == "." {
		return ".jpg"
	}
	return ext
}
