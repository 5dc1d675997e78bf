package flickr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/virtualtourist/server/internal/models"
)

// Fetcher downloads image bytes for a photo descriptor. It does not retry;
// a failed download leaves the caller's placeholder in place and the user's
// refresh is the retry mechanism.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates an image fetcher
func NewFetcher() *Fetcher {
	return NewFetcherWithHTTPClient(&http.Client{
		Timeout: 60 * time.Second,
	})
}

// NewFetcherWithHTTPClient creates a fetcher with a caller-supplied HTTP
// client, used by tests to stub the static-host transport.
func NewFetcherWithHTTPClient(httpClient *http.Client) *Fetcher {
	return &Fetcher{httpClient: httpClient}
}

// Fetch downloads the image for one descriptor
func (f *Fetcher) Fetch(ctx context.Context, desc PhotoDescriptor) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, desc.DownloadURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDownloadFailed, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", models.ErrDownloadFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDownloadFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", models.ErrDownloadFailed)
	}

	return data, nil
}
