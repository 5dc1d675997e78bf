package flickr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/virtualtourist/server/internal/models"
)

// DefaultBaseURL is the Flickr REST endpoint
const DefaultBaseURL = "https://www.flickr.com/services/rest/"

// Client issues geo photo searches against the Flickr REST API. It is
// stateless apart from its configuration and safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	perPage    int
	httpClient *http.Client
}

// NewClient creates a search client. perPage is the page size requested
// from the service; it is fixed at construction rather than mutated
// globally.
func NewClient(baseURL, apiKey string, perPage int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		perPage: perPage,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// searchURL builds the query URL for one search page
func (c *Client) searchURL(lat, lon float64, page int) string {
	q := url.Values{}
	q.Set("method", "flickr.photos.search")
	q.Set("api_key", c.apiKey)
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("page", strconv.Itoa(page))
	q.Set("format", "json")
	q.Set("nojsoncallback", "1")
	return c.baseURL + "?" + q.Encode()
}

// Search fetches one page of photos around a coordinate. A page with no
// photos is returned as an empty result, not an error; the caller decides
// how to surface it.
func (c *Client) Search(ctx context.Context, lat, lon float64, page int) (*SearchResult, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", models.ErrBadSearchResponse, page)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(lat, lon, page), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSearchUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", models.ErrSearchUnavailable, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBadSearchResponse, err)
	}
	if body.Stat != "" && body.Stat != "ok" {
		return nil, fmt.Errorf("%w: stat %q", models.ErrBadSearchResponse, body.Stat)
	}

	return &SearchResult{
		Page:    body.Photos.Page,
		Pages:   body.Photos.Pages,
		PerPage: body.Photos.PerPage,
		Photos:  body.Photos.Photo,
	}, nil
}
