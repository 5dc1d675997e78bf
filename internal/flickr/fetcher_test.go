package flickr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualtourist/server/internal/models"
)

// urlTransport routes requests by exact URL, standing in for the Flickr
// static hosts.
type urlTransport struct {
	responses map[string][]byte
	status    map[string]int
	err       error
}

func (t *urlTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.err != nil {
		return nil, t.err
	}
	url := req.URL.String()
	status := http.StatusOK
	if s, ok := t.status[url]; ok {
		status = s
	}
	body, ok := t.responses[url]
	if !ok && status == http.StatusOK {
		status = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func TestFetcher_Fetch(t *testing.T) {
	desc := PhotoDescriptor{ID: "50436887123", Secret: "abc123", Server: "65535", Farm: 66}
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}

	t.Run("returns body bytes for the descriptor URL", func(t *testing.T) {
		transport := &urlTransport{responses: map[string][]byte{
			desc.DownloadURL(): jpeg,
		}}
		fetcher := NewFetcherWithHTTPClient(&http.Client{Transport: transport})

		data, err := fetcher.Fetch(context.Background(), desc)
		require.NoError(t, err)
		assert.Equal(t, jpeg, data)
	})

	t.Run("transport error", func(t *testing.T) {
		transport := &urlTransport{err: errors.New("connection refused")}
		fetcher := NewFetcherWithHTTPClient(&http.Client{Transport: transport})

		_, err := fetcher.Fetch(context.Background(), desc)
		assert.ErrorIs(t, err, models.ErrDownloadFailed)
	})

	t.Run("non-200 status", func(t *testing.T) {
		transport := &urlTransport{
			responses: map[string][]byte{desc.DownloadURL(): nil},
			status:    map[string]int{desc.DownloadURL(): http.StatusGone},
		}
		fetcher := NewFetcherWithHTTPClient(&http.Client{Transport: transport})

		_, err := fetcher.Fetch(context.Background(), desc)
		assert.ErrorIs(t, err, models.ErrDownloadFailed)
	})

	t.Run("empty body", func(t *testing.T) {
		transport := &urlTransport{responses: map[string][]byte{
			desc.DownloadURL(): {},
		}}
		fetcher := NewFetcherWithHTTPClient(&http.Client{Transport: transport})

		_, err := fetcher.Fetch(context.Background(), desc)
		assert.ErrorIs(t, err, models.ErrDownloadFailed)
	})
}
