// Package http implements the token metadata fetcher over the standard
// GET <base-uri>/<tokenId> JSON contract.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/herowatch/herowatch/internal/deathwatch"
	"github.com/herowatch/herowatch/internal/hero"
	"github.com/herowatch/herowatch/internal/pkg/transport/http"
	"github.com/herowatch/herowatch/internal/revealwatch"

	"github.com/hashicorp/go-retryablehttp"
)

// Client fetches token metadata documents.
type client struct {
	conn    *retryablehttp.Client
	baseURL string
}

var (
	_ revealwatch.MetadataFetcher = (*client)(nil)
	_ deathwatch.MetadataFetcher  = (*client)(nil)
)

// NewClient builds a metadata fetcher rooted at baseURL. The default
// request budget is 10s; pass transport options to change it.
func NewClient(baseURL string, opts ...http.Option) *client {
	opts = append([]http.Option{http.WithTimeout(10 * time.Second)}, opts...)

	return &client{
		conn:    http.NewClient(opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Fetch retrieves and decodes the metadata document for tokenID. Non-2xx
// responses and transport failures come back as plain errors (transient);
// an undecodable body is wrapped in hero.ErrMalformedMetadata.
func (c *client) Fetch(ctx context.Context, tokenID uint64) (hero.Metadata, error) {
	url := fmt.Sprintf("%s/%d", c.baseURL, tokenID)

	req, err := retryablehttp.NewRequestWithContext(ctx, nethttp.MethodGet, url, nil)
	if err != nil {
		return hero.Metadata{}, fmt.Errorf("building metadata request: %w", err)
	}

	resp, err := c.conn.Do(req)
	if err != nil {
		return hero.Metadata{}, fmt.Errorf("requesting token metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return hero.Metadata{}, fmt.Errorf("metadata endpoint returned status %d", resp.StatusCode)
	}

	var metadata hero.Metadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return hero.Metadata{}, fmt.Errorf("%w: %v", hero.ErrMalformedMetadata, err)
	}

	if metadata.Image == "" {
		return hero.Metadata{}, fmt.Errorf("%w: missing image reference", hero.ErrMalformedMetadata)
	}

	return metadata, nil
}
