package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client adjusts inventory buckets on the inventory service. Every
// adjustment is a single PUT with no internal retry; any non-2xx response
// is an error for the caller to classify.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

func (c *Client) DeductArtwork(ctx context.Context, artworkID string, quantity int64) error {
	return c.adjust(ctx, artworkPath(artworkID), map[string]int64{"deduct": quantity})
}

func (c *Client) DeductEditionSet(ctx context.Context, artworkID, editionSetID string, quantity int64) error {
	return c.adjust(ctx, editionSetPath(artworkID, editionSetID), map[string]int64{"deduct": quantity})
}

func (c *Client) UndeductArtwork(ctx context.Context, artworkID string, quantity int64) error {
	return c.adjust(ctx, artworkPath(artworkID), map[string]int64{"undeduct": quantity})
}

func (c *Client) UndeductEditionSet(ctx context.Context, artworkID, editionSetID string, quantity int64) error {
	return c.adjust(ctx, editionSetPath(artworkID, editionSetID), map[string]int64{"undeduct": quantity})
}

func artworkPath(artworkID string) string {
	return fmt.Sprintf("/artwork/%s/inventory", url.PathEscape(artworkID))
}

func editionSetPath(artworkID, editionSetID string) string {
	return fmt.Sprintf("/artwork/%s/edition_set/%s/inventory", url.PathEscape(artworkID), url.PathEscape(editionSetID))
}

func (c *Client) adjust(ctx context.Context, path string, body map[string]int64) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("inventory api: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("inventory api: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inventory api: %s: %w", path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("inventory api: %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}
