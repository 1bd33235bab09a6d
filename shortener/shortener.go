// Package shortener wraps the TinyURL create API. Shortening is
// best-effort everywhere in the bot, callers fall back to the long URL
// when Shorten returns an error.
package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.tinyurl.com/create"

type Client struct {
	HTTP     *http.Client
	Endpoint string
	APIKey   string
}

func New(apiKey string) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		Endpoint: defaultEndpoint,
		APIKey:   apiKey,
	}
}

// Enabled reports whether an API key is configured at all. Without one
// every Shorten call would just burn a request.
func (c *Client) Enabled() bool {
	return c.APIKey != ""
}

type createRequest struct {
	URL string `json:"url"`
}

type createResponse struct {
	Data struct {
		TinyURL string `json:"tiny_url"`
	} `json:"data"`
}

// Shorten asks TinyURL for a short alias of longURL.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	body, err := json.Marshal(createRequest{URL: longURL})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tinyurl returned status %d", resp.StatusCode)
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	if out.Data.TinyURL == "" {
		return "", errors.New("tinyurl response contained no alias")
	}

	return out.Data.TinyURL, nil
}
