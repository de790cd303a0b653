// Package translate talks to the public Google translate endpoint.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoTranslation is returned when the endpoint answered without a translation.
var ErrNoTranslation = errors.New("translate: empty translation")

// Client translates text from SourceLang to TargetLang. It is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	endpoint   string
	sourceLang string
	targetLang string
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient;
// timeouts are expected on the request context.
func NewClient(httpClient *http.Client, endpoint, sourceLang, targetLang string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		sourceLang: sourceLang,
		targetLang: targetLang,
	}
}

// Translate sends one request and returns the concatenated translation.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", c.sourceLang)
	q.Set("tl", c.targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("translate: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("translate: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	out, err := parseResponse(body)
	if err != nil {
		return "", err
	}
	// the endpoint echoes text it cannot translate
	if strings.EqualFold(out, strings.TrimSpace(text)) {
		return "", ErrNoTranslation
	}
	return out, nil
}

// parseResponse extracts the translated segments from the nested-array
// payload: [[["перевод","source",...], ...], ...].
func parseResponse(body []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", ErrNoTranslation
	}

	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", ErrNoTranslation
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", ErrNoTranslation
	}
	return out, nil
}
