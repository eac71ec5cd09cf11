// Package bgremove strips the background from portrait photos using a
// remove.bg compatible HTTP API.
package bgremove

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrNoKeys        = errors.New("no background removal API keys configured")
	ErrKeysExhausted = errors.New("all background removal API keys were rejected")
)

// maxErrorBodySize caps how much of an error response is read.
const maxErrorBodySize = 1024

// keyError marks a response that rejected the current API key. The client
// moves on to the next key when it sees one.
type keyError struct {
	Status int
	Err    error
}

func (e *keyError) Error() string { return e.Err.Error() }
func (e *keyError) Unwrap() error { return e.Err }

// Client calls the background removal endpoint, rotating through API keys
// when one is rejected or out of credits.
type Client struct {
	url        string
	keys       []string
	httpClient *http.Client
	logger     *log.Logger

	mu      sync.Mutex
	current int
}

// New creates a client for url using keys in order.
func New(url string, keys []string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		url:        url,
		keys:       keys,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Enabled reports whether at least one key is configured.
func (c *Client) Enabled() bool {
	return c != nil && len(c.keys) > 0
}

// Remove uploads image and returns the cut-out PNG. The key that last
// succeeded is tried first.
func (c *Client) Remove(ctx context.Context, image []byte, filename string) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrNoKeys
	}

	c.mu.Lock()
	start := c.current
	c.mu.Unlock()

	for i := range c.keys {
		idx := (start + i) % len(c.keys)
		out, err := c.call(ctx, c.keys[idx], image, filename)
		if err == nil {
			c.mu.Lock()
			c.current = idx
			c.mu.Unlock()
			return out, nil
		}

		var ke *keyError
		if !errors.As(err, &ke) {
			return nil, err
		}
		c.logger.Warn("background removal key rejected, trying next", "key", maskKey(c.keys[idx]), "status", ke.Status)
	}

	c.logger.Error("background removal failed with every configured key", "keys", len(c.keys))
	return nil, ErrKeysExhausted
}

func (c *Client) call(ctx context.Context, key string, image []byte, filename string) ([]byte, error) {
	if filename == "" {
		filename = "photo.jpg"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image_file", filename)
	if err != nil {
		return nil, fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("could not write image: %w", err)
	}
	if err := writer.WriteField("size", "auto"); err != nil {
		return nil, fmt.Errorf("could not write size field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Api-Key", key)
	req.Header.Set("Accept", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden, http.StatusTooManyRequests:
		return nil, &keyError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body)),
		}
	default:
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return out, nil
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(could not read body)"
	}
	return strings.TrimSpace(string(b))
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
