// Package imagine is the HTTP client for the host service: fetching gallery
// pages, removing favorites, and requesting video upscales.
package imagine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"grokfaves/pkg/auth"
	"grokfaves/pkg/errors"
	"grokfaves/pkg/logger"
)

// Client talks to the host service with the stored session credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	logger     logger.Logger
}

// NewClient builds an authenticated client.
func NewClient(creds *auth.Credentials, timeout time.Duration) (*Client, error) {
	if !creds.Valid() {
		return nil, auth.ErrNoCredentials
	}

	headers := make(http.Header)
	cookies := []string{fmt.Sprintf("session=%s", creds.SessionToken)}
	if creds.CSRFToken != "" {
		cookies = append(cookies, fmt.Sprintf("csrf=%s", creds.CSRFToken))
		headers.Set("x-csrf-token", creds.CSRFToken)
	}
	headers.Set("Cookie", strings.Join(cookies, "; "))
	if creds.UserAgent != "" {
		headers.Set("User-Agent", creds.UserAgent)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
		headers:    headers,
		logger:     logger.GetLogger(),
	}, nil
}

// SetBaseURL overrides the host root, for tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// GetHTML fetches a page and returns its body.
func (c *Client) GetHTML(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = c.headers.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.KindTransient, "request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, c.statusError(resp.StatusCode, path)
	}
	return resp.Body, nil
}

// postJSON issues an empty-body POST and decodes the JSON response.
func (c *Client) postJSON(ctx context.Context, path string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.KindTransient, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp.StatusCode, path)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return errors.Wrap(errors.KindTransient, "failed to decode response", err)
	}
	return nil
}

// statusError maps HTTP statuses onto the error taxonomy.
func (c *Client) statusError(status int, path string) error {
	msg := fmt.Sprintf("%s returned %d", path, status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.New(errors.KindConfigurationMissing, msg+" (session expired?)")
	case status == http.StatusNotFound:
		return errors.New(errors.KindNotFound, msg)
	default:
		return errors.New(errors.KindTransient, msg)
	}
}

// RequestUpscale asks the host to upscale one item. Implements
// upscale.Requester.
func (c *Client) RequestUpscale(ctx context.Context, itemID string) (bool, error) {
	var result struct {
		Success bool `json:"success"`
	}
	if err := c.postJSON(ctx, upscalePath(itemID), &result); err != nil {
		return false, err
	}
	return result.Success, nil
}

// RemoveFavorite removes one item from the favorites list.
func (c *Client) RemoveFavorite(ctx context.Context, itemID string) error {
	return c.postJSON(ctx, unfavoritePath(itemID), nil)
}

// Download fetches a media resource body.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = c.headers.Clone()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.KindTransient, "download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, url)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.KindTransient, "failed to read body", err)
	}
	return data, nil
}
