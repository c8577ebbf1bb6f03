// Package client is a small Go SDK for the laurel registry HTTP API.
package client

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

// Achievement mirrors the registry's wire representation of a record.
type Achievement struct {
	ID          uint32 `json:"id"`
	CourseID    uint32 `json:"course_id"`
	UserID      uint32 `json:"user_id"`
	IssuedAt    uint64 `json:"issued_at"`
	MetadataURI string `json:"metadata_uri"`
}

// APIError carries the registry's coded error response.
type APIError struct {
	Status      int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry error %d (%s): %s", e.Status, e.Code, e.Description)
}

// Config parameterizes a Client. Zero values get sane defaults.
type Config struct {
	BaseURL     string
	IssuerToken string
	Timeout     time.Duration
	Retries     int
	RetryDelay  time.Duration
}

// Client talks to a laurel registry deployment. Reads are retried on
// transport failures; issuance is not, because the registry assigns a new ID
// per successful call and blind retries could double-issue.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New constructs a registry client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Issue mints a new achievement for the user.
func (c *Client) Issue(ctx context.Context, courseID, userID uint32, metadataURI string) (Achievement, error) {
	body := map[string]any{
		"course_id":    courseID,
		"user_id":      userID,
		"metadata_uri": metadataURI,
	}
	var achievement Achievement
	if err := c.do(ctx, http.MethodPost, "/achievements", body, &achievement, false); err != nil {
		return Achievement{}, err
	}
	return achievement, nil
}

// Verify reports whether the achievement exists and belongs to the user.
func (c *Client) Verify(ctx context.Context, achievementID, userID uint32) (bool, error) {
	endpoint := fmt.Sprintf("/achievements/%d/verify?user_id=%d", achievementID, userID)
	var resp struct {
		Verified bool `json:"verified"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp, true); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

// buildURL joins the base URL with an endpoint, keeping any query intact.
func (c *Client) buildURL(endpoint string) (string, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// ListUserAchievements fetches all achievements issued to the user, in
// issuance order.
func (c *Client) ListUserAchievements(ctx context.Context, userID uint32) ([]Achievement, error) {
	endpoint := fmt.Sprintf("/users/%d/achievements", userID)
	var resp struct {
		Achievements []Achievement `json:"achievements"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Achievements, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any, retry bool) error {
	fullURL, err := c.buildURL(endpoint)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := 1
	if retry {
		attempts = c.cfg.Retries + 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.IssuerToken != "" {
			req.Header.Set("X-Issuer-Token", c.cfg.IssuerToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		err = decodeResponse(resp, out)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("registry unreachable after %d attempts: %w", attempts, lastErr)
}

func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "unknown"
			apiErr.Description = string(raw)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
