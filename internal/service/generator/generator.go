package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"vibelearner/internal/config"
	"vibelearner/internal/logger"
)

// GenerateRequest is the wire payload sent to the course generator
type GenerateRequest struct {
	UserID string `json:"user_id"`
	Topic  string `json:"topic"`
}

// GenerateResponse is the generator's acknowledgement. The course
// content itself is persisted server-side and read back from the
// document store.
type GenerateResponse struct {
	Success  bool   `json:"success"`
	CourseID string `json:"course_id"`
}

// Client abstracts the remote course generator endpoint
type Client interface {
	Generate(ctx context.Context, userID, topic string) (*GenerateResponse, error)
}

// HTTPClient calls the hosted generator over HTTP
type HTTPClient struct {
	url        string
	httpClient *http.Client
}

// NewHTTPClient creates a generator client with the configured endpoint
// and timeout
func NewHTTPClient(cfg *config.GeneratorConfig) *HTTPClient {
	return &HTTPClient{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *HTTPClient) Generate(ctx context.Context, userID, topic string) (*GenerateResponse, error) {
	payload, err := json.Marshal(GenerateRequest{UserID: userID, Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("failed to encode generator request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create generator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Log.WithField("topic", topic).Debug("Calling course generator")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("generator returned status %d: %s", resp.StatusCode, string(body))
	}

	var result GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode generator response: %w", err)
	}

	return &result, nil
}
