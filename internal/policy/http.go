package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client talks to a model-serving backend over HTTP. The backend owns
// the model weights and the forward pass; this side owns batching and
// slicing semantics.
type Client struct {
	baseURL string
	client  *http.Client
}

type generateRequest struct {
	Prompt       []int          `json:"prompt"`
	MaxNewTokens int            `json:"max_new_tokens"`
	Sampling     SamplingConfig `json:"sampling"`
}

type generateResponse struct {
	Tokens []int `json:"tokens"`
}

type saveRequest struct {
	Dest string `json:"dest"`
}

// NewClient creates a generation client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// NewFromEnv creates a client from TRL_POLICY_URL, defaulting to a
// local server.
func NewFromEnv() *Client {
	url := os.Getenv("TRL_POLICY_URL")
	if url == "" {
		url = "http://localhost:8500"
	}
	return NewClient(url)
}

// Generate requests a sampled continuation. The response buffer
// includes the prompt prefix, matching the backend's generate call.
func (c *Client) Generate(ctx context.Context, prompt []int, maxNewTokens int, cfg SamplingConfig) ([]int, error) {
	body, _ := json.Marshal(generateRequest{
		Prompt:       prompt,
		MaxNewTokens: maxNewTokens,
		Sampling:     cfg,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("policy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("policy error %d: %s", resp.StatusCode, string(b))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Tokens, nil
}

// Save asks the backend to persist the current policy weights and
// tokenizer assets.
func (c *Client) Save(ctx context.Context, dest string) error {
	body, _ := json.Marshal(saveRequest{Dest: dest})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/save", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("policy save failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("policy save error %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
