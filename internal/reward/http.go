package reward

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

// Client talks to a text-classification serving backend over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

type classifyRequest struct {
	Texts []string `json:"texts"`
	// ReturnAllScores asks for the full per-class vector rather than
	// only the argmax label.
	ReturnAllScores bool `json:"return_all_scores"`
	// FunctionToApply "none" keeps scores on the raw logit scale.
	FunctionToApply string `json:"function_to_apply"`
}

type classifyResponse struct {
	Scores [][]ClassScore `json:"scores"`
}

// NewClient creates a classification client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// NewFromEnv creates a client from TRL_REWARD_URL, defaulting to a
// local server.
func NewFromEnv() *Client {
	url := os.Getenv("TRL_REWARD_URL")
	if url == "" {
		url = "http://localhost:8501"
	}
	return NewClient(url)
}

// Score classifies the texts and returns one [NEGATIVE, POSITIVE]
// score vector per text, in input order.
func (c *Client) Score(ctx context.Context, texts []string) ([][]ClassScore, error) {
	body, _ := json.Marshal(classifyRequest{
		Texts:           texts,
		ReturnAllScores: true,
		FunctionToApply: "none",
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reward request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reward error %d: %s", resp.StatusCode, string(b))
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Scores, nil
}
