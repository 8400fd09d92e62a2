package ppo

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

// Client fronts a training backend over HTTP. The backend holds the
// trainable policy, the frozen reference copy, and the value head; it
// runs the clipped-gradient epochs for each step. The client threads
// the KL coefficient schedule so the penalty adapts between steps.
type Client struct {
	baseURL string
	client  *http.Client
	cfg     Config
	kl      KLController
}

type stepRequest struct {
	Prompts   [][]int   `json:"prompts"`
	Responses [][]int   `json:"responses"`
	Rewards   []float64 `json:"rewards"`
	KLCoef    float64   `json:"kl_coef"`
	Config    Config    `json:"config"`
}

type stepResponse struct {
	Stats  Stats   `json:"stats"`
	MeanKL float64 `json:"mean_kl"`
}

// NewClient creates an optimizer client for the given base URL.
func NewClient(baseURL string, cfg Config) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Minute},
		cfg:     cfg,
		kl:      ControllerFor(cfg),
	}
}

// NewFromEnv creates a client from TRL_OPTIMIZER_URL, defaulting to a
// local server.
func NewFromEnv(cfg Config) *Client {
	url := os.Getenv("TRL_OPTIMIZER_URL")
	if url == "" {
		url = "http://localhost:8502"
	}
	return NewClient(url, cfg)
}

// Step runs one PPO update over the aligned triplets and returns the
// backend's diagnostics, augmented with the KL coefficient in effect.
func (c *Client) Step(ctx context.Context, prompts, responses [][]int, rewards []float64) (Stats, error) {
	if len(prompts) != len(responses) || len(prompts) != len(rewards) {
		return nil, fmt.Errorf("misaligned step input: %d prompts, %d responses, %d rewards",
			len(prompts), len(responses), len(rewards))
	}

	body, _ := json.Marshal(stepRequest{
		Prompts:   prompts,
		Responses: responses,
		Rewards:   rewards,
		KLCoef:    c.kl.Value(),
		Config:    c.cfg,
	})
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/step", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("optimizer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("optimizer error %d: %s", resp.StatusCode, string(b))
	}

	var result stepResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	c.kl.Update(result.MeanKL, len(prompts))

	stats := result.Stats
	if stats == nil {
		stats = Stats{}
	}
	stats["objective/kl_coef"] = c.kl.Value()
	return stats, nil
}
