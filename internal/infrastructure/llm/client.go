package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ConferenceMonitor/internal/config"
	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/ports"
)

// Client implements ports.QueryClient backed by OpenAI-compatible
// chat-completion APIs.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.QueryClient = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether the client has everything needed to reach
// the API. Unconfigured deployments skip query and analysis features.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.endpoint != "" && c.model != ""
}

// Query answers a free-form question grounded in the JSON-encoded
// records handed over by the caller.
func (c *Client) Query(ctx context.Context, question string, records []byte) (string, error) {
	user := fmt.Sprintf("Tracked records:\n%s\n\nQuestion: %s", string(records), question)
	return c.complete(ctx, user)
}

// AnalyzePaper asks for a short research summary of one paper.
func (c *Client) AnalyzePaper(ctx context.Context, p domain.Paper) (string, error) {
	user := fmt.Sprintf(
		"Summarize the contribution of this paper in two sentences.\nTitle: %s\nAuthors: %s\nAbstract: %s",
		p.Title, strings.Join(p.Authors, ", "), p.Abstract)
	return c.complete(ctx, user)
}

func (c *Client) complete(ctx context.Context, userMessage string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("llm client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": userMessage},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You answer questions about tracked academic conferences and papers."
	}
	return prompt
}
