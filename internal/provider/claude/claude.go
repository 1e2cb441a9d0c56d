package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vnmchuo/llmbench/internal/provider"
	"github.com/vnmchuo/llmbench/internal/usage"
)

const (
	defaultModel = "claude-3-7-sonnet-20250219"
	maxTokens    = 1024
)

type ClaudeProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string         `json:"id"`
	Content []contentBlock `json:"content"`
	Model   string         `json:"model"`
	Usage   messagesUsage  `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

func New(apiKey string) provider.Provider {
	return &ClaudeProvider{
		apiKey:  apiKey,
		baseURL: "https://api.anthropic.com/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *ClaudeProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	msgReq := p.mapRequest(req)
	body, err := json.Marshal(msgReq)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/messages", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("anthropic api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, err
	}

	if len(msgResp.Content) == 0 {
		return nil, fmt.Errorf("anthropic api returned no content")
	}

	model := msgResp.Model
	if model == "" {
		model = msgReq.Model
	}

	return &provider.Response{
		Output: msgResp.Content[0].Text,
		Model:  model,
		Usage:  normalizeUsage(msgResp.Usage),
	}, nil
}

func (p *ClaudeProvider) mapRequest(req *provider.Request) messagesRequest {
	model := req.Model
	if model == "" {
		model = defaultModel
	}

	return messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.SystemPrompt,
		Messages: []chatMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
}

// normalizeUsage maps the messages-API usage block into the canonical
// record. Anthropic reports cache writes and reads as two separate
// counters; the canonical cached count is their sum, and both
// sub-counters are preserved for the cache-type pricing strategy.
// input_tokens on this API excludes the cache counters.
func normalizeUsage(u messagesUsage) usage.Record {
	return usage.Record{
		InputTokens:         u.InputTokens,
		CacheCreationTokens: u.CacheCreationInputTokens,
		CacheReadTokens:     u.CacheReadInputTokens,
		CachedInputTokens:   u.CacheCreationInputTokens + u.CacheReadInputTokens,
		OutputTokens:        u.OutputTokens,
	}
}

func (p *ClaudeProvider) Name() string {
	return "anthropic"
}

func (p *ClaudeProvider) DisplayName() string {
	return "Anthropic"
}

func (p *ClaudeProvider) DefaultModel() string {
	return defaultModel
}
