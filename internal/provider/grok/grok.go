package grok

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

const defaultModel = "grok-3-beta"

// GrokProvider speaks the x.ai chat-completions API, which is wire
// compatible with OpenAI's except that reasoning tokens are reported
// under completion_tokens_details.
type GrokProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
	Model   string       `json:"model"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens            int                      `json:"prompt_tokens"`
	CompletionTokens        int                      `json:"completion_tokens"`
	PromptTokensDetails     *promptTokensDetails     `json:"prompt_tokens_details"`
	CompletionTokensDetails *completionTokensDetails `json:"completion_tokens_details"`
}

type promptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

type completionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

func New(apiKey string) provider.Provider {
	return &GrokProvider{
		apiKey:  apiKey,
		baseURL: "https://api.x.ai/v1",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *GrokProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	chatReq := p.mapRequest(req)
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("grok api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, err
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("grok api returned no choices")
	}

	model := chatResp.Model
	if model == "" {
		model = chatReq.Model
	}

	return &provider.Response{
		Output: chatResp.Choices[0].Message.Content,
		Model:  model,
		Usage:  normalizeUsage(chatResp.Usage),
	}, nil
}

func (p *GrokProvider) mapRequest(req *provider.Request) chatRequest {
	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	model := req.Model
	if model == "" {
		model = defaultModel
	}

	return chatRequest{
		Model:    model,
		Messages: messages,
	}
}

// normalizeUsage maps the x.ai usage block into the canonical record.
// Both detail substructures are optional on the wire; missing means 0.
func normalizeUsage(u chatUsage) usage.Record {
	rec := usage.Record{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
	}
	if u.PromptTokensDetails != nil {
		rec.CachedInputTokens = u.PromptTokensDetails.CachedTokens
	}
	if u.CompletionTokensDetails != nil {
		rec.ReasoningTokens = u.CompletionTokensDetails.ReasoningTokens
	}
	return rec
}

func (p *GrokProvider) Name() string {
	return "grok"
}

func (p *GrokProvider) DisplayName() string {
	return "Grok"
}

func (p *GrokProvider) DefaultModel() string {
	return defaultModel
}
