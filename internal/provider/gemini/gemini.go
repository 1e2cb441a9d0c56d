package gemini

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

const defaultModel = "gemini-2.5-pro"

type GeminiProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type generateRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata usageMetadata     `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// usageMetadata carries the reasoning counter under four different names
// depending on API version; see normalizeUsage for the precedence order.
type usageMetadata struct {
	PromptTokenCount        int `json:"promptTokenCount"`
	CandidatesTokenCount    int `json:"candidatesTokenCount"`
	CachedContentTokenCount int `json:"cachedContentTokenCount"`
	ThoughtsTokenCount      int `json:"thoughtsTokenCount"`
	ThoughtTokenCount       int `json:"thoughtTokenCount"`
	ReasoningTokenCount     int `json:"reasoningTokenCount"`
	ThinkingTokenCount      int `json:"thinkingTokenCount"`
}

func New(apiKey string) provider.Provider {
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *GeminiProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	genReq := p.mapRequest(req)
	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = defaultModel
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", p.baseURL, model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, err
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini api returned no candidates")
	}

	return &provider.Response{
		Output: genResp.Candidates[0].Content.Parts[0].Text,
		Model:  model,
		Usage:  normalizeUsage(genResp.UsageMetadata),
	}, nil
}

func (p *GeminiProvider) mapRequest(req *provider.Request) generateRequest {
	genReq := generateRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.SystemPrompt != "" {
		genReq.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
	}
	return genReq
}

// normalizeUsage maps usageMetadata into the canonical record. The
// reasoning counter has been renamed across API revisions; the aliases
// are checked in precedence order and the first non-zero one wins.
func normalizeUsage(u usageMetadata) usage.Record {
	rec := usage.Record{
		InputTokens:       u.PromptTokenCount,
		OutputTokens:      u.CandidatesTokenCount,
		CachedInputTokens: u.CachedContentTokenCount,
	}
	for _, count := range []int{
		u.ThoughtsTokenCount,
		u.ThoughtTokenCount,
		u.ReasoningTokenCount,
		u.ThinkingTokenCount,
	} {
		if count != 0 {
			rec.ReasoningTokens = count
			break
		}
	}
	return rec
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) DisplayName() string {
	return "Gemini"
}

func (p *GeminiProvider) DefaultModel() string {
	return defaultModel
}
