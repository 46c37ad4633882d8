package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// GroqProvider uses Groq's OpenAI-compatible API.
type GroqProvider struct {
	keyName string
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGroqProvider(keyName string) *GroqProvider {
	return &GroqProvider{
		keyName: keyName,
		apiKey:  resolveKey("GROQ", keyName),
		baseURL: envOr("JURISCOPE_GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		model:   envOr("JURISCOPE_GROQ_MODEL", "llama-3.1-8b-instant"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (g *GroqProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	model := g.model
	if req.Model != "" {
		model = req.Model
	}
	info := ProviderInfo{Name: "groq", Key: g.keyName, Model: model}
	if g.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("groq key missing for alias %q", g.keyName)
	}
	text, err := chatCompletion(ctx, g.client, "groq", g.baseURL, g.apiKey, model, req)
	if err != nil {
		return GenerateResponse{}, info, err
	}
	return GenerateResponse{Text: text}, info, nil
}
