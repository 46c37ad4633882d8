package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider calls Google's Generative AI API.
type GeminiProvider struct {
	keyName string
	apiKey  string
	model   string
}

func NewGeminiProvider(keyName string) *GeminiProvider {
	return &GeminiProvider{
		keyName: keyName,
		apiKey:  resolveKey("GEMINI", keyName),
		model:   envOr("JURISCOPE_GEMINI_MODEL", "gemini-1.5-flash"),
	}
}

func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	modelName := g.model
	if req.Model != "" {
		modelName = req.Model
	}
	info := ProviderInfo{Name: "gemini", Model: modelName, Key: g.keyName}
	if g.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("gemini key missing for alias %q", g.keyName)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}
	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return GenerateResponse{}, info, fmt.Errorf("gemini returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return GenerateResponse{}, info, fmt.Errorf("gemini returned empty text")
	}
	return GenerateResponse{Text: b.String()}, info, nil
}
