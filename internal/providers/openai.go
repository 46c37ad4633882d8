package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1"
	openAIDefaultModel = "gpt-4o-mini"
	systemPrompt       = "Eres un asistente editorial que analiza sentencias judiciales colombianas. Responde con datos literales del texto."
)

// OpenAIProvider talks to the chat completions API.
type OpenAIProvider struct {
	keyName string
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	return &OpenAIProvider{
		keyName: keyName,
		apiKey:  resolveKey("OPENAI", keyName),
		baseURL: envOr("JURISCOPE_OPENAI_BASE_URL", openAIBaseURL),
		model:   envOr("JURISCOPE_OPENAI_MODEL", openAIDefaultModel),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	model := o.model
	if req.Model != "" {
		model = req.Model
	}
	info := ProviderInfo{Name: "openai", Model: model, Key: o.keyName}
	if o.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
	text, err := chatCompletion(ctx, o.client, "openai", o.baseURL, o.apiKey, model, req)
	if err != nil {
		return GenerateResponse{}, info, err
	}
	return GenerateResponse{Text: text}, info, nil
}

// chatCompletion posts one user turn to an OpenAI-compatible endpoint.
func chatCompletion(ctx context.Context, client *http.Client, provider, baseURL, apiKey, model string, req GenerateRequest) (string, error) {
	body := map[string]any{
		"model":       model,
		"temperature": 0.2,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode %s request: %w", provider, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", provider, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s generate request failed: %w", provider, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", statusError(provider, resp.StatusCode, raw)
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode %s response: %w", provider, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s returned empty choices", provider)
	}
	return parsed.Choices[0].Message.Content, nil
}

// resolveKey looks up JURISCOPE_<PROVIDER>_KEY_<ALIAS>, then <PROVIDER>_API_KEY.
func resolveKey(provider, alias string) string {
	if alias != "" {
		if k := os.Getenv("JURISCOPE_" + provider + "_KEY_" + sanitizeEnvToken(alias)); k != "" {
			return k
		}
	}
	return os.Getenv(provider + "_API_KEY")
}

func envOr(k, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return fallback
}

func sanitizeEnvToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
