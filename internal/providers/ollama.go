package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaProvider runs generation against a local Ollama server.
type OllamaProvider struct {
	alias   string
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(alias string) *OllamaProvider {
	return &OllamaProvider{
		alias:   alias,
		baseURL: strings.TrimRight(envOr("JURISCOPE_OLLAMA_BASE_URL", "http://localhost:11434"), "/"),
		model:   resolveOllamaModel(alias),
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (o *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	model := o.model
	if req.Model != "" {
		model = req.Model
	}
	info := ProviderInfo{Name: "ollama", Model: model, Key: o.alias}
	body := map[string]any{
		"model":  model,
		"prompt": req.Prompt,
		"system": systemPrompt,
		"stream": false,
	}
	if req.JSON {
		body["format"] = "json"
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("encode ollama request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("build ollama request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("ollama generate request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return GenerateResponse{}, info, statusError("ollama", resp.StatusCode, raw)
	}
	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return GenerateResponse{}, info, fmt.Errorf("decode ollama response: %w", err)
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return GenerateResponse{}, info, fmt.Errorf("ollama returned empty response")
	}
	return GenerateResponse{Text: parsed.Response}, info, nil
}

// resolveOllamaModel accepts a model name directly in the provider list,
// e.g. ollama:llama3.1, or an alias mapped through JURISCOPE_OLLAMA_MODEL_<ALIAS>.
func resolveOllamaModel(alias string) string {
	alias = strings.TrimSpace(alias)
	if alias != "" {
		if v := envOr("JURISCOPE_OLLAMA_MODEL_"+sanitizeEnvToken(alias), ""); v != "" {
			return v
		}
		if strings.ContainsAny(alias, "-./") || strings.ContainsAny(alias, "0123456789") {
			return alias
		}
	}
	return envOr("JURISCOPE_OLLAMA_MODEL", "llama3.1")
}
