package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIAnalyzeOverChatCompletions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		content := `{"case_number":"T-310/24","chamber":"Sala Quinta de Revisión","summary":"Tutela de consulta previa."}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": content}}},
		})
	}))
	defer srv.Close()
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("JURISCOPE_OPENAI_BASE_URL", srv.URL)
	t.Setenv("JURISCOPE_OPENAI_MODEL", "gpt-4o-mini")

	a, info, err := NewPromptAnalyzer(NewOpenAIProvider("")).Analyze(context.Background(), AnalyzeRequest{Text: "SENTENCIA T-310/24", Title: "Consulta previa"})
	require.NoError(t, err)
	assert.Equal(t, "openai", info.Name)
	assert.Equal(t, "T-310/24", a.CaseNumber)
	assert.Equal(t, "Sala Quinta de Revisión", a.Chamber)
	assert.Equal(t, "gpt-4o-mini", a.ModelUsed)
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
}

func TestChatCompletionStatusErrors(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   ErrorType
	}{
		{http.StatusTooManyRequests, `{"error":{"message":"You exceeded your current quota"}}`, ErrorQuota},
		{http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, ErrorRate},
		{http.StatusBadGateway, `upstream`, ErrorTransient},
		{http.StatusUnauthorized, `{"error":"invalid key"}`, ErrorPermanent},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		t.Setenv("GROQ_API_KEY", "gsk-test")
		t.Setenv("JURISCOPE_GROQ_BASE_URL", srv.URL)
		_, _, err := NewGroqProvider("").Generate(context.Background(), GenerateRequest{Prompt: "hola"})
		srv.Close()
		require.Error(t, err, tc.status)
		assert.Equal(t, tc.want, ClassifyError(err), "status %d body %s", tc.status, tc.body)
	}
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.1", body["model"])
		assert.Equal(t, "json", body["format"])
		assert.Equal(t, false, body["stream"])
		_ = json.NewEncoder(w).Encode(map[string]string{"response": `{"case_number":"C-055/22"}`})
	}))
	defer srv.Close()
	t.Setenv("JURISCOPE_OLLAMA_BASE_URL", srv.URL)
	t.Setenv("JURISCOPE_OLLAMA_MODEL", "")

	resp, info, err := NewOllamaProvider("").Generate(context.Background(), GenerateRequest{Prompt: "x", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, "ollama", info.Name)
	assert.JSONEq(t, `{"case_number":"C-055/22"}`, resp.Text)
}

func TestResolveKeyPrefersAlias(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "default")
	t.Setenv("JURISCOPE_OPENAI_KEY_TEAM_A", "team")
	assert.Equal(t, "team", resolveKey("OPENAI", "team-a"))
	assert.Equal(t, "default", resolveKey("OPENAI", "other"))
}
