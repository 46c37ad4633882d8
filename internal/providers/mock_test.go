package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const rulingHeader = `REPÚBLICA DE COLOMBIA
CORTE CONSTITUCIONAL
Sala Tercera de Revisión
SENTENCIA T-123/24
Expediente T-9.876.543
Magistrado Ponente: Jorge Enrique Ibáñez Najar
Bogotá D.C., doce de marzo de dos mil veinticuatro.
La Sala decide la acción de tutela. El accionante alega vulneración del derecho a la salud.
RESUELVE: CONFIRMAR el fallo de instancia.`

func TestMockAnalyzerIsDeterministic(t *testing.T) {
	m := NewMockProvider()
	req := AnalyzeRequest{Text: rulingHeader, Title: "Derecho a la salud"}
	a1, info, err := m.Analyze(context.Background(), req)
	require.NoError(t, err)
	a2, _, _ := m.Analyze(context.Background(), req)
	require.Equal(t, a1, a2)
	require.Equal(t, "mock", info.Name)
	require.Equal(t, "T-123/24", a1.CaseNumber)
	require.Equal(t, "Derecho a la salud", a1.PrimaryTopic)
	require.Equal(t, "CONFIRMAR el fallo de instancia.", a1.Decision)
}

func TestMockAnalyzerEmptyTextGivesNil(t *testing.T) {
	a, _, err := NewMockProvider().Analyze(context.Background(), AnalyzeRequest{Text: "  "})
	require.NoError(t, err)
	require.Nil(t, a)
}

type staticGenerator struct {
	text string
	req  GenerateRequest
}

func (s *staticGenerator) Generate(_ context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	s.req = req
	return GenerateResponse{Text: s.text}, ProviderInfo{Name: "static", Model: "static-1"}, nil
}

func TestPromptAnalyzerParsesGeneratorOutput(t *testing.T) {
	g := &staticGenerator{text: `{"case_number":"C-001/23","decision":"EXEQUIBLE"}`}
	a, _, err := NewPromptAnalyzer(g).Analyze(context.Background(), AnalyzeRequest{Text: "texto", Title: "t", Model: "gemini-1.5-pro"})
	require.NoError(t, err)
	require.Equal(t, "C-001/23", a.CaseNumber)
	require.Equal(t, "static-1", a.ModelUsed)
	require.True(t, g.req.JSON)
	require.Equal(t, "gemini-1.5-pro", g.req.Model)
	require.Contains(t, g.req.Prompt, "texto")
}
