package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"juriscope/internal/blob"
	"juriscope/internal/models"
	"juriscope/internal/providers"
	"juriscope/internal/storage"
	"juriscope/internal/util"
)

const rulingText = `REPÚBLICA DE COLOMBIA
CORTE CONSTITUCIONAL
Sala Quinta de Revisión
SENTENCIA T-310/24
Expediente T-9.654.321
Magistrada Ponente: Paola Andrea Meneses Mosquera
La Sala revisa los fallos de tutela dictados dentro del proceso promovido por una comunidad indígena.
RESUELVE: REVOCAR la sentencia de instancia y TUTELAR el derecho a la consulta previa.`

type stubFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *stubFetcher) Fetch(context.Context, string) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

type stubVerifier bool

func (v stubVerifier) Verify(context.Context, string) bool { return bool(v) }

type nilAnalyzer struct{}

func (nilAnalyzer) Analyze(context.Context, providers.AnalyzeRequest) (*providers.Analysis, providers.ProviderInfo, error) {
	return nil, providers.ProviderInfo{Name: "nil"}, nil
}

type failingAnalyzer struct{ err error }

func (a failingAnalyzer) Analyze(context.Context, providers.AnalyzeRequest) (*providers.Analysis, providers.ProviderInfo, error) {
	return nil, providers.ProviderInfo{Name: "groq"}, a.err
}

// cancelingAnalyzer simulates a worker shutting down mid-call.
type cancelingAnalyzer struct{ cancel context.CancelFunc }

func (a cancelingAnalyzer) Analyze(ctx context.Context, _ providers.AnalyzeRequest) (*providers.Analysis, providers.ProviderInfo, error) {
	a.cancel()
	return nil, providers.ProviderInfo{Name: "groq"}, ctx.Err()
}

type fixture struct {
	store   *storage.Memory
	fetcher *stubFetcher
	blobs   *blob.Local
	proc    *Processor
}

func newFixture(t *testing.T, analyzer providers.Analyzer) *fixture {
	t.Helper()
	f := &fixture{store: storage.NewMemory(), fetcher: &stubFetcher{err: errors.New("offline")}}
	var err error
	f.blobs, err = blob.NewLocal(t.TempDir())
	require.NoError(t, err)
	f.proc = NewProcessor(Deps{
		Store:    f.store,
		Analyzer: analyzer,
		Fetcher:  f.fetcher,
		Verifier: stubVerifier(true),
		Blobs:    f.blobs,
	})
	return f
}

func (f *fixture) seed(t *testing.T, d models.Document) models.Document {
	t.Helper()
	if d.ExternalID == "" {
		d.ExternalID = "T-310/24"
	}
	if d.URL == "" {
		d.URL = "https://www.corteconstitucional.gov.co/relatoria/2024/T-310-24.htm"
	}
	if d.Title == "" {
		d.Title = "Consulta previa de comunidades indígenas"
	}
	require.NoError(t, f.store.CreateDocument(context.Background(), &d))
	return d
}

func TestProcessDocumentEmptyContentWithFullText(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, providers.NewMockProvider())
	d := f.seed(t, models.Document{FullTextContent: rulingText})
	require.GreaterOrEqual(t, util.RuneLen(rulingText), 250)

	out, err := f.proc.ProcessDocument(ctx, d.ID, "")
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, out.Status)
	require.Equal(t, "full_text", string(out.Source))
	require.Zero(t, f.fetcher.calls)

	got, err := f.store.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, models.AnalysisCompleted, got.AnalysisStatus)
	require.Equal(t, "T-310/24", got.CaseNumber)
	require.Equal(t, "Paola Andrea Meneses Mosquera", got.ReportingJudge)
	require.Equal(t, "T-9.654.321", got.DocketNumber)
	require.Equal(t, "mock-analyzer-v1", got.AIModel)
	require.NotEmpty(t, got.AISummary)
	require.True(t, strings.HasPrefix(got.Decision, "REVOCAR"))
	require.Equal(t, models.DocumentPending, got.Status)
}

func TestProcessDocumentKeepsValidStoredFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, providers.NewMockProvider())
	d := f.seed(t, models.Document{FullTextContent: rulingText, ReportingJudge: "Jorge Enrique Ibáñez Najar", Chamber: "No disponible"})

	_, err := f.proc.ProcessDocument(ctx, d.ID, "")
	require.NoError(t, err)
	got, err := f.store.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "Jorge Enrique Ibáñez Najar", got.ReportingJudge)
	require.NotEqual(t, "No disponible", got.Chamber)
}

func TestProcessDocumentInsufficientContentIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, providers.NewMockProvider())
	d := f.seed(t, models.Document{Content: "corto"})

	out, err := f.proc.ProcessDocument(ctx, d.ID, "")
	require.ErrorIs(t, err, util.ErrInsufficientContent)
	require.Equal(t, OutcomeFailed, out.Status)

	got, err := f.store.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, models.AnalysisFailed, got.AnalysisStatus)

	ids, err := f.proc.SelectForBatch(ctx, nil, false, 0)
	require.NoError(t, err)
	require.NotContains(t, ids, d.ID, "FAILED documents are never auto-retried")

	ids, err = f.proc.SelectForBatch(ctx, []string{d.ID}, true, 0)
	require.NoError(t, err)
	require.Equal(t, []string{d.ID}, ids)
}

func TestProcessDocumentNilAnalysisFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nilAnalyzer{})
	d := f.seed(t, models.Document{FullTextContent: rulingText})

	_, err := f.proc.ProcessDocument(ctx, d.ID, "")
	require.ErrorIs(t, err, util.ErrAnalysisFailure)
	got, _ := f.store.GetDocument(ctx, d.ID)
	require.Equal(t, models.AnalysisFailed, got.AnalysisStatus)
}

func TestProcessDocumentAnalyzerErrorFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, failingAnalyzer{err: errors.New("all providers failed: groq generate error 400: bad request")})
	d := f.seed(t, models.Document{FullTextContent: rulingText})

	_, err := f.proc.ProcessDocument(ctx, d.ID, "")
	require.ErrorIs(t, err, ErrAnalyzerFailed)
	require.ErrorIs(t, err, util.ErrAnalysisFailure)
	require.False(t, Retryable(err))

	got, err := f.store.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, models.AnalysisFailed, got.AnalysisStatus)
	require.Contains(t, got.AnalysisError, "bad request")

	ids, err := f.proc.SelectForBatch(ctx, []string{d.ID}, false, 0)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestAnalyzeCanceledIsNotAnalyzerFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newFixture(t, cancelingAnalyzer{cancel: cancel})
	d := f.seed(t, models.Document{FullTextContent: rulingText})

	_, err := f.proc.Analyze(ctx, d.ID, rulingText, "")
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrAnalyzerFailed)
	require.True(t, Retryable(err))
}

func TestExtractPersistsFetchedText(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, providers.NewMockProvider())
	f.fetcher.body, f.fetcher.err = []byte(rulingText), nil
	d := f.seed(t, models.Document{Content: "resumen breve"})

	out, err := f.proc.Extract(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, "remote_text", string(out.Source))

	got, err := f.store.GetDocument(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, util.SanitizeText(rulingText), got.FullTextContent)
	require.NotEmpty(t, got.DocumentPath)
	require.Equal(t, util.SHA256Hex([]byte(got.FullTextContent)), got.FullTextChecksum)
	require.Equal(t, models.IntegrityVerified, got.IntegrityStatus)
}

func TestSelectForBatchFiltersAndLimits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, providers.NewMockProvider())
	pending := f.seed(t, models.Document{ExternalID: "T-1/24", URL: "u1", AnalysisStatus: models.AnalysisPending})
	done := f.seed(t, models.Document{
		ExternalID: "T-2/24", URL: "u2", AnalysisStatus: models.AnalysisCompleted,
		CaseNumber: "T-2/24", ReportingJudge: "Paola Andrea Meneses", Chamber: "Sala Plena", DocketNumber: "T-1",
	})
	missing := f.seed(t, models.Document{ExternalID: "T-3/24", URL: "u3", AnalysisStatus: models.AnalysisCompleted, CaseNumber: "T-3/24"})

	ids, err := f.proc.SelectForBatch(ctx, []string{done.ID, pending.ID, missing.ID, pending.ID}, false, 0)
	require.NoError(t, err)
	require.Equal(t, []string{pending.ID, missing.ID}, ids)

	ids, err = f.proc.SelectForBatch(ctx, []string{done.ID, pending.ID, missing.ID}, true, 2)
	require.NoError(t, err)
	require.Equal(t, []string{done.ID, pending.ID}, ids)
}
