package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"juriscope/internal/util"
)

type fakeAnalyzer struct {
	name  string
	err   error
	nilA  bool
	calls int
	model string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req AnalyzeRequest) (*Analysis, ProviderInfo, error) {
	f.calls++
	f.model = req.Model
	info := ProviderInfo{Name: f.name, Model: f.name + "-model"}
	if f.err != nil {
		return nil, info, f.err
	}
	if f.nilA {
		return nil, info, nil
	}
	return &Analysis{Summary: "from " + f.name}, info, nil
}

func named(fs ...*fakeAnalyzer) []NamedAnalyzer {
	out := make([]NamedAnalyzer, 0, len(fs))
	for _, f := range fs {
		out = append(out, NamedAnalyzer{Ref: ProviderRef{Raw: f.name, Name: f.name}, Analyzer: f})
	}
	return out
}

func TestManagerPrefersRealProvidersOverMock(t *testing.T) {
	mock := &fakeAnalyzer{name: "mock"}
	real := &fakeAnalyzer{name: "openai"}
	m := NewManagerWith(named(mock, real))

	a, info, err := m.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	require.NoError(t, err)
	require.Equal(t, "from openai", a.Summary)
	require.Equal(t, "openai-model", a.ModelUsed)
	require.Equal(t, "openai", info.Name)
	require.Zero(t, mock.calls)
}

func TestManagerFailsOverOnRateLimitAndParks(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := &fakeAnalyzer{name: "gemini", err: fmt.Errorf("call: %w", util.ErrRateLimited)}
	second := &fakeAnalyzer{name: "openai"}
	m := NewManagerWith(named(first, second), WithCooldown(time.Minute), withClock(func() time.Time { return now }))

	a, _, err := m.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	require.NoError(t, err)
	require.Equal(t, "from openai", a.Summary)

	_, _, err = m.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	require.NoError(t, err)
	require.Equal(t, 1, first.calls, "parked provider must be skipped during cooldown")

	now = now.Add(2 * time.Minute)
	_, _, err = m.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	require.NoError(t, err)
	require.Equal(t, 2, first.calls)
}

func TestManagerStopsOnPermanentError(t *testing.T) {
	first := &fakeAnalyzer{name: "gemini", err: fmt.Errorf("bad: %w", util.ErrPermanent)}
	second := &fakeAnalyzer{name: "openai"}
	m := NewManagerWith(named(first, second))

	_, _, err := m.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	require.True(t, errors.Is(err, util.ErrPermanent))
	require.Zero(t, second.calls)
}

func TestManagerAllFailedWrapsLastError(t *testing.T) {
	a := &fakeAnalyzer{name: "gemini", err: fmt.Errorf("x: %w", util.ErrTransient)}
	b := &fakeAnalyzer{name: "openai", err: fmt.Errorf("y: %w", util.ErrTransient)}
	m := NewManagerWith(named(a, b))

	_, _, err := m.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	require.ErrorIs(t, err, util.ErrTransient)
	require.Contains(t, err.Error(), "all analyzer providers failed")
}

func TestManagerNilAnalysisMovesOn(t *testing.T) {
	a := &fakeAnalyzer{name: "gemini", nilA: true}
	b := &fakeAnalyzer{name: "openai", nilA: true}
	m := NewManagerWith(named(a, b))

	got, _, err := m.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	require.NoError(t, err)
	require.Nil(t, got)
	require.Equal(t, 1, b.calls)
}

func TestManagerRoutesModelHint(t *testing.T) {
	g := &fakeAnalyzer{name: "gemini"}
	o := &fakeAnalyzer{name: "openai"}
	m := NewManagerWith(named(g, o))

	a, _, err := m.Analyze(context.Background(), AnalyzeRequest{Text: "x", Model: "gpt-4o"})
	require.NoError(t, err)
	require.Equal(t, "from openai", a.Summary)
	require.Equal(t, "gpt-4o", o.model)
	require.Zero(t, g.calls)

	m = NewManagerWith(named(g, o), WithDefaultModel("openai"))
	_, _, err = m.Analyze(context.Background(), AnalyzeRequest{Text: "x"})
	require.NoError(t, err)
	require.Equal(t, 2, o.calls)
}

func TestManagerEmptyFallsBackToMock(t *testing.T) {
	m := NewManagerWith(nil)
	require.Equal(t, 1, m.Count())
	require.Equal(t, "mock", m.Refs()[0].Name)
}
