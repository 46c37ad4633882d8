package providers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"juriscope/internal/config"
	"juriscope/internal/logging"
	"juriscope/internal/metrics"
)

var knownProviders = map[string]struct{}{
	"mock": {}, "openai": {}, "groq": {}, "ollama": {}, "gemini": {},
}

type NamedAnalyzer struct {
	Ref      ProviderRef
	Analyzer Analyzer
}

// configured is implemented by providers that need credentials.
type configured interface {
	Configured() bool
}

func (o *OpenAIProvider) Configured() bool { return o.apiKey != "" }
func (g *GroqProvider) Configured() bool   { return g.apiKey != "" }
func (g *GeminiProvider) Configured() bool { return g.apiKey != "" }

// Manager is an Analyzer that routes across the configured providers, failing
// over on quota, rate and transient errors.
type Manager struct {
	analyzers    []NamedAnalyzer
	defaultModel string
	cooldown     time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time

	mu     sync.Mutex
	parked map[string]time.Time
}

type Option func(*Manager)

func WithMetrics(m *metrics.Metrics) Option { return func(mg *Manager) { mg.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(mg *Manager) { mg.logger = l } }

func WithCooldown(d time.Duration) Option { return func(mg *Manager) { mg.cooldown = d } }

func WithDefaultModel(model string) Option { return func(mg *Manager) { mg.defaultModel = model } }

func withClock(now func() time.Time) Option { return func(mg *Manager) { mg.now = now } }

func NewManager(cfg config.Config, opts ...Option) (*Manager, error) {
	var named []NamedAnalyzer
	logger := slog.Default()
	for _, ref := range ParseProviderList(cfg.AnalyzerProviders) {
		a, err := buildAnalyzer(ref)
		if err != nil {
			return nil, err
		}
		if c, ok := a.(configured); ok && !c.Configured() {
			logger.Warn("analyzer provider skipped: missing api key", "provider", ref.Raw)
			continue
		}
		named = append(named, NamedAnalyzer{Ref: ref, Analyzer: a})
	}
	opts = append([]Option{
		WithDefaultModel(cfg.DefaultModel),
		WithCooldown(time.Duration(cfg.ProviderCooldownSecs) * time.Second),
	}, opts...)
	return NewManagerWith(named, opts...), nil
}

// NewManagerWith builds a manager over explicit analyzers. An empty list
// falls back to the mock analyzer.
func NewManagerWith(analyzers []NamedAnalyzer, opts ...Option) *Manager {
	if len(analyzers) == 0 {
		analyzers = []NamedAnalyzer{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Analyzer: NewMockProvider()}}
	}
	m := &Manager{
		analyzers: analyzers,
		now:       time.Now,
		parked:    make(map[string]time.Time),
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = logging.OrDefault(m.logger)
	return m
}

func (m *Manager) Count() int { return len(m.analyzers) }

// Refs lists providers in the order they would be tried without a hint.
func (m *Manager) Refs() []ProviderRef {
	out := make([]ProviderRef, 0, len(m.analyzers))
	for _, i := range m.order("") {
		out = append(out, m.analyzers[i].Ref)
	}
	return out
}

func (m *Manager) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, ProviderInfo, error) {
	hint := strings.TrimSpace(req.Model)
	if hint == "" {
		hint = m.defaultModel
	}
	order := m.order(hint)
	var (
		lastErr  error
		lastInfo ProviderInfo
	)
	for _, idx := range order {
		na := m.analyzers[idx]
		if m.isParked(na.Ref.Raw) && len(order) > 1 {
			continue
		}
		r := req
		r.Model = ""
		if matchesHint(na.Ref, hint) {
			r.Model = hint
		}
		a, info, err := na.Analyzer.Analyze(ctx, r)
		lastInfo = info
		if ctx.Err() != nil {
			return nil, info, ctx.Err()
		}
		if err != nil {
			t := ClassifyError(err)
			m.metrics.ProviderCall(na.Ref.Name, string(t))
			m.logger.Warn("analyzer call failed", "provider", na.Ref.Raw, "class", t, "error", err)
			if Cooldown(t) {
				m.park(na.Ref.Raw)
			}
			lastErr = err
			if !Failover(t) {
				return nil, info, err
			}
			continue
		}
		if a == nil {
			m.metrics.ProviderCall(na.Ref.Name, "empty")
			lastErr = nil
			continue
		}
		m.metrics.ProviderCall(na.Ref.Name, "ok")
		if a.ModelUsed == "" {
			a.ModelUsed = info.Model
		}
		return a, info, nil
	}
	if lastErr != nil {
		return nil, lastInfo, fmt.Errorf("all analyzer providers failed: %w", lastErr)
	}
	return nil, lastInfo, nil
}

// order puts providers matching the hint first, then real providers, then mock.
func (m *Manager) order(hint string) []int {
	n := len(m.analyzers)
	out := make([]int, 0, n)
	seen := make(map[int]bool, n)
	add := func(keep func(i int) bool) {
		for i := 0; i < n; i++ {
			if !seen[i] && keep(i) {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	if hint != "" {
		add(func(i int) bool { return matchesHint(m.analyzers[i].Ref, hint) })
	}
	add(func(i int) bool { return !strings.EqualFold(m.analyzers[i].Ref.Name, "mock") })
	add(func(int) bool { return true })
	return out
}

// matchesHint reports whether the hint names ref directly or a model family
// ref serves.
func matchesHint(ref ProviderRef, hint string) bool {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" {
		return false
	}
	name := strings.ToLower(ref.Name)
	if h == strings.ToLower(ref.Raw) || h == name {
		return true
	}
	switch {
	case strings.HasPrefix(h, "gpt"), strings.HasPrefix(h, "o1"), strings.HasPrefix(h, "o3"):
		return name == "openai"
	case strings.HasPrefix(h, "gemini"):
		return name == "gemini"
	case strings.HasPrefix(h, "llama"), strings.HasPrefix(h, "mixtral"), strings.HasPrefix(h, "gemma"), strings.HasPrefix(h, "qwen"):
		return name == "groq" || name == "ollama"
	}
	return false
}

func (m *Manager) isParked(raw string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.parked[raw]
	if !ok {
		return false
	}
	if m.now().After(until) {
		delete(m.parked, raw)
		return false
	}
	return true
}

func (m *Manager) park(raw string) {
	if m.cooldown <= 0 {
		return
	}
	m.mu.Lock()
	m.parked[raw] = m.now().Add(m.cooldown)
	m.mu.Unlock()
}

func buildAnalyzer(ref ProviderRef) (Analyzer, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "openai":
		return NewPromptAnalyzer(NewOpenAIProvider(ref.KeyAlias)), nil
	case "groq":
		return NewPromptAnalyzer(NewGroqProvider(ref.KeyAlias)), nil
	case "ollama":
		return NewPromptAnalyzer(NewOllamaProvider(ref.KeyAlias)), nil
	case "gemini":
		return NewPromptAnalyzer(NewGeminiProvider(ref.KeyAlias)), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
