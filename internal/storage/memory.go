package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"juriscope/internal/models"
	"juriscope/internal/util"
)

// Memory is an in-process Store. Transactions hold the store mutex and work on
// a copy of the state that replaces the original only on commit.
type Memory struct {
	mu   sync.Mutex
	st   *memState
	last time.Time
}

type memState struct {
	docs     map[string]models.Document
	articles map[string]models.Article
	audit    []models.AuditLog
	images   map[string]models.GeneratedImage
}

func NewMemory() *Memory {
	return &Memory{
		st: &memState{
			docs:     map[string]models.Document{},
			articles: map[string]models.Article{},
			images:   map[string]models.GeneratedImage{},
		},
	}
}

// tick returns strictly increasing timestamps so creation order is stable.
// Callers hold m.mu.
func (m *Memory) tick() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(m.last) {
		t = m.last.Add(time.Microsecond)
	}
	m.last = t
	return t
}

func (m *Memory) Close() {}

func (m *Memory) WithTx(ctx context.Context, fn func(Repo) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.st.clone()
	if err := fn(&memTx{st: work, now: m.tick}); err != nil {
		return err
	}
	if err := work.checkGeneralPositions(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	m.st = work
	return nil
}

// do runs a single operation against the live state.
func (m *Memory) do(fn func(*memTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{st: m.st, now: m.tick})
}

func (s *memState) clone() *memState {
	c := &memState{
		docs:     make(map[string]models.Document, len(s.docs)),
		articles: make(map[string]models.Article, len(s.articles)),
		audit:    append([]models.AuditLog(nil), s.audit...),
		images:   make(map[string]models.GeneratedImage, len(s.images)),
	}
	for k, v := range s.docs {
		c.docs[k] = v
	}
	for k, v := range s.articles {
		if v.GeneralPosition != nil {
			v.GeneralPosition = models.IntPtr(*v.GeneralPosition)
		}
		c.articles[k] = v
	}
	for k, v := range s.images {
		c.images[k] = v
	}
	return c
}

func (s *memState) checkGeneralPositions() error {
	seen := map[int]string{}
	for id, a := range s.articles {
		if a.GeneralPosition == nil {
			continue
		}
		p := *a.GeneralPosition
		if other, dup := seen[p]; dup {
			return fmt.Errorf("general position %d held by %s and %s: %w", p, other, id, util.ErrConcurrentModification)
		}
		seen[p] = id
	}
	return nil
}

type memTx struct {
	st  *memState
	now func() time.Time
}

func (t *memTx) CreateDocument(ctx context.Context, d *models.Document) error {
	for _, o := range t.st.docs {
		if o.URL == d.URL || o.ExternalID == d.ExternalID {
			return fmt.Errorf("insert document: %w: %s", util.ErrDuplicateDocument, d.ExternalID)
		}
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	prepareDocument(d)
	d.CreatedAt = t.now()
	d.UpdatedAt = d.CreatedAt
	t.st.docs[d.ID] = *d
	return nil
}

func (t *memTx) GetDocument(ctx context.Context, id string) (models.Document, error) {
	d, ok := t.st.docs[id]
	if !ok {
		return models.Document{}, fmt.Errorf("get document %s: %w", id, util.ErrNotFound)
	}
	return d, nil
}

func (t *memTx) UpdateDocument(ctx context.Context, d models.Document) error {
	old, ok := t.st.docs[d.ID]
	if !ok {
		return fmt.Errorf("update document %s: %w", d.ID, util.ErrNotFound)
	}
	for id, o := range t.st.docs {
		if id != d.ID && (o.URL == d.URL || o.ExternalID == d.ExternalID) {
			return fmt.Errorf("update document %s: %w", d.ID, util.ErrDuplicateDocument)
		}
	}
	prepareDocument(&d)
	d.CreatedAt = old.CreatedAt
	d.UpdatedAt = t.now()
	t.st.docs[d.ID] = d
	return nil
}

func (t *memTx) FindDuplicate(ctx context.Context, url, externalID, title string) (models.Document, bool, error) {
	match := func(pred func(models.Document) bool) (models.Document, bool) {
		for _, d := range t.sortedDocs() {
			if pred(d) {
				return d, true
			}
		}
		return models.Document{}, false
	}
	if url != "" {
		if d, ok := match(func(d models.Document) bool { return d.URL == url }); ok {
			return d, true, nil
		}
	}
	if externalID != "" {
		if d, ok := match(func(d models.Document) bool { return d.ExternalID == externalID }); ok {
			return d, true, nil
		}
	}
	if title != "" {
		if d, ok := match(func(d models.Document) bool { return d.Title == title }); ok {
			return d, true, nil
		}
	}
	return models.Document{}, false, nil
}

func (t *memTx) ListDocuments(ctx context.Context, ids []string) ([]models.Document, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]models.Document, 0, len(ids))
	for _, d := range t.sortedDocs() {
		if _, ok := want[d.ID]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (t *memTx) ListForReprocessing(ctx context.Context, limit int) ([]models.Document, error) {
	out := make([]models.Document, 0)
	for _, d := range t.sortedDocs() {
		if !NeedsReprocessing(d) {
			continue
		}
		out = append(out, d)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (t *memTx) sortedDocs() []models.Document {
	out := make([]models.Document, 0, len(t.st.docs))
	for _, d := range t.st.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (t *memTx) CreateArticle(ctx context.Context, a *models.Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := t.checkArticleKeys(*a); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	if a.Status == "" {
		a.Status = models.ArticleDraft
	}
	a.CreatedAt = t.now()
	a.UpdatedAt = a.CreatedAt
	t.st.articles[a.ID] = copyArticle(*a)
	return nil
}

func (t *memTx) GetArticle(ctx context.Context, id string) (models.Article, error) {
	a, ok := t.st.articles[id]
	if !ok {
		return models.Article{}, fmt.Errorf("get article %s: %w", id, util.ErrNotFound)
	}
	return copyArticle(a), nil
}

func (t *memTx) GetArticleBySource(ctx context.Context, documentID string) (models.Article, bool, error) {
	for _, a := range t.st.articles {
		if documentID != "" && a.SourceDocumentID == documentID {
			return copyArticle(a), true, nil
		}
	}
	return models.Article{}, false, nil
}

func (t *memTx) UpdateArticle(ctx context.Context, a models.Article) error {
	old, ok := t.st.articles[a.ID]
	if !ok {
		return fmt.Errorf("update article %s: %w", a.ID, util.ErrNotFound)
	}
	if err := t.checkArticleKeys(a); err != nil {
		return fmt.Errorf("update article %s: %w", a.ID, err)
	}
	a.CreatedAt = old.CreatedAt
	a.UpdatedAt = t.now()
	t.st.articles[a.ID] = copyArticle(a)
	return nil
}

func (t *memTx) checkArticleKeys(a models.Article) error {
	for id, o := range t.st.articles {
		if id == a.ID {
			continue
		}
		if o.Slug == a.Slug {
			return fmt.Errorf("%w: slug %q taken", util.ErrConflict, a.Slug)
		}
		if a.SourceDocumentID != "" && o.SourceDocumentID == a.SourceDocumentID {
			return fmt.Errorf("%w: document %s already has article %s", util.ErrConflict, a.SourceDocumentID, id)
		}
	}
	if a.GeneralPosition != nil && !a.IsGeneral {
		return fmt.Errorf("%w: position set on non-general article", util.ErrConflict)
	}
	return nil
}

func (t *memTx) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	for id, a := range t.st.articles {
		if id != excludeID && a.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) ListGeneralArticles(ctx context.Context, excludeID string) ([]models.Article, error) {
	out := make([]models.Article, 0, models.GeneralSlots)
	for id, a := range t.st.articles {
		if a.IsGeneral && a.GeneralPosition != nil && id != excludeID {
			out = append(out, copyArticle(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return generalLess(out[i], out[j]) })
	return out, nil
}

func generalLess(a, b models.Article) bool {
	switch {
	case a.GeneralPosition == nil && b.GeneralPosition == nil:
		return a.ID < b.ID
	case a.GeneralPosition == nil:
		return false
	case b.GeneralPosition == nil:
		return true
	case *a.GeneralPosition != *b.GeneralPosition:
		return *a.GeneralPosition < *b.GeneralPosition
	}
	return a.ID < b.ID
}

func (t *memTx) SetGeneralPlacement(ctx context.Context, id string, isGeneral bool, position *int) error {
	a, ok := t.st.articles[id]
	if !ok {
		return fmt.Errorf("set general placement %s: %w", id, util.ErrNotFound)
	}
	if position != nil && (!isGeneral || *position < 1 || *position > models.GeneralSlots) {
		return fmt.Errorf("set general placement %s: position %d: %w", id, *position, util.ErrConflict)
	}
	a.IsGeneral = isGeneral
	a.GeneralPosition = nil
	if position != nil {
		a.GeneralPosition = models.IntPtr(*position)
	}
	a.UpdatedAt = t.now()
	t.st.articles[id] = a
	return nil
}

func (t *memTx) LockGeneralSection(ctx context.Context) error { return nil }

func (t *memTx) AppendAudit(ctx context.Context, e models.AuditLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = t.now()
	t.st.audit = append(t.st.audit, e)
	return nil
}

func (t *memTx) ListAudit(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	out := make([]models.AuditLog, 0)
	for _, e := range t.st.audit {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (t *memTx) AddImage(ctx context.Context, img *models.GeneratedImage) error {
	if _, ok := t.st.docs[img.DocumentID]; !ok {
		return fmt.Errorf("insert generated image: document %s: %w", img.DocumentID, util.ErrNotFound)
	}
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	img.CreatedAt = t.now()
	t.st.images[img.ID] = *img
	return nil
}

func (t *memTx) ListImages(ctx context.Context, documentID string) ([]models.GeneratedImage, error) {
	out := make([]models.GeneratedImage, 0)
	for _, img := range t.st.images {
		if img.DocumentID == documentID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return strings.Compare(out[i].ID, out[j].ID) < 0
	})
	return out, nil
}

func (t *memTx) TransferImages(ctx context.Context, documentID, articleID string) (int, error) {
	if _, ok := t.st.articles[articleID]; !ok {
		return 0, fmt.Errorf("transfer images: article %s: %w", articleID, util.ErrNotFound)
	}
	n := 0
	for id, img := range t.st.images {
		if img.DocumentID == documentID {
			img.ArticleID = articleID
			t.st.images[id] = img
			n++
		}
	}
	return n, nil
}

func copyArticle(a models.Article) models.Article {
	if a.GeneralPosition != nil {
		a.GeneralPosition = models.IntPtr(*a.GeneralPosition)
	}
	return a
}
