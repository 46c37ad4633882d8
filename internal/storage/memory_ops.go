package storage

import (
	"context"

	"juriscope/internal/models"
)

// Single operations outside WithTx run against the live state under the store mutex.

func (m *Memory) CreateDocument(ctx context.Context, d *models.Document) error {
	return m.do(func(t *memTx) error { return t.CreateDocument(ctx, d) })
}

func (m *Memory) GetDocument(ctx context.Context, id string) (models.Document, error) {
	var v models.Document
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.GetDocument(ctx, id)
		return err
	})
	return v, err
}

func (m *Memory) UpdateDocument(ctx context.Context, d models.Document) error {
	return m.do(func(t *memTx) error { return t.UpdateDocument(ctx, d) })
}

func (m *Memory) FindDuplicate(ctx context.Context, url, externalID, title string) (models.Document, bool, error) {
	var v models.Document
	var ok bool
	err := m.do(func(t *memTx) error {
		var err error
		v, ok, err = t.FindDuplicate(ctx, url, externalID, title)
		return err
	})
	return v, ok, err
}

func (m *Memory) ListDocuments(ctx context.Context, ids []string) ([]models.Document, error) {
	var v []models.Document
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.ListDocuments(ctx, ids)
		return err
	})
	return v, err
}

func (m *Memory) ListForReprocessing(ctx context.Context, limit int) ([]models.Document, error) {
	var v []models.Document
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.ListForReprocessing(ctx, limit)
		return err
	})
	return v, err
}

func (m *Memory) CreateArticle(ctx context.Context, a *models.Article) error {
	return m.do(func(t *memTx) error { return t.CreateArticle(ctx, a) })
}

func (m *Memory) GetArticle(ctx context.Context, id string) (models.Article, error) {
	var v models.Article
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.GetArticle(ctx, id)
		return err
	})
	return v, err
}

func (m *Memory) GetArticleBySource(ctx context.Context, documentID string) (models.Article, bool, error) {
	var v models.Article
	var ok bool
	err := m.do(func(t *memTx) error {
		var err error
		v, ok, err = t.GetArticleBySource(ctx, documentID)
		return err
	})
	return v, ok, err
}

func (m *Memory) UpdateArticle(ctx context.Context, a models.Article) error {
	return m.do(func(t *memTx) error { return t.UpdateArticle(ctx, a) })
}

func (m *Memory) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var v bool
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.SlugExists(ctx, slug, excludeID)
		return err
	})
	return v, err
}

func (m *Memory) ListGeneralArticles(ctx context.Context, excludeID string) ([]models.Article, error) {
	var v []models.Article
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.ListGeneralArticles(ctx, excludeID)
		return err
	})
	return v, err
}

func (m *Memory) SetGeneralPlacement(ctx context.Context, id string, isGeneral bool, position *int) error {
	return m.do(func(t *memTx) error { return t.SetGeneralPlacement(ctx, id, isGeneral, position) })
}

func (m *Memory) AppendAudit(ctx context.Context, entry models.AuditLog) error {
	return m.do(func(t *memTx) error { return t.AppendAudit(ctx, entry) })
}

func (m *Memory) ListAudit(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	var v []models.AuditLog
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.ListAudit(ctx, entityType, entityID)
		return err
	})
	return v, err
}

func (m *Memory) AddImage(ctx context.Context, img *models.GeneratedImage) error {
	return m.do(func(t *memTx) error { return t.AddImage(ctx, img) })
}

func (m *Memory) ListImages(ctx context.Context, documentID string) ([]models.GeneratedImage, error) {
	var v []models.GeneratedImage
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.ListImages(ctx, documentID)
		return err
	})
	return v, err
}

func (m *Memory) TransferImages(ctx context.Context, documentID, articleID string) (int, error) {
	var v int
	err := m.do(func(t *memTx) error {
		var err error
		v, err = t.TransferImages(ctx, documentID, articleID)
		return err
	})
	return v, err
}

// LockGeneralSection is a no-op: WithTx already serializes writers.
func (m *Memory) LockGeneralSection(ctx context.Context) error { return nil }
