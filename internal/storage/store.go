package storage

import (
	"context"

	"juriscope/internal/models"
)

// Repo is the set of persistence operations the pipeline runs, either directly
// on a Store or inside one of its transactions.
type Repo interface {
	CreateDocument(ctx context.Context, d *models.Document) error
	GetDocument(ctx context.Context, id string) (models.Document, error)
	UpdateDocument(ctx context.Context, d models.Document) error
	// FindDuplicate matches by url, external id or exact title, in that order.
	FindDuplicate(ctx context.Context, url, externalID, title string) (models.Document, bool, error)
	ListDocuments(ctx context.Context, ids []string) ([]models.Document, error)
	ListForReprocessing(ctx context.Context, limit int) ([]models.Document, error)

	CreateArticle(ctx context.Context, a *models.Article) error
	GetArticle(ctx context.Context, id string) (models.Article, error)
	GetArticleBySource(ctx context.Context, documentID string) (models.Article, bool, error)
	UpdateArticle(ctx context.Context, a models.Article) error
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	// ListGeneralArticles returns the positioned general articles except
	// excludeID, ordered by position then id. A flagged row with no position
	// is not part of the section.
	ListGeneralArticles(ctx context.Context, excludeID string) ([]models.Article, error)
	SetGeneralPlacement(ctx context.Context, id string, isGeneral bool, position *int) error
	// LockGeneralSection serializes writers of the general section until the
	// enclosing transaction ends.
	LockGeneralSection(ctx context.Context) error

	AppendAudit(ctx context.Context, entry models.AuditLog) error
	ListAudit(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error)

	AddImage(ctx context.Context, img *models.GeneratedImage) error
	ListImages(ctx context.Context, documentID string) ([]models.GeneratedImage, error)
	TransferImages(ctx context.Context, documentID, articleID string) (int, error)
}

type Store interface {
	Repo
	// WithTx runs fn in one transaction; fn's error rolls everything back.
	WithTx(ctx context.Context, fn func(Repo) error) error
	Close()
}
