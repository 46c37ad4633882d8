package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"juriscope/internal/models"
	"juriscope/internal/util"
)

const articleColumns = `id::text, COALESCE(source_document_id::text,''), title, slug, content, COALESCE(summary,''), status,
  is_general, is_latest_news, is_weekly_highlight, COALESCE(selected_entity,''), general_position, published_at,
  created_at, updated_at`

func (r *pgRepo) CreateArticle(ctx context.Context, a *models.Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = models.ArticleDraft
	}
	err := r.q.QueryRow(ctx, `
INSERT INTO articles (id, source_document_id, title, slug, content, summary, status, is_general, is_latest_news,
  is_weekly_highlight, selected_entity, general_position, published_at)
VALUES ($1, NULLIF($2,'')::uuid, $3, $4, $5, NULLIF($6,''), $7, $8, $9, $10, NULLIF($11,''), $12, $13)
RETURNING created_at, updated_at`, articleArgs(*a)...).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert article: %w", mapError(err))
	}
	return nil
}

func (r *pgRepo) GetArticle(ctx context.Context, id string) (models.Article, error) {
	if !validID(id) {
		return models.Article{}, fmt.Errorf("get article %s: %w", id, util.ErrNotFound)
	}
	a, err := scanArticle(r.q.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id=$1`+r.forUpdate(), id))
	if err != nil {
		return models.Article{}, fmt.Errorf("get article %s: %w", id, mapError(err))
	}
	return a, nil
}

func (r *pgRepo) GetArticleBySource(ctx context.Context, documentID string) (models.Article, bool, error) {
	if !validID(documentID) {
		return models.Article{}, false, nil
	}
	a, err := scanArticle(r.q.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE source_document_id=$1`+r.forUpdate(), documentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Article{}, false, nil
	}
	if err != nil {
		return models.Article{}, false, fmt.Errorf("get article by source %s: %w", documentID, mapError(err))
	}
	return a, true, nil
}

func (r *pgRepo) UpdateArticle(ctx context.Context, a models.Article) error {
	if !validID(a.ID) {
		return fmt.Errorf("update article %s: %w", a.ID, util.ErrNotFound)
	}
	tag, err := r.q.Exec(ctx, `
UPDATE articles SET source_document_id=NULLIF($2,'')::uuid, title=$3, slug=$4, content=$5, summary=NULLIF($6,''),
  status=$7, is_general=$8, is_latest_news=$9, is_weekly_highlight=$10, selected_entity=NULLIF($11,''),
  general_position=$12, published_at=$13, updated_at=NOW()
WHERE id=$1`, articleArgs(a)...)
	if err != nil {
		return fmt.Errorf("update article %s: %w", a.ID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update article %s: %w", a.ID, util.ErrNotFound)
	}
	return nil
}

func (r *pgRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE slug=$1 AND id::text <> $2)`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", mapError(err))
	}
	return exists, nil
}

func (r *pgRepo) ListGeneralArticles(ctx context.Context, excludeID string) ([]models.Article, error) {
	rows, err := r.q.Query(ctx, `SELECT `+articleColumns+` FROM articles
WHERE is_general AND general_position IS NOT NULL AND id::text <> $1
ORDER BY general_position ASC, id ASC`+r.forUpdate(), excludeID)
	if err != nil {
		return nil, fmt.Errorf("list general articles: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]models.Article, 0, models.GeneralSlots)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate general articles: %w", mapError(err))
	}
	return out, nil
}

func (r *pgRepo) SetGeneralPlacement(ctx context.Context, id string, isGeneral bool, position *int) error {
	if !validID(id) {
		return fmt.Errorf("set general placement %s: %w", id, util.ErrNotFound)
	}
	tag, err := r.q.Exec(ctx, `UPDATE articles SET is_general=$2, general_position=$3, updated_at=NOW() WHERE id=$1`, id, isGeneral, position)
	if err != nil {
		return fmt.Errorf("set general placement %s: %w", id, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set general placement %s: %w", id, util.ErrNotFound)
	}
	return nil
}

func articleArgs(a models.Article) []any {
	return []any{
		a.ID, a.SourceDocumentID, a.Title, a.Slug, a.Content, a.Summary, string(a.Status), a.IsGeneral, a.IsLatestNews,
		a.IsWeeklyHighlight, a.SelectedEntity, a.GeneralPosition, a.PublishedAt,
	}
}

func scanArticle(row pgx.Row) (models.Article, error) {
	var (
		a      models.Article
		status string
	)
	err := row.Scan(&a.ID, &a.SourceDocumentID, &a.Title, &a.Slug, &a.Content, &a.Summary, &status, &a.IsGeneral,
		&a.IsLatestNews, &a.IsWeeklyHighlight, &a.SelectedEntity, &a.GeneralPosition, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Article{}, err
	}
	a.Status = models.ArticleStatus(status)
	return a, nil
}
