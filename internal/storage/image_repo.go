package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"juriscope/internal/models"
	"juriscope/internal/util"
)

func (r *pgRepo) AddImage(ctx context.Context, img *models.GeneratedImage) error {
	if !validID(img.DocumentID) {
		return fmt.Errorf("insert generated image: document %s: %w", img.DocumentID, util.ErrNotFound)
	}
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	err := r.q.QueryRow(ctx, `
INSERT INTO generated_images(id, document_id, article_id, url, prompt)
VALUES ($1, $2, NULLIF($3,'')::uuid, $4, NULLIF($5,''))
RETURNING created_at`, img.ID, img.DocumentID, img.ArticleID, img.URL, img.Prompt).Scan(&img.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert generated image: %w", mapError(err))
	}
	return nil
}

func (r *pgRepo) ListImages(ctx context.Context, documentID string) ([]models.GeneratedImage, error) {
	if !validID(documentID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
SELECT id::text, document_id::text, COALESCE(article_id::text,''), url, COALESCE(prompt,''), created_at
FROM generated_images WHERE document_id=$1 ORDER BY created_at, id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list generated images: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]models.GeneratedImage, 0)
	for rows.Next() {
		var img models.GeneratedImage
		if err := rows.Scan(&img.ID, &img.DocumentID, &img.ArticleID, &img.URL, &img.Prompt, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generated image: %w", err)
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generated images: %w", err)
	}
	return out, nil
}

func (r *pgRepo) TransferImages(ctx context.Context, documentID, articleID string) (int, error) {
	if !validID(documentID) || !validID(articleID) {
		return 0, fmt.Errorf("transfer images: %w", util.ErrNotFound)
	}
	tag, err := r.q.Exec(ctx, `UPDATE generated_images SET article_id=$2 WHERE document_id=$1`, documentID, articleID)
	if err != nil {
		return 0, fmt.Errorf("transfer images: %w", mapError(err))
	}
	return int(tag.RowsAffected()), nil
}
