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

// prepareDocument applies write-time rules shared by every store.
func prepareDocument(d *models.Document) {
	d.Content = util.TruncateRunes(util.SanitizeText(d.Content), models.MaxContentRunes)
	d.FullTextContent = util.SanitizeText(d.FullTextContent)
	if d.Status == "" {
		d.Status = models.DocumentPending
	}
	if d.IntegrityStatus == "" {
		d.IntegrityStatus = models.IntegrityUnverified
	}
	if d.SentenceType == "" && d.ExternalID != "" {
		d.SentenceType = models.SentenceTypeFromID(d.ExternalID)
	}
}

func (r *pgRepo) CreateDocument(ctx context.Context, d *models.Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	prepareDocument(d)
	err := r.q.QueryRow(ctx, `
INSERT INTO documents (id, external_id, url, title, court, sentence_type, published_at, content, full_text_content,
  document_path, case_number, reporting_judge, chamber, docket_number, primary_topic, ai_summary, decision, ai_model,
  status, analysis_status, analysis_error, analyzed_at, file_checksum, content_checksum, full_text_checksum,
  integrity_status, integrity_verified_at, curated_by, curated_at)
VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), $7, NULLIF($8,''), NULLIF($9,''),
  NULLIF($10,''), NULLIF($11,''), NULLIF($12,''), NULLIF($13,''), NULLIF($14,''), NULLIF($15,''), NULLIF($16,''), NULLIF($17,''), NULLIF($18,''),
  $19, NULLIF($20,''), NULLIF($21,''), $22, NULLIF($23,''), NULLIF($24,''), NULLIF($25,''),
  $26, $27, NULLIF($28,''), $29)
RETURNING created_at, updated_at`, documentArgs(*d)...).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", mapError(err))
	}
	return nil
}

func (r *pgRepo) GetDocument(ctx context.Context, id string) (models.Document, error) {
	if !validID(id) {
		return models.Document{}, fmt.Errorf("get document %s: %w", id, util.ErrNotFound)
	}
	row := r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id=$1`+r.forUpdate(), id)
	d, err := scanDocument(row)
	if err != nil {
		return models.Document{}, fmt.Errorf("get document %s: %w", id, mapError(err))
	}
	return d, nil
}

func (r *pgRepo) UpdateDocument(ctx context.Context, d models.Document) error {
	if !validID(d.ID) {
		return fmt.Errorf("update document %s: %w", d.ID, util.ErrNotFound)
	}
	prepareDocument(&d)
	tag, err := r.q.Exec(ctx, `
UPDATE documents SET external_id=$2, url=$3, title=$4, court=NULLIF($5,''), sentence_type=NULLIF($6,''), published_at=$7,
  content=NULLIF($8,''), full_text_content=NULLIF($9,''), document_path=NULLIF($10,''), case_number=NULLIF($11,''),
  reporting_judge=NULLIF($12,''), chamber=NULLIF($13,''), docket_number=NULLIF($14,''), primary_topic=NULLIF($15,''),
  ai_summary=NULLIF($16,''), decision=NULLIF($17,''), ai_model=NULLIF($18,''), status=$19, analysis_status=NULLIF($20,''),
  analysis_error=NULLIF($21,''), analyzed_at=$22, file_checksum=NULLIF($23,''), content_checksum=NULLIF($24,''),
  full_text_checksum=NULLIF($25,''), integrity_status=$26, integrity_verified_at=$27, curated_by=NULLIF($28,''),
  curated_at=$29, updated_at=NOW()
WHERE id=$1`, documentArgs(d)...)
	if err != nil {
		return fmt.Errorf("update document %s: %w", d.ID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update document %s: %w", d.ID, util.ErrNotFound)
	}
	return nil
}

func (r *pgRepo) FindDuplicate(ctx context.Context, url, externalID, title string) (models.Document, bool, error) {
	row := r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents
WHERE ($1 <> '' AND url=$1) OR ($2 <> '' AND external_id=$2) OR ($3 <> '' AND title=$3)
ORDER BY CASE WHEN url=$1 THEN 0 WHEN external_id=$2 THEN 1 ELSE 2 END
LIMIT 1`, url, externalID, title)
	d, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Document{}, false, nil
	}
	if err != nil {
		return models.Document{}, false, fmt.Errorf("find duplicate document: %w", mapError(err))
	}
	return d, true, nil
}

func (r *pgRepo) ListDocuments(ctx context.Context, ids []string) ([]models.Document, error) {
	rows, err := r.q.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE id::text = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", mapError(err))
	}
	return collectDocuments(rows)
}

func (r *pgRepo) ListForReprocessing(ctx context.Context, limit int) ([]models.Document, error) {
	sql, args, err := reprocessingQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("build reprocessing query: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents for reprocessing: %w", mapError(err))
	}
	return collectDocuments(rows)
}

// validID guards uuid columns against ids that could never match.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *pgRepo) forUpdate() string {
	if r.inTx {
		return " FOR UPDATE"
	}
	return ""
}

func documentArgs(d models.Document) []any {
	return []any{
		d.ID, d.ExternalID, d.URL, d.Title, d.Court, d.SentenceType, d.PublishedAt, d.Content, d.FullTextContent,
		d.DocumentPath, d.CaseNumber, d.ReportingJudge, d.Chamber, d.DocketNumber, d.PrimaryTopic, d.AISummary, d.Decision, d.AIModel,
		string(d.Status), string(d.AnalysisStatus), d.AnalysisError, d.AnalyzedAt, d.FileChecksum, d.ContentChecksum, d.FullTextChecksum,
		string(d.IntegrityStatus), d.IntegrityVerifiedAt, d.CuratedBy, d.CuratedAt,
	}
}

func scanDocument(row pgx.Row) (models.Document, error) {
	var (
		d                                 models.Document
		status, analysisStatus, integrity string
	)
	err := row.Scan(&d.ID, &d.ExternalID, &d.URL, &d.Title, &d.Court, &d.SentenceType, &d.PublishedAt, &d.Content,
		&d.FullTextContent, &d.DocumentPath, &d.CaseNumber, &d.ReportingJudge, &d.Chamber, &d.DocketNumber,
		&d.PrimaryTopic, &d.AISummary, &d.Decision, &d.AIModel, &status, &analysisStatus, &d.AnalysisError,
		&d.AnalyzedAt, &d.FileChecksum, &d.ContentChecksum, &d.FullTextChecksum, &integrity, &d.IntegrityVerifiedAt,
		&d.CuratedBy, &d.CuratedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return models.Document{}, err
	}
	d.Status = models.DocumentStatus(status)
	d.AnalysisStatus = models.AnalysisStatus(analysisStatus)
	d.IntegrityStatus = models.IntegrityStatus(integrity)
	return d, nil
}

func collectDocuments(rows pgx.Rows) ([]models.Document, error) {
	defer rows.Close()
	out := make([]models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
