package storage

import (
	sq "github.com/Masterminds/squirrel"

	"juriscope/internal/models"
	"juriscope/internal/reconcile"
)

// NeedsReprocessing decides whether a batch without force should analyze d.
// FAILED documents are never picked up again automatically.
func NeedsReprocessing(d models.Document) bool {
	switch d.AnalysisStatus {
	case models.AnalysisNone, models.AnalysisPending, models.AnalysisError:
		return true
	case models.AnalysisFailed, models.AnalysisProcessing:
		return false
	}
	return documentFields(d).Missing()
}

func documentFields(d models.Document) reconcile.Fields {
	return reconcile.Fields{
		CaseNumber:     d.CaseNumber,
		ReportingJudge: d.ReportingJudge,
		Chamber:        d.Chamber,
		DocketNumber:   d.DocketNumber,
	}
}

var keyFieldColumns = []string{"case_number", "reporting_judge", "chamber", "docket_number"}

// reprocessingQuery builds the SQL twin of NeedsReprocessing.
func reprocessingQuery(limit int) (string, []any, error) {
	missing := sq.Or{}
	for _, col := range keyFieldColumns {
		missing = append(missing, sq.Expr("COALESCE(LOWER(TRIM("+col+")),'') = ANY(?)", placeholderValues()))
	}
	q := sq.Select(documentColumns).
		From("documents").
		Where(sq.Or{
			sq.Eq{"analysis_status": nil},
			sq.Eq{"analysis_status": []string{string(models.AnalysisPending), string(models.AnalysisError)}},
			sq.And{
				sq.NotEq{"analysis_status": []string{string(models.AnalysisFailed), string(models.AnalysisProcessing)}},
				missing,
			},
		}).
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(sq.Dollar)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q.ToSql()
}

func placeholderValues() []string {
	return append([]string{""}, reconcile.Placeholders()...)
}

const documentColumns = `id::text, external_id, url, title, COALESCE(court,''), COALESCE(sentence_type,''),
  published_at, COALESCE(content,''), COALESCE(full_text_content,''), COALESCE(document_path,''),
  COALESCE(case_number,''), COALESCE(reporting_judge,''), COALESCE(chamber,''), COALESCE(docket_number,''),
  COALESCE(primary_topic,''), COALESCE(ai_summary,''), COALESCE(decision,''), COALESCE(ai_model,''),
  status, COALESCE(analysis_status,''), COALESCE(analysis_error,''), analyzed_at,
  COALESCE(file_checksum,''), COALESCE(content_checksum,''), COALESCE(full_text_checksum,''),
  integrity_status, integrity_verified_at, COALESCE(curated_by,''), curated_at, created_at, updated_at`
