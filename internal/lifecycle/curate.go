package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"juriscope/internal/events"
	"juriscope/internal/models"
	"juriscope/internal/reconcile"
	"juriscope/internal/storage"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Draft is the curator's article text. A draft with empty content is no draft.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary"`
}

func (d *Draft) present() bool {
	return d != nil && strings.TrimSpace(d.Content) != ""
}

type CurateInput struct {
	Action Action           `json:"action"`
	Actor  string           `json:"actor"`
	Reason string           `json:"reason,omitempty"`
	Fields reconcile.Fields `json:"fields"`
	Draft  *Draft           `json:"draft,omitempty"`
}

type CurateResult struct {
	Document          models.Document `json:"document"`
	Article           *models.Article `json:"article,omitempty"`
	ImagesTransferred int             `json:"images_transferred"`
}

// Curate applies a curator decision. PENDING documents go to APPROVED or
// REJECTED, or straight to READY when approved with a draft; APPROVED
// documents go to READY once a draft is supplied. Anything else is a conflict.
func (s *Service) Curate(ctx context.Context, id string, in CurateInput) (CurateResult, error) {
	if in.Action != ActionApprove && in.Action != ActionReject {
		return CurateResult{}, fmt.Errorf("curate document %s: unknown action %q", id, in.Action)
	}
	var (
		res  CurateResult
		from models.DocumentStatus
	)
	err := s.store.WithTx(ctx, func(repo storage.Repo) error {
		d, err := repo.GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("load document %s: %w", id, err)
		}
		from = d.Status
		to, err := s.target(d, in)
		if err != nil {
			return err
		}

		now := s.clock()
		d.Status = to
		d.CuratedBy = in.Actor
		d.CuratedAt = &now
		if in.Action == ActionApprove {
			applyFields(&d, reconcile.Merge(in.Fields, reconcile.ExtractHeader(headerSource(d)), storedFields(d)))
		}
		if err := repo.UpdateDocument(ctx, d); err != nil {
			return fmt.Errorf("update document %s: %w", id, err)
		}

		desc := fmt.Sprintf("%s -> %s", from, to)
		if in.Reason != "" {
			desc += ": " + in.Reason
		}
		if to == models.DocumentReady {
			a, err := s.upsertArticle(ctx, repo, d, in.Draft)
			if err != nil {
				return err
			}
			n, err := repo.TransferImages(ctx, d.ID, a.ID)
			if err != nil {
				return fmt.Errorf("transfer images to article %s: %w", a.ID, err)
			}
			res.Article = &a
			res.ImagesTransferred = n
			desc += fmt.Sprintf(" (article %s, %d images)", a.Slug, n)
		}
		if err := s.audit(ctx, repo, in.Actor, auditAction(to), entityDocument, d.ID, desc); err != nil {
			return err
		}
		res.Document = d
		return nil
	})
	if err != nil {
		return CurateResult{}, err
	}

	s.metrics.Transition(string(from), string(res.Document.Status))
	s.logger.Info("document curated", "document_id", id, "from", from, "to", res.Document.Status, "actor", in.Actor)
	s.emit(ctx, events.DocumentCurated, entityDocument, id, in.Actor, map[string]any{
		"from": string(from), "to": string(res.Document.Status),
	})
	if res.Article != nil {
		s.emit(ctx, events.ArticleReady, entityArticle, res.Article.ID, in.Actor, map[string]any{
			"document_id": id, "slug": res.Article.Slug,
		})
	}
	return res, nil
}

func (s *Service) target(d models.Document, in CurateInput) (models.DocumentStatus, error) {
	op := string(in.Action)
	if !d.Status.Curatable() {
		return "", documentConflict(op, d)
	}
	if in.Action == ActionReject {
		if d.Status != models.DocumentPending {
			return "", documentConflict(op, d)
		}
		return models.DocumentRejected, nil
	}
	if in.Draft.present() || s.allowReadyWithoutDraft {
		return models.DocumentReady, nil
	}
	if d.Status == models.DocumentApproved {
		// Approving again without a draft is not a transition.
		return "", documentConflict(op, d)
	}
	return models.DocumentApproved, nil
}

func auditAction(to models.DocumentStatus) string {
	return "DOCUMENT_" + string(to)
}

// Archive retires a document administratively.
func (s *Service) Archive(ctx context.Context, id, actor, reason string) (models.Document, error) {
	var (
		out  models.Document
		from models.DocumentStatus
	)
	err := s.store.WithTx(ctx, func(repo storage.Repo) error {
		d, err := repo.GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("load document %s: %w", id, err)
		}
		from = d.Status
		switch d.Status {
		case models.DocumentPending, models.DocumentApproved, models.DocumentReady:
		default:
			return documentConflict("archive", d)
		}
		d.Status = models.DocumentArchived
		if err := repo.UpdateDocument(ctx, d); err != nil {
			return fmt.Errorf("update document %s: %w", id, err)
		}
		desc := fmt.Sprintf("%s -> %s", from, d.Status)
		if reason != "" {
			desc += ": " + reason
		}
		if err := s.audit(ctx, repo, actor, auditAction(d.Status), entityDocument, id, desc); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return models.Document{}, err
	}
	s.metrics.Transition(string(from), string(out.Status))
	s.emit(ctx, events.DocumentArchived, entityDocument, id, actor, map[string]any{"from": string(from)})
	return out, nil
}

func (s *Service) upsertArticle(ctx context.Context, repo storage.Repo, d models.Document, draft *Draft) (models.Article, error) {
	title, content, summary := articleText(d, draft)
	existing, found, err := repo.GetArticleBySource(ctx, d.ID)
	if err != nil {
		return models.Article{}, fmt.Errorf("load article for document %s: %w", d.ID, err)
	}
	if found {
		if existing.Title != title {
			slug, err := uniqueSlug(ctx, repo, title, existing.ID)
			if err != nil {
				return models.Article{}, err
			}
			existing.Slug = slug
		}
		existing.Title = title
		existing.Content = content
		existing.Summary = summary
		if err := repo.UpdateArticle(ctx, existing); err != nil {
			return models.Article{}, fmt.Errorf("update article %s: %w", existing.ID, err)
		}
		return existing, nil
	}
	slug, err := uniqueSlug(ctx, repo, title, "")
	if err != nil {
		return models.Article{}, err
	}
	a := models.Article{
		SourceDocumentID: d.ID,
		Title:            title,
		Slug:             slug,
		Content:          content,
		Summary:          summary,
		Status:           models.ArticleDraft,
	}
	if err := repo.CreateArticle(ctx, &a); err != nil {
		return models.Article{}, fmt.Errorf("create article for document %s: %w", d.ID, err)
	}
	return a, nil
}

func articleText(d models.Document, draft *Draft) (title, content, summary string) {
	title, summary = d.Title, d.AISummary
	content = d.AISummary
	if content == "" {
		content = d.Content
	}
	if draft != nil {
		if t := strings.TrimSpace(draft.Title); t != "" {
			title = t
		}
		if c := strings.TrimSpace(draft.Content); c != "" {
			content = c
		}
		if sm := strings.TrimSpace(draft.Summary); sm != "" {
			summary = sm
		}
	}
	return title, content, summary
}

func storedFields(d models.Document) reconcile.Fields {
	return reconcile.Fields{
		CaseNumber:     d.CaseNumber,
		ReportingJudge: d.ReportingJudge,
		Chamber:        d.Chamber,
		DocketNumber:   d.DocketNumber,
	}
}

// applyFields copies the reconciled fields onto d, leaving unresolved ones untouched.
func applyFields(d *models.Document, f reconcile.Fields) {
	if f.CaseNumber != "" {
		d.CaseNumber = f.CaseNumber
	}
	if f.ReportingJudge != "" {
		d.ReportingJudge = f.ReportingJudge
	}
	if f.Chamber != "" {
		d.Chamber = f.Chamber
	}
	if f.DocketNumber != "" {
		d.DocketNumber = f.DocketNumber
	}
}

func headerSource(d models.Document) string {
	if d.FullTextContent != "" {
		return d.FullTextContent
	}
	return d.Content
}
