package lifecycle

import (
	"context"
	"fmt"

	"juriscope/internal/events"
	"juriscope/internal/models"
	"juriscope/internal/positioning"
	"juriscope/internal/storage"
)

type PublishOptions struct {
	General         bool   `json:"general"`
	LatestNews      bool   `json:"latest_news"`
	WeeklyHighlight bool   `json:"weekly_highlight"`
	SelectedEntity  string `json:"selected_entity,omitempty"`
	Actor           string `json:"actor"`
}

type PublishResult struct {
	Article   models.Article      `json:"article"`
	Placement *positioning.Result `json:"placement,omitempty"`
}

// PublishArticle marks the article PUBLISHED and, when requested, places it
// at the top of the general section. Publication and placement commit
// separately: on placement failure the article stays published and the
// returned error wraps ErrPlacementFailed.
func (s *Service) PublishArticle(ctx context.Context, id string, opts PublishOptions) (PublishResult, error) {
	var res PublishResult
	err := s.store.WithTx(ctx, func(repo storage.Repo) error {
		a, err := repo.GetArticle(ctx, id)
		if err != nil {
			return fmt.Errorf("load article %s: %w", id, err)
		}
		if a.Status == models.ArticleArchived {
			return articleConflict("publish", a)
		}
		from := a.Status
		now := s.clock()
		a.Status = models.ArticlePublished
		if a.PublishedAt == nil {
			a.PublishedAt = &now
		}
		a.IsLatestNews = opts.LatestNews
		a.IsWeeklyHighlight = opts.WeeklyHighlight
		a.SelectedEntity = opts.SelectedEntity
		if err := repo.UpdateArticle(ctx, a); err != nil {
			return fmt.Errorf("update article %s: %w", id, err)
		}
		desc := fmt.Sprintf("%s -> %s", from, a.Status)
		if err := s.audit(ctx, repo, opts.Actor, "ARTICLE_PUBLISHED", entityArticle, id, desc); err != nil {
			return err
		}
		res.Article = a
		return nil
	})
	if err != nil {
		return PublishResult{}, err
	}
	s.emit(ctx, events.ArticlePublished, entityArticle, id, opts.Actor, map[string]any{"general": opts.General})

	if !opts.General {
		return res, nil
	}
	placed, err := s.PlaceInGeneral(ctx, id, opts.Actor)
	if err != nil {
		return res, err
	}
	res.Article = placed.Article
	res.Placement = placed.Placement
	return res, nil
}

// PlaceInGeneral puts a published article at position 1 of the general
// section. Errors wrap ErrPlacementFailed and keep the storage cause.
func (s *Service) PlaceInGeneral(ctx context.Context, id, actor string) (PublishResult, error) {
	var res PublishResult
	err := s.store.WithTx(ctx, func(repo storage.Repo) error {
		a, err := repo.GetArticle(ctx, id)
		if err != nil {
			return fmt.Errorf("load article %s: %w", id, err)
		}
		if a.Status != models.ArticlePublished {
			return articleConflict("place in general", a)
		}
		if err := repo.SetGeneralPlacement(ctx, id, true, nil); err != nil {
			return fmt.Errorf("flag article %s general: %w", id, err)
		}
		placement, err := s.engine.PublishToGeneral(ctx, repo, id)
		if err != nil {
			return err
		}
		desc := fmt.Sprintf("placed at 1, evicted %d", len(placement.Evicted))
		if err := s.audit(ctx, repo, actor, "ARTICLE_PLACED_GENERAL", entityArticle, id, desc); err != nil {
			return err
		}
		if res.Article, err = repo.GetArticle(ctx, id); err != nil {
			return fmt.Errorf("reload article %s: %w", id, err)
		}
		res.Placement = &placement
		return nil
	})
	if err != nil {
		s.logger.Warn("general placement failed", "article_id", id, "error", err)
		return PublishResult{}, fmt.Errorf("%w: article %s: %w", ErrPlacementFailed, id, err)
	}
	s.metrics.Evicted(len(res.Placement.Evicted))
	s.emit(ctx, events.GeneralReordered, entityArticle, id, actor, map[string]any{
		"positions": res.Placement.Positions, "evicted": res.Placement.Evicted,
	})
	return res, nil
}
