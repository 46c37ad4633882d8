// Package positioning maintains the portal's general section: at most
// models.GeneralSlots articles holding positions 1..k with no gaps.
package positioning

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"juriscope/internal/logging"
	"juriscope/internal/models"
	"juriscope/internal/storage"
)

type Result struct {
	ArticleID string `json:"article_id"`
	// Evicted lists articles removed from the section, highest position first.
	Evicted []string `json:"evicted,omitempty"`
	// Positions maps every article left in the section to its slot.
	Positions map[string]int `json:"positions"`
}

type Engine struct {
	slots  int
	logger *slog.Logger
}

func New(logger *slog.Logger) *Engine {
	return &Engine{slots: models.GeneralSlots, logger: logging.OrDefault(logger)}
}

// PublishToGeneral puts articleID at position 1 and shifts the rest down,
// evicting from the bottom to keep the section within capacity.
//
// It must run inside the caller's transaction, after the caller has flagged
// articleID as general with a nil position. The article itself is excluded
// from the current set explicitly, whatever its stored flags.
func (e *Engine) PublishToGeneral(ctx context.Context, repo storage.Repo, articleID string) (Result, error) {
	if err := repo.LockGeneralSection(ctx); err != nil {
		return Result{}, err
	}
	current, err := repo.ListGeneralArticles(ctx, articleID)
	if err != nil {
		return Result{}, fmt.Errorf("load general section: %w", err)
	}
	sort.SliceStable(current, func(i, j int) bool { return less(current[i], current[j]) })

	res := Result{ArticleID: articleID, Positions: map[string]int{}}
	for len(current) >= e.slots {
		last := current[len(current)-1]
		if err := repo.SetGeneralPlacement(ctx, last.ID, false, nil); err != nil {
			return Result{}, fmt.Errorf("evict article %s: %w", last.ID, err)
		}
		res.Evicted = append(res.Evicted, last.ID)
		current = current[:len(current)-1]
	}
	if len(res.Evicted) > 1 {
		e.logger.Warn("general section was over capacity", "evicted", len(res.Evicted))
	}

	for i, a := range current {
		pos := i + 2
		if a.GeneralPosition != nil && *a.GeneralPosition == pos {
			res.Positions[a.ID] = pos
			continue
		}
		if err := repo.SetGeneralPlacement(ctx, a.ID, true, models.IntPtr(pos)); err != nil {
			return Result{}, fmt.Errorf("shift article %s to %d: %w", a.ID, pos, err)
		}
		res.Positions[a.ID] = pos
	}
	if err := repo.SetGeneralPlacement(ctx, articleID, true, models.IntPtr(1)); err != nil {
		return Result{}, fmt.Errorf("place article %s: %w", articleID, err)
	}
	res.Positions[articleID] = 1
	return res, nil
}

// less orders by position with nil last, then by id.
func less(a, b models.Article) bool {
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

// Check reports whether the general section satisfies the position invariant.
func Check(articles []models.Article) error {
	seen := map[int]bool{}
	n := 0
	for _, a := range articles {
		if a.GeneralPosition == nil {
			continue
		}
		if !a.IsGeneral {
			return fmt.Errorf("article %s has position %d but is not general", a.ID, *a.GeneralPosition)
		}
		if seen[*a.GeneralPosition] {
			return fmt.Errorf("position %d held twice", *a.GeneralPosition)
		}
		seen[*a.GeneralPosition] = true
		n++
	}
	if n > models.GeneralSlots {
		return fmt.Errorf("%d positioned articles exceed %d slots", n, models.GeneralSlots)
	}
	for p := 1; p <= n; p++ {
		if !seen[p] {
			return fmt.Errorf("positions are not contiguous: %d missing", p)
		}
	}
	return nil
}
