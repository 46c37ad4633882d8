package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"juriscope/internal/models"
	"juriscope/internal/positioning"
	"juriscope/internal/storage"
	"juriscope/internal/util"
)

func seedArticle(t *testing.T, st storage.Repo, n int) models.Article {
	t.Helper()
	a := models.Article{Title: fmt.Sprintf("Artículo %d", n), Slug: fmt.Sprintf("articulo-%d", n), Content: "x", Status: models.ArticleDraft}
	require.NoError(t, st.CreateArticle(context.Background(), &a))
	return a
}

func generalSection(t *testing.T, st storage.Repo) []models.Article {
	t.Helper()
	list, err := st.ListGeneralArticles(context.Background(), "")
	require.NoError(t, err)
	return list
}

func TestPublishToGeneralKeepsSixContiguousSlots(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	var ids []string
	for i := 1; i <= 7; i++ {
		a := seedArticle(t, st, i)
		ids = append(ids, a.ID)
		res, err := svc.PublishArticle(ctx, a.ID, PublishOptions{General: true, Actor: "ed"})
		require.NoError(t, err)
		require.Equal(t, models.ArticlePublished, res.Article.Status)
		require.Equal(t, 1, *res.Article.GeneralPosition)
		require.NoError(t, positioning.Check(generalSection(t, st)))
	}

	section := generalSection(t, st)
	require.Len(t, section, 6)
	first, err := st.GetArticle(ctx, ids[0])
	require.NoError(t, err)
	require.False(t, first.IsGeneral)
	require.Nil(t, first.GeneralPosition)
	require.Equal(t, models.ArticlePublished, first.Status)

	second, err := st.GetArticle(ctx, ids[1])
	require.NoError(t, err)
	require.Equal(t, 6, *second.GeneralPosition)
}

func TestPublishWithoutGeneral(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	a := seedArticle(t, st, 1)
	res, err := svc.PublishArticle(ctx, a.ID, PublishOptions{LatestNews: true, SelectedEntity: "Corte Constitucional"})
	require.NoError(t, err)
	require.Nil(t, res.Placement)
	require.True(t, res.Article.IsLatestNews)
	require.False(t, res.Article.IsGeneral)
	require.NotNil(t, res.Article.PublishedAt)
}

func TestPublishArchivedIsConflict(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	a := seedArticle(t, st, 1)
	a.Status = models.ArticleArchived
	require.NoError(t, st.UpdateArticle(ctx, a))

	_, err := svc.PublishArticle(ctx, a.ID, PublishOptions{General: true})
	require.ErrorIs(t, err, util.ErrConflict)
}

func TestPlaceInGeneralRequiresPublished(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	a := seedArticle(t, st, 1)
	_, err := svc.PlaceInGeneral(ctx, a.ID, "ed")
	require.ErrorIs(t, err, ErrPlacementFailed)
	require.ErrorIs(t, err, util.ErrConflict)
}

type brokenSectionStore struct {
	storage.Store
}

func (b brokenSectionStore) WithTx(ctx context.Context, fn func(storage.Repo) error) error {
	return b.Store.WithTx(ctx, func(r storage.Repo) error { return fn(brokenSectionRepo{r}) })
}

type brokenSectionRepo struct {
	storage.Repo
}

func (brokenSectionRepo) ListGeneralArticles(context.Context, string) ([]models.Article, error) {
	return nil, fmt.Errorf("list general: %w", util.ErrConcurrentModification)
}

func TestPlacementFailureKeepsPublication(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	svc := NewService(brokenSectionStore{mem}, nil)
	a := seedArticle(t, mem, 1)

	_, err := svc.PublishArticle(ctx, a.ID, PublishOptions{General: true, Actor: "ed"})
	require.True(t, errors.Is(err, ErrPlacementFailed))
	require.True(t, errors.Is(err, util.ErrConcurrentModification))

	got, err := mem.GetArticle(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, models.ArticlePublished, got.Status)
	require.False(t, got.IsGeneral, "placement transaction must roll back")
}
