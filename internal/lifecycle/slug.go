package lifecycle

import (
	"context"
	"fmt"
	"strconv"

	"juriscope/internal/storage"
	"juriscope/internal/util"
)

const maxSlugAttempts = 1000

// uniqueSlug returns the slug of title, suffixed -2, -3, ... until free.
func uniqueSlug(ctx context.Context, repo storage.Repo, title, excludeID string) (string, error) {
	base := util.Slugify(title)
	for n := 1; n <= maxSlugAttempts; n++ {
		slug := base
		if n > 1 {
			slug = base + "-" + strconv.Itoa(n)
		}
		taken, err := repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %s: %w", slug, err)
		}
		if !taken {
			return slug, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}
