package feed

import (
	"context"
	"fmt"

	"github.com/lysyi3m/news-digest/app/database"
)

type Deduplicator struct {
	articleRepo database.ArticleRepository
}

func NewDeduplicator(articleRepo database.ArticleRepository) *Deduplicator {
	return &Deduplicator{
		articleRepo: articleRepo,
	}
}

// Run drops items whose guid is already stored, using one existence query
// for the whole batch. Items repeating a guid within the batch keep only the
// first occurrence.
func (d *Deduplicator) Run(ctx context.Context, items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(items))
	unique := make([]Item, 0, len(items))
	guids := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item.GUID] {
			continue
		}
		seen[item.GUID] = true
		unique = append(unique, item)
		guids = append(guids, item.GUID)
	}

	existing, err := d.articleRepo.BatchExists(ctx, guids)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing articles: %w", err)
	}

	novel := make([]Item, 0, len(unique))
	for _, item := range unique {
		if !existing[item.GUID] {
			novel = append(novel, item)
		}
	}

	return novel, nil
}
