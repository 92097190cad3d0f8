package services

import (
	"cmp"
	"slices"

	"github.com/Belphemur/SubMatch/internal/models"
)

// SelectBest returns the result with the lowest score. The first of several
// equally scored results wins.
func SelectBest(results []*models.SearchResult) (*models.SearchResult, bool) {
	var best *models.SearchResult
	for _, r := range results {
		if best == nil || r.Score < best.Score {
			best = r
		}
	}
	return best, best != nil
}

// Rank returns a copy of results ordered best first, keeping the input order
// of equal scores.
func Rank(results []*models.SearchResult) []*models.SearchResult {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b *models.SearchResult) int {
		return cmp.Compare(a.Score, b.Score)
	})
	return ranked
}
