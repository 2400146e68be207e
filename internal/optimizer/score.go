package optimizer

import (
	"math"
	"sort"
)

// RecommendationScorer combines price, travel time, user preference and
// store rating into a single priority score. Higher is better.
type RecommendationScorer struct{}

// NewRecommendationScorer creates a scorer.
func NewRecommendationScorer() *RecommendationScorer {
	return &RecommendationScorer{}
}

// defaultRating substitutes for stores with no rating on record.
const defaultRating = 3

// Score computes the priority score of a store given the items it would be
// assigned, its price multiplier and its travel time from the origin.
// The price and time terms are gated by the objective weights; preference,
// availability and rating always contribute. Rounded to the nearest integer.
func (s *RecommendationScorer) Score(store Store, assigned []Item, multiplier, travelMin float64, c Constraints) int {
	score := 0.0

	if c.Weights.Price > 0 {
		// Rewards cheaper stores: multiplier 0.8 scores 60, 1.3 scores 35.
		score += (2.0 - multiplier) * 50
	}
	if c.Weights.Time > 0 {
		score += math.Max(0, 30-travelMin)
	}
	if c.prefers(store.ID) {
		score += 25
	}
	score += 2 * float64(len(assigned))

	rating := store.Rating
	if rating == 0 {
		rating = defaultRating
	}
	score += 5 * float64(rating)

	return int(math.Round(score))
}

// sortRecommendations orders by descending priority score with ties broken
// by store ID ascending, so identical inputs always produce identical output.
func sortRecommendations(recs []StoreRecommendation) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		return a.Store.ID < b.Store.ID
	})
}

// sortStoresByID pins the processing order of the caller's catalog, so that
// re-ordering the input never changes the result.
func sortStoresByID(stores []Store) []Store {
	sorted := make([]Store, len(stores))
	copy(sorted, stores)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
