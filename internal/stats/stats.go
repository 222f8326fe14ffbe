// Package stats derives success rates and difficulty rankings from card
// review tallies. Every function is pure: inputs are never mutated and the
// entity store is never touched.
package stats

import (
	"sort"

	"flashdeck/internal/models"
)

// SuccessRate returns the percentage of correct reviews in [0,100].
// A card with no reviews reports 0 rather than dividing by zero.
func SuccessRate(stat models.CardStats) float64 {
	total := stat.Correct + stat.Incorrect
	if total == 0 {
		return 0
	}
	return float64(stat.Correct) / float64(total) * 100
}

// Summary aggregates review counts across a set of cards.
type Summary struct {
	TotalReviews   int     `json:"totalReviews"`
	TotalCorrect   int     `json:"totalCorrect"`
	TotalIncorrect int     `json:"totalIncorrect"`
	SuccessRate    float64 `json:"successRate"`
}

// Aggregate sums correct/incorrect counts over all input records.
func Aggregate(all []models.CardStats) Summary {
	var summary Summary
	for _, stat := range all {
		summary.TotalCorrect += stat.Correct
		summary.TotalIncorrect += stat.Incorrect
	}
	summary.TotalReviews = summary.TotalCorrect + summary.TotalIncorrect
	if summary.TotalReviews > 0 {
		summary.SuccessRate = float64(summary.TotalCorrect) / float64(summary.TotalReviews) * 100
	}
	return summary
}

// MostDifficult returns up to limit reviewed cards ordered by ascending
// success rate. Records with zero reviews are excluded. The sort is stable,
// so ties keep their input order.
func MostDifficult(all []models.CardStats, limit int) []models.CardStats {
	reviewed := make([]models.CardStats, 0, len(all))
	for _, stat := range all {
		if stat.Reviews() > 0 {
			reviewed = append(reviewed, stat)
		}
	}
	sort.SliceStable(reviewed, func(i, j int) bool {
		return SuccessRate(reviewed[i]) < SuccessRate(reviewed[j])
	})
	if limit >= 0 && len(reviewed) > limit {
		reviewed = reviewed[:limit]
	}
	return reviewed
}

// NeverReviewed returns the ids from allCardIDs that have no stats record.
func NeverReviewed(allCardIDs []string, all []models.CardStats) []string {
	reviewed := make(map[string]struct{}, len(all))
	for _, stat := range all {
		reviewed[stat.CardID] = struct{}{}
	}
	var ids []string
	for _, id := range allCardIDs {
		if _, ok := reviewed[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReviewsPerDay buckets total review counts by the day (YYYY-MM-DD, UTC) of
// each card's last review.
func ReviewsPerDay(all []models.CardStats) map[string]int {
	perDay := make(map[string]int)
	for _, stat := range all {
		if stat.LastReviewed == nil {
			continue
		}
		day := stat.LastReviewed.UTC().Format("2006-01-02")
		perDay[day] += stat.Reviews()
	}
	return perDay
}
