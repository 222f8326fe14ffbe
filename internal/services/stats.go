package services

import (
	"context"

	"flashdeck/internal/models"
	"flashdeck/internal/stats"
	"flashdeck/internal/store"
)

const difficultLimit = 5

// StatsService composes the statistics engine over the store for the stats
// overview. It only ever reads.
type StatsService struct {
	store store.Store
}

func NewStatsService(st store.Store) *StatsService {
	return &StatsService{store: st}
}

// DifficultCard is a ranked entry in the most-difficult list, joined with
// the card's display text when the card still exists.
type DifficultCard struct {
	models.CardStats
	Front       string  `json:"front,omitempty"`
	Back        string  `json:"back,omitempty"`
	SuccessRate float64 `json:"successRate"`
}

// Overview is the full derived-statistics payload for the stats page.
type Overview struct {
	Summary       stats.Summary   `json:"summary"`
	TotalCards    int             `json:"totalCards"`
	FavoriteCards int             `json:"favoriteCards"`
	NeverReviewed []string        `json:"neverReviewed"`
	MostDifficult []DifficultCard `json:"mostDifficult"`
	ReviewsPerDay map[string]int  `json:"reviewsPerDay"`
}

// Overview derives statistics for the whole collection, or for a single
// deck when deckID is non-empty.
func (s *StatsService) Overview(ctx context.Context, deckID string) (Overview, error) {
	cards, err := s.store.Cards(ctx)
	if err != nil {
		return Overview{}, err
	}
	allStats, err := s.store.Stats(ctx)
	if err != nil {
		return Overview{}, err
	}

	if deckID != "" {
		scoped := cards[:0]
		for _, card := range cards {
			if card.DeckID == deckID {
				scoped = append(scoped, card)
			}
		}
		cards = scoped

		inScope := make(map[string]struct{}, len(cards))
		for _, card := range cards {
			inScope[card.ID] = struct{}{}
		}
		scopedStats := allStats[:0]
		for _, stat := range allStats {
			if _, ok := inScope[stat.CardID]; ok {
				scopedStats = append(scopedStats, stat)
			}
		}
		allStats = scopedStats
	}

	cardIDs := make([]string, 0, len(cards))
	byID := make(map[string]models.Flashcard, len(cards))
	favorites := 0
	for _, card := range cards {
		cardIDs = append(cardIDs, card.ID)
		byID[card.ID] = card
		if card.IsFavorite {
			favorites++
		}
	}

	difficult := stats.MostDifficult(allStats, difficultLimit)
	ranked := make([]DifficultCard, 0, len(difficult))
	for _, stat := range difficult {
		entry := DifficultCard{CardStats: stat, SuccessRate: stats.SuccessRate(stat)}
		if card, ok := byID[stat.CardID]; ok {
			entry.Front = card.Front
			entry.Back = card.Back
		}
		ranked = append(ranked, entry)
	}

	return Overview{
		Summary:       stats.Aggregate(allStats),
		TotalCards:    len(cards),
		FavoriteCards: favorites,
		NeverReviewed: stats.NeverReviewed(cardIDs, allStats),
		MostDifficult: ranked,
		ReviewsPerDay: stats.ReviewsPerDay(allStats),
	}, nil
}
