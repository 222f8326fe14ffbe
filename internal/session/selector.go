package session

import (
	"math/rand/v2"

	"flashdeck/internal/models"
)

// Shuffle returns a new slice holding a uniform Fisher-Yates permutation of
// src. The input is never mutated.
func Shuffle[T any](src []T) []T {
	out := make([]T, len(src))
	copy(out, src)
	for i := len(out) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SelectWorkingSet filters allCards down to the session scope and shuffles
// the result. An empty deck scope yields an empty set, not "all decks".
func SelectWorkingSet(
	allCards []models.Flashcard,
	deckIDs []string,
	onlyFavorites bool,
	onlyWrong bool,
	wrongIDs map[string]struct{},
) []models.Flashcard {
	scope := make(map[string]struct{}, len(deckIDs))
	for _, id := range deckIDs {
		scope[id] = struct{}{}
	}

	filtered := make([]models.Flashcard, 0, len(allCards))
	for _, card := range allCards {
		if _, ok := scope[card.DeckID]; !ok {
			continue
		}
		if onlyFavorites && !card.IsFavorite {
			continue
		}
		if onlyWrong {
			if _, ok := wrongIDs[card.ID]; !ok {
				continue
			}
		}
		filtered = append(filtered, card)
	}

	return Shuffle(filtered)
}

// Side returns the text to display for a card. Reversed mode studies in the
// opposite direction, so the hidden and revealed sides swap:
//
//	revealed  reversed  shown
//	false     false     front
//	false     true      back
//	true      false     back
//	true      true      front
func Side(card models.Flashcard, reversed, revealed bool) string {
	if revealed {
		if reversed {
			return card.Front
		}
		return card.Back
	}
	if reversed {
		return card.Back
	}
	return card.Front
}
