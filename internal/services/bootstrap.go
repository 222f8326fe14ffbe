package services

import (
	"context"
	"fmt"
	"log"
)

// sample deck created on first run so the review page is not empty.
var defaultCards = []struct {
	front, back string
}{
	{"hola", "hello"},
	{"gato", "cat"},
	{"perro", "dog"},
	{"gracias", "thank you"},
	{"libro", "book"},
}

// EnsureDefaultData seeds a small sample deck when the store holds no decks
// and no cards. Existing data is never touched.
func EnsureDefaultData(ctx context.Context, decks *DeckService) error {
	existing, err := decks.ListDecks(ctx)
	if err != nil {
		return fmt.Errorf("check existing decks: %w", err)
	}
	cards, err := decks.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("check existing cards: %w", err)
	}
	if len(existing) > 0 || len(cards) > 0 {
		return nil
	}

	deck, err := decks.CreateDeck(ctx, "Spanish Basics", "Starter vocabulary deck")
	if err != nil {
		return fmt.Errorf("seed deck: %w", err)
	}
	for _, c := range defaultCards {
		if _, err := decks.CreateCard(ctx, deck.ID, c.front, c.back, ""); err != nil {
			return fmt.Errorf("seed card %q: %w", c.front, err)
		}
	}
	log.Printf("seeded sample deck %q with %d cards", deck.Name, len(defaultCards))
	return nil
}
