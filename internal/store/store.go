package store

import (
	"context"

	"flashdeck/internal/models"
)

// Store is the durable entity mapping the rest of the application is built
// on. Implementations are injected into services and the review session, so
// tests can run against Memory while the server runs against SQLite.
type Store interface {
	Decks(ctx context.Context) ([]models.Deck, error)
	// SaveDeck inserts the deck or replaces it by id. On replace UpdatedAt
	// is refreshed to the current time; CreatedAt is kept.
	SaveDeck(ctx context.Context, deck models.Deck) error
	// DeleteDeck removes the deck and every card that belongs to it.
	DeleteDeck(ctx context.Context, id string) error

	Cards(ctx context.Context) ([]models.Flashcard, error)
	SaveCard(ctx context.Context, card models.Flashcard) error
	DeleteCard(ctx context.Context, id string) error

	Stats(ctx context.Context) ([]models.CardStats, error)
	// RecordReview creates the card's stats record on first judgment or
	// increments it in place. Counters only ever increase.
	RecordReview(ctx context.Context, cardID string, wasCorrect bool) error

	// Replace* swap a whole collection, used by import.
	ReplaceDecks(ctx context.Context, decks []models.Deck) error
	ReplaceCards(ctx context.Context, cards []models.Flashcard) error
	ReplaceStats(ctx context.Context, stats []models.CardStats) error

	// Settings returns the persisted settings, or the documented default
	// when none have been saved.
	Settings(ctx context.Context) (models.AppSettings, error)
	SaveSettings(ctx context.Context, settings models.AppSettings) error
}
