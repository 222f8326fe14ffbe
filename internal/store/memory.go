package store

import (
	"context"
	"sync"
	"time"

	"flashdeck/internal/models"
)

// Memory keeps all entities in process memory. It backs the test suites and
// behaves like the SQLite store, including the deck delete cascade, which it
// performs as two sequential rewrites.
type Memory struct {
	mu       sync.Mutex
	decks    []models.Deck
	cards    []models.Flashcard
	stats    []models.CardStats
	settings *models.AppSettings
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: func() time.Time { return time.Now().UTC() }}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Decks(ctx context.Context) ([]models.Deck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Deck, len(m.decks))
	copy(out, m.decks)
	return out, nil
}

func (m *Memory) SaveDeck(ctx context.Context, deck models.Deck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.decks {
		if m.decks[i].ID == deck.ID {
			deck.CreatedAt = m.decks[i].CreatedAt
			deck.UpdatedAt = m.now()
			m.decks[i] = deck
			return nil
		}
	}
	m.decks = append(m.decks, deck)
	return nil
}

func (m *Memory) DeleteDeck(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	decks := m.decks[:0]
	for _, deck := range m.decks {
		if deck.ID != id {
			decks = append(decks, deck)
		}
	}
	m.decks = decks

	cards := m.cards[:0]
	for _, card := range m.cards {
		if card.DeckID != id {
			cards = append(cards, card)
		}
	}
	m.cards = cards
	return nil
}

func (m *Memory) Cards(ctx context.Context) ([]models.Flashcard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Flashcard, len(m.cards))
	copy(out, m.cards)
	return out, nil
}

func (m *Memory) SaveCard(ctx context.Context, card models.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.cards {
		if m.cards[i].ID == card.ID {
			card.CreatedAt = m.cards[i].CreatedAt
			card.UpdatedAt = m.now()
			m.cards[i] = card
			return nil
		}
	}
	m.cards = append(m.cards, card)
	return nil
}

func (m *Memory) DeleteCard(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cards := m.cards[:0]
	for _, card := range m.cards {
		if card.ID != id {
			cards = append(cards, card)
		}
	}
	m.cards = cards
	return nil
}

func (m *Memory) Stats(ctx context.Context) ([]models.CardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CardStats, len(m.stats))
	copy(out, m.stats)
	return out, nil
}

func (m *Memory) RecordReview(ctx context.Context, cardID string, wasCorrect bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for i := range m.stats {
		if m.stats[i].CardID == cardID {
			if wasCorrect {
				m.stats[i].Correct++
			} else {
				m.stats[i].Incorrect++
			}
			m.stats[i].LastReviewed = &now
			return nil
		}
	}
	stat := models.CardStats{CardID: cardID, LastReviewed: &now}
	if wasCorrect {
		stat.Correct = 1
	} else {
		stat.Incorrect = 1
	}
	m.stats = append(m.stats, stat)
	return nil
}

func (m *Memory) ReplaceDecks(ctx context.Context, decks []models.Deck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decks = append([]models.Deck(nil), decks...)
	return nil
}

func (m *Memory) ReplaceCards(ctx context.Context, cards []models.Flashcard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards = append([]models.Flashcard(nil), cards...)
	return nil
}

func (m *Memory) ReplaceStats(ctx context.Context, stats []models.CardStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = append([]models.CardStats(nil), stats...)
	return nil
}

func (m *Memory) Settings(ctx context.Context) (models.AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return models.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Memory) SaveSettings(ctx context.Context, settings models.AppSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &settings
	return nil
}
