package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"flashdeck/internal/models"
	"flashdeck/internal/store"
)

var (
	// ErrNameRequired indicates an empty deck name after trimming.
	ErrNameRequired = errors.New("deck name is required")
	// ErrTextRequired indicates an empty card front or back after trimming.
	ErrTextRequired = errors.New("card front and back are required")
	// ErrDeckNotFound indicates the referenced deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")
)

// DeckService owns deck and card lifecycle operations on top of the store.
type DeckService struct {
	store store.Store
}

func NewDeckService(st store.Store) *DeckService {
	return &DeckService{store: st}
}

// DeckSummary pairs a deck with its card count for listing.
type DeckSummary struct {
	models.Deck
	CardCount int `json:"cardCount"`
}

func (s *DeckService) ListDecks(ctx context.Context) ([]DeckSummary, error) {
	decks, err := s.store.Decks(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.Cards(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(decks))
	for _, card := range cards {
		counts[card.DeckID]++
	}

	out := make([]DeckSummary, 0, len(decks))
	for _, deck := range decks {
		out = append(out, DeckSummary{Deck: deck, CardCount: counts[deck.ID]})
	}
	return out, nil
}

func (s *DeckService) CreateDeck(ctx context.Context, name, description string) (models.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Deck{}, ErrNameRequired
	}

	now := time.Now().UTC()
	deck := models.Deck{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveDeck(ctx, deck); err != nil {
		return models.Deck{}, fmt.Errorf("create deck: %w", err)
	}
	return deck, nil
}

func (s *DeckService) UpdateDeck(ctx context.Context, id, name, description string) (models.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Deck{}, ErrNameRequired
	}

	deck, err := s.findDeck(ctx, id)
	if err != nil {
		return models.Deck{}, err
	}
	deck.Name = name
	deck.Description = strings.TrimSpace(description)
	deck.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveDeck(ctx, deck); err != nil {
		return models.Deck{}, fmt.Errorf("update deck %s: %w", id, err)
	}
	return deck, nil
}

// DeleteDeck removes the deck and cascades to its cards. Stats of the
// removed cards survive; they are only cleared by import replacement.
func (s *DeckService) DeleteDeck(ctx context.Context, id string) error {
	if err := s.store.DeleteDeck(ctx, id); err != nil {
		return fmt.Errorf("delete deck %s: %w", id, err)
	}
	return nil
}

func (s *DeckService) ListCards(ctx context.Context) ([]models.Flashcard, error) {
	return s.store.Cards(ctx)
}

// CardsByDeck filters the card list down to one deck.
func (s *DeckService) CardsByDeck(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	cards, err := s.store.Cards(ctx)
	if err != nil {
		return nil, err
	}
	out := cards[:0]
	for _, card := range cards {
		if card.DeckID == deckID {
			out = append(out, card)
		}
	}
	return out, nil
}

func (s *DeckService) CreateCard(ctx context.Context, deckID, front, back, contextText string) (models.Flashcard, error) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" || back == "" {
		return models.Flashcard{}, ErrTextRequired
	}
	if _, err := s.findDeck(ctx, deckID); err != nil {
		return models.Flashcard{}, err
	}

	now := time.Now().UTC()
	card := models.Flashcard{
		ID:        uuid.NewString(),
		Front:     front,
		Back:      back,
		Context:   strings.TrimSpace(contextText),
		DeckID:    deckID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveCard(ctx, card); err != nil {
		return models.Flashcard{}, fmt.Errorf("create card: %w", err)
	}
	return card, nil
}

func (s *DeckService) UpdateCard(ctx context.Context, card models.Flashcard) (models.Flashcard, error) {
	card.Front = strings.TrimSpace(card.Front)
	card.Back = strings.TrimSpace(card.Back)
	card.Context = strings.TrimSpace(card.Context)
	if card.Front == "" || card.Back == "" {
		return models.Flashcard{}, ErrTextRequired
	}

	card.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveCard(ctx, card); err != nil {
		return models.Flashcard{}, fmt.Errorf("update card %s: %w", card.ID, err)
	}
	return card, nil
}

func (s *DeckService) DeleteCard(ctx context.Context, id string) error {
	if err := s.store.DeleteCard(ctx, id); err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	return nil
}

func (s *DeckService) findDeck(ctx context.Context, id string) (models.Deck, error) {
	decks, err := s.store.Decks(ctx)
	if err != nil {
		return models.Deck{}, err
	}
	for _, deck := range decks {
		if deck.ID == id {
			return deck, nil
		}
	}
	return models.Deck{}, ErrDeckNotFound
}
