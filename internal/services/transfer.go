package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"flashdeck/internal/models"
	"flashdeck/internal/store"
)

// ErrMalformedData indicates an import document that could not be parsed.
// Nothing is replaced when it is returned.
var ErrMalformedData = errors.New("malformed import data")

// TransferService serializes the full entity set to the exchange document
// and replaces store collections from one on import.
type TransferService struct {
	store store.Store
}

func NewTransferService(st store.Store) *TransferService {
	return &TransferService{store: st}
}

// exchangeDoc is the import/export document. Pointer fields distinguish an
// absent key from a present-but-empty collection on import.
type exchangeDoc struct {
	Decks    *[]models.Deck      `json:"decks,omitempty"`
	Cards    *[]models.Flashcard `json:"cards,omitempty"`
	Stats    *[]models.CardStats `json:"stats,omitempty"`
	Settings *models.AppSettings `json:"settings,omitempty"`
}

// Export returns the full data set as indented JSON. All four keys are
// always present, with empty arrays when there is no data.
func (s *TransferService) Export(ctx context.Context) ([]byte, error) {
	decks, err := s.store.Decks(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.Cards(ctx)
	if err != nil {
		return nil, err
	}
	allStats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}

	if decks == nil {
		decks = []models.Deck{}
	}
	if cards == nil {
		cards = []models.Flashcard{}
	}
	if allStats == nil {
		allStats = []models.CardStats{}
	}

	doc := exchangeDoc{
		Decks:    &decks,
		Cards:    &cards,
		Stats:    &allStats,
		Settings: &settings,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Import parses the exchange document and wholesale-replaces each collection
// whose key is present; absent keys leave their collection untouched. A
// parse failure mutates nothing.
func (s *TransferService) Import(ctx context.Context, data []byte) error {
	var doc exchangeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	if doc.Decks != nil {
		if err := s.store.ReplaceDecks(ctx, *doc.Decks); err != nil {
			return fmt.Errorf("replace decks: %w", err)
		}
	}
	if doc.Cards != nil {
		if err := s.store.ReplaceCards(ctx, *doc.Cards); err != nil {
			return fmt.Errorf("replace cards: %w", err)
		}
	}
	if doc.Stats != nil {
		if err := s.store.ReplaceStats(ctx, *doc.Stats); err != nil {
			return fmt.Errorf("replace stats: %w", err)
		}
	}
	if doc.Settings != nil {
		if err := s.store.SaveSettings(ctx, *doc.Settings); err != nil {
			return fmt.Errorf("replace settings: %w", err)
		}
	}
	return nil
}
