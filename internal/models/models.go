package models

import "time"

// RevisionMode is the default study mode stored in settings.
type RevisionMode string

const (
	ModeNormal    RevisionMode = "normal"
	ModeReverse   RevisionMode = "reverse"
	ModeWrongOnly RevisionMode = "wrong_only"
	ModeFavorites RevisionMode = "favorites"
)

// Valid reports whether m is one of the known revision modes.
func (m RevisionMode) Valid() bool {
	switch m {
	case ModeNormal, ModeReverse, ModeWrongOnly, ModeFavorites:
		return true
	}
	return false
}

type Deck struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Flashcard struct {
	ID         string    `json:"id"`
	Front      string    `json:"front"`
	Back       string    `json:"back"`
	Context    string    `json:"context,omitempty"`
	DeckID     string    `json:"deckId"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CardStats is the cumulative review tally for one card. A card with no
// CardStats record has never been reviewed; the absence of the record, not
// a zero-valued one, signals that.
type CardStats struct {
	CardID       string     `json:"cardId"`
	Correct      int        `json:"correct"`
	Incorrect    int        `json:"incorrect"`
	LastReviewed *time.Time `json:"lastReviewed"`
}

// Reviews returns the total number of recorded judgments.
func (s CardStats) Reviews() int {
	return s.Correct + s.Incorrect
}

type AppSettings struct {
	AutoplayDelay            int          `json:"autoplayDelay"`
	DefaultRevisionMode      RevisionMode `json:"defaultRevisionMode"`
	ShowTranslationByDefault bool         `json:"showTranslationByDefault"`
}

// DefaultSettings is the settings record returned when none has been saved.
func DefaultSettings() AppSettings {
	return AppSettings{
		AutoplayDelay:            3000,
		DefaultRevisionMode:      ModeNormal,
		ShowTranslationByDefault: false,
	}
}
