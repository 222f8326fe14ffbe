// Package session holds the live review session: the shuffled working set,
// the current position, the session tally and the wrong-card set.
package session

import (
	"context"

	"flashdeck/internal/models"
)

// State describes what the session is currently showing.
type State string

const (
	// StateEmpty means no card matches the current scope and filters.
	StateEmpty State = "empty"
	// StatePresenting shows the question side of the current card.
	StatePresenting State = "presenting"
	// StateRevealed shows the answer side, awaiting a judgment.
	StateRevealed State = "revealed"
)

// Recorder persists the side effects of session actions. The store
// implements it; tests may substitute anything.
type Recorder interface {
	RecordReview(ctx context.Context, cardID string, wasCorrect bool) error
	SaveCard(ctx context.Context, card models.Flashcard) error
}

// Tally counts judgments over the lifetime of the session. It survives
// scope and filter changes; only creating a new Session resets it.
type Tally struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Session is the single-owner review state machine. It is not safe for
// concurrent use; the caller serializes access.
type Session struct {
	recorder Recorder

	working  []models.Flashcard
	index    int
	revealed bool
	tally    Tally
	wrong    map[string]struct{}
}

func New(recorder Recorder) *Session {
	return &Session{
		recorder: recorder,
		wrong:    make(map[string]struct{}),
	}
}

// SetScope re-runs the selector over allCards and replaces the working set.
// Position and revealed side reset; tally and wrong-set are kept. The
// wrong-set is deliberately not pruned when decks leave the scope: their ids
// simply stop matching, and match again if the scope reverts.
func (s *Session) SetScope(allCards []models.Flashcard, deckIDs []string, onlyFavorites, onlyWrong bool) {
	s.working = SelectWorkingSet(allCards, deckIDs, onlyFavorites, onlyWrong, s.wrong)
	s.index = 0
	s.revealed = false
}

// State reports the current machine state.
func (s *Session) State() State {
	if len(s.working) == 0 {
		return StateEmpty
	}
	if s.revealed {
		return StateRevealed
	}
	return StatePresenting
}

// Current returns the card at the session position, if any.
func (s *Session) Current() (models.Flashcard, bool) {
	if len(s.working) == 0 {
		return models.Flashcard{}, false
	}
	return s.working[s.index], true
}

// Len returns the size of the working set.
func (s *Session) Len() int {
	return len(s.working)
}

// Index returns the zero-based position in the working set.
func (s *Session) Index() int {
	return s.index
}

// Tally returns the session-lifetime judgment counts.
func (s *Session) Tally() Tally {
	return s.tally
}

// Revealed reports whether the answer side is showing.
func (s *Session) Revealed() bool {
	return s.revealed
}

// InWrongSet reports whether the card id is currently marked wrong.
func (s *Session) InWrongSet(id string) bool {
	_, ok := s.wrong[id]
	return ok
}

// WrongCount returns the size of the wrong-set.
func (s *Session) WrongCount() int {
	return len(s.wrong)
}

// Reveal flips the current card to its answer side. No-op when empty.
func (s *Session) Reveal() {
	if len(s.working) == 0 {
		return
	}
	s.revealed = true
}

// Judge records the user's verdict on the current card: it updates the
// session tally and wrong-set, persists the stat increment, and advances.
// Without a current card this is a guarded no-op, not an error.
func (s *Session) Judge(ctx context.Context, wasCorrect bool) error {
	card, ok := s.Current()
	if !ok {
		return nil
	}

	if err := s.recorder.RecordReview(ctx, card.ID, wasCorrect); err != nil {
		return err
	}

	if wasCorrect {
		s.tally.Correct++
		delete(s.wrong, card.ID)
	} else {
		s.tally.Incorrect++
		s.wrong[card.ID] = struct{}{}
	}

	s.Advance()
	return nil
}

// Advance moves to the next card, hiding the answer side. Past the last
// card it reshuffles the same working set and starts over, so a fixed pool
// (favorites, wrong cards) can loop indefinitely.
func (s *Session) Advance() {
	s.revealed = false
	if len(s.working) == 0 {
		return
	}
	if s.index < len(s.working)-1 {
		s.index++
		return
	}
	s.working = Shuffle(s.working)
	s.index = 0
}

// Draw reshuffles the working set and jumps to the first card, a manual
// "new random card" shortcut.
func (s *Session) Draw() {
	s.revealed = false
	if len(s.working) == 0 {
		return
	}
	s.working = Shuffle(s.working)
	s.index = 0
}

// ToggleFavorite flips the favorite flag on the current card, persists the
// full record and patches the working copy. Position and revealed side are
// untouched. The updated card is returned so the caller can refresh its own
// card list. Without a current card this is a guarded no-op.
func (s *Session) ToggleFavorite(ctx context.Context) (models.Flashcard, bool, error) {
	card, ok := s.Current()
	if !ok {
		return models.Flashcard{}, false, nil
	}

	card.IsFavorite = !card.IsFavorite
	if err := s.recorder.SaveCard(ctx, card); err != nil {
		return models.Flashcard{}, false, err
	}
	s.working[s.index] = card
	return card, true, nil
}
