package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flashdeck/internal/models"
)

// SQLite persists entities in the SQLite database opened by internal/db.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

var _ Store = (*SQLite)(nil)

func (s *SQLite) Decks(ctx context.Context) ([]models.Deck, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM decks
		ORDER BY created_at ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var deck models.Deck
		if err := rows.Scan(&deck.ID, &deck.Name, &deck.Description, &deck.CreatedAt, &deck.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decks: %w", err)
	}
	return decks, nil
}

func (s *SQLite) SaveDeck(ctx context.Context, deck models.Deck) error {
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO decks (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			updated_at = ?;
	`, deck.ID, deck.Name, deck.Description, deck.CreatedAt, deck.UpdatedAt, now); err != nil {
		return fmt.Errorf("save deck %s: %w", deck.ID, err)
	}
	return nil
}

// DeleteDeck removes the deck row and its cards in one transaction. Stats
// records for the removed cards are kept.
func (s *SQLite) DeleteDeck(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM decks WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete deck %s: %w", id, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?;`, id); err != nil {
		return fmt.Errorf("delete cards of deck %s: %w", id, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit deck delete: %w", err)
	}
	return nil
}

func (s *SQLite) Cards(ctx context.Context) ([]models.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, deck_id, front, back, context, is_favorite, created_at, updated_at
		FROM cards
		ORDER BY created_at ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		var card models.Flashcard
		if err := rows.Scan(
			&card.ID,
			&card.DeckID,
			&card.Front,
			&card.Back,
			&card.Context,
			&card.IsFavorite,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

func (s *SQLite) SaveCard(ctx context.Context, card models.Flashcard) error {
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (id, deck_id, front, back, context, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			deck_id = excluded.deck_id,
			front = excluded.front,
			back = excluded.back,
			context = excluded.context,
			is_favorite = excluded.is_favorite,
			updated_at = ?;
	`, card.ID, card.DeckID, card.Front, card.Back, card.Context, card.IsFavorite,
		card.CreatedAt, card.UpdatedAt, now); err != nil {
		return fmt.Errorf("save card %s: %w", card.ID, err)
	}
	return nil
}

func (s *SQLite) DeleteCard(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("delete card %s: %w", id, err)
	}
	return nil
}

func (s *SQLite) Stats(ctx context.Context) ([]models.CardStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT card_id, correct, incorrect, last_reviewed
		FROM card_stats
		ORDER BY card_id ASC;
	`)
	if err != nil {
		return nil, fmt.Errorf("list stats: %w", err)
	}
	defer rows.Close()

	var stats []models.CardStats
	for rows.Next() {
		var stat models.CardStats
		var reviewed sql.NullTime
		if err := rows.Scan(&stat.CardID, &stat.Correct, &stat.Incorrect, &reviewed); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		if reviewed.Valid {
			t := reviewed.Time
			stat.LastReviewed = &t
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

func (s *SQLite) RecordReview(ctx context.Context, cardID string, wasCorrect bool) error {
	correct, incorrect := 0, 1
	if wasCorrect {
		correct, incorrect = 1, 0
	}
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO card_stats (card_id, correct, incorrect, last_reviewed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			correct = correct + excluded.correct,
			incorrect = incorrect + excluded.incorrect,
			last_reviewed = excluded.last_reviewed;
	`, cardID, correct, incorrect, now); err != nil {
		return fmt.Errorf("record review for card %s: %w", cardID, err)
	}
	return nil
}

func (s *SQLite) ReplaceDecks(ctx context.Context, decks []models.Deck) error {
	return s.replace(ctx, `decks`, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO decks (id, name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?);
		`)
		if err != nil {
			return fmt.Errorf("prepare deck insert: %w", err)
		}
		defer stmt.Close()
		for _, deck := range decks {
			if _, err := stmt.ExecContext(ctx, deck.ID, deck.Name, deck.Description, deck.CreatedAt, deck.UpdatedAt); err != nil {
				return fmt.Errorf("insert deck %s: %w", deck.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLite) ReplaceCards(ctx context.Context, cards []models.Flashcard) error {
	return s.replace(ctx, `cards`, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO cards (id, deck_id, front, back, context, is_favorite, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?);
		`)
		if err != nil {
			return fmt.Errorf("prepare card insert: %w", err)
		}
		defer stmt.Close()
		for _, card := range cards {
			if _, err := stmt.ExecContext(ctx,
				card.ID, card.DeckID, card.Front, card.Back, card.Context,
				card.IsFavorite, card.CreatedAt, card.UpdatedAt); err != nil {
				return fmt.Errorf("insert card %s: %w", card.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLite) ReplaceStats(ctx context.Context, stats []models.CardStats) error {
	return s.replace(ctx, `card_stats`, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO card_stats (card_id, correct, incorrect, last_reviewed)
			VALUES (?, ?, ?, ?);
		`)
		if err != nil {
			return fmt.Errorf("prepare stats insert: %w", err)
		}
		defer stmt.Close()
		for _, stat := range stats {
			var reviewed any
			if stat.LastReviewed != nil {
				reviewed = *stat.LastReviewed
			}
			if _, err := stmt.ExecContext(ctx, stat.CardID, stat.Correct, stat.Incorrect, reviewed); err != nil {
				return fmt.Errorf("insert stats for card %s: %w", stat.CardID, err)
			}
		}
		return nil
	})
}

// replace clears a table and refills it inside one transaction.
func (s *SQLite) replace(ctx context.Context, table string, fill func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM `+table+`;`); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err = fill(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", table, err)
	}
	return nil
}

func (s *SQLite) Settings(ctx context.Context) (models.AppSettings, error) {
	var settings models.AppSettings
	var mode string
	row := s.db.QueryRowContext(ctx, `
		SELECT autoplay_delay, default_revision_mode, show_translation
		FROM settings
		WHERE id = 1;
	`)
	if err := row.Scan(&settings.AutoplayDelay, &mode, &settings.ShowTranslationByDefault); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultSettings(), nil
		}
		return models.AppSettings{}, fmt.Errorf("load settings: %w", err)
	}
	settings.DefaultRevisionMode = models.RevisionMode(mode)
	return settings, nil
}

func (s *SQLite) SaveSettings(ctx context.Context, settings models.AppSettings) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, autoplay_delay, default_revision_mode, show_translation)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			autoplay_delay = excluded.autoplay_delay,
			default_revision_mode = excluded.default_revision_mode,
			show_translation = excluded.show_translation;
	`, settings.AutoplayDelay, string(settings.DefaultRevisionMode), settings.ShowTranslationByDefault); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
