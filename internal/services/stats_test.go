package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"flashdeck/internal/store"
)

func TestStatsOverview(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	decks := NewDeckService(m)
	svc := NewStatsService(m)

	spanish, err := decks.CreateDeck(ctx, "Spanish", "")
	require.NoError(t, err)
	german, err := decks.CreateDeck(ctx, "German", "")
	require.NoError(t, err)

	hola, err := decks.CreateCard(ctx, spanish.ID, "hola", "hello", "")
	require.NoError(t, err)
	gato, err := decks.CreateCard(ctx, spanish.ID, "gato", "cat", "")
	require.NoError(t, err)
	hallo, err := decks.CreateCard(ctx, german.ID, "hallo", "hello", "")
	require.NoError(t, err)

	require.NoError(t, m.RecordReview(ctx, hola.ID, true))
	require.NoError(t, m.RecordReview(ctx, hola.ID, true))
	require.NoError(t, m.RecordReview(ctx, gato.ID, false))
	require.NoError(t, m.RecordReview(ctx, hallo.ID, true))

	t.Run("Global", func(t *testing.T) {
		overview, err := svc.Overview(ctx, "")
		require.NoError(t, err)
		require.Equal(t, 3, overview.TotalCards)
		require.Equal(t, 4, overview.Summary.TotalReviews)
		require.Equal(t, 3, overview.Summary.TotalCorrect)
		require.Equal(t, 1, overview.Summary.TotalIncorrect)
		require.Equal(t, 75.0, overview.Summary.SuccessRate)
		require.Empty(t, overview.NeverReviewed)

		require.NotEmpty(t, overview.MostDifficult)
		require.Equal(t, gato.ID, overview.MostDifficult[0].CardID)
		require.Equal(t, "gato", overview.MostDifficult[0].Front)
		require.Equal(t, 0.0, overview.MostDifficult[0].SuccessRate)
	})

	t.Run("SingleDeck", func(t *testing.T) {
		overview, err := svc.Overview(ctx, spanish.ID)
		require.NoError(t, err)
		require.Equal(t, 2, overview.TotalCards)
		require.Equal(t, 3, overview.Summary.TotalReviews)
		require.Equal(t, 2, overview.Summary.TotalCorrect)
	})

	t.Run("NeverReviewed", func(t *testing.T) {
		nunca, err := decks.CreateCard(ctx, spanish.ID, "nunca", "never", "")
		require.NoError(t, err)

		overview, err := svc.Overview(ctx, spanish.ID)
		require.NoError(t, err)
		require.Equal(t, []string{nunca.ID}, overview.NeverReviewed)
	})
}
