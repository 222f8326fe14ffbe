package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"flashdeck/internal/models"
	"flashdeck/internal/store"
)

func newTestSession(t *testing.T) (*Session, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return New(mem), mem
}

func seedCards(t *testing.T, mem *store.Memory, cards ...models.Flashcard) {
	t.Helper()
	for _, c := range cards {
		require.NoError(t, mem.SaveCard(context.Background(), c))
	}
}

func TestEmptyScopeIsEmptyState(t *testing.T) {
	s, _ := newTestSession(t)
	s.SetScope([]models.Flashcard{card("a", "d1", false)}, nil, false, false)

	require.Equal(t, StateEmpty, s.State())
	require.Zero(t, s.Len())
	_, ok := s.Current()
	require.False(t, ok)
}

func TestJudgeWithoutCurrentIsNoOp(t *testing.T) {
	s, mem := newTestSession(t)
	s.SetScope(nil, []string{"d1"}, false, false)

	require.NoError(t, s.Judge(context.Background(), true))
	require.Equal(t, Tally{}, s.Tally())

	stats, err := mem.Stats(context.Background())
	require.NoError(t, err)
	require.Empty(t, stats)

	_, changed, err := s.ToggleFavorite(context.Background())
	require.NoError(t, err)
	require.False(t, changed)
}

func TestRevealThenJudge(t *testing.T) {
	s, mem := newTestSession(t)
	all := []models.Flashcard{card("a", "d1", false)}
	s.SetScope(all, []string{"d1"}, false, false)

	require.Equal(t, StatePresenting, s.State())
	s.Reveal()
	require.Equal(t, StateRevealed, s.State())

	require.NoError(t, s.Judge(context.Background(), false))
	require.Equal(t, StatePresenting, s.State(), "judging hides the answer side")
	require.Equal(t, Tally{Incorrect: 1}, s.Tally())
	require.True(t, s.InWrongSet("a"))

	stats, err := mem.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, "a", stats[0].CardID)
	require.Equal(t, 0, stats[0].Correct)
	require.Equal(t, 1, stats[0].Incorrect)
	require.NotNil(t, stats[0].LastReviewed)
}

func TestWrongSetAddAndRemove(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	all := []models.Flashcard{card("a", "d1", false)}
	s.SetScope(all, []string{"d1"}, false, false)

	require.NoError(t, s.Judge(ctx, false))
	require.True(t, s.InWrongSet("a"))

	// Adding again is idempotent: still one entry.
	require.NoError(t, s.Judge(ctx, false))
	require.Equal(t, 1, s.WrongCount())

	require.NoError(t, s.Judge(ctx, true))
	require.False(t, s.InWrongSet("a"))

	// Repeated correct judgments keep it out.
	require.NoError(t, s.Judge(ctx, true))
	require.False(t, s.InWrongSet("a"))
	require.Zero(t, s.WrongCount())
}

func TestAdvanceWrapsAndReshuffles(t *testing.T) {
	s, _ := newTestSession(t)
	all := []models.Flashcard{
		card("a", "d1", false),
		card("b", "d1", false),
		card("c", "d1", false),
	}
	s.SetScope(all, []string{"d1"}, false, false)

	require.Equal(t, 0, s.Index())
	s.Advance()
	require.Equal(t, 1, s.Index())
	s.Advance()
	require.Equal(t, 2, s.Index())

	s.Reveal()
	s.Advance()
	require.Equal(t, 0, s.Index(), "exhaustion wraps to the start of a reshuffled set")
	require.False(t, s.Revealed())
	require.Equal(t, 3, s.Len(), "the pool itself is unchanged")
}

func TestDrawResetsPosition(t *testing.T) {
	s, _ := newTestSession(t)
	all := []models.Flashcard{card("a", "d1", false), card("b", "d1", false)}
	s.SetScope(all, []string{"d1"}, false, false)

	s.Advance()
	s.Reveal()
	s.Draw()

	require.Equal(t, 0, s.Index())
	require.False(t, s.Revealed())
	require.Equal(t, 2, s.Len())
}

func TestTallySurvivesScopeChange(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	all := []models.Flashcard{card("a", "d1", false), card("b", "d2", false)}

	s.SetScope(all, []string{"d1"}, false, false)
	require.NoError(t, s.Judge(ctx, true))

	s.SetScope(all, []string{"d2"}, false, false)
	require.Equal(t, Tally{Correct: 1}, s.Tally(), "tally is session-lifetime")
}

func TestWrongSetNotPrunedOnScopeChange(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	all := []models.Flashcard{card("a", "d1", false), card("b", "d2", false)}

	s.SetScope(all, []string{"d1"}, false, false)
	require.NoError(t, s.Judge(ctx, false)) // "a" marked wrong

	// Scope moves away: "a" stops matching but stays in the set.
	s.SetScope(all, []string{"d2"}, false, true)
	require.Zero(t, s.Len())
	require.True(t, s.InWrongSet("a"))

	// Scope reverts: "a" matches again.
	s.SetScope(all, []string{"d1"}, false, true)
	require.Equal(t, 1, s.Len())
	current, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "a", current.ID)
}

func TestToggleFavoritePersistsAndPatchesWorkingSet(t *testing.T) {
	s, mem := newTestSession(t)
	ctx := context.Background()
	original := card("a", "d1", false)
	seedCards(t, mem, original)
	s.SetScope([]models.Flashcard{original}, []string{"d1"}, false, false)

	s.Reveal()
	updated, changed, err := s.ToggleFavorite(ctx)
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, updated.IsFavorite)
	require.True(t, s.Revealed(), "toggling does not change the revealed side")
	require.Equal(t, 0, s.Index())

	current, ok := s.Current()
	require.True(t, ok)
	require.True(t, current.IsFavorite)

	cards, err := mem.Cards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.True(t, cards[0].IsFavorite)
}

func TestReviewFlowAcrossTwoCards(t *testing.T) {
	s, mem := newTestSession(t)
	ctx := context.Background()
	cardA := models.Flashcard{ID: "A", DeckID: "spanish", Front: "hola", Back: "hello"}
	cardB := models.Flashcard{ID: "B", DeckID: "spanish", Front: "gato", Back: "cat"}
	s.SetScope([]models.Flashcard{cardA, cardB}, []string{"spanish"}, false, false)

	// Judge A correct and B incorrect, in whatever order the shuffle dealt.
	for i := 0; i < 2; i++ {
		current, ok := s.Current()
		require.True(t, ok)
		require.NoError(t, s.Judge(ctx, current.ID == "A"))
	}

	// Find B again and judge it correct this time.
	for {
		current, ok := s.Current()
		require.True(t, ok)
		if current.ID == "B" {
			break
		}
		s.Advance()
	}
	require.NoError(t, s.Judge(ctx, true))

	require.Equal(t, Tally{Correct: 2, Incorrect: 1}, s.Tally())
	require.Zero(t, s.WrongCount(), "B was removed after its correct judgment")

	stats, err := mem.Stats(ctx)
	require.NoError(t, err)
	byCard := make(map[string]models.CardStats, len(stats))
	for _, st := range stats {
		byCard[st.CardID] = st
	}
	require.Equal(t, 1, byCard["A"].Correct)
	require.Equal(t, 0, byCard["A"].Incorrect)
	require.Equal(t, 1, byCard["B"].Correct)
	require.Equal(t, 1, byCard["B"].Incorrect)
}
