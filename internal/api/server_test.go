package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"flashdeck/internal/models"
	"flashdeck/internal/services"
	"flashdeck/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	server := NewServer(
		services.NewDeckService(m),
		services.NewSettingsService(m),
		services.NewStatsService(m),
		services.NewTransferService(m),
		m,
	)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, m
}

func doJSON(t *testing.T, method, url string, payload any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req, err := http.NewRequest(method, url, &body)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var doc map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	return resp, doc
}

func createDeckWithCards(t *testing.T, ts *httptest.Server, name string, fronts ...string) string {
	t.Helper()
	resp, doc := doJSON(t, http.MethodPost, ts.URL+"/api/decks", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var deckID string
	require.NoError(t, json.Unmarshal(doc["id"], &deckID))

	for _, front := range fronts {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/cards", map[string]string{
			"deckId": deckID,
			"front":  front,
			"back":   front + "-back",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	return deckID
}

type stateDoc struct {
	State    string `json:"state"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Card     *struct {
		ID         string `json:"id"`
		Shown      string `json:"shown"`
		IsFavorite bool   `json:"isFavorite"`
		IsWrong    bool   `json:"isWrong"`
	} `json:"card"`
	Tally struct {
		Correct   int `json:"correct"`
		Incorrect int `json:"incorrect"`
	} `json:"tally"`
	WrongCount int `json:"wrongCount"`
}

func getState(t *testing.T, resp *http.Response, doc map[string]json.RawMessage) stateDoc {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	var state stateDoc
	require.NoError(t, json.Unmarshal(raw, &state))
	return state
}

func TestSessionFlow(t *testing.T) {
	ts, m := newTestServer(t)
	deckID := createDeckWithCards(t, ts, "Spanish", "hola", "gato")

	resp, doc := doJSON(t, http.MethodPost, ts.URL+"/api/session", map[string]any{
		"deckIds": []string{deckID},
	})
	state := getState(t, resp, doc)
	require.Equal(t, "presenting", state.State)
	require.Equal(t, 2, state.Total)
	require.Equal(t, 1, state.Position)
	require.NotNil(t, state.Card)

	resp, doc = doJSON(t, http.MethodPost, ts.URL+"/api/session/reveal", nil)
	state = getState(t, resp, doc)
	require.Equal(t, "revealed", state.State)

	resp, doc = doJSON(t, http.MethodPost, ts.URL+"/api/session/judge", map[string]bool{"correct": false})
	state = getState(t, resp, doc)
	require.Equal(t, "presenting", state.State)
	require.Equal(t, 1, state.Tally.Incorrect)
	require.Equal(t, 1, state.WrongCount)

	stats, err := m.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	require.Equal(t, 1, stats[0].Incorrect)
}

func TestSessionEmptyWithNoFavorites(t *testing.T) {
	ts, _ := newTestServer(t)
	deckID := createDeckWithCards(t, ts, "Spanish", "hola", "gato", "perro")

	resp, doc := doJSON(t, http.MethodPost, ts.URL+"/api/session", map[string]any{
		"deckIds":       []string{deckID},
		"onlyFavorites": true,
	})
	state := getState(t, resp, doc)
	require.Equal(t, "empty", state.State)
	require.Zero(t, state.Total)
	require.Nil(t, state.Card)

	// Judging with no current card is a no-op, not an error.
	resp, doc = doJSON(t, http.MethodPost, ts.URL+"/api/session/judge", map[string]bool{"correct": true})
	state = getState(t, resp, doc)
	require.Zero(t, state.Tally.Correct)
}

func TestSessionFavoriteToggleReselects(t *testing.T) {
	ts, _ := newTestServer(t)
	deckID := createDeckWithCards(t, ts, "Spanish", "hola")

	resp, doc := doJSON(t, http.MethodPost, ts.URL+"/api/session", map[string]any{
		"deckIds": []string{deckID},
	})
	state := getState(t, resp, doc)
	require.False(t, state.Card.IsFavorite)

	resp, doc = doJSON(t, http.MethodPost, ts.URL+"/api/session/favorite", nil)
	state = getState(t, resp, doc)
	require.True(t, state.Card.IsFavorite)

	// The updated list feeds the selector: favorites-only now matches.
	resp, doc = doJSON(t, http.MethodPost, ts.URL+"/api/session", map[string]any{
		"deckIds":       []string{deckID},
		"onlyFavorites": true,
	})
	state = getState(t, resp, doc)
	require.Equal(t, 1, state.Total)
}

func TestReversedSessionShowsBackFirst(t *testing.T) {
	ts, _ := newTestServer(t)
	deckID := createDeckWithCards(t, ts, "Spanish", "hola")

	resp, doc := doJSON(t, http.MethodPost, ts.URL+"/api/session", map[string]any{
		"deckIds":  []string{deckID},
		"reversed": true,
	})
	state := getState(t, resp, doc)
	require.Equal(t, "hola-back", state.Card.Shown)

	resp, doc = doJSON(t, http.MethodPost, ts.URL+"/api/session/reveal", nil)
	state = getState(t, resp, doc)
	require.Equal(t, "hola", state.Card.Shown)
}

func TestDeleteDeckCascadesOverHTTP(t *testing.T) {
	ts, _ := newTestServer(t)
	deckID := createDeckWithCards(t, ts, "Spanish", "hola", "gato")
	keepID := createDeckWithCards(t, ts, "German", "hallo")

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/decks/%s", ts.URL, deckID), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, doc := doJSON(t, http.MethodGet, ts.URL+"/api/cards", nil)
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var cards []models.Flashcard
	require.NoError(t, json.Unmarshal(doc["cards"], &cards))
	require.Len(t, cards, 1)
	require.Equal(t, keepID, cards[0].DeckID)
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	ts, _ := newTestServer(t)
	createDeckWithCards(t, ts, "Spanish", "hola")

	resp, err := http.Post(ts.URL+"/api/import", "application/json", bytes.NewBufferString(`{"decks": [`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nothing was replaced.
	resp2, doc := doJSON(t, http.MethodGet, ts.URL+"/api/decks", nil)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var decks []services.DeckSummary
	require.NoError(t, json.Unmarshal(doc["decks"], &decks))
	require.Len(t, decks, 1)
}

func TestSettingsValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, doc := doJSON(t, http.MethodGet, ts.URL+"/api/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var delay int
	require.NoError(t, json.Unmarshal(doc["autoplayDelay"], &delay))
	require.Equal(t, 3000, delay)

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/settings", models.AppSettings{
		AutoplayDelay:       2000,
		DefaultRevisionMode: "sideways",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
