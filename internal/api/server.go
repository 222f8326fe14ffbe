package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"flashdeck/internal/models"
	"flashdeck/internal/services"
	"flashdeck/internal/session"
)

const maxImportBytes = 8 << 20 // 8 MB

// Server exposes the application over a localhost JSON API. It owns the
// single live review session; all session access is serialized by mu, so
// one user action at a time mutates the state machine.
type Server struct {
	mux      *http.ServeMux
	decks    *services.DeckService
	settings *services.SettingsService
	stats    *services.StatsService
	transfer *services.TransferService

	mu            sync.Mutex
	session       *session.Session
	allCards      []models.Flashcard
	deckIDs       []string
	onlyFavorites bool
	onlyWrong     bool
	reversed      bool
	autoplay      *session.Autoplay
}

func NewServer(
	decks *services.DeckService,
	settings *services.SettingsService,
	stats *services.StatsService,
	transfer *services.TransferService,
	recorder session.Recorder,
) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		decks:    decks,
		settings: settings,
		stats:    stats,
		transfer: transfer,
		session:  session.New(recorder),
	}
	s.autoplay = session.NewAutoplay(time.Duration(models.DefaultSettings().AutoplayDelay)*time.Millisecond, s.autoAdvance)
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/decks", s.handleDecks)
	s.mux.HandleFunc("/api/decks/", s.handleDeckByID)
	s.mux.HandleFunc("/api/cards", s.handleCards)
	s.mux.HandleFunc("/api/cards/", s.handleCardByID)
	s.mux.HandleFunc("/api/session", s.handleSession)
	s.mux.HandleFunc("/api/session/", s.handleSessionAction)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/api/export", s.handleExport)
	s.mux.HandleFunc("/api/import", s.handleImport)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- decks -----

type deckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		decks, err := s.decks.ListDecks(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if decks == nil {
			decks = []services.DeckSummary{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"decks": decks})
	case http.MethodPost:
		var payload deckRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		deck, err := s.decks.CreateDeck(r.Context(), payload.Name, payload.Description)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, deck)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleDeckByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/decks/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var payload deckRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		deck, err := s.decks.UpdateDeck(r.Context(), id, payload.Name, payload.Description)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, deck)
	case http.MethodDelete:
		if err := s.decks.DeleteDeck(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

// ----- cards -----

type cardRequest struct {
	DeckID     string `json:"deckId"`
	Front      string `json:"front"`
	Back       string `json:"back"`
	Context    string `json:"context"`
	IsFavorite bool   `json:"isFavorite"`
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var (
			cards []models.Flashcard
			err   error
		)
		if deckID := r.URL.Query().Get("deck"); deckID != "" {
			cards, err = s.decks.CardsByDeck(r.Context(), deckID)
		} else {
			cards, err = s.decks.ListCards(r.Context())
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if cards == nil {
			cards = []models.Flashcard{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"cards": cards, "total": len(cards)})
	case http.MethodPost:
		var payload cardRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		card, err := s.decks.CreateCard(r.Context(), payload.DeckID, payload.Front, payload.Back, payload.Context)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, card)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleCardByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/cards/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var payload cardRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		card, err := s.decks.UpdateCard(r.Context(), models.Flashcard{
			ID:         id,
			DeckID:     payload.DeckID,
			Front:      payload.Front,
			Back:       payload.Back,
			Context:    payload.Context,
			IsFavorite: payload.IsFavorite,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	case http.MethodDelete:
		if err := s.decks.DeleteCard(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

// ----- session -----

type configureRequest struct {
	DeckIDs       []string `json:"deckIds"`
	OnlyFavorites bool     `json:"onlyFavorites"`
	OnlyWrong     bool     `json:"onlyWrong"`
	Reversed      bool     `json:"reversed"`
}

type judgeRequest struct {
	Correct bool `json:"correct"`
}

type autoplayRequest struct {
	Enabled bool `json:"enabled"`
	Delay   int  `json:"delay,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		state := s.sessionState()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, state)
	case http.MethodPost:
		var payload configureRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		cards, err := s.decks.ListCards(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		s.mu.Lock()
		s.allCards = cards
		s.deckIDs = payload.DeckIDs
		s.onlyFavorites = payload.OnlyFavorites
		s.onlyWrong = payload.OnlyWrong
		s.reversed = payload.Reversed
		s.session.SetScope(s.allCards, s.deckIDs, s.onlyFavorites, s.onlyWrong)
		state := s.sessionState()
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, state)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	action := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/session/"), "/")

	switch action {
	case "reveal":
		s.mu.Lock()
		s.session.Reveal()
		state := s.sessionState()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, state)
	case "judge":
		var payload judgeRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		s.mu.Lock()
		err := s.session.Judge(r.Context(), payload.Correct)
		state := s.sessionState()
		s.mu.Unlock()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, state)
	case "next":
		s.mu.Lock()
		s.session.Advance()
		state := s.sessionState()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, state)
	case "draw":
		s.mu.Lock()
		s.session.Draw()
		state := s.sessionState()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, state)
	case "favorite":
		s.mu.Lock()
		card, changed, err := s.session.ToggleFavorite(r.Context())
		if err == nil && changed {
			// The card list is a selector input: patch it and re-derive the
			// working set so later filtering sees the new flag.
			for i := range s.allCards {
				if s.allCards[i].ID == card.ID {
					s.allCards[i] = card
					break
				}
			}
			s.session.SetScope(s.allCards, s.deckIDs, s.onlyFavorites, s.onlyWrong)
		}
		state := s.sessionState()
		s.mu.Unlock()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, state)
	case "autoplay":
		var payload autoplayRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if payload.Enabled {
			delay := payload.Delay
			if delay <= 0 {
				settings, err := s.settings.Get(r.Context())
				if err != nil {
					writeError(w, http.StatusInternalServerError, err.Error())
					return
				}
				delay = settings.AutoplayDelay
			}
			s.autoplay.SetDelay(time.Duration(delay) * time.Millisecond)
			s.autoplay.Start()
		} else {
			s.autoplay.Stop()
		}
		writeJSON(w, http.StatusOK, map[string]bool{"running": s.autoplay.Running()})
	default:
		http.NotFound(w, r)
	}
}

// autoAdvance is the autoplay callback; it takes the session lock like any
// other user action.
func (s *Server) autoAdvance() {
	s.mu.Lock()
	s.session.Advance()
	s.mu.Unlock()
}

type cardView struct {
	ID         string `json:"id"`
	Shown      string `json:"shown"`
	Context    string `json:"context,omitempty"`
	IsFavorite bool   `json:"isFavorite"`
	IsWrong    bool   `json:"isWrong"`
}

type sessionState struct {
	State      session.State `json:"state"`
	Card       *cardView     `json:"card"`
	Position   int           `json:"position"`
	Total      int           `json:"total"`
	Tally      session.Tally `json:"tally"`
	Reversed   bool          `json:"reversed"`
	WrongCount int           `json:"wrongCount"`
}

// sessionState builds the response payload. Callers hold mu.
func (s *Server) sessionState() sessionState {
	state := sessionState{
		State:      s.session.State(),
		Total:      s.session.Len(),
		Tally:      s.session.Tally(),
		Reversed:   s.reversed,
		WrongCount: s.session.WrongCount(),
	}
	if card, ok := s.session.Current(); ok {
		state.Position = s.session.Index() + 1
		state.Card = &cardView{
			ID:         card.ID,
			Shown:      session.Side(card, s.reversed, s.session.Revealed()),
			Context:    card.Context,
			IsFavorite: card.IsFavorite,
			IsWrong:    s.session.InWrongSet(card.ID),
		}
	}
	return state
}

// ----- stats, settings, transfer -----

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	overview, err := s.stats.Overview(r.Context(), r.URL.Query().Get("deck"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.Get(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var payload models.AppSettings
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if err := s.settings.Save(r.Context(), payload); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	data, err := s.transfer.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="flashdeck-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	data, err := readBody(r, maxImportBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if err := s.transfer.Import(r.Context(), data); err != nil {
		if errors.Is(err, services.ErrMalformedData) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

// ----- helpers -----

func readBody(r *http.Request, limit int64) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, limit))
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrTextRequired),
		errors.Is(err, services.ErrUnknownMode):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDeckNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
