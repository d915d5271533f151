package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/multis/go/internal/i18n"
	"github.com/mcdev12/multis/go/internal/models"
	"github.com/mcdev12/multis/go/internal/players"
	"github.com/mcdev12/multis/go/internal/round/engine"
)

// PlayerService is what the handlers need from the profile store.
type PlayerService interface {
	SavePlayer(ctx context.Context, req players.SavePlayerRequest) (*players.SavePlayerResult, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, name string) (*models.Player, error)
	DeletePlayer(ctx context.Context, name string) error
	Activate(ctx context.Context, name string) (models.ProfileRef, error)
}

// ResultService lists persisted sessions.
type ResultService interface {
	Recent(ctx context.Context, playerID uuid.UUID, limit int) ([]models.SessionResult, error)
}

// Handler serves the REST and WebSocket API.
type Handler struct {
	sessions      *SessionManager
	conns         *ConnectionManager
	players       PlayerService
	results       ResultService
	bundle        *i18n.Bundle
	defaultLocale string
}

type playersResponse struct {
	Players []models.Player  `json:"players"`
	Avatars []players.Avatar `json:"avatars"`
	Colors  []players.Color  `json:"colors"`
}

type startSessionRequest struct {
	Player string `json:"player"`
	Locale string `json:"locale"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type localeResponse struct {
	Locale   string            `json:"locale"`
	Messages map[string]string `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Get("/ws/session", h.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		r.Get("/players", h.handleListPlayers)
		r.Post("/players", h.handleSavePlayer)
		r.Delete("/players/{name}", h.handleDeletePlayer)
		r.Get("/players/{name}/results", h.handlePlayerResults)

		r.Post("/sessions", h.handleStartSession)
		r.Get("/sessions/{id}", h.handleGetSession)
		r.Post("/sessions/{id}/keys", h.handleKey)
		r.Post("/sessions/{id}/advance", h.handleAdvance)
		r.Delete("/sessions/{id}", h.handleStopSession)

		r.Get("/locales/{locale}", h.handleLocale)
	})
	return r
}

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":              true,
		"active_sessions": h.sessions.ActiveSessions(),
	})
}

func (h *Handler) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	list, err := h.players.ListPlayers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playersResponse{Players: list, Avatars: players.Avatars, Colors: players.Colors})
}

func (h *Handler) handleSavePlayer(w http.ResponseWriter, r *http.Request) {
	var req players.SavePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	res, err := h.players.SavePlayer(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.players.DeletePlayer(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePlayerResults(w http.ResponseWriter, r *http.Request) {
	player, err := h.players.GetPlayer(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	res, err := h.results.Recent(r.Context(), player.ID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if res == nil {
		res = []models.SessionResult{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	ref, err := h.players.Activate(r.Context(), req.Player)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := h.sessions.StartSession(ref, h.locale(r, req.Locale))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (h *Handler) handleKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.sessions.Key(r.Context(), sess.ID, req.Key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Advance(sess.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleStopSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.sessions.StopSession(sess.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLocale(w http.ResponseWriter, r *http.Request) {
	tag := h.bundle.Match(chi.URLParam(r, "locale"))
	writeJSON(w, http.StatusOK, localeResponse{
		Locale:   tag.String(),
		Messages: h.bundle.Messages(tag.String()),
	})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		http.Error(w, "invalid session_id", http.StatusBadRequest)
		return
	}
	sess, err := h.sessions.Session(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err := h.conns.UpgradeConnection(w, r, sess.ID, sess.View(), h.sessions); err != nil {
		// the upgrader has already replied to the client
		log.Error().Err(err).Str("session_id", id.String()).Msg("failed to upgrade WebSocket connection")
	}
}

// session resolves the {id} URL parameter, replying on failure.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid session id"})
		return nil, false
	}
	sess, err := h.sessions.Session(id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

// locale prefers the request body, then Accept-Language, then the server default.
func (h *Handler) locale(r *http.Request, requested string) string {
	if requested != "" {
		return requested
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		return al
	}
	return h.defaultLocale
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, players.ErrInvalidPlayer), errors.Is(err, ErrUnknownKey):
		status = http.StatusBadRequest
	case errors.Is(err, players.ErrPlayerNotFound), errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrSessionClosed):
		status = http.StatusConflict
	case errors.Is(err, ErrShuttingDown):
		status = http.StatusServiceUnavailable
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
