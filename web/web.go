// Package web exposes the read side of the scoreboard over HTTP: health,
// leaderboard, per-user scores and aggregate stats. It never mutates scores
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/spottedbot/spotted/store"
)

// ScoreReader defines the read-only storage operations the web server needs
type ScoreReader interface {
	GetScore(userID string) (points int, err error)
	Top(count int) (entries []store.ScoreEntry, err error)
	Scan() (entries []store.ScoreEntry, err error)
}

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// Server serves the scoreboard read api
type Server struct {
	reader ScoreReader
	mux    *http.ServeMux
	server *http.Server
}

// NewServer creates a web server reading scores from the given reader
func NewServer(addr string, reader ScoreReader) (s *Server) {
	s = new(Server)
	s.reader = reader

	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("/scores/", s.handleScore)
	s.mux.HandleFunc("/stats", s.handleStats)

	s.server = &http.Server{Addr: addr, Handler: s.mux}

	return s
}

// Handler returns the route handler, mostly useful to drive the api in tests
// without binding a listener
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens and serves until Shutdown is called or the listener fails
func (s *Server) Start() (err error) {
	if err = s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown gracefully shuts the server down
func (s *Server) Shutdown(ctx context.Context) (err error) {
	return s.server.Shutdown(ctx)
}

// handleHealth handles GET /health requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "spotted"})
}

// handleLeaderboard handles GET /leaderboard?limit=N requests
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := defaultLeaderboardLimit
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}

		limit = parsed
	}

	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := s.reader.Top(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// handleScore handles GET /scores/{userID} requests
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/scores/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "missing user id")
		return
	}

	points, err := s.reader.GetScore(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read score")
		return
	}

	writeJSON(w, http.StatusOK, store.ScoreEntry{UserID: userID, Points: points})
}

// handleStats handles GET /stats requests. The sum of all scores is reported
// so a zero-sum drift (a sign of partially applied spots) is visible at a
// glance
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	entries, err := s.reader.Scan()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read scores")
		return
	}

	sum := 0
	for _, entry := range entries {
		sum = sum + entry.Points
	}

	writeJSON(w, http.StatusOK, map[string]int{"players": len(entries), "pointsSum": sum})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
