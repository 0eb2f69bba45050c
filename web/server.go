package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"avito_harvester/models"
	"avito_harvester/scraper"
	"avito_harvester/storage"
)

// Server exposes the operational HTTP surface: record counts, daemon
// status and manual harvest triggers.
type Server struct {
	store        *storage.PostgresStore
	ops          *storage.SQLiteStore
	orchestrator *scraper.Orchestrator
	srv          *http.Server
}

func NewServer(addr string, store *storage.PostgresStore, ops *storage.SQLiteStore, orchestrator *scraper.Orchestrator) *Server {
	s := &Server{
		store:        store,
		ops:          ops,
		orchestrator: orchestrator,
	}

	r := mux.NewRouter()
	r.HandleFunc("/count", s.handleCount).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/harvest", s.handleHarvest).Methods(http.MethodPost)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) Start() {
	go func() {
		log.Printf("Web server listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Web server error: %v", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	filters := s.orchestrator.Filters()
	names := make([]string, 0, len(filters))
	for _, f := range filters {
		names = append(names, f.String())
	}

	status := map[string]interface{}{
		"paused":  s.orchestrator.IsPaused(),
		"filters": names,
	}

	if s.ops != nil {
		runs, err := s.ops.GetRecentRuns(10)
		if err != nil {
			log.Printf("Error loading recent runs: %v", err)
		} else {
			status["recent_runs"] = runs
		}
	}

	writeJSON(w, http.StatusOK, status)
}

// handleHarvest enqueues a command rather than starting a crawl inline;
// the scheduler picks it up on its next poll.
func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	cmd := models.CmdHarvestNow
	if r.URL.Query().Get("mode") == "full" {
		cmd = models.CmdFullNow
	}

	if s.ops == nil {
		writeError(w, http.StatusServiceUnavailable, errNoCommandQueue)
		return
	}
	if err := s.ops.EnqueueCommand(cmd); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"queued": string(cmd)})
}

var errNoCommandQueue = errors.New("command queue unavailable")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
