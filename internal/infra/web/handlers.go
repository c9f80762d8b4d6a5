package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"tefillin-reminder-bot/internal/domain/model"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"postgres": "ok", "redis": "ok"}
	healthy := true
	if err := s.db.Ping(ctx); err != nil {
		status["postgres"] = err.Error()
		healthy = false
	}
	if err := s.cache.Ping(ctx); err != nil {
		status["redis"] = err.Error()
		healthy = false
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

// handleUsage serves the same report as the bot's /usage command, as JSON.
// The optional 'days' query parameter is the trailing window.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil {
		days = v
	}

	rows, summary, days, err := s.stats.Usage(r.Context(), days, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("usage query failed")
		http.Error(w, "Failed to get usage", http.StatusInternalServerError)
		return
	}

	response := struct {
		Days    int                `json:"days"`
		Rows    []model.UsageRow   `json:"rows"`
		Summary model.UsageSummary `json:"summary"`
	}{
		Days:    days,
		Rows:    rows,
		Summary: summary,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// handleDailyStats returns the recent nightly rollup rows, newest first.
func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil {
		days = v
	}

	stats, err := s.stats.RecentDaily(r.Context(), days)
	if err != nil {
		s.log.Error().Err(err).Msg("daily stats query failed")
		http.Error(w, "Failed to get daily stats", http.StatusInternalServerError)
		return
	}

	response := struct {
		Data []model.DailyStats `json:"data"`
	}{
		Data: stats,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
