// Package web serves the read-only HTTP surface: the weekly standup
// report, health and metrics.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/asalkeld/fetchbot/common"
	"github.com/asalkeld/fetchbot/standup"
)

// WeekStore is the reporting query the handler needs.
type WeekStore interface {
	ListStandupsInWeek(ctx context.Context, from, to time.Time) ([]*standup.Standup, error)
}

type Handler struct {
	store  WeekStore
	logger *log.Logger
	now    func() time.Time
}

func NewHandler(store WeekStore, logger *log.Logger) *Handler {
	return &Handler{store: store, logger: logger, now: time.Now}
}

// NewRouter wires the report endpoint, health check and prometheus
// metrics.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Get("/standups", h.WeeklyReport)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

type reportEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ChannelID string    `json:"channelId"`
	State     string    `json:"state"`
	Yesterday *string   `json:"yesterday"`
	CreatedAt time.Time `json:"createdAt"`
}

type weeklyReport struct {
	WeekStart string        `json:"weekStart"`
	WeekEnd   string        `json:"weekEnd"`
	Standups  []reportEntry `json:"standups"`
}

// WeeklyReport returns every standup created in the calendar week that
// contains the date query parameter (defaulting to today).
func (h *Handler) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(common.DateFormat, raw)
		if err != nil {
			http.Error(w, "invalid date, want "+common.DateFormat, http.StatusBadRequest)
			return
		}
		day = parsed
	}

	from, to := common.WeekBounds(day)
	standups, err := h.store.ListStandupsInWeek(r.Context(), from, to)
	if err != nil {
		h.logger.WithFields(log.Fields{"error": err}).Error("Weekly report query failed.")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	report := weeklyReport{
		WeekStart: from.Format(common.DateFormat),
		WeekEnd:   to.Format(common.DateFormat),
		Standups:  make([]reportEntry, 0, len(standups)),
	}
	for _, s := range standups {
		report.Standups = append(report.Standups, reportEntry{
			ID:        s.ID,
			UserID:    s.UserID,
			ChannelID: s.ChannelID,
			State:     string(s.State),
			Yesterday: s.Yesterday,
			CreatedAt: s.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.WithFields(log.Fields{"error": err}).Error("Fail to encode weekly report.")
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
