package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/asalkeld/fetchbot/standup"
)

type fakeWeekStore struct {
	standups []*standup.Standup
	from, to time.Time
	err      error
}

func (f *fakeWeekStore) ListStandupsInWeek(ctx context.Context, from, to time.Time) ([]*standup.Standup, error) {
	f.from, f.to = from, to
	return f.standups, f.err
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRouter(store *fakeWeekStore) http.Handler {
	return NewRouter(NewHandler(store, quietLogger()), prometheus.NewRegistry())
}

func TestWeeklyReport(t *testing.T) {
	answer := "Worked on X"
	store := &fakeWeekStore{standups: []*standup.Standup{
		{
			ID:        "s1",
			UserID:    "u1",
			ChannelID: "c1",
			State:     standup.StateCompleted,
			Yesterday: &answer,
			CreatedAt: time.Date(2022, 3, 23, 9, 30, 0, 0, time.UTC),
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/standups?date=2022-03-23", nil)
	rec := httptest.NewRecorder()
	newTestRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report struct {
		WeekStart string `json:"weekStart"`
		WeekEnd   string `json:"weekEnd"`
		Standups  []struct {
			ID        string  `json:"id"`
			State     string  `json:"state"`
			Yesterday *string `json:"yesterday"`
		} `json:"standups"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}

	if report.WeekStart != "2022-03-21" || report.WeekEnd != "2022-03-28" {
		t.Errorf("week bounds = %s .. %s", report.WeekStart, report.WeekEnd)
	}
	if len(report.Standups) != 1 {
		t.Fatalf("got %d standups, want 1", len(report.Standups))
	}
	if report.Standups[0].Yesterday == nil || *report.Standups[0].Yesterday != answer {
		t.Errorf("yesterday = %v", report.Standups[0].Yesterday)
	}

	// The store was queried with the same bounds the response reports.
	if store.from.Format("2006-01-02") != "2022-03-21" {
		t.Errorf("queried from %v", store.from)
	}
}

func TestWeeklyReportBadDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/standups?date=yesterday", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeWeekStore{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWeeklyReportStoreFailure(t *testing.T) {
	store := &fakeWeekStore{err: errors.New("down")}

	req := httptest.NewRequest(http.MethodGet, "/standups", nil)
	rec := httptest.NewRecorder()
	newTestRouter(store).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeWeekStore{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeWeekStore{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
