package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"media-stage/internal/feed"
	"media-stage/internal/handlers"
	"media-stage/internal/mediatypes"
	"media-stage/internal/metrics"
	"media-stage/internal/snapshots"
)

func TestStatsProvider(t *testing.T) {
	session := feed.NewSession(feed.Options{Settle: time.Hour})
	t.Cleanup(session.Close)

	if _, err := session.Render("p", []mediatypes.Attachment{{ID: "a", URL: "a.jpg"}, {ID: "b", URL: "b.jpg"}}, 400); err != nil {
		t.Fatalf("Render: %v", err)
	}

	t.Run("without snapshot cache", func(t *testing.T) {
		var provider metrics.StatsProvider = statsProvider{session: session}
		stats := provider.GetStats()
		if stats.CommittedPlans != 1 {
			t.Errorf("CommittedPlans = %d, want 1", stats.CommittedPlans)
		}
		if stats.SnapshotCacheItems != 0 {
			t.Errorf("SnapshotCacheItems = %d, want 0", stats.SnapshotCacheItems)
		}
	})

	t.Run("with snapshot cache", func(t *testing.T) {
		cache := snapshots.NewCache(nil, time.Minute, nil)
		if err := cache.Record(t.Context(), snapshots.Entry{AttachmentID: "a", Ratio: 2}); err != nil {
			t.Fatal(err)
		}
		stats := statsProvider{session: session, cache: cache}.GetStats()
		if stats.SnapshotCacheItems != 1 {
			t.Errorf("SnapshotCacheItems = %d, want 1", stats.SnapshotCacheItems)
		}
	})
}

func TestSetupRouter(t *testing.T) {
	session := feed.NewSession(feed.Options{Settle: time.Hour})
	t.Cleanup(session.Close)
	h := handlers.New(session, nil, nil, nil)

	tests := []struct {
		name           string
		metricsEnabled bool
		wantMetrics    int
	}{
		{name: "metrics enabled", metricsEnabled: true, wantMetrics: http.StatusOK},
		{name: "metrics disabled", metricsEnabled: false, wantMetrics: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(h, tt.metricsEnabled)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
			if w.Code != tt.wantMetrics {
				t.Errorf("GET /metrics = %d, want %d", w.Code, tt.wantMetrics)
			}

			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", http.NoBody))
			if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "alive") {
				t.Errorf("GET /livez = %d %q", w.Code, w.Body.String())
			}
		})
	}
}
