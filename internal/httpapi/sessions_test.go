package httpapi

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/antoniostano/caretrack/internal/records"
)

func sessionBody(clientID int64, duration string, startedAt time.Time) map[string]any {
	return map[string]any{
		"client_id":  clientID,
		"duration":   duration,
		"started_at": startedAt.Format(time.RFC3339),
		"ended_at":   startedAt.Add(time.Hour).Format(time.RFC3339),
		"comments":   "home visit",
	}
}

func TestRecordSession(t *testing.T) {
	ts := newTestServer(t, nil)
	c := seedClient(t, ts)
	now := time.Now().UTC()

	res := ts.do(t, http.MethodPost, "/api/hours", sessionBody(c.ID, "1 hour", now.Add(-time.Hour)))
	expectStatus(t, res, http.StatusCreated)
	var created recordSessionResponse
	decodeBody(t, res, &created)
	if created.RecordedHours.ID == 0 || created.RecordedHours.ClientID != c.ID {
		t.Fatalf("unexpected recorded session: %+v", created.RecordedHours)
	}
	if created.RecordedHours.Duration != records.Duration(time.Hour) {
		t.Fatalf("duration = %v, want 1h", created.RecordedHours.Duration)
	}

	missing := sessionBody(c.ID, "1 hour", now)
	delete(missing, "started_at")
	expectStatus(t, ts.do(t, http.MethodPost, "/api/hours", missing), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/sessions", sessionBody(c.ID, "soon", now)), http.StatusBadRequest)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/sessions", sessionBody(c.ID+100, "1h", now)), http.StatusBadRequest)

	numeric := sessionBody(c.ID, "", now.Add(-time.Hour))
	numeric["client_id"] = fmt.Sprint(c.ID)
	numeric["duration"] = 7200
	res = ts.do(t, http.MethodPost, "/api/hours", numeric)
	expectStatus(t, res, http.StatusCreated)
	decodeBody(t, res, &created)
	if created.RecordedHours.Duration != records.Duration(2*time.Hour) {
		t.Fatalf("numeric duration = %v, want 7200 seconds", created.RecordedHours.Duration)
	}

	res = ts.do(t, http.MethodGet, "/api/sessions", nil)
	expectStatus(t, res, http.StatusOK)
	var list []records.Session
	decodeBody(t, res, &list)
	if len(list) != 2 {
		t.Fatalf("sessions = %d, want 2", len(list))
	}
}

func TestDeleteClientWithSessionsConflicts(t *testing.T) {
	ts := newTestServer(t, nil)
	c := seedClient(t, ts)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/hours", sessionBody(c.ID, "30m", time.Now().UTC())), http.StatusCreated)
	expectStatus(t, ts.do(t, http.MethodDelete, fmt.Sprintf("/api/clients/%d", c.ID), nil), http.StatusConflict)
}

func TestWeeklyEarnings(t *testing.T) {
	ts := newTestServer(t, nil)
	c := seedClient(t, ts)
	path := fmt.Sprintf("/api/clients/%d/earnings", c.ID)
	now := time.Now().UTC()

	expectStatus(t, ts.do(t, http.MethodPost, "/api/hours", sessionBody(c.ID, "3 hours", now.Add(-10*24*time.Hour))), http.StatusCreated)
	expectStatus(t, ts.do(t, http.MethodGet, path, nil), http.StatusNotFound)

	expectStatus(t, ts.do(t, http.MethodPost, "/api/hours", sessionBody(c.ID, "2 hours", now.Add(-2*24*time.Hour))), http.StatusCreated)
	res := ts.do(t, http.MethodGet, path, nil)
	expectStatus(t, res, http.StatusOK)
	var earnings records.Earnings
	decodeBody(t, res, &earnings)
	if earnings.TotalEarnings != 2 {
		t.Fatalf("total_earnings = %v, want 2", earnings.TotalEarnings)
	}

	expectStatus(t, ts.do(t, http.MethodGet, "/api/clients/999/earnings", nil), http.StatusNotFound)
}

func TestEarningsSummary(t *testing.T) {
	ts := newTestServer(t, nil)
	expectStatus(t, ts.do(t, http.MethodGet, "/api/clients/earnings-summary", nil), http.StatusNotFound)

	a := seedClient(t, ts)
	b := seedClient(t, ts)
	now := time.Now().UTC()
	expectStatus(t, ts.do(t, http.MethodPost, "/api/hours", sessionBody(a.ID, "1h", now)), http.StatusCreated)
	expectStatus(t, ts.do(t, http.MethodPost, "/api/hours", sessionBody(b.ID, "4h", now)), http.StatusCreated)

	res := ts.do(t, http.MethodGet, "/api/clients/earnings-summary", nil)
	expectStatus(t, res, http.StatusOK)
	var summary []records.EarningsSummary
	decodeBody(t, res, &summary)
	if len(summary) != 2 {
		t.Fatalf("summary entries = %d, want 2", len(summary))
	}
	if summary[0].ID != b.ID || summary[0].TotalEarnings != 4 || summary[1].TotalEarnings != 1 {
		t.Fatalf("summary not sorted by total descending: %+v", summary)
	}
}
