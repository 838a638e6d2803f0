package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/antoniostano/caretrack/internal/feed"
	"github.com/antoniostano/caretrack/internal/records"
)

type recordSessionResponse struct {
	Message       string          `json:"message"`
	RecordedHours records.Session `json:"recorded_hours"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		s.respondStoreError(w, r, "list_sessions", err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	var in records.SessionInput
	if err := decodeJSON(r, &in); err != nil {
		respondDecodeError(w, err)
		return
	}
	fields, err := in.Fields()
	if err != nil {
		respondDecodeError(w, err)
		return
	}

	sess, err := s.store.RecordSession(r.Context(), fields)
	if err != nil {
		s.respondStoreError(w, r, "record_session", err)
		return
	}
	s.publish(feed.Event{Type: feed.TypeSessionRecorded, ClientID: sess.ClientID, SessionID: sess.ID})

	respondJSON(w, http.StatusCreated, recordSessionResponse{
		Message:       "Hours recorded successfully",
		RecordedHours: sess,
	})
}

func (s *Server) handleClientEarnings(w http.ResponseWriter, r *http.Request) {
	id, ok := clientIDParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_client_id", "Invalid client ID")
		return
	}
	earnings, err := records.WeeklyEarnings(r.Context(), s.store, id, time.Now().UTC())
	if err != nil {
		if errors.Is(err, records.ErrNoSessions) {
			respondError(w, http.StatusNotFound, "no_recorded_hours", err.Error())
			return
		}
		s.respondStoreError(w, r, "client_earnings", err)
		return
	}
	respondJSON(w, http.StatusOK, earnings)
}

func (s *Server) handleEarningsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := records.SummarizeEarnings(r.Context(), s.store)
	if err != nil {
		if errors.Is(err, records.ErrNoEarnings) {
			respondError(w, http.StatusNotFound, "no_earnings", err.Error())
			return
		}
		s.respondStoreError(w, r, "earnings_summary", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
