package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/antoniostano/caretrack/internal/logx"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
)

// handleFeedWS streams record-change events to a websocket client until
// either side goes away.
func (s *Server) handleFeedWS(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "change feed not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	logger := logx.FromContext(r.Context())
	subID, events, unsubscribe := s.feed.Subscribe()
	defer unsubscribe()
	logger.Debug("feed subscriber connected", "subscriber_id", subID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(feedPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
				if err := conn.WriteJSON(e); err != nil {
					cancel()
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait)); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(4 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		return nil
	})

	// Inbound messages are ignored; reading keeps control frames flowing and
	// notices when the peer disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-writerDone
	logger.Debug("feed subscriber disconnected", "subscriber_id", subID)
}
