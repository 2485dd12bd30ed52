package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/cognitypin/cognitypin/internal/events"
)

const (
	eventBuffer = 16
	writeWait   = 5 * time.Second
)

// handleEvents streams bus events to a websocket client until either side
// closes. Events are dropped for clients that fall behind.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake so no event published after the
	// client connects is missed.
	ch := make(chan events.Event, eventBuffer)
	unsubscribe := s.app.Bus().Subscribe(func(ev events.Event) {
		select {
		case ch <- ev:
		default:
			slog.Warn("dropping event for slow websocket client", "kind", ev.Kind)
		}
	})
	defer unsubscribe()

	// The stream outlives the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		slog.Warn("clearing write deadline failed", "error", err)
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// The client sends nothing; CloseRead cancels ctx when it disconnects.
	ctx := conn.CloseRead(r.Context())
	slog.Debug("event stream opened", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("event stream closed", "remote", r.RemoteAddr)
			return
		case ev := <-ch:
			if err := write(ctx, conn, ev); err != nil {
				slog.Debug("event stream write failed", "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, ev events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
