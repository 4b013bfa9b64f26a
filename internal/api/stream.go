package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-session-server/internal/adapter/chesspresenter"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

const streamWriteTimeout = 5 * time.Second

// handleEvents streams a snapshot followed by every change to one game. The stream ends when the
// client goes away or the game is deleted.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view, err := s.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	sub := s.bus.Subscribe(id)
	defer sub.Close()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		s.logger.Warn("events_accept_failed", zap.String("game_id", id), zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	ctx := conn.CloseRead(r.Context())
	snapshot := chessdto.Event{Type: chessdto.EventSnapshot, GameID: id, Session: chesspresenter.ToDTOSession(view)}
	if err := writeEvent(ctx, conn, snapshot); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "game deleted")
				return
			}
			if err := writeEvent(ctx, conn, ev); err != nil {
				s.logger.Debug("events_write_failed", zap.String("game_id", id), zap.Error(err))
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev chessdto.Event) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
