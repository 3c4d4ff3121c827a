package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// handleWebSocket handles GET /api/ws. Each {code} message is answered with a
// visualization, or {detail} when it fails; the session stays open either way.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	log := s.log.With().Str("session", uuid.NewString()).Logger()
	log.Info().Msg("WebSocket session opened")

	ctx := r.Context()
	for {
		var req visualizeRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, ctx.Err()) {
				log.Info().Msg("WebSocket session closed")
			} else {
				log.Warn().Err(err).Msg("WebSocket read failed")
				conn.Close(websocket.StatusUnsupportedData, "expected a JSON message")
			}
			return
		}

		var out any
		resp, err := s.visualize(ctx, req)
		if err != nil {
			out = errorResponse{Detail: err.Error()}
		} else {
			out = resp
		}
		if err := wsjson.Write(ctx, conn, out); err != nil {
			log.Warn().Err(err).Msg("WebSocket write failed")
			return
		}
	}
}
