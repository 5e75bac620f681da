package handler

import (
	"errors"
	"net/http"

	"kizuki-server/internal/session"
	"kizuki-server/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WebSocketHandler struct {
	manager  *websocket.Manager
	gate     session.Gate
	upgrader ws.Upgrader
	log      zerolog.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, gate session.Gate, readBuf, writeBuf int, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		gate:    gate,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuf,
			WriteBufferSize: writeBuf,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log.With().Str("component", "ws_handler").Logger(),
	}
}

// HandleConnection upgrades an authenticated request to the live channel.
// Browsers cannot set headers on websocket requests, so the token may also
// come from the query string.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if token := r.URL.Query().Get("token"); token != "" {
		ctx = session.WithToken(ctx, token)
	}

	identity, err := h.gate.Resolve(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.log.Error().Err(err).Msg("session check failed")
		http.Error(w, "session check failed", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", identity.UserID).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(uuid.New().String(), identity.UserID, conn, h.manager)
	select {
	case h.manager.Register <- client:
	case <-h.manager.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
