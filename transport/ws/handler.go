package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Lynxchester/lynxchat/auth"
	"github.com/Lynxchester/lynxchat/domain"
	"github.com/Lynxchester/lynxchat/runtime"
)

// Handler upgrades authenticated HTTP requests to websocket sessions and
// dispatches their frames into the coordinator.
type Handler struct {
	log            *slog.Logger
	tokens         *auth.TokenManager
	coordinator    *runtime.Coordinator
	sendBufferSize int
	upgrader       websocket.Upgrader
}

func NewHandler(log *slog.Logger, tokens *auth.TokenManager, coordinator *runtime.Coordinator, sendBufferSize int) *Handler {
	return &Handler{
		log:            log,
		tokens:         tokens,
		coordinator:    coordinator,
		sendBufferSize: sendBufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// bearerToken extracts the session token from the query string or the
// Authorization header. Browser websocket clients cannot set headers, so
// the query parameter is the primary channel.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	return ""
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := h.tokens.Verify(bearerToken(r))
	if err != nil {
		h.log.Debug("websocket auth rejected", "error", err)
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	conn := newConn(connID, ws, h.sendBufferSize, h.log)
	h.coordinator.Connect(connID, identity, conn)

	go conn.writePump()
	conn.readPump(h)
}

// dispatch routes one inbound frame. Malformed frames and payloads are
// dropped with a debug log; the protocol has no error reply for them.
func (h *Handler) dispatch(connID string, data []byte) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		h.log.Debug("malformed frame dropped", "connId", connID, "error", err)
		return
	}

	switch f.Event {
	case "join-room":
		var p joinRoomPayload
		if !h.decode(connID, f, &p) {
			return
		}
		h.coordinator.JoinRoom(connID, domain.RoomID(p.RoomID))

	case "leave-room":
		var p leaveRoomPayload
		if !h.decode(connID, f, &p) {
			return
		}
		h.coordinator.LeaveRoom(connID, domain.RoomID(p.RoomID))

	case "chat-message":
		var p chatMessagePayload
		if !h.decode(connID, f, &p) {
			return
		}
		h.coordinator.SendMessage(connID, domain.RoomID(p.RoomID), p.Message)

	case "typing":
		var p typingPayload
		if !h.decode(connID, f, &p) {
			return
		}
		h.coordinator.Typing(connID, domain.RoomID(p.RoomID))

	case "stop-typing":
		var p typingPayload
		if !h.decode(connID, f, &p) {
			return
		}
		h.coordinator.StopTyping(connID, domain.RoomID(p.RoomID))

	case "game-invite":
		var p gameInvitePayload
		if !h.decode(connID, f, &p) {
			return
		}
		h.coordinator.GameInvite(connID, p.TargetUsername, p.GameType, domain.RoomID(p.RoomID))

	case "game-accept":
		var p gameAcceptPayload
		if !h.decode(connID, f, &p) {
			return
		}
		h.coordinator.GameAccept(connID, p.FromConnID)

	case "game-decline":
		var p gameDeclinePayload
		if !h.decode(connID, f, &p) {
			return
		}
		h.coordinator.GameDecline(connID, p.FromConnID)

	case "game-move":
		var p gameMovePayload
		if !h.decode(connID, f, &p) {
			return
		}
		matchID, err := uuid.Parse(p.GameID)
		if err != nil {
			h.log.Debug("invalid game id dropped", "connId", connID, "gameId", p.GameID)
			return
		}
		h.coordinator.GameMove(connID, matchID, *p.Position)

	case "game-quit":
		var p gameQuitPayload
		if !h.decode(connID, f, &p) {
			return
		}
		matchID, err := uuid.Parse(p.GameID)
		if err != nil {
			h.log.Debug("invalid game id dropped", "connId", connID, "gameId", p.GameID)
			return
		}
		h.coordinator.GameQuit(connID, matchID)

	default:
		h.log.Debug("unknown event dropped", "connId", connID, "event", f.Event)
	}
}

// decode unmarshals and validates a frame payload into dst.
func (h *Handler) decode(connID string, f frame, dst any) bool {
	if err := json.Unmarshal(f.Data, dst); err != nil {
		h.log.Debug("malformed payload dropped", "connId", connID, "event", f.Event, "error", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.log.Debug("invalid payload dropped", "connId", connID, "event", f.Event, "error", err)
		return false
	}
	return true
}
