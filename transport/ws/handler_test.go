package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Lynxchester/lynxchat/auth"
	"github.com/Lynxchester/lynxchat/moderation"
	"github.com/Lynxchester/lynxchat/repositories"
	"github.com/Lynxchester/lynxchat/runtime"
)

func newTestServer(t *testing.T) (*httptest.Server, *auth.TokenManager) {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	require.NoError(t, err)

	presence := runtime.NewPresence()
	rooms := runtime.NewRooms()
	engine := runtime.NewMatchEngine(log, presence, time.Minute)
	coordinator := runtime.NewCoordinator(
		log, presence, rooms, engine,
		repositories.NewMessageLog(db, log),
		&moderator,
		50, 2000,
	)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	server := httptest.NewServer(NewHandler(log, tokens, coordinator, 256))
	t.Cleanup(server.Close)
	return server, tokens
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, eventName string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	out, err := json.Marshal(frame{Event: eventName, Data: data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, out))
}

// waitFor reads frames until one with the wanted event name arrives,
// skipping unrelated traffic like presence announcements.
func waitFor(t *testing.T, conn *websocket.Conn, eventName string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %q", eventName)
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		if f.Event == eventName {
			return f.Data
		}
	}
}

func TestHandler_Rejects_Missing_Token(t *testing.T) {
	server, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_Rejects_Forged_Token(t *testing.T) {
	server, _ := newTestServer(t)
	forged := auth.NewTokenManager("other-secret", time.Hour)
	token, err := forged.Generate("u1", "mallory")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_Accepts_Bearer_Header(t *testing.T) {
	server, tokens := newTestServer(t)
	token, err := tokens.Generate("u1", "alice")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)

	require.NoError(t, err)
	_ = conn.Close()
}

func TestHandler_Chat_Round_Trip(t *testing.T) {
	req := require.New(t)
	server, tokens := newTestServer(t)

	aliceToken, err := tokens.Generate("u1", "alice")
	req.NoError(err)
	bobToken, err := tokens.Generate("u2", "bob")
	req.NoError(err)

	alice := dial(t, server, aliceToken)
	bob := dial(t, server, bobToken)

	// Given both users in the same room
	sendFrame(t, alice, "join-room", map[string]string{"roomId": "general"})
	waitFor(t, alice, "room-history")
	sendFrame(t, bob, "join-room", map[string]string{"roomId": "general"})
	waitFor(t, bob, "room-history")
	joined := waitFor(t, alice, "user-joined")
	req.Contains(string(joined), "bob")

	// When alice speaks
	sendFrame(t, alice, "chat-message", map[string]string{"roomId": "general", "message": "hello bob"})

	// Then both ends receive the broadcast
	for _, conn := range []*websocket.Conn{alice, bob} {
		data := waitFor(t, conn, "new-message")
		var payload struct {
			Message struct {
				Sender  string `json:"sender"`
				Content string `json:"content"`
			} `json:"message"`
		}
		req.NoError(json.Unmarshal(data, &payload))
		req.Equal("alice", payload.Message.Sender)
		req.Equal("hello bob", payload.Message.Content)
	}
}

func TestHandler_Malformed_Frames_Do_Not_Kill_The_Session(t *testing.T) {
	req := require.New(t)
	server, tokens := newTestServer(t)
	token, err := tokens.Generate("u1", "alice")
	req.NoError(err)
	conn := dial(t, server, token)

	// Given garbage, an unknown event, and an invalid payload
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	sendFrame(t, conn, "no-such-event", map[string]string{})
	sendFrame(t, conn, "join-room", map[string]string{})

	// Then the session still processes a valid frame afterwards
	sendFrame(t, conn, "join-room", map[string]string{"roomId": "general"})
	waitFor(t, conn, "room-history")
}

func TestHandler_Game_Over_Websocket(t *testing.T) {
	req := require.New(t)
	server, tokens := newTestServer(t)

	aliceToken, err := tokens.Generate("u1", "alice")
	req.NoError(err)
	bobToken, err := tokens.Generate("u2", "bob")
	req.NoError(err)
	alice := dial(t, server, aliceToken)
	bob := dial(t, server, bobToken)

	// When alice invites bob
	sendFrame(t, alice, "game-invite", map[string]string{
		"targetUsername": "bob",
		"gameType":       "tictactoe",
		"roomId":         "general",
	})

	// Then bob learns the inviter's connection id and accepts
	invite := waitFor(t, bob, "game-invite-received")
	var received struct {
		FromConnID string `json:"fromSocketId"`
	}
	req.NoError(json.Unmarshal(invite, &received))
	req.NotEmpty(received.FromConnID)

	sendFrame(t, bob, "game-accept", map[string]string{"fromSocketId": received.FromConnID})

	var started struct {
		GameID     string `json:"gameId"`
		YourSymbol string `json:"yourSymbol"`
	}
	req.NoError(json.Unmarshal(waitFor(t, alice, "game-start"), &started))
	req.Equal("X", started.YourSymbol)
	waitFor(t, bob, "game-start")

	// And a first move comes back as a state update to both players
	sendFrame(t, alice, "game-move", map[string]any{"gameId": started.GameID, "position": 4})
	for _, conn := range []*websocket.Conn{alice, bob} {
		var update struct {
			GameState struct {
				Board       []string `json:"board"`
				CurrentTurn string   `json:"currentTurn"`
			} `json:"gameState"`
		}
		req.NoError(json.Unmarshal(waitFor(t, conn, "game-update"), &update))
		req.Equal("X", update.GameState.Board[4])
		req.Equal("O", update.GameState.CurrentTurn)
	}
}
