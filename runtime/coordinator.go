package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Lynxchester/lynxchat/contract"
	"github.com/Lynxchester/lynxchat/domain"
	"github.com/Lynxchester/lynxchat/domain/event"
	"github.com/Lynxchester/lynxchat/moderation"
	"github.com/Lynxchester/lynxchat/repositories"
)

// Coordinator is the top-level dispatcher of the realtime core. It binds
// one live connection to one verified identity, owns the sessions map,
// and routes every inbound event to presence, the room groups or the
// match engine. The transport guarantees per-connection arrival order by
// dispatching from a single read loop; events from different connections
// interleave freely, so each shared map is guarded by its own short
// mutex.
type Coordinator struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session

	log       *slog.Logger
	presence  contract.IPresence
	rooms     *Rooms
	engine    *MatchEngine
	messages  repositories.IMessageLog
	moderator *moderation.Moderator

	historyLimit     int
	maxContentLength int

	onMessage func()
}

func NewCoordinator(
	log *slog.Logger,
	presence contract.IPresence,
	rooms *Rooms,
	engine *MatchEngine,
	messages repositories.IMessageLog,
	moderator *moderation.Moderator,
	historyLimit, maxContentLength int,
) *Coordinator {
	return &Coordinator{
		sessions:         make(map[string]*domain.Session),
		log:              log,
		presence:         presence,
		rooms:            rooms,
		engine:           engine,
		messages:         messages,
		moderator:        moderator,
		historyLimit:     historyLimit,
		maxContentLength: maxContentLength,
	}
}

// OnMessage installs a hook fired once per broadcast message, used for
// metrics. Must be set before the coordinator receives traffic.
func (c *Coordinator) OnMessage(fn func()) {
	c.onMessage = fn
}

// Connect registers an authenticated connection. The transport has
// already verified the identity; an unauthenticated connection never
// reaches the coordinator.
func (c *Coordinator) Connect(connID string, identity domain.Identity, sink contract.EventSink) {
	c.presence.Register(connID, identity, sink)

	c.mu.Lock()
	c.sessions[connID] = &domain.Session{
		ConnID:   connID,
		UserID:   identity.UserID,
		Username: identity.Username,
	}
	c.mu.Unlock()

	c.log.Info("connected", "connId", connID, "username", identity.Username)
}

// session returns a copy of the connection's session, so callers never
// hold references into the guarded map.
func (c *Coordinator) session(connID string) (domain.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[connID]
	if !ok {
		return domain.Session{}, false
	}
	return *s, true
}

func (c *Coordinator) setCurrentRoom(connID string, roomID domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[connID]; ok {
		s.CurrentRoom = roomID
	}
}

// send delivers an event to a single connection if it is still live.
func (c *Coordinator) send(connID string, evt event.DomainEvent) {
	if sink, ok := c.presence.Sink(connID); ok {
		sink.Consume(evt)
	}
}

// toRoom multicasts an event to every member of a room's group except
// the listed connections.
func (c *Coordinator) toRoom(roomID domain.RoomID, evt event.DomainEvent, except ...string) {
	for _, connID := range c.rooms.Members(roomID) {
		if lo.Contains(except, connID) {
			continue
		}
		c.send(connID, evt)
	}
}

// JoinRoom subscribes the connection to a room's broadcast group,
// replacing any prior subscription, replays the recent history to the
// joiner only, then announces the join to the rest of the group.
func (c *Coordinator) JoinRoom(connID string, roomID domain.RoomID) {
	session, ok := c.session(connID)
	if !ok || roomID == "" {
		return
	}

	// A connection belongs to at most one room group at a time.
	if prev := session.CurrentRoom; prev != "" && prev != roomID {
		c.rooms.Leave(connID, prev)
		c.toRoom(prev, event.UserLeft{Username: session.Username})
	}

	c.rooms.Join(connID, roomID)
	c.setCurrentRoom(connID, roomID)

	history, err := c.messages.Recent(roomID, c.historyLimit)
	if err != nil {
		c.log.Error("history fetch failed", "roomId", roomID, "error", err)
	} else {
		// Stored newest-first, delivered oldest-first.
		c.send(connID, event.RoomHistory{Messages: lo.Reverse(history)})
	}

	c.toRoom(roomID, event.UserJoined{Username: session.Username, RoomID: roomID}, connID)
}

// LeaveRoom removes the subscription and notifies the remaining group.
func (c *Coordinator) LeaveRoom(connID string, roomID domain.RoomID) {
	session, ok := c.session(connID)
	if !ok {
		return
	}

	c.rooms.Leave(connID, roomID)
	if session.CurrentRoom == roomID {
		c.setCurrentRoom(connID, "")
	}
	c.toRoom(roomID, event.UserLeft{Username: session.Username})
}

// SendMessage moderates, persists and multicasts one chat message to the
// whole room group, sender included. Empty or oversized input is dropped
// without feedback. A persistence failure is logged and the message is
// dropped entirely: delivery is at most once, never unpersisted.
func (c *Coordinator) SendMessage(connID string, roomID domain.RoomID, content string) {
	session, ok := c.session(connID)
	if !ok {
		return
	}
	if content == "" || roomID == "" {
		return
	}
	if len([]rune(content)) > c.maxContentLength {
		c.log.Debug("message over length limit dropped", "connId", connID, "len", len(content))
		return
	}

	censored := c.moderator.Censor(content)
	if censored != content {
		info := whatlanggo.Detect(content)
		c.log.Debug("message censored",
			"username", session.Username,
			"lang", info.Lang.Iso6391(),
		)
	}

	message := domain.Message{
		ID:        uuid.New(),
		Room:      roomID,
		SenderID:  session.UserID,
		Sender:    session.Username,
		Content:   censored,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.messages.Append(message); err != nil {
		c.log.Error(fmt.Sprintf("storing message failed: %v", err), "roomId", roomID)
		return
	}

	c.toRoom(roomID, event.NewMessage{Message: message})
	if c.onMessage != nil {
		c.onMessage()
	}
}

// Typing relays an ephemeral typing indicator to the rest of the group.
func (c *Coordinator) Typing(connID string, roomID domain.RoomID) {
	session, ok := c.session(connID)
	if !ok {
		return
	}
	c.toRoom(roomID, event.UserTyping{Username: session.Username}, connID)
}

func (c *Coordinator) StopTyping(connID string, roomID domain.RoomID) {
	session, ok := c.session(connID)
	if !ok {
		return
	}
	c.toRoom(roomID, event.UserStopTyping{Username: session.Username}, connID)
}

// Game events are pure delegation: the engine owns all match state.

func (c *Coordinator) GameInvite(connID, targetUsername, gameType string, roomID domain.RoomID) {
	c.engine.Invite(connID, targetUsername, gameType, roomID)
}

func (c *Coordinator) GameAccept(connID, inviterConnID string) {
	c.engine.Accept(connID, inviterConnID)
}

func (c *Coordinator) GameDecline(connID, inviterConnID string) {
	c.engine.Decline(connID, inviterConnID)
}

func (c *Coordinator) GameMove(connID string, matchID uuid.UUID, position int) {
	c.engine.Move(connID, matchID, position)
}

func (c *Coordinator) GameQuit(connID string, matchID uuid.UUID) {
	c.engine.Quit(connID, matchID)
}

// Disconnect tears down everything bound to the connection: presence,
// any active matches (forfeited to the opponent), the room subscription,
// and finally the session itself.
func (c *Coordinator) Disconnect(connID string) {
	session, ok := c.session(connID)
	if !ok {
		return
	}

	c.presence.Unregister(connID)
	c.engine.DisconnectCleanup(connID)

	if room := session.CurrentRoom; room != "" {
		c.rooms.Leave(connID, room)
		c.toRoom(room, event.UserLeft{Username: session.Username})
	}

	c.mu.Lock()
	delete(c.sessions, connID)
	c.mu.Unlock()

	c.log.Info("disconnected", "connId", connID, "username", session.Username)
}
