package runtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Lynxchester/lynxchat/contract"
	"github.com/Lynxchester/lynxchat/domain"
	"github.com/Lynxchester/lynxchat/domain/event"
	"github.com/Lynxchester/lynxchat/domain/game"
)

// MatchEngine owns the set of in-progress matches. Invites and declines
// are pure relays between two connections; a Match only exists between
// acceptance and resolution. Matches that end naturally linger for a
// grace delay so both clients can render the final board; forfeits and
// disconnections are removed immediately.
type MatchEngine struct {
	mu           sync.Mutex
	log          *slog.Logger
	presence     contract.IPresence
	matches      map[uuid.UUID]*game.Match
	timers       map[uuid.UUID]*time.Timer
	cleanupDelay time.Duration

	onResolved func()
}

func NewMatchEngine(log *slog.Logger, presence contract.IPresence, cleanupDelay time.Duration) *MatchEngine {
	return &MatchEngine{
		log:          log,
		presence:     presence,
		matches:      make(map[uuid.UUID]*game.Match),
		timers:       make(map[uuid.UUID]*time.Timer),
		cleanupDelay: cleanupDelay,
	}
}

// OnResolved installs a hook fired once per match resolution, used for
// metrics. Must be set before the engine receives traffic.
func (e *MatchEngine) OnResolved(fn func()) {
	e.onResolved = fn
}

// send delivers an event to one connection if it is still live. A dead
// target is not an error: the recipient simply never sees the event.
func (e *MatchEngine) send(connID string, evt event.DomainEvent) {
	if sink, ok := e.presence.Sink(connID); ok {
		sink.Consume(evt)
	}
}

// Invite relays an invitation to the target display name. No match state
// is created; the invite exists only as the in-flight event.
func (e *MatchEngine) Invite(fromConnID, targetUsername, gameType string, roomID domain.RoomID) {
	from, ok := e.presence.Identity(fromConnID)
	if !ok {
		return
	}

	targetConnID, found := e.presence.FindByUsername(targetUsername)
	if !found {
		e.send(fromConnID, event.GameError{Message: "User not found or offline"})
		return
	}

	e.send(targetConnID, event.GameInviteReceived{
		From:       from.Username,
		FromConnID: fromConnID,
		GameType:   gameType,
		RoomID:     roomID,
	})
	e.send(fromConnID, event.GameInviteSent{To: targetUsername})
}

// Accept creates the match. The inviter must still be connected: an
// invite is only an in-flight message, so by the time the accept arrives
// its sender may be long gone, and silently creating a one-player match
// would strand the acceptor.
func (e *MatchEngine) Accept(acceptingConnID, inviterConnID string) {
	acceptor, ok := e.presence.Identity(acceptingConnID)
	if !ok {
		return
	}
	inviter, ok := e.presence.Identity(inviterConnID)
	if !ok {
		e.send(acceptingConnID, event.GameError{Message: "User not found or offline"})
		return
	}

	match := game.NewMatch(
		game.Player{ConnID: inviterConnID, Username: inviter.Username},
		game.Player{ConnID: acceptingConnID, Username: acceptor.Username},
	)

	e.mu.Lock()
	e.matches[match.ID] = match
	snap := match.Snapshot()
	e.mu.Unlock()

	e.log.Info("match started",
		"matchId", match.ID,
		"x", inviter.Username,
		"o", acceptor.Username,
	)

	e.send(inviterConnID, event.GameStart{
		GameID:     snap.ID,
		GameState:  snap,
		YourSymbol: game.SymbolX,
		Opponent:   acceptor.Username,
	})
	e.send(acceptingConnID, event.GameStart{
		GameID:     snap.ID,
		GameState:  snap,
		YourSymbol: game.SymbolO,
		Opponent:   inviter.Username,
	})
}

// Decline relays a refusal to the inviter. Nothing to clean up.
func (e *MatchEngine) Decline(decliningConnID, inviterConnID string) {
	decliner, ok := e.presence.Identity(decliningConnID)
	if !ok {
		return
	}
	e.send(inviterConnID, event.GameDeclined{By: decliner.Username})
}

// Move applies one move. Stale or out-of-turn moves are ignored without
// an error so that clients with briefly outdated state cannot corrupt
// the match.
func (e *MatchEngine) Move(connID string, matchID uuid.UUID, position int) {
	e.mu.Lock()
	match, ok := e.matches[matchID]
	if !ok {
		e.mu.Unlock()
		return
	}

	changed := match.Move(connID, position)
	terminal := match.GameOver
	if changed && terminal {
		// Natural end: keep the match reachable for a grace period, then
		// drop it. The timer is cancelled if the match is removed earlier.
		e.timers[matchID] = time.AfterFunc(e.cleanupDelay, func() {
			e.remove(matchID)
		})
	}
	snap := match.Snapshot()
	e.mu.Unlock()

	e.broadcast(snap)

	if changed && terminal {
		e.resolved()
	}
}

// Quit resolves the match immediately in favor of the opponent.
func (e *MatchEngine) Quit(connID string, matchID uuid.UUID) {
	e.mu.Lock()
	match, ok := e.matches[matchID]
	if !ok || match.SymbolOf(connID) == game.Empty {
		e.mu.Unlock()
		return
	}
	match.Resolve(connID, false)
	e.deleteLocked(matchID)
	snap := match.Snapshot()
	e.mu.Unlock()

	e.broadcast(snap)
	e.resolved()
}

// DisconnectCleanup forfeits every active match bound to the connection.
// Only the surviving opponent is notified; the disconnecting side has no
// sink left to receive anything. Matches already resolved by an earlier
// disconnect are gone from the set, so a near-simultaneous double
// disconnect resolves each match exactly once.
func (e *MatchEngine) DisconnectCleanup(connID string) {
	e.mu.Lock()
	var affected []*game.Match
	for matchID, match := range e.matches {
		if match.SymbolOf(connID) == game.Empty {
			continue
		}
		match.Resolve(connID, true)
		e.deleteLocked(matchID)
		affected = append(affected, match.Snapshot())
	}
	e.mu.Unlock()

	for _, match := range affected {
		survivor := match.Players[match.Winner]
		e.send(survivor.ConnID, event.GameUpdate{GameID: match.ID, GameState: match})
		e.log.Info("match forfeited by disconnect", "matchId", match.ID, "winner", match.Winner)
		e.resolved()
	}
}

// ActiveCount reports the number of matches in the active set, including
// naturally finished ones still inside their grace delay.
func (e *MatchEngine) ActiveCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.matches)
}

// broadcast sends the full match state to both bound connections.
func (e *MatchEngine) broadcast(match *game.Match) {
	evt := event.GameUpdate{GameID: match.ID, GameState: match}
	for _, player := range match.Players {
		e.send(player.ConnID, evt)
	}
}

func (e *MatchEngine) resolved() {
	if e.onResolved != nil {
		e.onResolved()
	}
}

// remove drops a match after its grace delay. Firing on an already
// removed match is a no-op.
func (e *MatchEngine) remove(matchID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.deleteLocked(matchID)
}

func (e *MatchEngine) deleteLocked(matchID uuid.UUID) {
	delete(e.matches, matchID)
	if timer, ok := e.timers[matchID]; ok {
		timer.Stop()
		delete(e.timers, matchID)
	}
}
