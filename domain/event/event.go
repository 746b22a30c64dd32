// Package event defines the outbound events the core multicasts to
// connected clients. Event names are part of the wire protocol and must
// not change without a client release.
package event

import (
	"github.com/Lynxchester/lynxchat/domain"
	"github.com/Lynxchester/lynxchat/domain/game"
	"github.com/google/uuid"
)

// DomainEvent is anything the core can deliver to a client connection.
// EventName is the wire-level discriminator of the JSON frame.
type DomainEvent interface {
	EventName() string
}

type RoomHistory struct {
	Messages []domain.Message `json:"messages"`
}

func (RoomHistory) EventName() string { return "room-history" }

type NewMessage struct {
	Message domain.Message `json:"message"`
}

func (NewMessage) EventName() string { return "new-message" }

type UserJoined struct {
	Username string        `json:"username"`
	RoomID   domain.RoomID `json:"roomId"`
}

func (UserJoined) EventName() string { return "user-joined" }

type UserLeft struct {
	Username string `json:"username"`
}

func (UserLeft) EventName() string { return "user-left" }

type UserTyping struct {
	Username string `json:"username"`
}

func (UserTyping) EventName() string { return "user-typing" }

type UserStopTyping struct {
	Username string `json:"username"`
}

func (UserStopTyping) EventName() string { return "user-stop-typing" }

type GameInviteSent struct {
	To string `json:"to"`
}

func (GameInviteSent) EventName() string { return "game-invite-sent" }

// GameInviteReceived carries the inviter's connection id so the target
// can address its accept or decline without a presence lookup.
type GameInviteReceived struct {
	From       string        `json:"from"`
	FromConnID string        `json:"fromSocketId"`
	GameType   string        `json:"gameType"`
	RoomID     domain.RoomID `json:"roomId"`
}

func (GameInviteReceived) EventName() string { return "game-invite-received" }

type GameDeclined struct {
	By string `json:"by"`
}

func (GameDeclined) EventName() string { return "game-declined" }

type GameError struct {
	Message string `json:"message"`
}

func (GameError) EventName() string { return "game-error" }

type GameStart struct {
	GameID     uuid.UUID   `json:"gameId"`
	GameState  *game.Match `json:"gameState"`
	YourSymbol game.Symbol `json:"yourSymbol"`
	Opponent   string      `json:"opponent"`
}

func (GameStart) EventName() string { return "game-start" }

type GameUpdate struct {
	GameID    uuid.UUID   `json:"gameId"`
	GameState *game.Match `json:"gameState"`
}

func (GameUpdate) EventName() string { return "game-update" }
