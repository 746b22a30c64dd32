package ws

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Inbound payload shapes. Field names are part of the wire protocol.

type joinRoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

type leaveRoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

type chatMessagePayload struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

type typingPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

type gameInvitePayload struct {
	TargetUsername string `json:"targetUsername" validate:"required"`
	RoomID         string `json:"roomId"`
	GameType       string `json:"gameType" validate:"required"`
}

type gameAcceptPayload struct {
	FromConnID string `json:"fromSocketId" validate:"required"`
	GameType   string `json:"gameType"`
}

type gameDeclinePayload struct {
	FromConnID string `json:"fromSocketId" validate:"required"`
}

type gameMovePayload struct {
	GameID   string `json:"gameId" validate:"required"`
	Position *int   `json:"position" validate:"required,gte=0,lte=8"`
}

type gameQuitPayload struct {
	GameID string `json:"gameId" validate:"required"`
}
