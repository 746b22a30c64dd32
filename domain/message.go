// Package domain contains core concepts of the chat system.
// This file defines Message entities and related rules.
// Messages are immutable once created and persisted by the repository layer.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type RoomID string

// Message represents one chat message, enriched with the sender's
// display name so clients never need a second lookup.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Room      RoomID    `json:"roomId"`
	SenderID  string    `json:"senderId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
